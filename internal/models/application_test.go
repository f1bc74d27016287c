package models

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRecomputeTotal(t *testing.T) {
	app := &Application{Quantity: 30, PricePerShare: 115.5}
	app.TotalAmount = 999999 // caller-supplied garbage
	app.RecomputeTotal()
	if app.TotalAmount != 3465 {
		t.Errorf("expected 3465, got %f", app.TotalAmount)
	}
}

func TestNewApplicationNumber(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	number := NewApplicationNumber(now)

	if !strings.HasPrefix(number, "IPO") {
		t.Fatalf("expected IPO prefix, got %s", number)
	}

	// IPO + 13-digit epoch millis + 3-digit random suffix
	matched, _ := regexp.MatchString(`^IPO\d{13}\d{3}$`, number)
	if !matched {
		t.Errorf("unexpected application number shape: %s", number)
	}

	millis, err := strconv.ParseInt(number[3:16], 10, 64)
	if err != nil {
		t.Fatalf("failed to parse epoch part: %v", err)
	}
	if millis != now.UnixMilli() {
		t.Errorf("expected epoch %d, got %d", now.UnixMilli(), millis)
	}
}

func TestNewBidID(t *testing.T) {
	id := uuid.MustParse("9f1c0de2-5b3a-4c6d-8e7f-a1b2c3d4e5f6")
	bidID := NewBidID(id)

	if bidID != "BIDA1B2C3D4E5F6" {
		t.Errorf("expected BIDA1B2C3D4E5F6, got %s", bidID)
	}
	if len(bidID) != 15 {
		t.Errorf("expected 15 characters, got %d", len(bidID))
	}
}
