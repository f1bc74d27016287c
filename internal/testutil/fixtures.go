package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/javajoker/ipo-portal-backend/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// uniquePAN generates a well-formed PAN that will not collide with
// other fixtures. The four digits come from the fixture counter.
func uniquePAN() string {
	return fmt.Sprintf("ABCDE%04dF", nextID()%10000)
}

// CreateTestUser creates an active, email-verified, KYC-verified investor.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	now := time.Now()
	user := buildUser(t)
	user.EmailVerifiedAt = &now
	user.KYCStatus = models.KYCStatusVerified

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateUnverifiedUser creates an investor who has not verified email
// and whose KYC is pending.
func CreateUnverifiedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := buildUser(t)
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAdmin creates an admin account.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	now := time.Now()
	user := buildUser(t)
	user.Role = models.UserRoleAdmin
	user.EmailVerifiedAt = &now
	user.KYCStatus = models.KYCStatusVerified

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test admin: %v", err)
	}
	return user
}

func buildUser(t *testing.T) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("Password1!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	return &models.User{
		FullName:     "Test Investor",
		Email:        fmt.Sprintf("user%d@test.com", nextID()),
		PasswordHash: string(hash),
		PANNumber:    uniquePAN(),
		Role:         models.UserRoleInvestor,
		KYCStatus:    models.KYCStatusPending,
		IsActive:     true,
		BankDetails: models.BankDetails{
			AccountNumber: "123456789012",
			IFSCCode:      "HDFC0001234",
			BankName:      "HDFC Bank",
		},
	}
}

// CreateOpenIPO creates an offering whose bidding window contains now.
func CreateOpenIPO(t *testing.T, db *gorm.DB) *models.IPO {
	t.Helper()

	now := time.Now()
	return CreateIPOWithDates(t, db, now.Add(-24*time.Hour), now.Add(24*time.Hour), now.Add(7*24*time.Hour))
}

// CreateUpcomingIPO creates an offering that has not opened yet.
func CreateUpcomingIPO(t *testing.T, db *gorm.DB) *models.IPO {
	t.Helper()

	now := time.Now()
	return CreateIPOWithDates(t, db, now.Add(24*time.Hour), now.Add(3*24*time.Hour), now.Add(10*24*time.Hour))
}

// CreateClosedIPO creates an offering whose bidding window has passed
// but which is not yet listed.
func CreateClosedIPO(t *testing.T, db *gorm.DB) *models.IPO {
	t.Helper()

	now := time.Now()
	return CreateIPOWithDates(t, db, now.Add(-7*24*time.Hour), now.Add(-24*time.Hour), now.Add(5*24*time.Hour))
}

// CreateIPOWithDates creates an active offering with the given window.
// Price band 100..120, lot size 10.
func CreateIPOWithDates(t *testing.T, db *gorm.DB, open, close, listing time.Time) *models.IPO {
	t.Helper()

	ipo := &models.IPO{
		CompanyName:  fmt.Sprintf("Test Company %d", nextID()),
		Symbol:       fmt.Sprintf("TST%d", nextID()),
		Sector:       models.SectorTechnology,
		Description:  "Test offering",
		PriceMin:     100,
		PriceMax:     120,
		LotSize:      10,
		TotalShares:  1000000,
		RetailShares: 350000,
		OpenDate:     open,
		CloseDate:    close,
		ListingDate:  listing,
		IsActive:     true,
	}
	if err := db.Create(ipo).Error; err != nil {
		t.Fatalf("failed to create test IPO: %v", err)
	}
	return ipo
}

// CreateTestApplication creates a pending application for the given
// user and offering. Quantity 10 at price 100.
func CreateTestApplication(t *testing.T, db *gorm.DB, user *models.User, ipo *models.IPO) *models.Application {
	t.Helper()

	app := &models.Application{
		UserID:            user.ID,
		IPOID:             ipo.ID,
		Category:          models.CategoryRetail,
		Quantity:          10,
		PricePerShare:     100,
		TotalAmount:       1000,
		Status:            models.ApplicationStatusPending,
		PaymentStatus:     models.PaymentStatusPending,
		ApplicationNumber: models.NewApplicationNumber(time.Now()),
		BidID:             models.NewBidID(uuid.New()),
		BankDetails:       user.BankDetails,
		SubmittedAt:       time.Now(),
	}
	if err := db.Create(app).Error; err != nil {
		t.Fatalf("failed to create test application: %v", err)
	}
	return app
}
