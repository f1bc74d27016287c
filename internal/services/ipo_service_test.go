package services

import (
	"testing"
	"time"

	"github.com/javajoker/ipo-portal-backend/internal/models"
	"github.com/javajoker/ipo-portal-backend/internal/testutil"
)

func validCreateRequest() *CreateIPORequest {
	now := time.Now()
	return &CreateIPORequest{
		CompanyName:  "Acme Robotics",
		Symbol:       "ACME",
		Sector:       models.SectorTechnology,
		PriceMin:     200,
		PriceMax:     240,
		LotSize:      25,
		TotalShares:  5000000,
		RetailShares: 1750000,
		OpenDate:     now.Add(24 * time.Hour),
		CloseDate:    now.Add(4 * 24 * time.Hour),
		ListingDate:  now.Add(10 * 24 * time.Hour),
	}
}

func TestCreateIPO(t *testing.T) {
	t.Run("creates_with_derived_status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIPOService(db, NewNotificationService(db))

		ipo, err := svc.Create(validCreateRequest())
		testutil.AssertNoError(t, err)

		if ipo.Status != models.IPOStatusUpcoming {
			t.Errorf("expected upcoming, got %s", ipo.Status)
		}
		if !ipo.IsActive {
			t.Error("expected active")
		}
	})

	t.Run("duplicate_symbol_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIPOService(db, NewNotificationService(db))

		_, err := svc.Create(validCreateRequest())
		testutil.AssertNoError(t, err)

		_, err = svc.Create(validCreateRequest())
		testutil.AssertAppError(t, err, "DUPLICATE_FIELD")
	})

	t.Run("inverted_price_band_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIPOService(db, NewNotificationService(db))

		req := validCreateRequest()
		req.PriceMin = 240
		req.PriceMax = 200
		_, err := svc.Create(req)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("retail_exceeding_total_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIPOService(db, NewNotificationService(db))

		req := validCreateRequest()
		req.RetailShares = req.TotalShares + 1
		_, err := svc.Create(req)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("unordered_dates_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIPOService(db, NewNotificationService(db))

		req := validCreateRequest()
		req.CloseDate = req.OpenDate.Add(-time.Hour)
		_, err := svc.Create(req)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})
}

func TestUpdateIPO(t *testing.T) {
	t.Run("merges_fields_and_revalidates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIPOService(db, NewNotificationService(db))
		ipo, err := svc.Create(validCreateRequest())
		testutil.AssertNoError(t, err)

		gmp := 45.0
		subRetail := 2.4
		updated, err := svc.Update(ipo.ID, &UpdateIPORequest{
			GreyMarketPremium:  &gmp,
			SubscriptionRetail: &subRetail,
		})
		testutil.AssertNoError(t, err)

		if updated.GreyMarketPremium != 45 || updated.SubscriptionRetail != 2.4 {
			t.Errorf("update not applied: %+v", updated)
		}
	})

	t.Run("update_cannot_break_invariants", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIPOService(db, NewNotificationService(db))
		ipo, err := svc.Create(validCreateRequest())
		testutil.AssertNoError(t, err)

		badMin := 500.0
		_, err = svc.Update(ipo.ID, &UpdateIPORequest{PriceMin: &badMin})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("unknown_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIPOService(db, NewNotificationService(db))

		name := "Renamed"
		_, err := svc.Update(testutil.CreateTestUser(t, db).ID, &UpdateIPORequest{CompanyName: &name})
		testutil.AssertAppError(t, err, "IPO_NOT_FOUND")
	})
}

func TestCancelIPO(t *testing.T) {
	t.Run("cancel_is_sticky", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIPOService(db, NewNotificationService(db))
		ipo := testutil.CreateOpenIPO(t, db)

		cancelled, err := svc.Cancel(ipo.ID)
		testutil.AssertNoError(t, err)
		if cancelled.Status != models.IPOStatusCancelled {
			t.Errorf("expected cancelled, got %s", cancelled.Status)
		}

		// Still cancelled long after the window would have listed.
		var stored models.IPO
		db.First(&stored, "id = ?", ipo.ID)
		if got := stored.StatusAt(time.Now().Add(365 * 24 * time.Hour)); got != models.IPOStatusCancelled {
			t.Errorf("expected cancelled to stick, got %s", got)
		}
	})
}

func TestListIPOs(t *testing.T) {
	t.Run("status_filter_matches_derivation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIPOService(db, NewNotificationService(db))

		open := testutil.CreateOpenIPO(t, db)
		testutil.CreateUpcomingIPO(t, db)
		testutil.CreateClosedIPO(t, db)

		status := models.IPOStatusOpen
		ipos, total, err := svc.List(IPOFilter{
			PaginationParams: defaultParams(),
			Status:           &status,
		})
		testutil.AssertNoError(t, err)

		if total != 1 || len(ipos) != 1 {
			t.Fatalf("expected exactly the open offering, got total=%d len=%d", total, len(ipos))
		}
		if ipos[0].ID != open.ID {
			t.Errorf("wrong offering returned")
		}
		if ipos[0].Status != models.IPOStatusOpen {
			t.Errorf("expected derived status populated, got %s", ipos[0].Status)
		}
	})

	t.Run("cancelled_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIPOService(db, NewNotificationService(db))

		ipo := testutil.CreateOpenIPO(t, db)
		testutil.CreateOpenIPO(t, db)
		_, err := svc.Cancel(ipo.ID)
		testutil.AssertNoError(t, err)

		status := models.IPOStatusCancelled
		ipos, total, err := svc.List(IPOFilter{
			PaginationParams: defaultParams(),
			Status:           &status,
		})
		testutil.AssertNoError(t, err)
		if total != 1 || len(ipos) != 1 || ipos[0].ID != ipo.ID {
			t.Errorf("expected only the cancelled offering, got total=%d", total)
		}
	})

	t.Run("sector_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIPOService(db, NewNotificationService(db))

		testutil.CreateOpenIPO(t, db) // technology
		fin := testutil.CreateOpenIPO(t, db)
		db.Model(fin).Update("sector", models.SectorFinance)

		sector := models.SectorFinance
		_, total, err := svc.List(IPOFilter{
			PaginationParams: defaultParams(),
			Sector:           &sector,
		})
		testutil.AssertNoError(t, err)
		if total != 1 {
			t.Errorf("expected 1 finance offering, got %d", total)
		}
	})

	t.Run("soft_deleted_excluded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewIPOService(db, NewNotificationService(db))

		ipo := testutil.CreateOpenIPO(t, db)
		testutil.AssertNoError(t, svc.Delete(ipo.ID))

		_, total, err := svc.List(IPOFilter{PaginationParams: defaultParams()})
		testutil.AssertNoError(t, err)
		if total != 0 {
			t.Errorf("expected deactivated offering hidden, got %d", total)
		}
	})
}
