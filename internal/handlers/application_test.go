// internal/handlers/application_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/ipo-portal-backend/internal/config"
	"github.com/javajoker/ipo-portal-backend/internal/middleware"
	"github.com/javajoker/ipo-portal-backend/internal/models"
	"github.com/javajoker/ipo-portal-backend/internal/services"
	"github.com/javajoker/ipo-portal-backend/internal/testutil"
	"github.com/javajoker/ipo-portal-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")
}

func testRouter(db *gorm.DB) *gin.Engine {
	cfg := &config.Config{
		Investment: config.InvestmentConfig{HNIThresholdAmount: 1000000},
	}
	applicationService := services.NewApplicationService(db, cfg, services.NewNotificationService(db))
	statsService := services.NewStatsService(db)
	h := NewApplicationHandler(applicationService, statsService)

	r := gin.New()
	apps := r.Group("/applications")
	apps.Use(middleware.AuthRequired())
	{
		apps.POST("", middleware.VerifiedInvestorRequired(db), h.Apply)
		apps.GET("", h.ListMine)
		apps.GET("/:id", h.Get)
		apps.PUT("/:id", h.Amend)
		apps.DELETE("/:id", h.Cancel)
		apps.PUT("/:id/status", middleware.AdminRequired(), h.AdminUpdateStatus)
	}
	return r
}

func authedRequest(t *testing.T, method, path string, body interface{}, user *models.User) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	token, err := utils.GenerateJWT(user.ID, user.Email, string(user.Role), 1)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestApplyEndpoint(t *testing.T) {
	t.Run("success_envelope", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		r := testRouter(db)
		user := testutil.CreateTestUser(t, db)
		ipo := testutil.CreateOpenIPO(t, db)

		w := httptest.NewRecorder()
		req := authedRequest(t, http.MethodPost, "/applications", gin.H{
			"ipo_id":          ipo.ID,
			"quantity":        20,
			"price_per_share": 110,
		}, user)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var resp struct {
			Status string `json:"status"`
			Data   struct {
				Application models.Application `json:"application"`
			} `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse body: %v", err)
		}
		if resp.Status != "success" {
			t.Errorf("expected success envelope, got %q", resp.Status)
		}
		if resp.Data.Application.TotalAmount != 2200 {
			t.Errorf("expected total 2200, got %f", resp.Data.Application.TotalAmount)
		}
	})

	t.Run("duplicate_error_envelope", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		r := testRouter(db)
		user := testutil.CreateTestUser(t, db)
		ipo := testutil.CreateOpenIPO(t, db)

		body := gin.H{"ipo_id": ipo.ID, "quantity": 10, "price_per_share": 100}

		w := httptest.NewRecorder()
		r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/applications", body, user))
		if w.Code != http.StatusCreated {
			t.Fatalf("first apply failed: %d %s", w.Code, w.Body.String())
		}

		w = httptest.NewRecorder()
		r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/applications", body, user))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}

		var resp struct {
			Status  string `json:"status"`
			Message string `json:"message"`
			Code    string `json:"code"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse body: %v", err)
		}
		if resp.Status != "error" || resp.Code != "ALREADY_APPLIED" || resp.Message == "" {
			t.Errorf("unexpected error body: %+v", resp)
		}
	})

	t.Run("unverified_user_blocked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		r := testRouter(db)
		user := testutil.CreateUnverifiedUser(t, db)
		ipo := testutil.CreateOpenIPO(t, db)

		w := httptest.NewRecorder()
		req := authedRequest(t, http.MethodPost, "/applications", gin.H{
			"ipo_id":          ipo.ID,
			"quantity":        10,
			"price_per_share": 100,
		}, user)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
	})
}

func TestAdminStatusEndpoint(t *testing.T) {
	t.Run("investor_cannot_use_status_route", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		r := testRouter(db)
		user := testutil.CreateTestUser(t, db)
		ipo := testutil.CreateOpenIPO(t, db)
		app := testutil.CreateTestApplication(t, db, user, ipo)

		w := httptest.NewRecorder()
		req := authedRequest(t, http.MethodPut, fmt.Sprintf("/applications/%s/status", app.ID), gin.H{
			"status": "confirmed",
		}, user)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
	})

	t.Run("admin_updates_status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		r := testRouter(db)
		user := testutil.CreateTestUser(t, db)
		admin := testutil.CreateTestAdmin(t, db)
		ipo := testutil.CreateOpenIPO(t, db)
		app := testutil.CreateTestApplication(t, db, user, ipo)

		w := httptest.NewRecorder()
		req := authedRequest(t, http.MethodPut, fmt.Sprintf("/applications/%s/status", app.ID), gin.H{
			"status":         "confirmed",
			"payment_status": "blocked",
		}, admin)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var stored models.Application
		db.First(&stored, "id = ?", app.ID)
		if stored.Status != models.ApplicationStatusConfirmed || stored.PaymentStatus != models.PaymentStatusBlocked {
			t.Errorf("status update not persisted: %+v", stored)
		}
	})
}
