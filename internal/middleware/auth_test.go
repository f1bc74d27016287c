package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipo-portal-backend/internal/models"
	"github.com/javajoker/ipo-portal-backend/internal/testutil"
	"github.com/javajoker/ipo-portal-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateJWT(user.ID, user.Email, string(user.Role), 1)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Status string `json:"status"`
		Code   string `json:"code"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("failed to parse error body: %v", err)
	}
	if resp.Status != "error" {
		t.Errorf("expected error envelope, got status %q", resp.Status)
	}
	return resp.Code
}

func okHandler(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"ok": true})
}

func TestAuthRequired(t *testing.T) {
	r := gin.New()
	r.GET("/protected", AuthRequired(), okHandler)

	t.Run("missing_header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
		if code := errorCode(t, w.Body.Bytes()); code != "UNAUTHORIZED" {
			t.Errorf("expected UNAUTHORIZED, got %s", code)
		}
	})

	t.Run("malformed_header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("garbage_token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("valid_token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, user))
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestAdminRequired(t *testing.T) {
	r := gin.New()
	r.GET("/admin-only", AuthRequired(), AdminRequired(), okHandler)

	t.Run("investor_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, user))
		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
		if code := errorCode(t, w.Body.Bytes()); code != "INSUFFICIENT_PERMISSIONS" {
			t.Errorf("expected INSUFFICIENT_PERMISSIONS, got %s", code)
		}
	})

	t.Run("admin_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		admin := testutil.CreateTestAdmin(t, db)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, admin))
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})
}

func TestVerifiedInvestorRequired(t *testing.T) {
	t.Run("unverified_email_blocked_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		r := gin.New()
		r.POST("/apply", AuthRequired(), VerifiedInvestorRequired(db), okHandler)

		user := testutil.CreateUnverifiedUser(t, db)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/apply", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, user))
		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
		if code := errorCode(t, w.Body.Bytes()); code != "EMAIL_VERIFICATION_REQUIRED" {
			t.Errorf("expected EMAIL_VERIFICATION_REQUIRED, got %s", code)
		}
	})

	t.Run("verified_email_pending_kyc_blocked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		r := gin.New()
		r.POST("/apply", AuthRequired(), VerifiedInvestorRequired(db), okHandler)

		user := testutil.CreateUnverifiedUser(t, db)
		now := time.Now()
		db.Model(user).Update("email_verified_at", &now)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/apply", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, user))
		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
		if code := errorCode(t, w.Body.Bytes()); code != "KYC_REQUIRED" {
			t.Errorf("expected KYC_REQUIRED, got %s", code)
		}
	})

	t.Run("fully_verified_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		r := gin.New()
		r.POST("/apply", AuthRequired(), VerifiedInvestorRequired(db), okHandler)

		user := testutil.CreateTestUser(t, db)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/apply", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, user))
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("kyc_change_takes_effect_without_new_token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		r := gin.New()
		r.POST("/apply", AuthRequired(), VerifiedInvestorRequired(db), okHandler)

		user := testutil.CreateTestUser(t, db)
		token := tokenFor(t, user)

		// Same token, KYC revoked server-side in between.
		db.Model(user).Update("kyc_status", models.KYCStatusRejected)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/apply", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403 after KYC revocation, got %d", w.Code)
		}
	})
}
