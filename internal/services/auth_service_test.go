package services

import (
	"testing"

	"gorm.io/gorm"

	"github.com/javajoker/ipo-portal-backend/internal/models"
	"github.com/javajoker/ipo-portal-backend/internal/testutil"
	"github.com/javajoker/ipo-portal-backend/internal/utils"
)

func newAuthService(db *gorm.DB) *AuthService {
	cfg := testConfig()
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.AccessTokenTTL = 1
	cfg.JWT.RefreshTokenTTL = 24
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	return NewAuthService(db, cfg)
}

func validRegisterRequest() *RegisterRequest {
	return &RegisterRequest{
		FullName:  "Asha Mehta",
		Email:     "asha@example.com",
		Password:  "Str0ng!Pass",
		PANNumber: "ABCDE1234F",
		BankDetails: &models.BankDetails{
			AccountNumber: "123456789012",
			IFSCCode:      "HDFC0001234",
			BankName:      "HDFC Bank",
		},
	}
}

func TestRegister(t *testing.T) {
	t.Run("creates_pending_investor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newAuthService(db)

		resp, err := svc.Register(validRegisterRequest())
		testutil.AssertNoError(t, err)

		if resp.User.Role != models.UserRoleInvestor {
			t.Errorf("expected investor role, got %s", resp.User.Role)
		}
		if resp.User.KYCStatus != models.KYCStatusPending {
			t.Errorf("expected pending KYC, got %s", resp.User.KYCStatus)
		}
		if resp.AccessToken == "" || resp.RefreshToken == "" {
			t.Error("expected tokens issued on registration")
		}
		if resp.User.IsEmailVerified() {
			t.Error("new account should not be email verified")
		}
	})

	t.Run("verification_token_persisted_before_return", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newAuthService(db)

		resp, err := svc.Register(validRegisterRequest())
		testutil.AssertNoError(t, err)

		// The token is written with the user row itself; no goroutine
		// mutates the record after registration returns.
		var stored models.User
		testutil.AssertNoError(t, db.First(&stored, "id = ?", resp.User.ID).Error)
		token, ok := stored.ProfileData["email_verification_token"].(string)
		if !ok || token == "" {
			t.Fatalf("verification token not stored: %v", stored.ProfileData)
		}
		if resp.User.ProfileData["email_verification_token"] != token {
			t.Error("returned user and stored row disagree on the token")
		}
	})

	t.Run("password_is_hashed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newAuthService(db)

		resp, err := svc.Register(validRegisterRequest())
		testutil.AssertNoError(t, err)

		if resp.User.PasswordHash == "Str0ng!Pass" {
			t.Fatal("password stored in plaintext")
		}
		testutil.AssertNoError(t, resp.User.CheckPassword("Str0ng!Pass"))
	})

	t.Run("duplicate_email_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newAuthService(db)

		_, err := svc.Register(validRegisterRequest())
		testutil.AssertNoError(t, err)

		dup := validRegisterRequest()
		dup.PANNumber = "ZYXWV9876K"
		_, err = svc.Register(dup)
		testutil.AssertAppError(t, err, "DUPLICATE_FIELD")
	})

	t.Run("duplicate_pan_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newAuthService(db)

		_, err := svc.Register(validRegisterRequest())
		testutil.AssertNoError(t, err)

		dup := validRegisterRequest()
		dup.Email = "other@example.com"
		_, err = svc.Register(dup)
		testutil.AssertAppError(t, err, "DUPLICATE_FIELD")
	})

	t.Run("weak_password_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newAuthService(db)

		req := validRegisterRequest()
		req.Password = "short"
		_, err := svc.Register(req)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("malformed_pan_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newAuthService(db)

		req := validRegisterRequest()
		req.PANNumber = "12345ABCDE"
		_, err := svc.Register(req)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})
}

func TestLogin(t *testing.T) {
	t.Run("valid_credentials", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newAuthService(db)
		_, err := svc.Register(validRegisterRequest())
		testutil.AssertNoError(t, err)

		resp, err := svc.Login(&LoginRequest{Email: "asha@example.com", Password: "Str0ng!Pass"})
		testutil.AssertNoError(t, err)

		if resp.User.LastLoginAt == nil {
			t.Error("expected last login timestamp recorded")
		}

		claims, err := utils.ValidateJWT(resp.AccessToken)
		testutil.AssertNoError(t, err)
		if claims.Email != "asha@example.com" {
			t.Errorf("unexpected claims: %+v", claims)
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newAuthService(db)
		_, err := svc.Register(validRegisterRequest())
		testutil.AssertNoError(t, err)

		_, err = svc.Login(&LoginRequest{Email: "asha@example.com", Password: "WrongPass1!"})
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newAuthService(db)

		_, err := svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "Str0ng!Pass"})
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("deactivated_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newAuthService(db)
		resp, err := svc.Register(validRegisterRequest())
		testutil.AssertNoError(t, err)

		db.Model(resp.User).Update("is_active", false)

		_, err = svc.Login(&LoginRequest{Email: "asha@example.com", Password: "Str0ng!Pass"})
		testutil.AssertAppError(t, err, "ACCESS_DENIED")
	})
}

func TestRefreshToken(t *testing.T) {
	t.Run("round_trip", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newAuthService(db)
		resp, err := svc.Register(validRegisterRequest())
		testutil.AssertNoError(t, err)

		refreshed, err := svc.RefreshToken(resp.RefreshToken)
		testutil.AssertNoError(t, err)
		if refreshed.User.ID != resp.User.ID {
			t.Error("refresh returned a different user")
		}
	})

	t.Run("garbage_token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newAuthService(db)

		_, err := svc.RefreshToken("not-a-token")
		testutil.AssertAppError(t, err, "UNAUTHORIZED")
	})
}

func TestChangePasswordFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	authSvc := newAuthService(db)
	userSvc := NewUserService(db)

	resp, err := authSvc.Register(validRegisterRequest())
	testutil.AssertNoError(t, err)

	err = userSvc.ChangePassword(resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "Str0ng!Pass",
		NewPassword:     "N3w!Password",
	})
	testutil.AssertNoError(t, err)

	_, err = authSvc.Login(&LoginRequest{Email: "asha@example.com", Password: "Str0ng!Pass"})
	testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

	_, err = authSvc.Login(&LoginRequest{Email: "asha@example.com", Password: "N3w!Password"})
	testutil.AssertNoError(t, err)
}
