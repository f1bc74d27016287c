// internal/handlers/auth_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/ipo-portal-backend/internal/config"
	"github.com/javajoker/ipo-portal-backend/internal/services"
	"github.com/javajoker/ipo-portal-backend/internal/testutil"
	"github.com/javajoker/ipo-portal-backend/internal/utils"
)

type AuthTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

func (suite *AuthTestSuite) SetupTest() {
	suite.db = testutil.SetupTestDB(suite.T())

	cfg := &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	authService := services.NewAuthService(suite.db, cfg)
	authHandler := NewAuthHandler(authService)

	suite.router = gin.New()
	auth := suite.router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}
}

func (suite *AuthTestSuite) TearDownTest() {
	testutil.TeardownTestDB(suite.T(), suite.db)
}

func (suite *AuthTestSuite) postJSON(path string, body map[string]interface{}) *httptest.ResponseRecorder {
	jsonData, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AuthTestSuite) TestUserRegistration() {
	w := suite.postJSON("/auth/register", map[string]interface{}{
		"full_name":  "Asha Mehta",
		"email":      "asha@example.com",
		"password":   "Str0ng!Pass",
		"pan_number": "ABCDE1234F",
	})

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "success", response["status"])

	data := response["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	assert.Equal(suite.T(), "asha@example.com", user["email"])
	assert.Equal(suite.T(), "pending", user["kyc_status"])
	assert.NotContains(suite.T(), user, "password_hash")
}

func (suite *AuthTestSuite) TestRegistrationRejectsWeakPassword() {
	w := suite.postJSON("/auth/register", map[string]interface{}{
		"full_name":  "Asha Mehta",
		"email":      "asha@example.com",
		"password":   "password",
		"pan_number": "ABCDE1234F",
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "error", response["status"])
	assert.Equal(suite.T(), "VALIDATION_ERROR", response["code"])
}

func (suite *AuthTestSuite) TestUserLogin() {
	register := suite.postJSON("/auth/register", map[string]interface{}{
		"full_name":  "Asha Mehta",
		"email":      "asha@example.com",
		"password":   "Str0ng!Pass",
		"pan_number": "ABCDE1234F",
	})
	assert.Equal(suite.T(), http.StatusCreated, register.Code)

	w := suite.postJSON("/auth/login", map[string]interface{}{
		"email":    "asha@example.com",
		"password": "Str0ng!Pass",
	})

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "success", response["status"])

	data := response["data"].(map[string]interface{})
	assert.NotEmpty(suite.T(), data["token"])
	assert.NotEmpty(suite.T(), data["refresh_token"])
	assert.Equal(suite.T(), "Bearer", data["token_type"])
}

func (suite *AuthTestSuite) TestLoginWithWrongPassword() {
	register := suite.postJSON("/auth/register", map[string]interface{}{
		"full_name":  "Asha Mehta",
		"email":      "asha@example.com",
		"password":   "Str0ng!Pass",
		"pan_number": "ABCDE1234F",
	})
	assert.Equal(suite.T(), http.StatusCreated, register.Code)

	w := suite.postJSON("/auth/login", map[string]interface{}{
		"email":    "asha@example.com",
		"password": "WrongPass1!",
	})

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "INVALID_CREDENTIALS", response["code"])
}

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}
