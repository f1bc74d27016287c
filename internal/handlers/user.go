// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/ipo-portal-backend/internal/services"
	"github.com/javajoker/ipo-portal-backend/internal/utils"
)

type UserHandler struct {
	userService    *services.UserService
	storageService *services.StorageService
	statsService   *services.StatsService
}

func NewUserHandler(userService *services.UserService, storageService *services.StorageService, statsService *services.StatsService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		storageService: storageService,
		statsService:   statsService,
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return uuid.Nil, false
	}
	return userID, true
}

// GET /users/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// PUT /users/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// PUT /users/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	if err := h.userService.ChangePassword(userID, &req); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Password updated"})
}

// POST /users/kyc/documents
// Multipart upload: "document" file plus a "document_type" field
// (pan_card, address_proof or bank_statement).
func (h *UserHandler) UploadKYCDocument(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	documentType := c.PostForm("document_type")
	switch documentType {
	case "pan_card", "address_proof", "bank_statement":
	default:
		utils.BadRequestResponse(c, "document_type must be pan_card, address_proof or bank_statement")
		return
	}

	file, header, err := c.Request.FormFile("document")
	if err != nil {
		utils.BadRequestResponse(c, "Document file is required")
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadFile(file, header, h.storageService.KYCUploadOptions())
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	user, err := h.userService.RecordKYCDocument(userID, documentType, result.URL)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"document": result,
		"user":     user,
	})
}

// GET /users/stats
func (h *UserHandler) GetStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.statsService.UserApplicationStats(userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}
