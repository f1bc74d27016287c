// internal/handlers/application.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/ipo-portal-backend/internal/models"
	"github.com/javajoker/ipo-portal-backend/internal/services"
	"github.com/javajoker/ipo-portal-backend/internal/utils"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
	statsService       *services.StatsService
}

func NewApplicationHandler(applicationService *services.ApplicationService, statsService *services.StatsService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		statsService:       statsService,
	}
}

func isAdmin(c *gin.Context) bool {
	role, _ := utils.GetUserRoleFromContext(c)
	return role == string(models.UserRoleAdmin)
}

// POST /applications
func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	application, err := h.applicationService.Apply(userID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"application": application})
}

// GET /applications
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	applications, total, err := h.applicationService.ListForUser(userID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(applications, total, params))
}

// GET /applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID")
		return
	}

	application, err := h.applicationService.Get(id, userID, isAdmin(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"application": application})
}

// PUT /applications/:id
func (h *ApplicationHandler) Amend(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID")
		return
	}

	var req services.AmendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	application, err := h.applicationService.Amend(id, userID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"application": application})
}

// DELETE /applications/:id
func (h *ApplicationHandler) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID")
		return
	}

	application, err := h.applicationService.Cancel(id, userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"application": application})
}

// PUT /applications/:id/status (admin)
func (h *ApplicationHandler) AdminUpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID")
		return
	}

	var req services.AdminStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	application, err := h.applicationService.AdminUpdateStatus(id, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"application": application})
}

// GET /applications/admin/all (admin)
func (h *ApplicationHandler) ListAll(c *gin.Context) {
	filter := services.ApplicationFilter{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if status := c.Query("status"); status != "" {
		s := models.ApplicationStatus(status)
		if !s.Valid() {
			utils.BadRequestResponse(c, "Invalid status filter")
			return
		}
		filter.Status = &s
	}
	if category := c.Query("category"); category != "" {
		cat := models.ApplicationCategory(category)
		if !cat.Valid() {
			utils.BadRequestResponse(c, "Invalid category filter")
			return
		}
		filter.Category = &cat
	}
	if ipoID := c.Query("ipo_id"); ipoID != "" {
		id, err := uuid.Parse(ipoID)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid ipo_id filter")
			return
		}
		filter.IPOID = &id
	}
	if userID := c.Query("user_id"); userID != "" {
		id, err := uuid.Parse(userID)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid user_id filter")
			return
		}
		filter.UserID = &id
	}

	applications, total, err := h.applicationService.ListAll(filter)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(applications, total, filter.PaginationParams))
}

// GET /applications/admin/stats (admin)
func (h *ApplicationHandler) AdminStats(c *gin.Context) {
	stats, err := h.statsService.GlobalApplicationStats()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}
