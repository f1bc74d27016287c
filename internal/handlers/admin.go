// internal/handlers/admin.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/ipo-portal-backend/internal/services"
	"github.com/javajoker/ipo-portal-backend/internal/utils"
)

type AdminHandler struct {
	adminService *services.AdminService
	statsService *services.StatsService
}

func NewAdminHandler(adminService *services.AdminService, statsService *services.StatsService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		statsService: statsService,
	}
}

// GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	filter := &services.UserFilter{
		Role:      c.Query("role"),
		KYCStatus: c.Query("kyc_status"),
		Search:    c.Query("search"),
	}
	if active := c.Query("is_active"); active != "" {
		isActive := active == "true"
		filter.IsActive = &isActive
	}

	params := utils.GetPaginationParams(c)
	users, total, err := h.adminService.ListUsers(filter, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, params))
}

// GET /admin/users/:id
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	user, err := h.adminService.GetUser(id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// PUT /admin/users/:id/kyc
func (h *AdminHandler) UpdateKYCStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	var req services.UpdateKYCStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	user, err := h.adminService.UpdateKYCStatus(id, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// PUT /admin/users/:id/activate
func (h *AdminHandler) ActivateUser(c *gin.Context) {
	h.setUserActive(c, true)
}

// PUT /admin/users/:id/deactivate
func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	h.setUserActive(c, false)
}

func (h *AdminHandler) setUserActive(c *gin.Context, active bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	user, err := h.adminService.SetUserActive(id, active)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /admin/ipos/stats
func (h *AdminHandler) IPOStats(c *gin.Context) {
	stats, err := h.statsService.IPOStatsAt(time.Now())
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}
