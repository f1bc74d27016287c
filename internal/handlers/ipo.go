// internal/handlers/ipo.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/ipo-portal-backend/internal/models"
	"github.com/javajoker/ipo-portal-backend/internal/services"
	"github.com/javajoker/ipo-portal-backend/internal/utils"
)

type IPOHandler struct {
	ipoService *services.IPOService
}

func NewIPOHandler(ipoService *services.IPOService) *IPOHandler {
	return &IPOHandler{
		ipoService: ipoService,
	}
}

// GET /ipos
func (h *IPOHandler) List(c *gin.Context) {
	filter := services.IPOFilter{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if status := c.Query("status"); status != "" {
		s := models.IPOStatus(status)
		if !s.Valid() {
			utils.BadRequestResponse(c, "Invalid status filter")
			return
		}
		filter.Status = &s
	}
	if sector := c.Query("sector"); sector != "" {
		s := models.Sector(sector)
		if !s.Valid() {
			utils.BadRequestResponse(c, "Invalid sector filter")
			return
		}
		filter.Sector = &s
	}

	ipos, total, err := h.ipoService.List(filter)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(ipos, total, filter.PaginationParams))
}

// GET /ipos/:id
func (h *IPOHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid IPO ID")
		return
	}

	ipo, err := h.ipoService.Get(id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"ipo": ipo})
}

// POST /ipos (admin)
func (h *IPOHandler) Create(c *gin.Context) {
	var req services.CreateIPORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	ipo, err := h.ipoService.Create(&req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"ipo": ipo})
}

// PUT /ipos/:id (admin)
func (h *IPOHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid IPO ID")
		return
	}

	var req services.UpdateIPORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	ipo, err := h.ipoService.Update(id, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"ipo": ipo})
}

// POST /ipos/:id/cancel (admin)
func (h *IPOHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid IPO ID")
		return
	}

	ipo, err := h.ipoService.Cancel(id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"ipo": ipo})
}

// DELETE /ipos/:id (admin)
func (h *IPOHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid IPO ID")
		return
	}

	if err := h.ipoService.Delete(id); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "IPO deactivated"})
}
