// internal/services/admin_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/ipo-portal-backend/internal/apperrors"
	"github.com/javajoker/ipo-portal-backend/internal/models"
	"github.com/javajoker/ipo-portal-backend/internal/utils"
)

type AdminService struct {
	db *gorm.DB
}

type UserFilter struct {
	Role      string
	KYCStatus string
	IsActive  *bool
	Search    string
}

type UpdateKYCStatusRequest struct {
	Status models.KYCStatus `json:"status" validate:"required"`
	Notes  string           `json:"notes,omitempty"`
}

type DashboardStats struct {
	TotalUsers          int64   `json:"total_users"`
	PendingKYC          int64   `json:"pending_kyc"`
	TotalIPOs           int64   `json:"total_ipos"`
	OpenIPOs            int64   `json:"open_ipos"`
	TotalApplications   int64   `json:"total_applications"`
	PendingApplications int64   `json:"pending_applications"`
	TotalAmountApplied  float64 `json:"total_amount_applied"`
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) ListUsers(filter *UserFilter, params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if filter != nil {
		if filter.Role != "" {
			query = query.Where("role = ?", filter.Role)
		}
		if filter.KYCStatus != "" {
			query = query.Where("kyc_status = ?", filter.KYCStatus)
		}
		if filter.IsActive != nil {
			query = query.Where("is_active = ?", *filter.IsActive)
		}
		if filter.Search != "" {
			search := "%" + filter.Search + "%"
			query = query.Where("full_name ILIKE ? OR email ILIKE ?", search, search)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	allowedSorts := []string{"created_at", "full_name", "email", "kyc_status"}
	query = utils.ApplySort(query, params, allowedSorts)
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return users, total, nil
}

func (s *AdminService) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Applications").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

func (s *AdminService) UpdateKYCStatus(userID uuid.UUID, req *UpdateKYCStatusRequest) (*models.User, error) {
	if !req.Status.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "Invalid KYC status")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user.KYCStatus = req.Status
	if req.Notes != "" {
		if user.ProfileData == nil {
			user.ProfileData = make(models.JSONB)
		}
		user.ProfileData["kyc_review_notes"] = req.Notes
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

func (s *AdminService) SetUserActive(userID uuid.UUID, active bool) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user.IsActive = active
	if err := s.db.Save(&user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := s.db.Model(&models.User{}).Where("role = ?", models.UserRoleInvestor).Count(&stats.TotalUsers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.User{}).Where("kyc_status = ?", models.KYCStatusPending).Count(&stats.PendingKYC).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.IPO{}).Where("is_active = ?", true).Count(&stats.TotalIPOs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Open window: open_date <= now <= close_date and not cancelled.
	if err := s.db.Model(&models.IPO{}).
		Where("is_active = ? AND cancelled = ?", true, false).
		Where("open_date <= CURRENT_TIMESTAMP AND close_date >= CURRENT_TIMESTAMP").
		Count(&stats.OpenIPOs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&models.Application{}).Count(&stats.TotalApplications).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Application{}).Where("status = ?", models.ApplicationStatusPending).Count(&stats.PendingApplications).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var totalAmount struct{ Total float64 }
	if err := s.db.Model(&models.Application{}).
		Select("COALESCE(SUM(total_amount), 0) as total").
		Where("status NOT IN ?", []models.ApplicationStatus{models.ApplicationStatusRejected, models.ApplicationStatusRefunded}).
		Scan(&totalAmount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	stats.TotalAmountApplied = totalAmount.Total

	return stats, nil
}
