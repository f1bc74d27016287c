// internal/services/ipo_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/ipo-portal-backend/internal/apperrors"
	"github.com/javajoker/ipo-portal-backend/internal/models"
	"github.com/javajoker/ipo-portal-backend/internal/utils"
)

type IPOService struct {
	db            *gorm.DB
	notifications *NotificationService
}

type CreateIPORequest struct {
	CompanyName  string        `json:"company_name" validate:"required,max=255"`
	Symbol       string        `json:"symbol" validate:"required,max=20,uppercase"`
	Sector       models.Sector `json:"sector" validate:"required"`
	Description  string        `json:"description,omitempty"`
	PriceMin     float64       `json:"price_min" validate:"required,gt=0"`
	PriceMax     float64       `json:"price_max" validate:"required,gt=0"`
	LotSize      int64         `json:"lot_size" validate:"required,gt=0"`
	TotalShares  int64         `json:"total_shares" validate:"required,gt=0"`
	RetailShares int64         `json:"retail_shares" validate:"required,gt=0"`
	OpenDate     time.Time     `json:"open_date" validate:"required"`
	CloseDate    time.Time     `json:"close_date" validate:"required"`
	ListingDate  time.Time     `json:"listing_date" validate:"required"`
}

type UpdateIPORequest struct {
	CompanyName        *string        `json:"company_name,omitempty" validate:"omitempty,max=255"`
	Sector             *models.Sector `json:"sector,omitempty"`
	Description        *string        `json:"description,omitempty"`
	PriceMin           *float64       `json:"price_min,omitempty" validate:"omitempty,gt=0"`
	PriceMax           *float64       `json:"price_max,omitempty" validate:"omitempty,gt=0"`
	LotSize            *int64         `json:"lot_size,omitempty" validate:"omitempty,gt=0"`
	TotalShares        *int64         `json:"total_shares,omitempty" validate:"omitempty,gt=0"`
	RetailShares       *int64         `json:"retail_shares,omitempty" validate:"omitempty,gt=0"`
	OpenDate           *time.Time     `json:"open_date,omitempty"`
	CloseDate          *time.Time     `json:"close_date,omitempty"`
	ListingDate        *time.Time     `json:"listing_date,omitempty"`
	SubscriptionRetail *float64       `json:"subscription_retail,omitempty" validate:"omitempty,min=0"`
	SubscriptionHNI    *float64       `json:"subscription_hni,omitempty" validate:"omitempty,min=0"`
	SubscriptionQIB    *float64       `json:"subscription_qib,omitempty" validate:"omitempty,min=0"`
	GreyMarketPremium  *float64       `json:"grey_market_premium,omitempty"`
}

type IPOFilter struct {
	utils.PaginationParams
	Sector *models.Sector
	Status *models.IPOStatus
}

func NewIPOService(db *gorm.DB, notifications *NotificationService) *IPOService {
	return &IPOService{
		db:            db,
		notifications: notifications,
	}
}

func (s *IPOService) Create(req *CreateIPORequest) (*models.IPO, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, err)
	}

	if !req.Sector.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "Invalid sector")
	}

	ipo := &models.IPO{
		CompanyName:  req.CompanyName,
		Symbol:       req.Symbol,
		Sector:       req.Sector,
		Description:  req.Description,
		PriceMin:     req.PriceMin,
		PriceMax:     req.PriceMax,
		LotSize:      req.LotSize,
		TotalShares:  req.TotalShares,
		RetailShares: req.RetailShares,
		OpenDate:     req.OpenDate,
		CloseDate:    req.CloseDate,
		ListingDate:  req.ListingDate,
		IsActive:     true,
	}

	if err := validateIPOInvariants(ipo); err != nil {
		return nil, err
	}

	if err := s.db.Create(ipo).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, apperrors.Wrap(
				apperrors.WithMessage(apperrors.ErrDuplicateField, "An IPO with this symbol already exists"), err)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ipo.Refresh(time.Now())
	return ipo, nil
}

func (s *IPOService) Update(id uuid.UUID, req *UpdateIPORequest) (*models.IPO, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, err)
	}

	ipo, err := s.find(id)
	if err != nil {
		return nil, err
	}

	if req.CompanyName != nil {
		ipo.CompanyName = *req.CompanyName
	}
	if req.Sector != nil {
		if !req.Sector.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, "Invalid sector")
		}
		ipo.Sector = *req.Sector
	}
	if req.Description != nil {
		ipo.Description = *req.Description
	}
	if req.PriceMin != nil {
		ipo.PriceMin = *req.PriceMin
	}
	if req.PriceMax != nil {
		ipo.PriceMax = *req.PriceMax
	}
	if req.LotSize != nil {
		ipo.LotSize = *req.LotSize
	}
	if req.TotalShares != nil {
		ipo.TotalShares = *req.TotalShares
	}
	if req.RetailShares != nil {
		ipo.RetailShares = *req.RetailShares
	}
	if req.OpenDate != nil {
		ipo.OpenDate = *req.OpenDate
	}
	if req.CloseDate != nil {
		ipo.CloseDate = *req.CloseDate
	}
	if req.ListingDate != nil {
		ipo.ListingDate = *req.ListingDate
	}
	if req.SubscriptionRetail != nil {
		ipo.SubscriptionRetail = *req.SubscriptionRetail
	}
	if req.SubscriptionHNI != nil {
		ipo.SubscriptionHNI = *req.SubscriptionHNI
	}
	if req.SubscriptionQIB != nil {
		ipo.SubscriptionQIB = *req.SubscriptionQIB
	}
	if req.GreyMarketPremium != nil {
		ipo.GreyMarketPremium = *req.GreyMarketPremium
	}

	if err := validateIPOInvariants(ipo); err != nil {
		return nil, err
	}

	if err := s.db.Save(ipo).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ipo.Refresh(time.Now())
	return ipo, nil
}

// Cancel sets the sticky cancelled override. Only another admin action
// can clear it.
func (s *IPOService) Cancel(id uuid.UUID) (*models.IPO, error) {
	ipo, err := s.find(id)
	if err != nil {
		return nil, err
	}

	ipo.Cancelled = true
	if err := s.db.Save(ipo).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	go s.notifications.IPOCancelled(ipo)

	ipo.Refresh(time.Now())
	return ipo, nil
}

// Delete soft-deletes via the active flag; applications against the
// offering are retained.
func (s *IPOService) Delete(id uuid.UUID) error {
	ipo, err := s.find(id)
	if err != nil {
		return err
	}

	ipo.IsActive = false
	if err := s.db.Save(ipo).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *IPOService) Get(id uuid.UUID) (*models.IPO, error) {
	ipo, err := s.find(id)
	if err != nil {
		return nil, err
	}
	ipo.Refresh(time.Now())
	return ipo, nil
}

// List returns active offerings matching the filter. A status filter
// is translated into conditions over the date windows so pagination
// stays correct; the conditions mirror StatusAt exactly.
func (s *IPOService) List(filter IPOFilter) ([]models.IPO, int64, error) {
	query := s.db.Model(&models.IPO{}).Where("is_active = ?", true)

	if filter.Sector != nil {
		query = query.Where("sector = ?", *filter.Sector)
	}

	if filter.Status != nil {
		now := time.Now()
		switch *filter.Status {
		case models.IPOStatusCancelled:
			query = query.Where("cancelled = ?", true)
		case models.IPOStatusUpcoming:
			query = query.Where("cancelled = ? AND open_date > ?", false, now)
		case models.IPOStatusOpen:
			query = query.Where("cancelled = ? AND open_date <= ? AND close_date >= ?", false, now, now)
		case models.IPOStatusClosed:
			query = query.Where("cancelled = ? AND close_date < ? AND listing_date > ?", false, now, now)
		case models.IPOStatusListed:
			query = query.Where("cancelled = ? AND listing_date <= ?", false, now)
		default:
			return nil, 0, apperrors.WithMessage(apperrors.ErrValidation, "Invalid status filter")
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	allowedSortFields := []string{"created_at", "open_date", "close_date", "listing_date", "company_name"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var ipos []models.IPO
	if err := query.Find(&ipos).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := time.Now()
	for i := range ipos {
		ipos[i].Refresh(now)
	}

	return ipos, total, nil
}

func (s *IPOService) find(id uuid.UUID) (*models.IPO, error) {
	var ipo models.IPO
	if err := s.db.First(&ipo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIPONotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &ipo, nil
}

func validateIPOInvariants(ipo *models.IPO) error {
	if ipo.PriceMin >= ipo.PriceMax {
		return apperrors.WithMessage(apperrors.ErrValidation, "Price band minimum must be below maximum")
	}
	if ipo.LotSize <= 0 {
		return apperrors.WithMessage(apperrors.ErrValidation, "Lot size must be positive")
	}
	if ipo.RetailShares > ipo.TotalShares {
		return apperrors.WithMessage(apperrors.ErrValidation, "Retail shares cannot exceed total shares")
	}
	if !ipo.ValidatesDates() {
		return apperrors.WithMessage(apperrors.ErrValidation, "Dates must satisfy open < close < listing")
	}
	return nil
}
