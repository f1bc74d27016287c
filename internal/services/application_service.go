// internal/services/application_service.go
package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/javajoker/ipo-portal-backend/internal/apperrors"
	"github.com/javajoker/ipo-portal-backend/internal/config"
	"github.com/javajoker/ipo-portal-backend/internal/models"
	"github.com/javajoker/ipo-portal-backend/internal/utils"
)

// ApplicationService is the admission engine: it decides whether an
// application may be created or modified against an offering's current
// state and computes the derived fields. Every operation is a single
// synchronous check-and-write; under a concurrent duplicate apply the
// store's unique index on (user_id, ipo_id) is the only guarantee, and
// its violation is translated to ALREADY_APPLIED.
type ApplicationService struct {
	db            *gorm.DB
	cfg           *config.Config
	notifications *NotificationService
}

type ApplyRequest struct {
	IPOID         uuid.UUID `json:"ipo_id" validate:"required"`
	Quantity      int64     `json:"quantity" validate:"required,gt=0"`
	PricePerShare float64   `json:"price_per_share" validate:"required,gt=0"`
	PaymentMethod string    `json:"payment_method,omitempty" validate:"omitempty,max=50"`
}

type AmendRequest struct {
	Quantity      *int64   `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	PricePerShare *float64 `json:"price_per_share,omitempty" validate:"omitempty,gt=0"`
	PaymentMethod *string  `json:"payment_method,omitempty" validate:"omitempty,max=50"`
}

type AllocationDetails struct {
	SharesAllocated int64   `json:"shares_allocated" validate:"min=0"`
	AllocationPrice float64 `json:"allocation_price" validate:"min=0"`
	RefundAmount    float64 `json:"refund_amount" validate:"min=0"`
}

// AdminStatusUpdateRequest is the explicit tagged update type for the
// back-office escape hatch: a fixed set of optional fields, each
// validated against its own enum before persisting. Provided fields
// are applied directly with no state-machine legality check.
type AdminStatusUpdateRequest struct {
	Status            *models.ApplicationStatus `json:"status,omitempty"`
	PaymentStatus     *models.PaymentStatus     `json:"payment_status,omitempty"`
	AllocationDetails *AllocationDetails        `json:"allocation_details,omitempty"`
	Notes             *string                   `json:"notes,omitempty"`
}

type ApplicationFilter struct {
	utils.PaginationParams
	Status   *models.ApplicationStatus
	Category *models.ApplicationCategory
	IPOID    *uuid.UUID
	UserID   *uuid.UUID
}

func NewApplicationService(db *gorm.DB, cfg *config.Config, notifications *NotificationService) *ApplicationService {
	return &ApplicationService{
		db:            db,
		cfg:           cfg,
		notifications: notifications,
	}
}

// Apply validates a new bid against the offering's current state and
// persists it in pending state.
func (s *ApplicationService) Apply(userID uuid.UUID, req *ApplyRequest) (*models.Application, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var ipo models.IPO
	if err := s.db.First(&ipo, "id = ? AND is_active = ?", req.IPOID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIPONotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := time.Now()
	if !ipo.IsOpenAt(now) {
		return nil, apperrors.ErrIPONotOpen
	}

	if err := validateBid(&ipo, req.Quantity, req.PricePerShare); err != nil {
		return nil, err
	}

	// Fast pre-check for an existing application. The unique index
	// still backstops the race between this read and the insert.
	var existing models.Application
	err := s.db.Where("user_id = ? AND ipo_id = ?", userID, req.IPOID).First(&existing).Error
	if err == nil {
		return nil, apperrors.ErrAlreadyApplied
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	application := &models.Application{
		UserID:        userID,
		IPOID:         req.IPOID,
		Quantity:      req.Quantity,
		PricePerShare: req.PricePerShare,
		PaymentMethod: req.PaymentMethod,
		BankDetails:   user.BankDetails,
		Status:        models.ApplicationStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		SubmittedAt:   now,
	}
	application.ID = uuid.New()
	application.RecomputeTotal()
	application.Category = s.deriveCategory(application.TotalAmount)
	application.ApplicationNumber = models.NewApplicationNumber(now)
	application.BidID = models.NewBidID(application.ID)

	if err := s.db.Create(application).Error; err != nil {
		if isDuplicateKeyError(err) {
			// Lost the race against a concurrent apply for the same
			// (user, offering) pair.
			return nil, apperrors.Wrap(apperrors.ErrAlreadyApplied, err)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Preload("User").Preload("IPO").First(application, "id = ?", application.ID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	application.IPO.Refresh(now)

	go s.notifications.ApplicationSubmitted(application)

	return application, nil
}

// Amend merges the allowed fields into a pending application while the
// offering is still open, re-validating any changed price or quantity.
func (s *ApplicationService) Amend(applicationID, callerID uuid.UUID, req *AmendRequest) (*models.Application, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, err)
	}

	var application models.Application
	if err := s.db.Preload("IPO").First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if application.UserID != callerID {
		return nil, apperrors.ErrAccessDenied
	}

	if application.Status != models.ApplicationStatusPending {
		return nil, apperrors.ErrCannotUpdate
	}

	now := time.Now()
	if !application.IPO.IsOpenAt(now) {
		return nil, apperrors.ErrIPONotOpen
	}

	if req.Quantity != nil {
		application.Quantity = *req.Quantity
	}
	if req.PricePerShare != nil {
		application.PricePerShare = *req.PricePerShare
	}
	if req.PaymentMethod != nil {
		application.PaymentMethod = *req.PaymentMethod
	}

	if err := validateBid(&application.IPO, application.Quantity, application.PricePerShare); err != nil {
		return nil, err
	}

	application.RecomputeTotal()
	application.Category = s.deriveCategory(application.TotalAmount)
	application.ModifiedAt = &now

	if err := s.db.Save(&application).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	application.IPO.Refresh(now)
	return &application, nil
}

// Cancel is a logical cancellation: the application transitions to
// rejected with a note and is never deleted.
func (s *ApplicationService) Cancel(applicationID, callerID uuid.UUID) (*models.Application, error) {
	var application models.Application
	if err := s.db.First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if application.UserID != callerID {
		return nil, apperrors.ErrAccessDenied
	}

	if application.Status == models.ApplicationStatusAllocated ||
		application.Status == models.ApplicationStatusRefunded {
		return nil, apperrors.ErrCannotCancel
	}

	now := time.Now()
	application.Status = models.ApplicationStatusRejected
	application.Notes = "Cancelled by user"
	application.ModifiedAt = &now

	if err := s.db.Save(&application).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	go s.notifications.ApplicationStatusChanged(&application)

	return &application, nil
}

// AdminUpdateStatus applies any provided field directly after enum
// validation. Intentionally no business-rule gating: this is the
// documented back-office correction path.
func (s *ApplicationService) AdminUpdateStatus(applicationID uuid.UUID, req *AdminStatusUpdateRequest) (*models.Application, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "Invalid application status")
	}
	if req.PaymentStatus != nil && !req.PaymentStatus.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "Invalid payment status")
	}
	if req.AllocationDetails != nil {
		if err := utils.ValidateStruct(req.AllocationDetails); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrValidation, err)
		}
	}

	var application models.Application
	if err := s.db.Preload("User").Preload("IPO").First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if req.Status != nil {
		application.Status = *req.Status
	}
	if req.PaymentStatus != nil {
		application.PaymentStatus = *req.PaymentStatus
	}
	if req.AllocationDetails != nil {
		application.SharesAllocated = req.AllocationDetails.SharesAllocated
		application.AllocationPrice = req.AllocationDetails.AllocationPrice
		application.RefundAmount = req.AllocationDetails.RefundAmount
	}
	if req.Notes != nil {
		application.Notes = *req.Notes
	}

	now := time.Now()
	application.ModifiedAt = &now

	if err := s.db.Save(&application).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	application.IPO.Refresh(now)

	go s.notifications.ApplicationStatusChanged(&application)

	return &application, nil
}

// Get returns one application; only the owner or an admin may see it.
func (s *ApplicationService) Get(applicationID, callerID uuid.UUID, callerIsAdmin bool) (*models.Application, error) {
	var application models.Application
	if err := s.db.Preload("User").Preload("IPO").First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if application.UserID != callerID && !callerIsAdmin {
		return nil, apperrors.ErrAccessDenied
	}

	application.IPO.Refresh(time.Now())
	return &application, nil
}

// ListForUser returns the caller's applications, paginated.
func (s *ApplicationService) ListForUser(userID uuid.UUID, params utils.PaginationParams) ([]models.Application, int64, error) {
	query := s.db.Model(&models.Application{}).
		Where("user_id = ?", userID).
		Preload("IPO")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	allowedSortFields := []string{"created_at", "submitted_at", "total_amount", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var applications []models.Application
	if err := query.Find(&applications).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := time.Now()
	for i := range applications {
		applications[i].IPO.Refresh(now)
	}

	return applications, total, nil
}

// ListAll returns all applications matching the filter. Admin only at
// the routing layer.
func (s *ApplicationService) ListAll(filter ApplicationFilter) ([]models.Application, int64, error) {
	query := s.db.Model(&models.Application{}).
		Preload("User").Preload("IPO")

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.IPOID != nil {
		query = query.Where("ipo_id = ?", *filter.IPOID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	allowedSortFields := []string{"created_at", "submitted_at", "total_amount", "status", "category"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var applications []models.Application
	if err := query.Find(&applications).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := time.Now()
	for i := range applications {
		applications[i].IPO.Refresh(now)
	}

	return applications, total, nil
}

func (s *ApplicationService) deriveCategory(totalAmount float64) models.ApplicationCategory {
	if totalAmount > s.cfg.Investment.HNIThresholdAmount {
		return models.CategoryHNI
	}
	return models.CategoryRetail
}

// validateBid checks price and quantity against the offering's
// constraints. Violations reject the whole operation.
func validateBid(ipo *models.IPO, quantity int64, price float64) error {
	if price < ipo.PriceMin || price > ipo.PriceMax {
		return apperrors.ErrInvalidPriceRange
	}
	if quantity <= 0 || quantity%ipo.LotSize != 0 {
		return apperrors.ErrInvalidQuantity
	}
	return nil
}

// isDuplicateKeyError recognizes a unique-constraint violation from
// any of the supported drivers so it can be mapped to a domain error
// instead of leaking a storage error.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	// sqlite (test harness)
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
