// internal/services/user_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/ipo-portal-backend/internal/apperrors"
	"github.com/javajoker/ipo-portal-backend/internal/models"
	"github.com/javajoker/ipo-portal-backend/internal/utils"
)

type UserService struct {
	db *gorm.DB
}

type UpdateProfileRequest struct {
	FullName    *string             `json:"full_name,omitempty" validate:"omitempty,max=100"`
	BankDetails *models.BankDetails `json:"bank_details,omitempty"`
	ProfileData models.JSONB        `json:"profile_data,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strong_password"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetProfile(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, err)
	}

	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.BankDetails != nil {
		if req.BankDetails.IFSCCode != "" {
			if err := utils.ValidateVar(req.BankDetails.IFSCCode, "ifsc"); err != nil {
				return nil, apperrors.WithMessage(apperrors.ErrValidation, "Invalid IFSC code")
			}
		}
		user.BankDetails = *req.BankDetails
	}
	if req.ProfileData != nil {
		if user.ProfileData == nil {
			user.ProfileData = make(models.JSONB)
		}
		for k, v := range req.ProfileData {
			user.ProfileData[k] = v
		}
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

func (s *UserService) ChangePassword(userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Wrap(apperrors.ErrValidation, err)
	}

	user, err := s.GetProfile(userID)
	if err != nil {
		return err
	}

	if err := user.CheckPassword(req.CurrentPassword); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidCredentials, "Current password is incorrect")
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Save(user).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RecordKYCDocument stores the uploaded document reference on the profile and
// moves KYC back to pending so an admin reviews the new document.
func (s *UserService) RecordKYCDocument(userID uuid.UUID, documentType, documentURL string) (*models.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if user.ProfileData == nil {
		user.ProfileData = make(models.JSONB)
	}
	documents, _ := user.ProfileData["kyc_documents"].(map[string]interface{})
	if documents == nil {
		documents = make(map[string]interface{})
	}
	documents[documentType] = documentURL
	user.ProfileData["kyc_documents"] = documents

	if user.KYCStatus == models.KYCStatusRejected {
		user.KYCStatus = models.KYCStatusPending
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}
