// internal/services/notification_service.go
package services

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/ipo-portal-backend/internal/models"
)

// NotificationService records application lifecycle events for investors.
// Delivery is log-based for now; an email or push provider can be plugged
// in behind the same methods.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) ApplicationSubmitted(application *models.Application) {
	logrus.WithFields(logrus.Fields{
		"application_id":     application.ID,
		"application_number": application.ApplicationNumber,
		"user_id":            application.UserID,
		"ipo_id":             application.IPOID,
		"total_amount":       application.TotalAmount,
	}).Info("Application submitted")
}

func (s *NotificationService) ApplicationStatusChanged(application *models.Application) {
	logrus.WithFields(logrus.Fields{
		"application_id":     application.ID,
		"application_number": application.ApplicationNumber,
		"user_id":            application.UserID,
		"status":             application.Status,
		"payment_status":     application.PaymentStatus,
	}).Info("Application status changed")
}

// IPOCancelled notifies every investor with a live application against
// the offering.
func (s *NotificationService) IPOCancelled(ipo *models.IPO) {
	var affected int64
	s.db.Model(&models.Application{}).
		Where("ipo_id = ? AND status IN ?", ipo.ID,
			[]models.ApplicationStatus{models.ApplicationStatusPending, models.ApplicationStatusConfirmed}).
		Count(&affected)

	logrus.WithFields(logrus.Fields{
		"ipo_id":                ipo.ID,
		"symbol":                ipo.Symbol,
		"affected_applications": affected,
	}).Warn("IPO cancelled")
}
