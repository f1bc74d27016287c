// internal/services/stats_service.go
package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/ipo-portal-backend/internal/apperrors"
	"github.com/javajoker/ipo-portal-backend/internal/models"
)

// StatsService aggregates application and offering figures for the
// user dashboard and admin reporting screens.
type StatsService struct {
	db *gorm.DB
}

type StatusBucket struct {
	Status      models.ApplicationStatus `json:"status"`
	Count       int64                    `json:"count"`
	TotalAmount float64                  `json:"total_amount"`
}

type CategoryBucket struct {
	Category    models.ApplicationCategory `json:"category"`
	Count       int64                      `json:"count"`
	TotalAmount float64                    `json:"total_amount"`
}

type ApplicationStats struct {
	TotalApplications int64            `json:"total_applications"`
	TotalAmount       float64          `json:"total_amount"`
	ByStatus          []StatusBucket   `json:"by_status"`
	ByCategory        []CategoryBucket `json:"by_category"`
}

type SectorBucket struct {
	Sector models.Sector `json:"sector"`
	Count  int64         `json:"count"`
}

type IPOStats struct {
	TotalIPOs int64                      `json:"total_ipos"`
	ByStatus  map[models.IPOStatus]int64 `json:"by_status"`
	BySector  []SectorBucket             `json:"by_sector"`
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// UserApplicationStats summarises a single investor's applications.
func (s *StatsService) UserApplicationStats(userID uuid.UUID) (*ApplicationStats, error) {
	return s.applicationStats(s.db.Model(&models.Application{}).Where("user_id = ?", userID))
}

// GlobalApplicationStats summarises all applications, for admins.
func (s *StatsService) GlobalApplicationStats() (*ApplicationStats, error) {
	return s.applicationStats(s.db.Model(&models.Application{}))
}

func (s *StatsService) applicationStats(query *gorm.DB) (*ApplicationStats, error) {
	stats := &ApplicationStats{
		ByStatus:   []StatusBucket{},
		ByCategory: []CategoryBucket{},
	}

	session := query.Session(&gorm.Session{})

	var overall struct {
		Count int64
		Total float64
	}
	if err := session.Select("COUNT(*) as count, COALESCE(SUM(total_amount), 0) as total").Scan(&overall).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	stats.TotalApplications = overall.Count
	stats.TotalAmount = overall.Total

	if err := query.Session(&gorm.Session{}).
		Select("status, COUNT(*) as count, COALESCE(SUM(total_amount), 0) as total_amount").
		Group("status").
		Order("status").
		Scan(&stats.ByStatus).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := query.Session(&gorm.Session{}).
		Select("category, COUNT(*) as count, COALESCE(SUM(total_amount), 0) as total_amount").
		Group("category").
		Order("category").
		Scan(&stats.ByCategory).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return stats, nil
}

// IPOStatsAt counts active offerings by sector in SQL and by lifecycle
// status in Go, since status is derived from the three dates rather
// than stored.
func (s *StatsService) IPOStatsAt(now time.Time) (*IPOStats, error) {
	stats := &IPOStats{
		ByStatus: make(map[models.IPOStatus]int64),
		BySector: []SectorBucket{},
	}

	if err := s.db.Model(&models.IPO{}).Where("is_active = ?", true).Count(&stats.TotalIPOs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&models.IPO{}).
		Where("is_active = ?", true).
		Select("sector, COUNT(*) as count").
		Group("sector").
		Order("sector").
		Scan(&stats.BySector).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var ipos []models.IPO
	if err := s.db.Where("is_active = ?", true).Find(&ipos).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range ipos {
		stats.ByStatus[ipos[i].StatusAt(now)]++
	}

	return stats, nil
}
