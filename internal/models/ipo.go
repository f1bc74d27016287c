// internal/models/ipo.go
package models

import (
	"time"
)

// IPO describes one offering. Status is not a stored column: it is
// derived from the three dates at read time, with the Cancelled flag
// as a sticky admin override.
type IPO struct {
	BaseModel
	CompanyName  string  `json:"company_name" gorm:"size:255;not null"`
	Symbol       string  `json:"symbol" gorm:"uniqueIndex;size:20;not null"`
	Sector       Sector  `json:"sector" gorm:"type:varchar(20);not null;index"`
	Description  string  `json:"description,omitempty" gorm:"type:text"`
	PriceMin     float64 `json:"price_min" gorm:"not null"`
	PriceMax     float64 `json:"price_max" gorm:"not null"`
	LotSize      int64   `json:"lot_size" gorm:"not null"`
	TotalShares  int64   `json:"total_shares" gorm:"not null"`
	RetailShares int64   `json:"retail_shares" gorm:"not null"`

	OpenDate    time.Time `json:"open_date" gorm:"not null;index"`
	CloseDate   time.Time `json:"close_date" gorm:"not null;index"`
	ListingDate time.Time `json:"listing_date" gorm:"not null"`

	Cancelled bool `json:"cancelled" gorm:"default:false"`

	SubscriptionRetail float64 `json:"subscription_retail" gorm:"default:0"`
	SubscriptionHNI    float64 `json:"subscription_hni" gorm:"default:0"`
	SubscriptionQIB    float64 `json:"subscription_qib" gorm:"default:0"`
	GreyMarketPremium  float64 `json:"grey_market_premium" gorm:"default:0"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	// Status is computed by StatusAt and populated before the record
	// is returned to callers. Never persisted.
	Status IPOStatus `json:"status" gorm:"-"`

	// Relationships
	Applications []Application `json:"applications,omitempty" gorm:"foreignKey:IPOID"`
}

// TableName overrides the default naming strategy, which would
// pluralize IPO to ip_os.
func (IPO) TableName() string {
	return "ipos"
}

// StatusAt derives the offering lifecycle status at the given instant.
// Both window boundaries are inclusive for the open state.
func (i *IPO) StatusAt(now time.Time) IPOStatus {
	if i.Cancelled {
		return IPOStatusCancelled
	}
	switch {
	case now.Before(i.OpenDate):
		return IPOStatusUpcoming
	case !now.After(i.CloseDate):
		return IPOStatusOpen
	case now.Before(i.ListingDate):
		return IPOStatusClosed
	default:
		return IPOStatusListed
	}
}

// IsOpenAt reports whether the offering accepts new or amended
// applications at the given instant.
func (i *IPO) IsOpenAt(now time.Time) bool {
	return i.StatusAt(now) == IPOStatusOpen
}

// Refresh populates the derived Status field.
func (i *IPO) Refresh(now time.Time) *IPO {
	i.Status = i.StatusAt(now)
	return i
}

// ValidatesDates reports whether openDate < closeDate < listingDate.
func (i *IPO) ValidatesDates() bool {
	return i.OpenDate.Before(i.CloseDate) && i.CloseDate.Before(i.ListingDate)
}
