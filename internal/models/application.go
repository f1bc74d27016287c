// internal/models/application.go
package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Application is one user's bid against one offering. The composite
// unique index on (user_id, ipo_id) is the sole correctness mechanism
// for concurrent duplicate applies; there is no application-level
// locking.
type Application struct {
	BaseModel
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_applications_user_ipo"`
	// The default naming strategy would map IPOID to ip_o_id.
	IPOID uuid.UUID `json:"ipo_id" gorm:"column:ipo_id;type:uuid;not null;uniqueIndex:idx_applications_user_ipo"`

	Category      ApplicationCategory `json:"category" gorm:"type:varchar(10);not null;index"`
	Quantity      int64               `json:"quantity" gorm:"not null"`
	PricePerShare float64             `json:"price_per_share" gorm:"not null"`
	TotalAmount   float64             `json:"total_amount" gorm:"not null"`

	PaymentMethod string      `json:"payment_method" gorm:"size:50"`
	BankDetails   BankDetails `json:"bank_details" gorm:"embedded;embeddedPrefix:bank_"`

	Status        ApplicationStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentStatus PaymentStatus     `json:"payment_status" gorm:"type:varchar(20);default:'pending';index"`

	SharesAllocated int64   `json:"shares_allocated" gorm:"default:0"`
	AllocationPrice float64 `json:"allocation_price" gorm:"default:0"`
	RefundAmount    float64 `json:"refund_amount" gorm:"default:0"`

	ApplicationNumber string `json:"application_number" gorm:"uniqueIndex;size:30;not null"`
	BidID             string `json:"bid_id" gorm:"uniqueIndex;size:20;not null"`

	Notes       string     `json:"notes,omitempty" gorm:"type:text"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ModifiedAt  *time.Time `json:"modified_at"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	IPO  IPO  `json:"ipo,omitempty" gorm:"foreignKey:IPOID"`
}

// RecomputeTotal derives the total amount from its two source fields.
// Caller-supplied totals are never trusted.
func (a *Application) RecomputeTotal() {
	a.TotalAmount = float64(a.Quantity) * a.PricePerShare
}

// NewApplicationNumber builds a human-readable application number of
// the form IPO<epoch-ms><3-digit-random>.
func NewApplicationNumber(now time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	suffix := int64(0)
	if err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("IPO%d%03d", now.UnixMilli(), suffix)
}

// NewBidID derives the bid identifier from the application's primary
// key: BID followed by the last 12 hex digits, uppercased.
func NewBidID(id uuid.UUID) string {
	hex := strings.ReplaceAll(id.String(), "-", "")
	return "BID" + strings.ToUpper(hex[len(hex)-12:])
}
