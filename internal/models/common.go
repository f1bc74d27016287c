// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the ID client-side. A gen_random_uuid() column
// default would need postgres; sqlite cannot parse it in DDL.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	UserRoleInvestor UserRole = "user"
	UserRoleAdmin    UserRole = "admin"
)

type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusVerified KYCStatus = "verified"
	KYCStatusRejected KYCStatus = "rejected"
)

func (s KYCStatus) Valid() bool {
	switch s {
	case KYCStatusPending, KYCStatusVerified, KYCStatusRejected:
		return true
	}
	return false
}

type Sector string

const (
	SectorTechnology Sector = "technology"
	SectorFinance    Sector = "finance"
	SectorHealthcare Sector = "healthcare"
	SectorEnergy     Sector = "energy"
	SectorConsumer   Sector = "consumer"
	SectorIndustrial Sector = "industrial"
	SectorOther      Sector = "other"
)

func (s Sector) Valid() bool {
	switch s {
	case SectorTechnology, SectorFinance, SectorHealthcare, SectorEnergy,
		SectorConsumer, SectorIndustrial, SectorOther:
		return true
	}
	return false
}

type IPOStatus string

const (
	IPOStatusUpcoming  IPOStatus = "upcoming"
	IPOStatusOpen      IPOStatus = "open"
	IPOStatusClosed    IPOStatus = "closed"
	IPOStatusListed    IPOStatus = "listed"
	IPOStatusCancelled IPOStatus = "cancelled"
)

func (s IPOStatus) Valid() bool {
	switch s {
	case IPOStatusUpcoming, IPOStatusOpen, IPOStatusClosed,
		IPOStatusListed, IPOStatusCancelled:
		return true
	}
	return false
}

type ApplicationCategory string

const (
	CategoryRetail ApplicationCategory = "retail"
	CategoryHNI    ApplicationCategory = "hni"
	CategoryQIB    ApplicationCategory = "qib"
)

func (c ApplicationCategory) Valid() bool {
	switch c {
	case CategoryRetail, CategoryHNI, CategoryQIB:
		return true
	}
	return false
}

type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusConfirmed ApplicationStatus = "confirmed"
	ApplicationStatusAllocated ApplicationStatus = "allocated"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusRefunded  ApplicationStatus = "refunded"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusConfirmed,
		ApplicationStatusAllocated, ApplicationStatusRejected,
		ApplicationStatusRefunded:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusBlocked  PaymentStatus = "blocked"
	PaymentStatusDebited  PaymentStatus = "debited"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusBlocked, PaymentStatusDebited,
		PaymentStatusRefunded, PaymentStatusFailed:
		return true
	}
	return false
}

// BankDetails is embedded in users and snapshotted onto applications
// at submission time.
type BankDetails struct {
	AccountNumber string `json:"account_number" gorm:"size:30"`
	IFSCCode      string `json:"ifsc_code" gorm:"size:11"`
	BankName      string `json:"bank_name" gorm:"size:100"`
}
