// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	FullName        string      `json:"full_name" gorm:"size:100;not null"`
	Email           string      `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash    string      `json:"-" gorm:"size:255;not null"`
	Role            UserRole    `json:"role" gorm:"type:varchar(20);default:'user'"`
	KYCStatus       KYCStatus   `json:"kyc_status" gorm:"type:varchar(20);default:'pending';index"`
	PANNumber       string      `json:"pan_number" gorm:"uniqueIndex;size:10"`
	BankDetails     BankDetails `json:"bank_details" gorm:"embedded;embeddedPrefix:bank_"`
	IsActive        bool        `json:"is_active" gorm:"default:true"`
	// ProfileData holds verification and reset tokens alongside KYC
	// bookkeeping; it stays off the wire.
	ProfileData     JSONB      `json:"-" gorm:"type:jsonb"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	LastLoginAt     *time.Time `json:"last_login_at"`

	// Relationships
	Applications []Application `json:"applications,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) IsEmailVerified() bool {
	return u.EmailVerifiedAt != nil
}
