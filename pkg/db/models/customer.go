package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is keyed by phone number; every order submission overwrites the row.
type Customer struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	Phone          string    `gorm:"column:phone;not null;uniqueIndex"`
	Email          string    `gorm:"column:email;not null;uniqueIndex"`
	HeardFrom      *string   `gorm:"column:heard_from"`
	ReferralNames  *string   `gorm:"column:referral_names"`
	ReferralEmails *string   `gorm:"column:referral_emails"`
	EmailOptIn     bool      `gorm:"column:email_optin;not null;default:true"`
	SMSOptIn       bool      `gorm:"column:sms_optin;not null;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Customer) TableName() string { return "customers" }
