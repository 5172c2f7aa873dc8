package domain

import "time"

type ProviderStatus string

const (
	ProviderPending  ProviderStatus = "pending"
	ProviderApproved ProviderStatus = "approved"
	ProviderDisabled ProviderStatus = "disabled"
	ProviderRejected ProviderStatus = "rejected"
)

var ProviderStatuses = []ProviderStatus{ProviderPending, ProviderApproved, ProviderDisabled, ProviderRejected}

func (s ProviderStatus) Valid() bool {
	for _, v := range ProviderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ProviderProfile is the vetting record of a provider. ReviewedBy is a weak
// reference to the reviewing account and is nulled when that account goes away.
type ProviderProfile struct {
	ID           int64          `json:"id" gorm:"primaryKey"`
	AccountID    int64          `json:"account_id" gorm:"uniqueIndex;not null"`
	DisplayName  string         `json:"display_name" gorm:"not null"`
	ContactEmail string         `json:"contact_email"`
	PhoneNumber  string         `json:"phone_number"`
	Website      string         `json:"website"`
	Description  string         `json:"description"`
	Address      string         `json:"address"`
	Status       ProviderStatus `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	ReviewNotes  string         `json:"review_notes"`
	ReviewedBy   *int64         `json:"reviewed_by"`
	ReviewedAt   *time.Time     `json:"reviewed_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	Account *Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

func (ProviderProfile) TableName() string { return "provider_profiles" }
