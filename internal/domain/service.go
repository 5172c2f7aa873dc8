package domain

import "time"

type ServiceStatus string

const (
	ServiceDraft    ServiceStatus = "draft"
	ServicePending  ServiceStatus = "pending"
	ServiceApproved ServiceStatus = "approved"
	ServiceDisabled ServiceStatus = "disabled"
	ServiceRejected ServiceStatus = "rejected"
)

var ServiceStatuses = []ServiceStatus{ServiceDraft, ServicePending, ServiceApproved, ServiceDisabled, ServiceRejected}

func (s ServiceStatus) Valid() bool {
	for _, v := range ServiceStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Service is a marketplace listing. CategoryID, ProviderID and the *By fields
// are non-owning references that become NULL when the target is deleted.
type Service struct {
	ID            int64         `json:"id" gorm:"primaryKey"`
	Name          string        `json:"name" gorm:"not null"`
	Slug          string        `json:"slug" gorm:"uniqueIndex;not null"`
	Summary       string        `json:"summary"`
	Description   string        `json:"description"`
	CategoryID    *int64        `json:"category_id" gorm:"index"`
	ProviderID    *int64        `json:"provider_id" gorm:"index"`
	CreatedBy     *int64        `json:"created_by"`
	UpdatedBy     *int64        `json:"updated_by"`
	ApprovedBy    *int64        `json:"approved_by"`
	Status        ServiceStatus `json:"status" gorm:"type:varchar(16);not null;default:'draft';index"`
	ApprovalNotes string        `json:"approval_notes"`
	ApprovedAt    *time.Time    `json:"approved_at"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Category *ServiceCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Provider *ProviderProfile `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
}

func (Service) TableName() string { return "services" }

type ServiceCategory struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ServiceCategory) TableName() string { return "service_categories" }
