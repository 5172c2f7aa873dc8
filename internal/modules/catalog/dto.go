package catalog

import (
	"time"

	"marketadmin/internal/domain"
)

// ---------- SERVICES ----------

type CreateServiceRequest struct {
	Name          string               `json:"name" validate:"required,max=200"`
	Slug          string               `json:"slug" validate:"max=220"`
	Summary       string               `json:"summary" validate:"max=255"`
	Description   string               `json:"description"`
	CategoryID    *int64               `json:"category_id" validate:"omitempty,gt=0"`
	ProviderID    *int64               `json:"provider_id" validate:"omitempty,gt=0"`
	Status        domain.ServiceStatus `json:"status"`
	ApprovalNotes string               `json:"approval_notes"`
}

// UpdateServiceRequest is a partial update. A zero category_id or provider_id detaches the listing.
type UpdateServiceRequest struct {
	Name          *string               `json:"name" validate:"omitempty,min=1,max=200"`
	Slug          *string               `json:"slug" validate:"omitempty,max=220"`
	Summary       *string               `json:"summary" validate:"omitempty,max=255"`
	Description   *string               `json:"description"`
	CategoryID    *int64                `json:"category_id" validate:"omitempty,gte=0"`
	ProviderID    *int64                `json:"provider_id" validate:"omitempty,gte=0"`
	Status        *domain.ServiceStatus `json:"status"`
	ApprovalNotes *string               `json:"approval_notes"`
}

type TransitionRequest struct {
	ApprovalNotes string `json:"approval_notes"`
}

type SetStatusRequest struct {
	Status        domain.ServiceStatus `json:"status" validate:"required"`
	ApprovalNotes string               `json:"approval_notes"`
}

type ServiceQuery struct {
	Search     string
	Status     domain.ServiceStatus
	CategoryID *int64
	ProviderID *int64
	Page       int
	Limit      int
}

type ServiceResponse struct {
	ID            int64                `json:"id"`
	Name          string               `json:"name"`
	Slug          string               `json:"slug"`
	Summary       string               `json:"summary"`
	Description   string               `json:"description"`
	CategoryID    *int64               `json:"category_id"`
	CategoryName  string               `json:"category_name,omitempty"`
	ProviderID    *int64               `json:"provider_id"`
	ProviderName  string               `json:"provider_name,omitempty"`
	Status        domain.ServiceStatus `json:"status"`
	ApprovalNotes string               `json:"approval_notes"`
	ApprovedBy    *int64               `json:"approved_by"`
	ApprovedAt    *time.Time           `json:"approved_at"`
	CreatedBy     *int64               `json:"created_by"`
	UpdatedBy     *int64               `json:"updated_by"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func NewServiceResponse(s *domain.Service) ServiceResponse {
	out := ServiceResponse{
		ID:            s.ID,
		Name:          s.Name,
		Slug:          s.Slug,
		Summary:       s.Summary,
		Description:   s.Description,
		CategoryID:    s.CategoryID,
		ProviderID:    s.ProviderID,
		Status:        s.Status,
		ApprovalNotes: s.ApprovalNotes,
		ApprovedBy:    s.ApprovedBy,
		ApprovedAt:    s.ApprovedAt,
		CreatedBy:     s.CreatedBy,
		UpdatedBy:     s.UpdatedBy,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.Category != nil {
		out.CategoryName = s.Category.Name
	}
	if s.Provider != nil {
		out.ProviderName = s.Provider.DisplayName
	}
	return out
}

func newServiceResponses(list []domain.Service) []ServiceResponse {
	out := make([]ServiceResponse, 0, len(list))
	for i := range list {
		out = append(out, NewServiceResponse(&list[i]))
	}
	return out
}

// ---------- CATEGORIES ----------

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Slug        string `json:"slug" validate:"max=140"`
	Description string `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Slug        *string `json:"slug" validate:"omitempty,max=140"`
	Description *string `json:"description"`
}

// ---------- STATS ----------

type Stats struct {
	PendingProviders int64                           `json:"pending_providers"`
	PendingServices  int64                           `json:"pending_services"`
	Providers        map[domain.ProviderStatus]int64 `json:"providers"`
	Services         map[domain.ServiceStatus]int64  `json:"services"`
	Accounts         map[domain.Role]int64           `json:"accounts"`
}
