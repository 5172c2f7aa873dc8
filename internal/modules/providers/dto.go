package providers

import (
	"time"

	"marketadmin/internal/domain"
)

type CreateRequest struct {
	UserID       int64                 `json:"user_id" validate:"required,gt=0"`
	DisplayName  string                `json:"display_name" validate:"required,max=150"`
	ContactEmail string                `json:"contact_email" validate:"omitempty,email"`
	PhoneNumber  string                `json:"phone_number" validate:"omitempty,phone"`
	Website      string                `json:"website" validate:"omitempty,url"`
	Description  string                `json:"description"`
	Address      string                `json:"address" validate:"max=255"`
	Status       domain.ProviderStatus `json:"status"`
	Notes        string                `json:"notes"`
}

type UpdateRequest struct {
	DisplayName  *string                `json:"display_name" validate:"omitempty,min=1,max=150"`
	ContactEmail *string                `json:"contact_email" validate:"omitempty,email"`
	PhoneNumber  *string                `json:"phone_number" validate:"omitempty,phone"`
	Website      *string                `json:"website" validate:"omitempty,url"`
	Description  *string                `json:"description"`
	Address      *string                `json:"address" validate:"omitempty,max=255"`
	Status       *domain.ProviderStatus `json:"status"`
	Notes        *string                `json:"notes"`
}

// TransitionRequest is the body of approve, disable and reject.
type TransitionRequest struct {
	Notes string `json:"notes"`
}

type SetStatusRequest struct {
	Status domain.ProviderStatus `json:"status" validate:"required"`
	Notes  string                `json:"notes"`
}

type OwnerResponse struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

type ProviderResponse struct {
	ID           int64                 `json:"id"`
	UserID       int64                 `json:"user_id"`
	User         *OwnerResponse        `json:"user,omitempty"`
	DisplayName  string                `json:"display_name"`
	ContactEmail string                `json:"contact_email"`
	PhoneNumber  string                `json:"phone_number"`
	Website      string                `json:"website"`
	Description  string                `json:"description"`
	Address      string                `json:"address"`
	Status       domain.ProviderStatus `json:"status"`
	ReviewNotes  string                `json:"review_notes"`
	ReviewedBy   *int64                `json:"reviewed_by"`
	ReviewedAt   *time.Time            `json:"reviewed_at"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func NewProviderResponse(p *domain.ProviderProfile) ProviderResponse {
	out := ProviderResponse{
		ID:           p.ID,
		UserID:       p.AccountID,
		DisplayName:  p.DisplayName,
		ContactEmail: p.ContactEmail,
		PhoneNumber:  p.PhoneNumber,
		Website:      p.Website,
		Description:  p.Description,
		Address:      p.Address,
		Status:       p.Status,
		ReviewNotes:  p.ReviewNotes,
		ReviewedBy:   p.ReviewedBy,
		ReviewedAt:   p.ReviewedAt,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if a := p.Account; a != nil {
		out.User = &OwnerResponse{ID: a.ID, Username: a.Username, Email: a.Email, Role: a.Role()}
	}
	return out
}

func newProviderResponses(list []domain.ProviderProfile) []ProviderResponse {
	out := make([]ProviderResponse, 0, len(list))
	for i := range list {
		out = append(out, NewProviderResponse(&list[i]))
	}
	return out
}
