package accounts

import (
	"time"

	"marketadmin/internal/domain"
)

type ListQuery struct {
	Search   string
	Role     domain.Role
	IsActive *bool
	Page     int
	Limit    int
}

type CreateRequest struct {
	Username     string      `json:"username" validate:"required,min=3,max=150"`
	Email        string      `json:"email" validate:"required,email"`
	Password     string      `json:"password" validate:"required,min=10,max=128"`
	FirstName    string      `json:"first_name" validate:"max=150"`
	LastName     string      `json:"last_name" validate:"max=150"`
	IsActive     *bool       `json:"is_active"`
	Role         domain.Role `json:"role" validate:"omitempty,role"`
	PhoneNumber  string      `json:"phone_number" validate:"omitempty,phone"`
	JobTitle     string      `json:"job_title" validate:"max=120"`
	Organisation string      `json:"organisation" validate:"max=120"`
	Notes        string      `json:"notes"`
}

// UpdateRequest is a partial update; nil fields are left untouched.
type UpdateRequest struct {
	Username     *string      `json:"username" validate:"omitempty,min=3,max=150"`
	Email        *string      `json:"email" validate:"omitempty,email"`
	Password     *string      `json:"password" validate:"omitempty,min=10,max=128"`
	FirstName    *string      `json:"first_name" validate:"omitempty,max=150"`
	LastName     *string      `json:"last_name" validate:"omitempty,max=150"`
	IsActive     *bool        `json:"is_active"`
	Role         *domain.Role `json:"role" validate:"omitempty,role"`
	PhoneNumber  *string      `json:"phone_number" validate:"omitempty,phone"`
	JobTitle     *string      `json:"job_title" validate:"omitempty,max=120"`
	Organisation *string      `json:"organisation" validate:"omitempty,max=120"`
	Notes        *string      `json:"notes"`
}

// requestedRole is the role carried by the payload, empty when absent.
func (r UpdateRequest) requestedRole() domain.Role {
	if r.Role == nil {
		return ""
	}
	return *r.Role
}

// AccountResponse flattens an account and its profile.
type AccountResponse struct {
	ID           int64       `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	IsActive     bool        `json:"is_active"`
	IsStaff      bool        `json:"is_staff"`
	IsSuperuser  bool        `json:"is_superuser"`
	DateJoined   time.Time   `json:"date_joined"`
	LastLogin    *time.Time  `json:"last_login"`
	Role         domain.Role `json:"role"`
	PhoneNumber  string      `json:"phone_number"`
	JobTitle     string      `json:"job_title"`
	Organisation string      `json:"organisation"`
	Notes        string      `json:"notes"`
}

func NewAccountResponse(a *domain.Account) AccountResponse {
	out := AccountResponse{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		IsActive:    a.IsActive,
		IsStaff:     a.IsStaff,
		IsSuperuser: a.IsSuperuser,
		DateJoined:  a.DateJoined,
		LastLogin:   a.LastLogin,
	}
	if p := a.Profile; p != nil {
		out.Role = p.Role
		out.PhoneNumber = p.PhoneNumber
		out.JobTitle = p.JobTitle
		out.Organisation = p.Organisation
		out.Notes = p.Notes
	}
	return out
}

func newAccountResponses(list []domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(list))
	for i := range list {
		out = append(out, NewAccountResponse(&list[i]))
	}
	return out
}
