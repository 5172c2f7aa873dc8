package auth

import "marketadmin/internal/modules/accounts"

type LoginRequest struct {
	// Login is a username or an email address.
	Login    string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token when it is not sent as a cookie.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// UpdateMeRequest holds the fields an admin may change on their own account.
// Role is accepted only to be refused.
type UpdateMeRequest struct {
	FirstName    *string `json:"first_name" validate:"omitempty,max=150"`
	LastName     *string `json:"last_name" validate:"omitempty,max=150"`
	Email        *string `json:"email" validate:"omitempty,email"`
	PhoneNumber  *string `json:"phone_number" validate:"omitempty,phone"`
	JobTitle     *string `json:"job_title" validate:"omitempty,max=120"`
	Organisation *string `json:"organisation" validate:"omitempty,max=120"`
	Role         *string `json:"role"`
}

type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type SessionResponse struct {
	User      accounts.AccountResponse `json:"user"`
	Tokens    TokenPair                `json:"tokens"`
	CSRFToken string                   `json:"csrfToken"`
}
