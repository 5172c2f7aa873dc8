package auth

import "marketadmin/internal/pkg/apperror"

var (
	ErrInvalidCredentials  = apperror.Unauthenticated("Invalid credentials.")
	ErrAccountDisabled     = apperror.Unauthenticated("Account is disabled.")
	ErrAdminRequired       = apperror.Forbidden("Administrator access required.")
	ErrMissingRefreshToken = apperror.Unauthenticated("Refresh token is required.")
	ErrInvalidRefreshToken = apperror.Unauthenticated("Refresh token is invalid or expired.")
	ErrRefreshTokenReused  = apperror.Unauthenticated("Refresh token reuse detected.")
	ErrRoleChangeViaMe     = apperror.Forbidden("You cannot change your own role.")
)
