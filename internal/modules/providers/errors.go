package providers

import "marketadmin/internal/pkg/apperror"

var ErrOwnerNotFound = apperror.Validation("Account does not exist", map[string]any{"user_id": "not_found"})
