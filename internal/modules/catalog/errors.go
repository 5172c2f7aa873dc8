package catalog

import "marketadmin/internal/pkg/apperror"

var (
	ErrSlugTaken        = apperror.Conflict("A service with this slug already exists", map[string]any{"slug": "taken"})
	ErrEmptySlug        = apperror.Validation("Slug cannot be derived from the name", map[string]any{"slug": "required"})
	ErrCategoryNotFound = apperror.Validation("Category does not exist", map[string]any{"category_id": "not_found"})
	ErrProviderNotFound = apperror.Validation("Provider does not exist", map[string]any{"provider_id": "not_found"})
)
