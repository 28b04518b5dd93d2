package category

import "zayana-be/internal/apperror"

var (
	// -- Validation & Input --
	ErrInvalidName = apperror.Validation("category name is required")

	// -- Resource State --
	ErrCategoryNotFound = apperror.NotFound("category not found")
	ErrCategoryExists   = apperror.Conflict("category name already exists")

	// -- Database & Operation Failures --
	ErrFailedGetCategory    = apperror.Storage("failed to get category", nil)
	ErrFailedSaveCategory   = apperror.Storage("failed to save category", nil)
	ErrFailedDeleteCategory = apperror.Storage("failed to delete category", nil)
)
