package product

import "zayana-be/internal/apperror"

var (
	// -- Validation & Input --
	ErrInvalidName     = apperror.Validation("product name is required")
	ErrInvalidPrice    = apperror.Validation("price must be greater than zero")
	ErrInvalidStock    = apperror.Validation("stock must not be negative")
	ErrEmptyUpdate     = apperror.Validation("no fields to update")
	ErrUnknownCategory = apperror.Validation("category does not exist")

	// -- Resource State --
	ErrProductNotFound = apperror.NotFound("product not found")

	// -- Database & Operation Failures --
	ErrFailedGetProduct    = apperror.Storage("failed to get product", nil)
	ErrFailedListProducts  = apperror.Storage("failed to list products", nil)
	ErrFailedCreateProduct = apperror.Storage("failed to create product", nil)
	ErrFailedUpdateProduct = apperror.Storage("failed to update product", nil)
	ErrFailedDeleteProduct = apperror.Storage("failed to delete product", nil)
)
