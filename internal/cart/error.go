package cart

import (
	"math"

	"zayana-be/internal/apperror"
)

// MaxQuantity is the largest quantity a cart line can hold.
const MaxQuantity = math.MaxInt32

var (
	// -- Validation & Input --
	ErrInvalidQuantity  = apperror.Validation("quantity must be greater than zero")
	ErrQuantityTooLarge = apperror.Validation("quantity exceeds the maximum per cart line")

	// -- Resource State --
	ErrProductNotFound  = apperror.NotFound("product not found")
	ErrCartNotFound     = apperror.NotFound("cart not found")
	ErrCartItemNotFound = apperror.NotFound("cart item not found")

	// -- Database & Operation Failures --
	ErrFailedGetCart    = apperror.Storage("failed to get cart", nil)
	ErrFailedCreateCart = apperror.Storage("failed to create cart", nil)
	ErrFailedGetItems   = apperror.Storage("failed to get cart items", nil)
	ErrFailedSaveItem   = apperror.Storage("failed to save cart item", nil)
	ErrFailedRemoveItem = apperror.Storage("failed to remove cart item", nil)
	ErrFailedClearCart  = apperror.Storage("failed to clear cart", nil)
)
