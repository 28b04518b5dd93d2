package order

import "zayana-be/internal/apperror"

var (
	// -- Validation & Input --
	ErrInvalidStatus = apperror.Validation("invalid order status")

	// -- Resource State --
	ErrEmptyCart         = apperror.New(apperror.KindEmptyCart, "cart is empty")
	ErrProductMissing    = apperror.New(apperror.KindProductMissing, "product in cart no longer exists")
	ErrOrderNotFound     = apperror.NotFound("order not found")
	ErrInvalidTransition = apperror.Conflict("order status transition not allowed")

	// -- Database & Operation Failures --
	ErrFailedCreateOrder = apperror.Storage("failed to create order", nil)
	ErrFailedGetOrders   = apperror.Storage("failed to get orders", nil)
	ErrFailedUpdateOrder = apperror.Storage("failed to update order", nil)
)
