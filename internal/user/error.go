package user

import "zayana-be/internal/apperror"

const MinPasswordLength = 6

var (
	// -- Authentication/Authorization --
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, "invalid email or password")
	ErrForbidden          = apperror.New(apperror.KindForbidden, "you can only access your own account")

	// -- Validation & Input --
	ErrInvalidEmail    = apperror.Validation("a valid email is required")
	ErrInvalidPassword = apperror.Validation("password must be at least 6 characters")
	ErrEmptyUpdate     = apperror.Validation("no fields to update")

	// -- Resource State --
	ErrUserNotFound = apperror.NotFound("user not found")
	ErrEmailExists  = apperror.Conflict("email already registered")

	// -- Database & Operation Failures --
	ErrFailedGetUser    = apperror.Storage("failed to get user", nil)
	ErrFailedSaveUser   = apperror.Storage("failed to save user", nil)
	ErrFailedDeleteUser = apperror.Storage("failed to delete user", nil)
	ErrFailedIssueToken = apperror.Storage("failed to issue token", nil)
)
