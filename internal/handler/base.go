package handler

import (
	"errors"
	"net/http"
	"strconv"

	"zayana-be/internal/apperror"
	"zayana-be/internal/logger"
	"zayana-be/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error codes
const (
	ErrCodeValidation     = "ERR_VALIDATION"
	ErrCodeUnauthorized   = "ERR_UNAUTHORIZED"
	ErrCodeForbidden      = "ERR_FORBIDDEN"
	ErrCodeNotFound       = "ERR_NOT_FOUND"
	ErrCodeConflict       = "ERR_CONFLICT"
	ErrCodeEmptyCart      = "ERR_EMPTY_CART"
	ErrCodeProductMissing = "ERR_PRODUCT_MISSING"
	ErrCodeInternal       = "ERR_INTERNAL"
)

const internalMessage = "An unexpected error occurred"

// Response is the envelope of every JSON response.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type kindMapping struct {
	status int
	code   string
}

var kindMappings = map[apperror.Kind]kindMapping{
	apperror.KindValidation:     {http.StatusBadRequest, ErrCodeValidation},
	apperror.KindUnauthorized:   {http.StatusUnauthorized, ErrCodeUnauthorized},
	apperror.KindForbidden:      {http.StatusForbidden, ErrCodeForbidden},
	apperror.KindNotFound:       {http.StatusNotFound, ErrCodeNotFound},
	apperror.KindConflict:       {http.StatusConflict, ErrCodeConflict},
	apperror.KindEmptyCart:      {http.StatusBadRequest, ErrCodeEmptyCart},
	apperror.KindProductMissing: {http.StatusNotFound, ErrCodeProductMissing},
	apperror.KindStorage:        {http.StatusInternalServerError, ErrCodeInternal},
}

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func requestID(c *gin.Context) string {
	if id := c.GetString(logger.RequestIDHeader); id != "" {
		return id
	}
	return c.GetHeader(logger.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, limit int) {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Meta:    &Meta{Total: total, Page: page, Limit: limit, TotalPages: pages},
	})
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *BaseHandler) Error(c *gin.Context, status int, code, message string, details map[string]any) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID(c),
		},
	})
}

// BadRequest sends a 400 validation response
func (h *BaseHandler) BadRequest(c *gin.Context, message string, details map[string]any) {
	h.Error(c, http.StatusBadRequest, ErrCodeValidation, message, details)
}

// HandleError maps a classified error to its status and code. Storage
// and unclassified errors are logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		logger.FromCtx(c.Request.Context()).Error("unclassified error", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, ErrCodeInternal, internalMessage, nil)
		return
	}

	m, ok := kindMappings[appErr.Kind]
	if !ok {
		m = kindMappings[apperror.KindStorage]
	}

	if m.status >= http.StatusInternalServerError {
		logger.FromCtx(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	h.Error(c, m.status, m.code, appErr.Message, appErr.Details)
}

// currentUser returns the authenticated user id. RequireAuth guards every
// route that calls it.
func (h *BaseHandler) currentUser(c *gin.Context) (int64, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required", nil)
	}
	return id, ok
}

// pathID parses a positive integer path parameter.
func (h *BaseHandler) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, "invalid "+name, map[string]any{name: c.Param(name)})
		return 0, false
	}
	return id, true
}
