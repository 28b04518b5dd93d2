package handler

import (
	"net/http"
	"time"

	"zayana-be/internal/auth"
	"zayana-be/internal/user"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	BaseHandler
	users        user.Service
	tokenTTL     time.Duration
	secureCookie bool
}

func NewAuthHandler(users user.Service, tokenTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{users: users, tokenTTL: tokenTTL, secureCookie: secureCookie}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setTokenCookie(c, res.Token)
	h.Created(c, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setTokenCookie(c, res.Token)
	h.Success(c, res)
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.AccessTokenCookie, token, int(h.tokenTTL.Seconds()), "/", "", h.secureCookie, true)
}
