package handler

import (
	"zayana-be/internal/user"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	BaseHandler
	users user.Service
}

func NewUserHandler(users user.Service) *UserHandler {
	return &UserHandler{users: users}
}

type updateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Password *string `json:"password" binding:"omitempty,min=6,max=72"`
}

func (h *UserHandler) Get(c *gin.Context) {
	principal, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	u, err := h.users.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, u)
}

func (h *UserHandler) Update(c *gin.Context) {
	principal, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	u, err := h.users.Update(c.Request.Context(), principal, id, user.UpdateInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, u)
}

func (h *UserHandler) Delete(c *gin.Context) {
	principal, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), principal, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
