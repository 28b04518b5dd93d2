package handler

import (
	"strconv"

	"zayana-be/internal/cart"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	BaseHandler
	carts cart.Service
}

func NewCartHandler(carts cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

type addToCartRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0,lte=2147483647"`
}

func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	d, err := h.carts.GetCartDetail(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

func (h *CartHandler) Add(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req addToCartRequest
	if !h.bindJSON(c, &req) {
		return
	}

	d, err := h.carts.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// Remove drops the line, or only ?quantity=n units of it.
func (h *CartHandler) Remove(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "productId")
	if !ok {
		return
	}

	var qty *int
	if raw, present := c.GetQuery("quantity"); present {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.BadRequest(c, "invalid quantity", map[string]any{"quantity": raw})
			return
		}
		qty = &n
	}

	d, err := h.carts.RemoveItem(c.Request.Context(), userID, productID, qty)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.carts.Clear(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
