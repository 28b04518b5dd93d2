package handler

import (
	"zayana-be/internal/product"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	BaseHandler
	products product.Service
}

func NewProductHandler(products product.Service) *ProductHandler {
	return &ProductHandler{products: products}
}

type listProductsQuery struct {
	Search     string `form:"search" binding:"max=100"`
	CategoryID *int64 `form:"category_id" binding:"omitempty,gt=0"`
	Limit      int    `form:"limit" binding:"omitempty,gte=1"`
	Page       int    `form:"page" binding:"omitempty,gte=1"`
}

type createProductRequest struct {
	Name        string           `json:"name" binding:"required,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Stock       int              `json:"stock" binding:"gte=0"`
	ImageURL    *string          `json:"image_url" binding:"omitempty,url"`
	CategoryID  *int64           `json:"category_id" binding:"omitempty,gt=0"`
}

type updateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" binding:"omitempty,gte=0"`
	ImageURL    *string          `json:"image_url" binding:"omitempty,url"`
	CategoryID  *int64           `json:"category_id" binding:"omitempty,gt=0"`
}

func (h *ProductHandler) List(c *gin.Context) {
	var q listProductsQuery
	if !h.bindQuery(c, &q) {
		return
	}

	res, err := h.products.List(c.Request.Context(), product.ListOptions{
		Search:     q.Search,
		CategoryID: q.CategoryID,
		Limit:      q.Limit,
		Page:       q.Page,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, res.Items, res.Total, res.Page, res.Limit)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	p, err := h.products.Create(c.Request.Context(), product.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req updateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	p, err := h.products.Update(c.Request.Context(), id, product.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
