package handlers

import (
	"net/http"
	"strconv"

	"github.com/aliyev12/vistashopverse/internal/product"
	"github.com/aliyev12/vistashopverse/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) ListProducts(c *gin.Context) {
	var opts product.QueryOptions

	if v := c.Query("search"); v != "" {
		opts.Search = utils.StrPtr(v)
	}
	if v := c.Query("category"); v != "" {
		opts.Category = utils.StrPtr(v)
	}
	opts.SortBy = c.Query("sort_by")
	opts.SortDir = c.Query("sort_dir")

	if v, err := strconv.ParseUint(c.Query("limit"), 10, 16); err == nil {
		limit := uint16(v)
		opts.Limit = &limit
	}
	if v, err := strconv.ParseUint(c.Query("page"), 10, 16); err == nil {
		page := uint16(v)
		opts.Page = &page
	}

	products, total, err := h.Products.ListProducts(c.Request.Context(), opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{
		"products": products,
		"total":    total,
	})
}

func (h *Handler) GetProductBySlug(c *gin.Context) {
	p, err := h.Products.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

type productRequest struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Price       string `json:"price" binding:"required"`
	Stock       int32  `json:"stock"`
	IsFeatured  bool   `json:"is_featured"`
}

func (r productRequest) toInput() (product.ProductInput, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return product.ProductInput{}, err
	}
	return product.ProductInput{
		Name:        r.Name,
		Category:    r.Category,
		Brand:       r.Brand,
		Description: r.Description,
		Image:       r.Image,
		Price:       price,
		Stock:       r.Stock,
		IsFeatured:  r.IsFeatured,
	}, nil
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid price")
		return
	}

	p, err := h.Products.CreateProduct(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid price")
		return
	}

	p, err := h.Products.UpdateProduct(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.Products.DeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"id": id})
}
