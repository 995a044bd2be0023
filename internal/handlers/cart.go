package handlers

import (
	"net/http"

	"github.com/aliyev12/vistashopverse/internal/cart"

	"github.com/gin-gonic/gin"
)

type cartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Qty       int32  `json:"qty" binding:"required"`
}

func (h *Handler) GetCart(c *gin.Context) {
	crt, err := h.Carts.GetCart(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// No cart yet reads as an empty cart, not an error.
	if crt == nil {
		respondOK(c, gin.H{"items": []cart.LineItem{}})
		return
	}

	respondOK(c, crt)
}

func (h *Handler) AddCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	crt, err := h.Carts.AddItem(c.Request.Context(), cart.AddItemParams{
		ProductID: req.ProductID,
		Qty:       req.Qty,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, crt)
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req struct {
		Qty int32 `json:"qty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	crt, err := h.Carts.UpdateItemQty(c.Request.Context(), cart.UpdateQtyParams{
		ProductID: c.Param("productId"),
		Qty:       req.Qty,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if crt == nil {
		respondOK(c, gin.H{"items": []cart.LineItem{}})
		return
	}
	respondOK(c, crt)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	crt, err := h.Carts.RemoveItem(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if crt == nil {
		respondOK(c, gin.H{"items": []cart.LineItem{}})
		return
	}
	respondOK(c, crt)
}
