package handlers

import (
	"net/http"

	"github.com/aliyev12/vistashopverse/internal/user"
	"github.com/aliyev12/vistashopverse/internal/utils"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    uint   `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func newAuthResponse(token string, u user.User) authResponse {
	var res authResponse
	res.Token = token
	res.User.ID = u.ID
	res.User.Name = u.Name
	res.User.Email = u.Email
	res.User.Role = string(u.Role)
	return res
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	token, u, err := h.Users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, newAuthResponse(token, u))
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	token, u, err := h.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, newAuthResponse(token, u))
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c.Request.Context())
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthenticated")
		return
	}

	u, err := h.Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{
		"id":             u.ID,
		"name":           u.Name,
		"email":          u.Email,
		"role":           u.Role,
		"address":        u.Address,
		"payment_method": u.PaymentMethod,
	})
}

func (h *Handler) SaveAddress(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c.Request.Context())
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var addr user.ShippingAddress
	if err := c.ShouldBindJSON(&addr); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Users.SaveAddress(c.Request.Context(), userID, addr); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, addr)
}

func (h *Handler) SavePaymentMethod(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c.Request.Context())
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req struct {
		PaymentMethod string `json:"payment_method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Users.SavePaymentMethod(c.Request.Context(), userID, req.PaymentMethod); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"payment_method": req.PaymentMethod})
}
