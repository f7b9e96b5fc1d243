package handler

import (
	"net/http"

	"marketplace_backend/internal/leads/service"
	"marketplace_backend/internal/leads/transport"
	"marketplace_backend/platform/httpkit"
	"marketplace_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// PublicHandler handles the unauthenticated lead intake endpoint.
type PublicHandler struct {
	svc      *service.Service
	validate *validator.Validator
}

func NewPublicHandler(svc *service.Service, validate *validator.Validator) *PublicHandler {
	return &PublicHandler{svc: svc, validate: validate}
}

// RegisterRoutes registers the public intake route under /public/leads.
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
}

// Create accepts an inbound lead from the public registration form.
func (h *PublicHandler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, lead)
}
