// Package handler exposes the admin HTTP surface of the assignment engine.
package handler

import (
	"net/http"

	"marketplace_backend/internal/assignment/service"
	"marketplace_backend/internal/assignment/transport"
	"marketplace_backend/platform/httpkit"
	"marketplace_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
}

func New(svc *service.Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, validate: validate}
}

// RegisterRoutes mounts the strategy config under /admin/assignment and the
// routing operations under /admin/services.
func (h *Handler) RegisterRoutes(assignment, services *gin.RouterGroup) {
	assignment.GET("/strategy", h.GetStrategy)
	assignment.POST("/strategy", h.UpdateStrategy)

	services.POST("/:id/assign", h.Assign)
	services.POST("/:id/assignments", h.AddToPortfolio)
	services.POST("/:id/assignments/:assignmentId/complete", h.Complete)
}

func (h *Handler) GetStrategy(c *gin.Context) {
	cfg, err := h.svc.GetStrategy(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, cfg)
}

func (h *Handler) UpdateStrategy(c *gin.Context) {
	var req transport.UpdateStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	cfg, err := h.svc.UpdateStrategy(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, cfg)
}

func (h *Handler) Assign(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	req := transport.AssignServiceRequest{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	assignment, err := h.svc.Assign(c.Request.Context(), serviceID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, statusFor(assignment.Created), assignment)
}

func (h *Handler) AddToPortfolio(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.AddToPortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	assignment, err := h.svc.AddToPortfolio(c.Request.Context(), serviceID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, statusFor(assignment.Created), assignment)
}

func (h *Handler) Complete(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("assignmentId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	assignment, err := h.svc.Complete(c.Request.Context(), assignmentID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, assignment)
}

func statusFor(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}
