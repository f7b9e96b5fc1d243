// Package handler exposes the admin HTTP surface of the trial tracker.
package handler

import (
	"net/http"

	"marketplace_backend/internal/trials/service"
	"marketplace_backend/internal/trials/transport"
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

// RegisterRoutes mounts partner-scoped trial routes on the partners group
// and trial-scoped routes on the trials group.
func (h *Handler) RegisterRoutes(partners, trials *gin.RouterGroup) {
	partners.GET("/:id/trials", h.ListByPartner)
	partners.POST("/:id/trials", h.Create)
	partners.POST("/:id/trials/evaluate", h.Evaluate)

	trials.POST("/:id/start", h.Start)
	trials.POST("/:id/outcome", h.RecordOutcome)
}

func (h *Handler) ListByPartner(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	trials, err := h.svc.ListByPartner(c.Request.Context(), partnerID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, trials)
}

func (h *Handler) Create(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.CreateTrialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	trial, err := h.svc.Create(c.Request.Context(), partnerID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	status := http.StatusOK
	if trial.Created {
		status = http.StatusCreated
	}
	httpkit.JSON(c, status, trial)
}

func (h *Handler) Evaluate(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.EvaluateReadiness(c.Request.Context(), partnerID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Start(c *gin.Context) {
	trialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	trial, err := h.svc.Start(c.Request.Context(), trialID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, trial)
}

func (h *Handler) RecordOutcome(c *gin.Context) {
	trialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.RecordOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	trial, err := h.svc.RecordOutcome(c.Request.Context(), trialID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, trial)
}
