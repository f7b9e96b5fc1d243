// Package transport defines the request/response DTOs for the partner
// lifecycle.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// ConvertLeadRequest turns an open lead into a partner with a fresh
// application.
type ConvertLeadRequest struct {
	BusinessName    string   `json:"businessName" validate:"required,min=2,max=200"`
	PartnerType     string   `json:"partnerType" validate:"omitempty,oneof=personal agency"`
	BusinessDetails string   `json:"businessDetails" validate:"omitempty,max=4000"`
	Experience      string   `json:"experience" validate:"omitempty,max=4000"`
	Qualifications  string   `json:"qualifications" validate:"omitempty,max=4000"`
	PortfolioLinks  []string `json:"portfolioLinks" validate:"omitempty,max=20,dive,url"`
}

// AdvanceRequest names the status to advance to. Only the immediate
// successor of the current status is accepted.
type AdvanceRequest struct {
	TargetStatus string `json:"targetStatus" validate:"required,oneof=screening service_selection trial_period approved"`
}

// RejectApplicationRequest carries the mandatory rejection reason.
type RejectApplicationRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=2000"`
}

// ReinstateRequest names the status a suspended partner resumes at.
type ReinstateRequest struct {
	ResumeStatus string `json:"resumeStatus" validate:"required,oneof=pending screening service_selection trial_period approved"`
}

// BindUserRequest links an authenticated account to a partner.
type BindUserRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

// ListPartnersRequest carries paging and filtering for the admin partner
// table.
type ListPartnersRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=pending screening service_selection trial_period approved rejected suspended"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ApplicationResponse is the application read model.
type ApplicationResponse struct {
	ID              uuid.UUID  `json:"id"`
	PartnerID       uuid.UUID  `json:"partnerId"`
	Status          string     `json:"status"`
	PreviousStatus  string     `json:"previousStatus,omitempty"`
	BusinessDetails string     `json:"businessDetails,omitempty"`
	Experience      string     `json:"experience,omitempty"`
	Qualifications  string     `json:"qualifications,omitempty"`
	PortfolioLinks  []string   `json:"portfolioLinks"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	ApplicationDate time.Time  `json:"applicationDate"`
	ReviewDate      *time.Time `json:"reviewDate,omitempty"`
}

// PartnerResponse is the partner read model.
type PartnerResponse struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             *uuid.UUID `json:"userId,omitempty"`
	BusinessName       string     `json:"businessName"`
	ContactEmail       string     `json:"contactEmail"`
	PartnerType        string     `json:"partnerType"`
	Status             string     `json:"status"`
	AverageRating      float64    `json:"averageRating"`
	AvgResponseMinutes float64    `json:"avgResponseMinutes"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// ProgressStep is one stage of the lifecycle for the dashboard progress
// widget.
type ProgressStep struct {
	Status  string `json:"status"`
	Reached bool   `json:"reached"`
	Current bool   `json:"current"`
}

// ApplicationStatusResponse combines the application with the partner's
// lifecycle position.
type ApplicationStatusResponse struct {
	Application   ApplicationResponse `json:"application"`
	PartnerStatus string              `json:"partnerStatus"`
	ProgressSteps []ProgressStep      `json:"progressSteps"`
}

// ConvertLeadResponse returns the newly created partner and application.
type ConvertLeadResponse struct {
	Partner     PartnerResponse     `json:"partner"`
	Application ApplicationResponse `json:"application"`
}

// ListPartnersResponse is a paged collection of partners.
type ListPartnersResponse struct {
	Items      []PartnerResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}
