// Package transport defines the request/response DTOs for the assignment
// engine.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// UpdateStrategyRequest switches the process-wide assignment strategy.
// Weights only apply to the combined strategy; omitted weights keep their
// current values.
type UpdateStrategyRequest struct {
	Strategy       string   `json:"strategy" validate:"required,oneof=round_robin rating_based combined"`
	WeightRating   *float64 `json:"weightRating" validate:"omitempty,min=0,max=1"`
	WeightLoad     *float64 `json:"weightLoad" validate:"omitempty,min=0,max=1"`
	WeightResponse *float64 `json:"weightResponse" validate:"omitempty,min=0,max=1"`
}

// StrategyResponse is the current assignment configuration.
type StrategyResponse struct {
	Strategy       string    `json:"strategy"`
	WeightRating   float64   `json:"weightRating"`
	WeightLoad     float64   `json:"weightLoad"`
	WeightResponse float64   `json:"weightResponse"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AssignServiceRequest triggers strategy-driven routing of a service.
// Pool defaults to approved partners; "trial" routes among partners still in
// their trial period.
type AssignServiceRequest struct {
	Pool string `json:"pool" validate:"omitempty,oneof=approved trial"`
}

// AddToPortfolioRequest adds a service to a named partner's portfolio.
type AddToPortfolioRequest struct {
	PartnerID uuid.UUID `json:"partnerId" validate:"required"`
}

// AssignmentResponse is the service assignment read model. Created reports
// whether this call inserted the row or returned a pre-existing one.
type AssignmentResponse struct {
	ID             uuid.UUID  `json:"id"`
	ServiceID      uuid.UUID  `json:"serviceId"`
	PartnerID      uuid.UUID  `json:"partnerId"`
	Status         string     `json:"status"`
	AssignedDate   *time.Time `json:"assignedDate,omitempty"`
	CompletionDate *time.Time `json:"completionDate,omitempty"`
	CommissionRate float64    `json:"commissionRate"`
	CommissionType string     `json:"commissionType"`
	Created        bool       `json:"created"`
}
