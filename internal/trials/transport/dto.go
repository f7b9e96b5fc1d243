// Package transport defines the request/response DTOs for the trial
// evaluation tracker.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateTrialRequest adds one trial service to a partner under evaluation.
type CreateTrialRequest struct {
	ServiceID uuid.UUID `json:"serviceId" validate:"required"`
}

// RecordOutcomeRequest closes an in-progress trial. OnTimeDelivery is a
// pointer so an explicit false survives binding.
type RecordOutcomeRequest struct {
	QualityRating  int    `json:"qualityRating" validate:"required,min=1,max=5"`
	OnTimeDelivery *bool  `json:"onTimeDelivery" validate:"required"`
	ResponseRating *int   `json:"responseRating" validate:"omitempty,min=1,max=5"`
	Feedback       string `json:"feedback" validate:"omitempty,max=4000"`
}

// TrialResponse is the trial service read model. Created reports whether the
// add inserted a new row or returned an existing one.
type TrialResponse struct {
	ID             uuid.UUID `json:"id"`
	PartnerID      uuid.UUID `json:"partnerId"`
	ServiceID      uuid.UUID `json:"serviceId"`
	Status         string    `json:"status"`
	QualityRating  *int      `json:"qualityRating,omitempty"`
	OnTimeDelivery *bool     `json:"onTimeDelivery,omitempty"`
	ResponseRating *int      `json:"responseRating,omitempty"`
	Feedback       string    `json:"feedback,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	Created        bool      `json:"created,omitempty"`
}

// EvaluationResponse summarizes a partner's trial record and whether the
// evaluation promoted them.
type EvaluationResponse struct {
	PartnerID  uuid.UUID `json:"partnerId"`
	Total      int       `json:"total"`
	Completed  int       `json:"completed"`
	Failed     int       `json:"failed"`
	InProgress int       `json:"inProgress"`
	Assigned   int       `json:"assigned"`
	Promoted   bool      `json:"promoted"`
}
