// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"marketplace_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Lead Registry Events
// =============================================================================

// LeadReceived is published when a new lead is created through public intake.
type LeadReceived struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Email  string    `json:"email"`
}

func (e LeadReceived) EventName() string { return "leads.received" }

// LeadConverted is published when a lead becomes a partner.
type LeadConverted struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	PartnerID uuid.UUID `json:"partnerId"`
	Email     string    `json:"email"`
}

func (e LeadConverted) EventName() string { return "leads.converted" }

// =============================================================================
// Partner Lifecycle Events
// =============================================================================

// PartnerStatusChanged is published on every partner status transition.
type PartnerStatusChanged struct {
	BaseEvent
	PartnerID uuid.UUID `json:"partnerId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
}

func (e PartnerStatusChanged) EventName() string { return "partners.status.changed" }

// PartnerApproved is published when a partner reaches approved and order
// routing unlocks for them.
type PartnerApproved struct {
	BaseEvent
	PartnerID    uuid.UUID `json:"partnerId"`
	ContactEmail string    `json:"contactEmail"`
}

func (e PartnerApproved) EventName() string { return "partners.approved" }

// PartnerRejected is published when an application is rejected.
type PartnerRejected struct {
	BaseEvent
	PartnerID    uuid.UUID `json:"partnerId"`
	ContactEmail string    `json:"contactEmail"`
	Reason       string    `json:"reason"`
}

func (e PartnerRejected) EventName() string { return "partners.rejected" }

// =============================================================================
// Assignment Events
// =============================================================================

// ServiceAssigned is published when a service is routed to a partner.
type ServiceAssigned struct {
	BaseEvent
	AssignmentID uuid.UUID `json:"assignmentId"`
	ServiceID    uuid.UUID `json:"serviceId"`
	PartnerID    uuid.UUID `json:"partnerId"`
	Strategy     string    `json:"strategy"`
}

func (e ServiceAssigned) EventName() string { return "assignments.service.assigned" }

// =============================================================================
// Trial Events
// =============================================================================

// TrialOutcomeRecorded is published when a trial service gets its evaluation.
type TrialOutcomeRecorded struct {
	BaseEvent
	TrialID   uuid.UUID `json:"trialId"`
	PartnerID uuid.UUID `json:"partnerId"`
	Status    string    `json:"status"`
}

func (e TrialOutcomeRecorded) EventName() string { return "trials.outcome.recorded" }

// =============================================================================
// Order Events
// =============================================================================

// OrderStatusChanged is published after an order transition commits.
type OrderStatusChanged struct {
	BaseEvent
	OrderID   uuid.UUID `json:"orderId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	ChangedBy string    `json:"changedBy"`
}

func (e OrderStatusChanged) EventName() string { return "orders.status.changed" }
