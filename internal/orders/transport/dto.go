// Package transport defines the request/response DTOs for the order status
// manager.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateOrderRequest opens a new order routed to an approved partner.
type CreateOrderRequest struct {
	ServiceID    uuid.UUID  `json:"serviceId" validate:"required"`
	PartnerID    *uuid.UUID `json:"partnerId"`
	CustomerID   uuid.UUID  `json:"customerId" validate:"required"`
	AmountCents  int64      `json:"amountCents" validate:"min=0"`
	Priority     string     `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	DeliveryDate *time.Time `json:"deliveryDate"`
}

// UpdateStatusRequest moves an order along its state machine.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed completed cancelled"`
}

// OrderResponse is the order read model.
type OrderResponse struct {
	ID           uuid.UUID  `json:"id"`
	ServiceID    uuid.UUID  `json:"serviceId"`
	PartnerID    *uuid.UUID `json:"partnerId,omitempty"`
	CustomerID   uuid.UUID  `json:"customerId"`
	AmountCents  int64      `json:"amountCents"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority,omitempty"`
	DeliveryDate *time.Time `json:"deliveryDate,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// HistoryEntry is one row of the append-only audit trail.
type HistoryEntry struct {
	Status    string    `json:"status"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}
