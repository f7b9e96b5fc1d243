// Package service holds the business logic of the order status manager.
package service

import (
	"context"
	"time"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/orders/domain"
	"marketplace_backend/internal/orders/repository"
	"marketplace_backend/internal/orders/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	repo *repository.Repository
	bus  events.Bus
	log  *logger.Logger
}

func New(repo *repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// Create opens a pending order. Routing to a partner requires that partner
// to be approved; unrouted orders wait for the assignment engine.
func (s *Service) Create(ctx context.Context, req transport.CreateOrderRequest, actor string) (transport.OrderResponse, error) {
	now := time.Now().UTC()
	order := repository.Order{
		ID:           uuid.New(),
		ServiceID:    req.ServiceID,
		PartnerID:    req.PartnerID,
		CustomerID:   req.CustomerID,
		AmountCents:  req.AmountCents,
		Status:       domain.StatusPending,
		DeliveryDate: req.DeliveryDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Priority != "" {
		order.Priority = &req.Priority
	}

	created, err := s.repo.Create(ctx, order, actor)
	if err != nil {
		return transport.OrderResponse{}, err
	}

	return toResponse(created), nil
}

// UpdateStatus validates and applies one state machine step, appending the
// matching audit row atomically.
func (s *Service) UpdateStatus(ctx context.Context, orderID uuid.UUID, req transport.UpdateStatusRequest, actor string) (transport.OrderResponse, error) {
	target := domain.Status(req.Status)
	if !target.Valid() {
		return transport.OrderResponse{}, apperr.Validation("unknown order status: " + req.Status)
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return transport.OrderResponse{}, err
	}
	if !order.Status.CanTransition(target) {
		return transport.OrderResponse{}, apperr.InvalidTransition(
			"cannot transition from " + string(order.Status) + " to " + string(target))
	}

	updated, err := s.repo.UpdateStatus(ctx, orderID, order.Status, target, actor)
	if err != nil {
		return transport.OrderResponse{}, err
	}

	s.bus.Publish(ctx, events.OrderStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		OrderID:   orderID,
		OldStatus: string(order.Status),
		NewStatus: string(target),
		ChangedBy: actor,
	})
	s.log.StateTransition("order", orderID.String(), string(order.Status), string(target), actor)

	return toResponse(updated), nil
}

func (s *Service) GetByID(ctx context.Context, orderID uuid.UUID) (transport.OrderResponse, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return transport.OrderResponse{}, err
	}
	return toResponse(order), nil
}

// History returns the order's append-only audit trail, oldest first.
func (s *Service) History(ctx context.Context, orderID uuid.UUID) ([]transport.HistoryEntry, error) {
	entries, err := s.repo.History(ctx, orderID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, transport.HistoryEntry{
			Status:    e.Status,
			ChangedBy: e.ChangedBy,
			ChangedAt: e.ChangedAt,
		})
	}
	return out, nil
}

func toResponse(order repository.Order) transport.OrderResponse {
	resp := transport.OrderResponse{
		ID:           order.ID,
		ServiceID:    order.ServiceID,
		PartnerID:    order.PartnerID,
		CustomerID:   order.CustomerID,
		AmountCents:  order.AmountCents,
		Status:       string(order.Status),
		DeliveryDate: order.DeliveryDate,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
	if order.Priority != nil {
		resp.Priority = *order.Priority
	}
	return resp
}
