// Package lifecycle provides the partner application lifecycle bounded
// context module.
package lifecycle

import (
	"marketplace_backend/internal/events"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/lifecycle/handler"
	"marketplace_backend/internal/lifecycle/repository"
	"marketplace_backend/internal/lifecycle/service"
	"marketplace_backend/internal/notification/outbox"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the lifecycle module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule wires the lifecycle repository, service and handler.
func NewModule(pool *pgxpool.Pool, outboxRepo *outbox.Repository, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool, outboxRepo)
	svc := service.New(repo, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		svc:     svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "lifecycle" }

// RegisterRoutes mounts conversion under /admin/leads and the application
// operations under /admin/partners.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/leads"), ctx.Admin.Group("/partners"))
}

// Service exposes the lifecycle service for cross-module wiring.
func (m *Module) Service() *service.Service { return m.svc }
