// Package leads provides the lead registry bounded context module.
package leads

import (
	"marketplace_backend/internal/events"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/leads/handler"
	"marketplace_backend/internal/leads/repository"
	"marketplace_backend/internal/leads/service"
	"marketplace_backend/internal/notification/outbox"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the lead registry module implementing http.Module.
type Module struct {
	handler       *handler.Handler
	publicHandler *handler.PublicHandler
	svc           *service.Service
}

// NewModule wires the lead registry: repository, intake service and handlers.
func NewModule(pool *pgxpool.Pool, outboxRepo *outbox.Repository, eventBus events.Bus, val *validator.Validator, cfg *config.Config, log *logger.Logger) *Module {
	repo := repository.New(pool, outboxRepo)
	svc := service.New(repo, eventBus, cfg, log)

	return &Module{
		handler:       handler.New(svc, val),
		publicHandler: handler.NewPublicHandler(svc, val),
		svc:           svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "leads" }

// RegisterRoutes mounts the admin and public lead routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/leads"))
	m.publicHandler.RegisterRoutes(ctx.Public.Group("/leads"))
}

// Service exposes the lead service to sibling modules (lifecycle conversion).
func (m *Module) Service() *service.Service { return m.svc }
