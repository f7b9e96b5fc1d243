// Package trials provides the trial evaluation tracker bounded context
// module.
package trials

import (
	"marketplace_backend/internal/events"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/trials/handler"
	"marketplace_backend/internal/trials/repository"
	"marketplace_backend/internal/trials/service"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the trial tracker module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule wires the trial repository, tracker service and handler. The
// promoter is the lifecycle service; the lifecycle module in turn receives
// this module's service as its trial starter.
func NewModule(pool *pgxpool.Pool, promoter service.Promoter, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), promoter, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		svc:     svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "trials" }

// RegisterRoutes mounts the trial routes under /admin/partners and
// /admin/trials.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/partners"), ctx.Admin.Group("/trials"))
}

// RegisterHandlers subscribes the tracker to the events it consumes.
// Recording a trial outcome re-evaluates the partner's readiness.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.TrialOutcomeRecorded{}.EventName(),
		events.HandlerFunc(m.svc.HandleTrialOutcomeRecorded))
}

// Service exposes the tracker service for cross-module wiring.
func (m *Module) Service() *service.Service { return m.svc }
