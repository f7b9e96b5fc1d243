// Package orders provides the order status manager bounded context module.
package orders

import (
	"marketplace_backend/internal/events"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/orders/handler"
	"marketplace_backend/internal/orders/repository"
	"marketplace_backend/internal/orders/service"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the order status manager module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the orders repository, service and handler.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), eventBus, log)
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "orders" }

// RegisterRoutes mounts the order routes under /admin/orders.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/orders"))
}
