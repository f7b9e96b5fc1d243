// Package assignment provides the assignment engine bounded context module.
package assignment

import (
	"marketplace_backend/internal/assignment/cursor"
	"marketplace_backend/internal/assignment/handler"
	"marketplace_backend/internal/assignment/repository"
	"marketplace_backend/internal/assignment/service"
	"marketplace_backend/internal/events"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the assignment engine module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the assignment repository, Redis cursor store, selection
// service and handler.
func NewModule(pool *pgxpool.Pool, rdb *redis.Client, eventBus events.Bus, val *validator.Validator, cfg *config.Config, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cursor.New(rdb), eventBus, cfg, log)

	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "assignment" }

// RegisterRoutes mounts the strategy config and routing routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/assignment"), ctx.Admin.Group("/services"))
}
