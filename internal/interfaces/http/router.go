package http

import (
	"github.com/gofiber/fiber/v2"

	app "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Writer     *app.LedgerWriter
	Transfers  *app.TransferCoordinator
	Reconciler *app.Reconciler
	Adjuster   *app.AbsoluteAdjuster
	Query      *app.LedgerQueryUseCase
	Metrics    HTTPObserver // opcional
	Logger     *logger.Logger
	JWTSecret  string
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token.
func Router(fiberApp *fiber.App, deps RouterDeps) {
	api := fiberApp.Group("/api")
	if deps.Metrics != nil {
		api.Use(MetricsMiddleware(deps.Metrics))
	}
	api.Use(AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(jwt.RoleAdmin)

	h := NewLedgerHandler(deps.Writer, deps.Transfers, deps.Reconciler, deps.Adjuster, deps.Query, deps.Logger)

	api.Post("/transfers", h.Transfer)
	api.Get("/stock", h.MyStock)
	api.Get("/ledger-entries/:id", h.GetEntry)

	locations := api.Group("/locations/:locationId")
	locations.Post("/movements", h.Mutate)
	locations.Get("/stock", h.ListLocationStock)
	locations.Post("/rebuild", adminOnly, h.RebuildLocation)

	items := locations.Group("/items/:itemId")
	items.Get("/", h.GetAccount)
	items.Get("/ledger", h.ListLedger)
	items.Get("/drift", h.Drift)
	items.Get("/statement", h.Statement)
	items.Post("/rebuild", adminOnly, h.Rebuild)
	items.Put("/balance", adminOnly, h.SetAbsolute)
}
