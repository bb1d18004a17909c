package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/catalog"
	"github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/application/query"
	"github.com/jhoicas/stock-ledger-api/internal/application/report"
	"github.com/jhoicas/stock-ledger-api/internal/application/reservation"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CatalogUC     *catalog.UseCase
	LedgerUC      *ledger.UseCase
	ReservationUC *reservation.UseCase
	QueryUC       *query.UseCase
	ReportUC      *report.UseCase
	JWTSecret     string
}

// Router registra las rutas de la API. Todas las rutas requieren Bearer Token;
// aprobar/rechazar transacciones y retirar ítems son solo para admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	adminOnly := RequireRole("admin")
	writers := RequireRole("admin", "bodeguero")

	// Catálogo de ítems
	items := api.Group("/items")
	itemHandler := NewItemHandler(deps.CatalogUC)
	items.Post("/", writers, itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", writers, itemHandler.Update)
	items.Post("/:id/retire", adminOnly, itemHandler.Retire)

	// Libro de transacciones
	stock := api.Group("/stock")
	ledgerHandler := NewLedgerHandler(deps.LedgerUC)
	stock.Post("/transactions", writers, ledgerHandler.Record)
	stock.Get("/transactions/:id", ledgerHandler.GetByID)
	stock.Post("/transactions/:id/approve", adminOnly, ledgerHandler.Approve)
	stock.Post("/transactions/:id/reject", adminOnly, ledgerHandler.Reject)

	// Lado de lectura
	queryHandler := NewQueryHandler(deps.QueryUC)
	items.Get("/:id/position", queryHandler.Position)
	items.Get("/:id/transactions", ledgerHandler.History)
	items.Get("/:id/verify", queryHandler.VerifyLedger)
	stock.Get("/alerts", queryHandler.LowStock)
	stock.Get("/valuation", queryHandler.Valuation)
	stock.Get("/status-distribution", queryHandler.StatusDistribution)

	// Reservas
	reservations := api.Group("/reservations")
	reservationHandler := NewReservationHandler(deps.ReservationUC)
	reservations.Post("/", writers, reservationHandler.Reserve)
	reservations.Get("/", reservationHandler.ListByContext)
	reservations.Get("/:id", reservationHandler.GetByID)
	reservations.Post("/:id/release", writers, reservationHandler.Release)
	reservations.Post("/:id/consume", writers, reservationHandler.Consume)

	// Reportes
	reports := api.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/valuation.pdf", reportHandler.ValuationPDF)
}
