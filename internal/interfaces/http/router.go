package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pos-ledger/internal/application/cash"
	"github.com/tu-usuario/pos-ledger/internal/application/ledger"
	"github.com/tu-usuario/pos-ledger/internal/application/reconcile"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC     *ledger.LedgerUseCase
	StockQueries *ledger.StockQueryService
	SessionUC    *cash.SessionUseCase
	Reconciler   *reconcile.Engine
	JWTSecret    string
}

// Router registra las rutas de la API. Todo el ledger va protegido:
// cada escritura necesita un actor autenticado que la firme.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Ledger de inventario
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.LedgerUC, deps.StockQueries)
	stock.Post("/movements", stockHandler.RecordMovement)
	stock.Get("/movements", stockHandler.ListMovements)
	stock.Get("/balances/:location_id", stockHandler.ListBalances)
	stock.Get("/balances/:location_id/:product_id", stockHandler.GetBalance)
	stock.Get("/balances/:location_id/:product_id/verify", stockHandler.VerifyBalance)
	stock.Post("/transfers", stockHandler.Transfer)

	// Reservas
	reservationHandler := NewReservationHandler(deps.LedgerUC)
	stock.Post("/reservations", reservationHandler.Reserve)
	stock.Get("/reservations", reservationHandler.ListActive)
	stock.Post("/reservations/:id/release", reservationHandler.Release)
	stock.Post("/reservations/:id/fulfill", reservationHandler.Fulfill)

	// Sesiones de caja
	cashGroup := protected.Group("/cash")
	cashHandler := NewCashHandler(deps.SessionUC)
	cashGroup.Post("/sessions", cashHandler.OpenSession)
	cashGroup.Get("/sessions", cashHandler.ListSessions)
	cashGroup.Get("/sessions/:id", cashHandler.GetSession)
	cashGroup.Get("/sessions/:id/summary", cashHandler.GetSummary)
	cashGroup.Post("/sessions/:id/movements", cashHandler.RecordMovement)
	cashGroup.Post("/sessions/:id/counts", cashHandler.RegisterCount)
	cashGroup.Post("/sessions/:id/close", cashHandler.CloseSession)

	// Reconciliación
	reconGroup := protected.Group("/reconciliation")
	reconcileHandler := NewReconcileHandler(deps.Reconciler)
	reconGroup.Post("/cash", reconcileHandler.ReconcileSession)
	reconGroup.Post("/inventory", reconcileHandler.ReconcileInventory)
}
