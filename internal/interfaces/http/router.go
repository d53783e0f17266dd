package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements *inventory.MovementUseCase
	Transfers *inventory.TransferUseCase
	Kardex    *inventory.KardexUseCase
	Alerts    *inventory.AlertUseCase
	Logger    *logger.Logger
	JWTSecret string
}

// Router registra las rutas de la API. Todo /api/stock requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	stock := api.Group("/stock", AuthMiddleware(deps.JWTSecret))

	h := NewStockHandler(deps.Movements, deps.Transfers, deps.Kardex, deps.Alerts, deps.Logger)
	stock.Post("/movements", h.ApplyMovement)
	stock.Post("/adjust", h.AdjustStock)
	stock.Get("/kardex", h.GetKardex)
	stock.Get("/levels/verify", h.VerifyLevel)
	stock.Get("/alerts", h.GetStockAlerts)

	transfers := stock.Group("/transfers")
	transfers.Post("/", h.CreateTransfer)
	transfers.Get("/", h.ListTransfers)
	transfers.Get("/:id", h.GetTransfer)
	transfers.Get("/:id/movements", h.GetTransferMovements)
	transfers.Post("/:id/complete", h.CompleteTransfer)
	transfers.Post("/:id/cancel", h.CancelTransfer)
}
