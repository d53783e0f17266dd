package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	dominventory "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// StockHandler maneja movimientos, kardex, alertas y transferencias (protegido).
type StockHandler struct {
	movements *inventory.MovementUseCase
	transfers *inventory.TransferUseCase
	kardex    *inventory.KardexUseCase
	alerts    *inventory.AlertUseCase
	log       *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(
	movements *inventory.MovementUseCase,
	transfers *inventory.TransferUseCase,
	kardex *inventory.KardexUseCase,
	alerts *inventory.AlertUseCase,
	log *logger.Logger,
) *StockHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &StockHandler{movements: movements, transfers: transfers, kardex: kardex, alerts: alerts, log: log}
}

// ApplyMovement POST /api/stock/movements
func (h *StockHandler) ApplyMovement(c *fiber.Ctx) error {
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	res, err := h.movements.ApplyMovement(c.Context(), inventory.MovementInput{
		TenantID:    GetTenantID(c),
		ProductID:   in.ProductID,
		LocationID:  normalizeLocation(in.LocationID),
		Type:        entity.MovementType(strings.ToUpper(in.Type)),
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
		ReferenceID: in.ReferenceID,
		Note:        in.Note,
		ActorID:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(res))
}

// AdjustStock POST /api/stock/adjust. Ajuste manual con motivo obligatorio.
func (h *StockHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	var movType entity.MovementType
	switch strings.ToUpper(in.Direction) {
	case "IN":
		movType = entity.MovementAdjustmentIn
	case "OUT":
		movType = entity.MovementAdjustmentOut
	default:
		return badRequest(c, "direction debe ser IN u OUT")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return badRequest(c, "reason requerido")
	}
	res, err := h.movements.ApplyMovement(c.Context(), inventory.MovementInput{
		TenantID:   GetTenantID(c),
		ProductID:  in.ProductID,
		LocationID: normalizeLocation(in.LocationID),
		Type:       movType,
		Quantity:   in.Quantity,
		Note:       in.Reason,
		ActorID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(res))
}

// GetKardex GET /api/stock/kardex?product_id=&location_id=&central=&order=&limit=
func (h *StockHandler) GetKardex(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	if productID == "" {
		return badRequest(c, "product_id requerido")
	}
	order := inventory.SortOrder(strings.ToLower(c.Query("order", string(inventory.NewestFirst))))
	if order != inventory.NewestFirst && order != inventory.OldestFirst {
		return badRequest(c, "order debe ser asc o desc")
	}
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return badRequest(c, "limit no puede ser negativo")
	}

	entries, err := h.kardex.GetKardex(c.Context(), inventory.KardexQuery{
		TenantID:  GetTenantID(c),
		ProductID: productID,
		Scope:     scopeFromQuery(c),
		Order:     order,
		Limit:     limit,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}

	out := make([]dto.KardexEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.KardexEntryDTO{MovementDTO: toMovementDTO(e.Movement), StockAfter: e.StockAfter})
	}
	return c.JSON(dto.KardexResponse{ProductID: productID, Total: len(out), Entries: out})
}

// VerifyLevel GET /api/stock/levels/verify?product_id=&location_id=
// Sin location_id verifica el saldo central.
func (h *StockHandler) VerifyLevel(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	if productID == "" {
		return badRequest(c, "product_id requerido")
	}
	var loc *string
	if id := c.Query("location_id"); id != "" {
		loc = &id
	}
	drift, err := h.kardex.VerifyLevel(c.Context(), entity.LevelKey{
		TenantID:   GetTenantID(c),
		ProductID:  productID,
		LocationID: loc,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"product_id":  productID,
		"location_id": loc,
		"replayed":    drift.Replayed,
		"cached":      drift.Cached,
		"in_sync":     drift.InSync,
	})
}

// GetStockAlerts GET /api/stock/alerts?location_id=&central=
func (h *StockHandler) GetStockAlerts(c *fiber.Ctx) error {
	rows, err := h.alerts.GetStockAlerts(c.Context(), GetTenantID(c), scopeFromQuery(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.StockAlertDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, toAlertDTO(r))
	}
	return c.JSON(fiber.Map{"total": len(out), "alerts": out})
}

// CreateTransfer POST /api/stock/transfers
func (h *StockHandler) CreateTransfer(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	items := make([]inventory.TransferItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.TransferItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	t, err := h.transfers.CreateTransfer(c.Context(), inventory.CreateTransferInput{
		TenantID:       GetTenantID(c),
		FromLocationID: normalizeLocation(in.FromLocationID),
		ToLocationID:   normalizeLocation(in.ToLocationID),
		Items:          items,
		ActorID:        GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferDTO(t))
}

// ListTransfers GET /api/stock/transfers
func (h *StockHandler) ListTransfers(c *fiber.Ctx) error {
	list, err := h.transfers.ListTransfers(c.Context(), GetTenantID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.TransferDTO, 0, len(list))
	for _, t := range list {
		out = append(out, toTransferDTO(t))
	}
	return c.JSON(fiber.Map{"total": len(out), "transfers": out})
}

// GetTransfer GET /api/stock/transfers/:id
func (h *StockHandler) GetTransfer(c *fiber.Ctx) error {
	t, err := h.transfers.GetTransfer(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toTransferDTO(t))
}

// GetTransferMovements GET /api/stock/transfers/:id/movements
func (h *StockHandler) GetTransferMovements(c *fiber.Ctx) error {
	movs, err := h.transfers.TransferMovements(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.MovementDTO, 0, len(movs))
	for _, m := range movs {
		out = append(out, toMovementDTO(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// CompleteTransfer POST /api/stock/transfers/:id/complete
func (h *StockHandler) CompleteTransfer(c *fiber.Ctx) error {
	t, err := h.transfers.CompleteTransfer(c.Context(), GetTenantID(c), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toTransferDTO(t))
}

// CancelTransfer POST /api/stock/transfers/:id/cancel
func (h *StockHandler) CancelTransfer(c *fiber.Ctx) error {
	t, err := h.transfers.CancelTransfer(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toTransferDTO(t))
}

// scopeFromQuery location_id=X -> esa ubicación; central=true -> saldo central; nada -> todas.
func scopeFromQuery(c *fiber.Ctx) entity.LocationScope {
	if id := c.Query("location_id"); id != "" {
		return entity.AtLocation(&id)
	}
	if c.QueryBool("central", false) {
		return entity.AtLocation(nil)
	}
	return entity.AllLocations()
}

// normalizeLocation "" se trata como central.
func normalizeLocation(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	v := strings.TrimSpace(*id)
	return &v
}

func toMovementDTO(m *entity.StockMovement) dto.MovementDTO {
	return dto.MovementDTO{
		ID:          m.ID,
		ProductID:   m.ProductID,
		LocationID:  m.LocationID,
		Type:        string(m.Type),
		ReferenceID: m.ReferenceID,
		Quantity:    m.Quantity,
		UnitCost:    m.UnitCost,
		TotalCost:   m.TotalCost,
		Note:        m.Note,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

func toMovementResponse(res *inventory.MovementResult) dto.ApplyMovementResponse {
	return dto.ApplyMovementResponse{
		Level: dto.StockLevelDTO{
			ProductID:   res.Level.ProductID,
			LocationID:  res.Level.LocationID,
			Quantity:    res.Level.Quantity,
			AverageCost: res.Level.AverageCost,
			UpdatedAt:   res.Level.UpdatedAt,
		},
		Movement: toMovementDTO(res.Movement),
	}
}

func toAlertDTO(r dominventory.AlertRow) dto.StockAlertDTO {
	return dto.StockAlertDTO{
		ProductID:    r.ProductID,
		ProductName:  r.ProductName,
		LocationID:   r.LocationID,
		Quantity:     r.Quantity,
		MinThreshold: r.MinThreshold,
	}
}

func toTransferDTO(t *entity.Transfer) dto.TransferDTO {
	items := make([]dto.TransferItemDTO, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, dto.TransferItemDTO{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return dto.TransferDTO{
		ID:             t.ID,
		FromLocationID: t.FromLocationID,
		ToLocationID:   t.ToLocationID,
		Status:         string(t.Status),
		CreatedBy:      t.CreatedBy,
		CreatedAt:      t.CreatedAt,
		CompletedAt:    t.CompletedAt,
		Items:          items,
	}
}
