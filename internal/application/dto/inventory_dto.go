package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplyMovementRequest body para POST /api/stock/movements.
// location_id vacío u omitido = saldo central.
type ApplyMovementRequest struct {
	ProductID   string           `json:"product_id"`
	LocationID  *string          `json:"location_id,omitempty"`
	Type        string           `json:"type"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceID *string          `json:"reference_id,omitempty"`
	Note        string           `json:"note,omitempty"`
}

// AdjustStockRequest body para POST /api/stock/adjust. direction IN u OUT.
type AdjustStockRequest struct {
	ProductID  string          `json:"product_id"`
	LocationID *string         `json:"location_id,omitempty"`
	Direction  string          `json:"direction"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reason     string          `json:"reason"`
}

// StockLevelDTO saldo resultante.
type StockLevelDTO struct {
	ProductID   string          `json:"product_id"`
	LocationID  *string         `json:"location_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MovementDTO fila del libro mayor.
type MovementDTO struct {
	ID          string           `json:"id"`
	ProductID   string           `json:"product_id"`
	LocationID  *string          `json:"location_id"`
	Type        string           `json:"type"`
	ReferenceID *string          `json:"reference_id,omitempty"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost   *decimal.Decimal `json:"total_cost,omitempty"`
	Note        string           `json:"note,omitempty"`
	CreatedBy   string           `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ApplyMovementResponse respuesta de movimientos y ajustes.
type ApplyMovementResponse struct {
	Level    StockLevelDTO `json:"level"`
	Movement MovementDTO   `json:"movement"`
}

// KardexEntryDTO movimiento con el saldo corrido después de aplicarlo.
type KardexEntryDTO struct {
	MovementDTO
	StockAfter decimal.Decimal `json:"stock_after"`
}

// KardexResponse respuesta de GET /api/stock/kardex.
type KardexResponse struct {
	ProductID string           `json:"product_id"`
	Total     int              `json:"total"`
	Entries   []KardexEntryDTO `json:"entries"`
}

// StockAlertDTO saldo en o por debajo del umbral.
type StockAlertDTO struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	LocationID   *string         `json:"location_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	MinThreshold decimal.Decimal `json:"min_threshold"`
}

// TransferItemRequest línea solicitada en la transferencia.
type TransferItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateTransferRequest body para POST /api/stock/transfers.
type CreateTransferRequest struct {
	FromLocationID *string               `json:"from_location_id,omitempty"`
	ToLocationID   *string               `json:"to_location_id,omitempty"`
	Items          []TransferItemRequest `json:"items"`
}

// TransferItemDTO línea de la transferencia.
type TransferItemDTO struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// TransferDTO transferencia con sus ítems.
type TransferDTO struct {
	ID             string            `json:"id"`
	FromLocationID *string           `json:"from_location_id"`
	ToLocationID   *string           `json:"to_location_id"`
	Status         string            `json:"status"`
	CreatedBy      string            `json:"created_by"`
	CreatedAt      time.Time         `json:"created_at"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
	Items          []TransferItemDTO `json:"items"`
}
