package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType causa tipificada de un movimiento de stock.
type MovementType string

// Tipos de movimiento del libro mayor.
const (
	MovementSale          MovementType = "SALE"
	MovementPurchase      MovementType = "PURCHASE"
	MovementAdjustmentIn  MovementType = "ADJUSTMENT_IN"
	MovementAdjustmentOut MovementType = "ADJUSTMENT_OUT"
	MovementTransferIn    MovementType = "TRANSFER_IN"
	MovementTransferOut   MovementType = "TRANSFER_OUT"
	MovementInitial       MovementType = "INITIAL"
)

// Valid indica si el tipo pertenece a la tabla de direcciones.
func (t MovementType) Valid() bool {
	switch t {
	case MovementSale, MovementPurchase, MovementAdjustmentIn, MovementAdjustmentOut,
		MovementTransferIn, MovementTransferOut, MovementInitial:
		return true
	}
	return false
}

// IsOutbound indica si el movimiento descuenta stock (SALE, ADJUSTMENT_OUT, TRANSFER_OUT).
func (t MovementType) IsOutbound() bool {
	return t == MovementSale || t == MovementAdjustmentOut || t == MovementTransferOut
}

// Signed aplica la dirección del tipo a una cantidad sin signo.
func (t MovementType) Signed(quantity decimal.Decimal) decimal.Decimal {
	if t.IsOutbound() {
		return quantity.Abs().Neg()
	}
	return quantity.Abs()
}

// StockMovement fila inmutable del libro mayor. Nunca se actualiza ni se borra.
type StockMovement struct {
	ID          string
	TenantID    string
	ProductID   string
	LocationID  *string // nil = saldo central
	Type        MovementType
	ReferenceID *string          // venta, compra o transferencia de origen
	Quantity    decimal.Decimal  // magnitud sin signo
	UnitCost    *decimal.Decimal // solo si el llamador informó costo
	TotalCost   *decimal.Decimal
	Note        string
	CreatedBy   string
	CreatedAt   time.Time
}

// Key devuelve la clave del saldo afectado por el movimiento.
func (m *StockMovement) Key() LevelKey {
	return LevelKey{TenantID: m.TenantID, ProductID: m.ProductID, LocationID: m.LocationID}
}
