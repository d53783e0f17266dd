package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LevelKey identifica un saldo: (tenant, producto, ubicación). LocationID nil = central.
type LevelKey struct {
	TenantID   string
	ProductID  string
	LocationID *string
}

// LocationString devuelve la ubicación como texto; "" representa el saldo central.
func (k LevelKey) LocationString() string {
	if k.LocationID == nil {
		return ""
	}
	return *k.LocationID
}

// String clave estable para mapas y ordenamiento de bloqueos.
func (k LevelKey) String() string {
	return k.TenantID + "|" + k.ProductID + "|" + k.LocationString()
}

// StockLevel saldo vigente por clave: cantidad y costo promedio ponderado.
// Solo se modifica dentro de la transacción que aplica un movimiento.
type StockLevel struct {
	TenantID    string
	ProductID   string
	LocationID  *string
	Quantity    decimal.Decimal
	AverageCost decimal.Decimal
	UpdatedAt   time.Time
}

// Key devuelve la clave del saldo.
func (l *StockLevel) Key() LevelKey {
	return LevelKey{TenantID: l.TenantID, ProductID: l.ProductID, LocationID: l.LocationID}
}

// NewEmptyLevel saldo en cero/cero para la creación perezosa.
func NewEmptyLevel(key LevelKey) *StockLevel {
	return &StockLevel{
		TenantID:    key.TenantID,
		ProductID:   key.ProductID,
		LocationID:  key.LocationID,
		Quantity:    decimal.Zero,
		AverageCost: decimal.Zero,
	}
}

// LevelWithThreshold saldo unido al umbral mínimo configurado en el producto.
type LevelWithThreshold struct {
	Level        StockLevel
	ProductName  string
	MinThreshold decimal.Decimal
}
