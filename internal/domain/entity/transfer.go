package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus estado del ciclo de vida de una transferencia.
type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"
	TransferCompleted TransferStatus = "COMPLETED"
	TransferCancelled TransferStatus = "CANCELLED"
)

// IsTerminal COMPLETED y CANCELLED no admiten más transiciones.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferCompleted || s == TransferCancelled
}

// Transfer movimiento pareado OUT/IN entre dos ubicaciones, con su propio estado.
type Transfer struct {
	ID             string
	TenantID       string
	FromLocationID *string
	ToLocationID   *string
	Status         TransferStatus
	CreatedBy      string
	CreatedAt      time.Time
	CompletedAt    *time.Time
	Items          []TransferItem
}

// TransferItem línea fija de la transferencia; se consume al completar.
type TransferItem struct {
	ID         string
	TransferID string
	ProductID  string
	Quantity   decimal.Decimal
}

// CanTransitionTo PENDING -> COMPLETED | CANCELLED; nada sale de un estado terminal.
func (t *Transfer) CanTransitionTo(next TransferStatus) bool {
	if t.Status != TransferPending {
		return false
	}
	return next == TransferCompleted || next == TransferCancelled
}

// SourceKey saldo de origen para un producto.
func (t *Transfer) SourceKey(productID string) LevelKey {
	return LevelKey{TenantID: t.TenantID, ProductID: productID, LocationID: t.FromLocationID}
}

// DestinationKey saldo de destino para un producto.
func (t *Transfer) DestinationKey(productID string) LevelKey {
	return LevelKey{TenantID: t.TenantID, ProductID: productID, LocationID: t.ToLocationID}
}
