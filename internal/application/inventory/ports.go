package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn devuelve error no queda nada visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		levelRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		transferRepo repository.TransferRepository,
	) error) error
}

// MovementPublisher difunde los movimientos ya confirmados (canal lateral, best effort).
type MovementPublisher interface {
	PublishMovements(ctx context.Context, movements []*entity.StockMovement) error
}

// AlertCache caché de lectura de alertas por tenant y filtro de ubicación.
// Cada Invalidate sube la versión del tenant; Set con una versión vieja no escribe,
// así una lectura calculada antes de un commit no tapa la invalidación de ese commit.
type AlertCache interface {
	Get(ctx context.Context, tenantID string, scope entity.LocationScope) ([]inventory.AlertRow, bool, error)
	Version(ctx context.Context, tenantID string) (int64, error)
	Set(ctx context.Context, tenantID string, scope entity.LocationScope, version int64, rows []inventory.AlertRow) error
	Invalidate(ctx context.Context, tenantID string) error
}
