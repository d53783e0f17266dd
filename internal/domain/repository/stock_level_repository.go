package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockLevelRepository puerto del almacén de saldos por (tenant, producto, ubicación).
// Las escrituras solo ocurren dentro de la transacción que aplica un movimiento.
type StockLevelRepository interface {
	// GetForUpdate obtiene el saldo bloqueando la fila (SELECT FOR UPDATE).
	// Si no existe la crea en cero/cero antes de bloquearla.
	GetForUpdate(ctx context.Context, key entity.LevelKey) (*entity.StockLevel, error)
	// Get lectura sin bloqueo; devuelve un saldo en cero si la clave no existe.
	Get(ctx context.Context, key entity.LevelKey) (*entity.StockLevel, error)
	Save(ctx context.Context, level *entity.StockLevel) error
	// ListWithThresholds une cada saldo del tenant con el umbral mínimo de su producto.
	ListWithThresholds(ctx context.Context, tenantID string, scope entity.LocationScope) ([]entity.LevelWithThreshold, error)
}
