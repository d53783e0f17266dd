package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockMovementRepository puerto del libro mayor. Solo inserción: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct devuelve los movimientos del producto en orden de inserción en el libro mayor.
	ListByProduct(ctx context.Context, tenantID, productID string, scope entity.LocationScope) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, tenantID, referenceID string) ([]*entity.StockMovement, error)
}
