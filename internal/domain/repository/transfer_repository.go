package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TransferRepository puerto de persistencia para transferencias y sus ítems.
// Get y GetForUpdate devuelven (nil, nil) si la transferencia no existe para el tenant.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	Get(ctx context.Context, tenantID, id string) (*entity.Transfer, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Transfer, error)
	UpdateStatus(ctx context.Context, transfer *entity.Transfer) error
	ListByTenant(ctx context.Context, tenantID string) ([]*entity.Transfer, error)
}
