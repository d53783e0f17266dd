package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// SortOrder orden de salida del kardex. La reproducción siempre es de más antiguo a más reciente.
type SortOrder string

const (
	NewestFirst SortOrder = "desc"
	OldestFirst SortOrder = "asc"
)

// KardexUseCase reconstrucciones de solo lectura sobre el libro mayor.
// Nunca confía en el saldo cacheado: lo recalcula desde los movimientos.
type KardexUseCase struct {
	movRepo   repository.StockMovementRepository
	levelRepo repository.StockLevelRepository
}

// NewKardexUseCase construye el caso de uso.
func NewKardexUseCase(movRepo repository.StockMovementRepository, levelRepo repository.StockLevelRepository) *KardexUseCase {
	return &KardexUseCase{movRepo: movRepo, levelRepo: levelRepo}
}

// KardexQuery Limit > 0 recorta la salida después de reproducir el libro mayor completo.
type KardexQuery struct {
	TenantID  string
	ProductID string
	Scope     entity.LocationScope
	Order     SortOrder
	Limit     int
}

// GetKardex devuelve los movimientos anotados con el saldo corrido (stockAfter).
func (uc *KardexUseCase) GetKardex(ctx context.Context, q KardexQuery) ([]inventory.KardexEntry, error) {
	if q.TenantID == "" || q.ProductID == "" || q.Limit < 0 {
		return nil, domain.ErrInvalidInput
	}
	movements, err := uc.movRepo.ListByProduct(ctx, q.TenantID, q.ProductID, q.Scope)
	if err != nil {
		return nil, err
	}

	entries := inventory.ReplayKardex(movements)
	if q.Order != OldestFirst {
		inventory.Reverse(entries)
	}
	if q.Limit > 0 && len(entries) > q.Limit {
		entries = entries[:q.Limit]
	}
	return entries, nil
}

// LevelDrift comparación entre el saldo reproducido y el saldo cacheado.
type LevelDrift struct {
	Key      entity.LevelKey
	Replayed decimal.Decimal
	Cached   decimal.Decimal
	InSync   bool
}

// VerifyLevel recalcula el saldo de una clave desde el libro mayor y lo compara con stock_levels.
func (uc *KardexUseCase) VerifyLevel(ctx context.Context, key entity.LevelKey) (*LevelDrift, error) {
	if key.TenantID == "" || key.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	movements, err := uc.movRepo.ListByProduct(ctx, key.TenantID, key.ProductID, entity.AtLocation(key.LocationID))
	if err != nil {
		return nil, err
	}
	replayed := inventory.FinalBalance(inventory.ReplayKardex(movements))

	level, err := uc.levelRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return &LevelDrift{
		Key:      key,
		Replayed: replayed,
		Cached:   level.Quantity,
		InSync:   replayed.Equal(level.Quantity),
	}, nil
}
