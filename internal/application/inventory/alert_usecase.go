package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// AlertUseCase evalúa los saldos en o por debajo del umbral mínimo del producto.
type AlertUseCase struct {
	levelRepo repository.StockLevelRepository
	cache     AlertCache
	log       *logger.Logger
}

// NewAlertUseCase construye el caso de uso. cache puede ser nil.
func NewAlertUseCase(levelRepo repository.StockLevelRepository, cache AlertCache, log *logger.Logger) *AlertUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AlertUseCase{levelRepo: levelRepo, cache: cache, log: log}
}

// GetStockAlerts lectura pura: sin mutación ni efectos laterales sobre el stock.
func (uc *AlertUseCase) GetStockAlerts(ctx context.Context, tenantID string, scope entity.LocationScope) ([]inventory.AlertRow, error) {
	if tenantID == "" {
		return nil, domain.ErrInvalidInput
	}

	if uc.cache != nil {
		rows, ok, err := uc.cache.Get(ctx, tenantID, scope)
		if err != nil {
			uc.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("leer caché de alertas")
		} else if ok {
			return rows, nil
		}
	}

	// La versión se lee antes de consultar: si un commit invalida entre medio, el Set se descarta
	var (
		version   int64
		cacheable = uc.cache != nil
	)
	if cacheable {
		v, err := uc.cache.Version(ctx, tenantID)
		if err != nil {
			uc.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("leer versión de caché de alertas")
			cacheable = false
		}
		version = v
	}

	levels, err := uc.levelRepo.ListWithThresholds(ctx, tenantID, scope)
	if err != nil {
		return nil, err
	}
	alerts := inventory.EvaluateAlerts(levels)

	if cacheable {
		if err := uc.cache.Set(ctx, tenantID, scope, version, alerts); err != nil {
			uc.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("guardar caché de alertas")
		}
	}
	return alerts, nil
}
