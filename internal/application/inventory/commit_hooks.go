package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// CommitHooks efectos posteriores al commit. Sus fallos se registran y nunca revierten la transacción.
type CommitHooks struct {
	publisher MovementPublisher
	cache     AlertCache
	log       *logger.Logger
}

// NewCommitHooks construye los hooks. publisher y cache pueden ser nil.
func NewCommitHooks(publisher MovementPublisher, cache AlertCache, log *logger.Logger) *CommitHooks {
	if log == nil {
		log = logger.Nop()
	}
	return &CommitHooks{publisher: publisher, cache: cache, log: log}
}

func (h *CommitHooks) afterCommit(ctx context.Context, tenantID string, movements ...*entity.StockMovement) {
	if h == nil || len(movements) == 0 {
		return
	}
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx, tenantID); err != nil {
			h.log.Error().Err(err).Str("tenant_id", tenantID).Msg("invalidar caché de alertas")
		}
	}
	if h.publisher != nil {
		if err := h.publisher.PublishMovements(ctx, movements); err != nil {
			h.log.Error().Err(err).Str("tenant_id", tenantID).Int("movements", len(movements)).Msg("publicar movimientos")
		}
	}
}
