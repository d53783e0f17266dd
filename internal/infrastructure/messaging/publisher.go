package messaging

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var (
	_ inventory.MovementPublisher = NoopPublisher{}
	_ inventory.MovementPublisher = (*KafkaPublisher)(nil)
)

// NoopPublisher descarta los movimientos (KAFKA_BROKERS vacío).
type NoopPublisher struct{}

func (NoopPublisher) PublishMovements(context.Context, []*entity.StockMovement) error { return nil }
