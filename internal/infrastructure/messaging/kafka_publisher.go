package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// messageWriter subconjunto de *kafka.Writer que usa el publicador.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publica un evento por movimiento confirmado. La clave tenant|producto
// mantiene en una misma partición el orden del kardex de cada producto.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher crea el writer contra los brokers y el tópico dados.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}}
}

// MovementRecordedEvent payload JSON del tópico de movimientos.
type MovementRecordedEvent struct {
	ID          string           `json:"id"`
	TenantID    string           `json:"tenant_id"`
	ProductID   string           `json:"product_id"`
	LocationID  *string          `json:"location_id"`
	Type        string           `json:"type"`
	ReferenceID *string          `json:"reference_id,omitempty"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost   *decimal.Decimal `json:"total_cost,omitempty"`
	Note        string           `json:"note,omitempty"`
	CreatedBy   string           `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
}

func newMovementRecordedEvent(m *entity.StockMovement) MovementRecordedEvent {
	return MovementRecordedEvent{
		ID:          m.ID,
		TenantID:    m.TenantID,
		ProductID:   m.ProductID,
		LocationID:  m.LocationID,
		Type:        string(m.Type),
		ReferenceID: m.ReferenceID,
		Quantity:    m.Quantity,
		UnitCost:    m.UnitCost,
		TotalCost:   m.TotalCost,
		Note:        m.Note,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

func (p *KafkaPublisher) PublishMovements(ctx context.Context, movements []*entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(movements))
	for _, m := range movements {
		payload, err := json.Marshal(newMovementRecordedEvent(m))
		if err != nil {
			return fmt.Errorf("encode movement %s: %w", m.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(m.TenantID + "|" + m.ProductID),
			Value: payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte("stock.movement.recorded")},
			},
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write movements: %w", err)
	}
	return nil
}

// Close vacía el buffer pendiente y cierra las conexiones.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
