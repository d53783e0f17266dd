package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro mayor sobre PostgreSQL. Solo inserta; un trigger rechaza UPDATE y DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del libro mayor. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

var movementColumns = []string{
	"id", "tenant_id", "product_id", "location_id", "movement_type", "reference_id",
	"quantity", "unit_cost", "total_cost", "note", "created_by", "created_at",
}

type movementRow struct {
	ID          string           `db:"id"`
	TenantID    string           `db:"tenant_id"`
	ProductID   string           `db:"product_id"`
	LocationID  *string          `db:"location_id"`
	Type        string           `db:"movement_type"`
	ReferenceID *string          `db:"reference_id"`
	Quantity    decimal.Decimal  `db:"quantity"`
	UnitCost    *decimal.Decimal `db:"unit_cost"`
	TotalCost   *decimal.Decimal `db:"total_cost"`
	Note        string           `db:"note"`
	CreatedBy   string           `db:"created_by"`
	CreatedAt   time.Time        `db:"created_at"`
}

func (m movementRow) toEntity() *entity.StockMovement {
	return &entity.StockMovement{
		ID:          m.ID,
		TenantID:    m.TenantID,
		ProductID:   m.ProductID,
		LocationID:  m.LocationID,
		Type:        entity.MovementType(m.Type),
		ReferenceID: m.ReferenceID,
		Quantity:    m.Quantity,
		UnitCost:    m.UnitCost,
		TotalCost:   m.TotalCost,
		Note:        m.Note,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

// Create agrega una fila al libro mayor. seq (BIGSERIAL) conserva el orden de inserción.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (id, tenant_id, product_id, location_id, movement_type, reference_id,
			quantity, unit_cost, total_cost, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.TenantID, m.ProductID, m.LocationID, string(m.Type), m.ReferenceID,
		m.Quantity, m.UnitCost, m.TotalCost, m.Note, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByProduct historial completo del producto en el ámbito dado, en orden de aplicación.
// seq se asigna con el bloqueo del saldo tomado. created_at viene del reloj de cada réplica
// y puede retroceder, así que no sirve para ordenar.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, tenantID, productID string, scope entity.LocationScope) ([]*entity.StockMovement, error) {
	q := psql.Select(movementColumns...).
		From("stock_movements").
		Where(squirrel.Eq{"tenant_id": tenantID, "product_id": productID}).
		OrderBy("seq ASC")
	if cond := scopeFilter("location_id", scope); cond != nil {
		q = q.Where(cond)
	}
	return r.selectMovements(ctx, q)
}

// ListByReference movimientos generados por un mismo documento (p. ej. una transferencia).
func (r *StockMovementRepo) ListByReference(ctx context.Context, tenantID, referenceID string) ([]*entity.StockMovement, error) {
	q := psql.Select(movementColumns...).
		From("stock_movements").
		Where(squirrel.Eq{"tenant_id": tenantID, "reference_id": referenceID}).
		OrderBy("seq ASC")
	return r.selectMovements(ctx, q)
}

func (r *StockMovementRepo) selectMovements(ctx context.Context, q squirrel.SelectBuilder) ([]*entity.StockMovement, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movements query: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	out := make([]*entity.StockMovement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}
