package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de StockLevelRepository sobre PostgreSQL (usable con pool o tx).
// La ubicación central (NULL) se compara vía COALESCE(location_id, '') para aprovechar el índice único.
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

const selectLevelColumns = `
	SELECT tenant_id, product_id, location_id, quantity, average_cost, updated_at
	FROM stock_levels
	WHERE tenant_id = $1 AND product_id = $2 AND COALESCE(location_id, '') = $3`

// GetForUpdate crea la fila en cero si no existe y luego la bloquea (SELECT FOR UPDATE).
// El INSERT ... ON CONFLICT DO NOTHING evita que dos transacciones creen la misma clave.
func (r *StockLevelRepo) GetForUpdate(ctx context.Context, key entity.LevelKey) (*entity.StockLevel, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_levels (tenant_id, product_id, location_id, quantity, average_cost, updated_at)
		VALUES ($1, $2, $3, 0, 0, now())
		ON CONFLICT (tenant_id, product_id, (COALESCE(location_id, ''))) DO NOTHING`,
		key.TenantID, key.ProductID, key.LocationID,
	)
	if err != nil {
		return nil, fmt.Errorf("create stock level: %w", err)
	}

	level, err := r.scanLevel(r.q.QueryRow(ctx, selectLevelColumns+" FOR UPDATE",
		key.TenantID, key.ProductID, key.LocationString()))
	if err != nil {
		return nil, fmt.Errorf("get stock level for update: %w", err)
	}
	return level, nil
}

// Get lectura sin bloqueo. Devuelve un saldo en cero si la clave no existe.
func (r *StockLevelRepo) Get(ctx context.Context, key entity.LevelKey) (*entity.StockLevel, error) {
	level, err := r.scanLevel(r.q.QueryRow(ctx, selectLevelColumns,
		key.TenantID, key.ProductID, key.LocationString()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.NewEmptyLevel(key), nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return level, nil
}

func (r *StockLevelRepo) scanLevel(row pgx.Row) (*entity.StockLevel, error) {
	var l entity.StockLevel
	if err := row.Scan(&l.TenantID, &l.ProductID, &l.LocationID, &l.Quantity, &l.AverageCost, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Save actualiza cantidad y costo promedio de una fila previamente bloqueada.
func (r *StockLevelRepo) Save(ctx context.Context, level *entity.StockLevel) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_levels
		SET quantity = $4, average_cost = $5, updated_at = $6
		WHERE tenant_id = $1 AND product_id = $2 AND COALESCE(location_id, '') = $3`,
		level.TenantID, level.ProductID, level.Key().LocationString(),
		level.Quantity, level.AverageCost, level.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock level: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("update stock level: fila %s no encontrada", level.Key())
	}
	return nil
}

type levelThresholdRow struct {
	TenantID     string          `db:"tenant_id"`
	ProductID    string          `db:"product_id"`
	LocationID   *string         `db:"location_id"`
	Quantity     decimal.Decimal `db:"quantity"`
	AverageCost  decimal.Decimal `db:"average_cost"`
	UpdatedAt    time.Time       `db:"updated_at"`
	ProductName  string          `db:"product_name"`
	MinThreshold decimal.Decimal `db:"min_threshold"`
}

// ListWithThresholds une stock_levels con products del mismo tenant. El filtro quantity <= umbral
// lo aplica el evaluador de alertas del dominio.
func (r *StockLevelRepo) ListWithThresholds(ctx context.Context, tenantID string, scope entity.LocationScope) ([]entity.LevelWithThreshold, error) {
	q := psql.Select(
		"s.tenant_id", "s.product_id", "s.location_id", "s.quantity", "s.average_cost", "s.updated_at",
		"p.name AS product_name", "p.min_threshold",
	).
		From("stock_levels s").
		Join("products p ON p.id = s.product_id AND p.tenant_id = s.tenant_id").
		Where(squirrel.Eq{"s.tenant_id": tenantID}).
		OrderBy("p.name", "s.product_id", "s.location_id NULLS FIRST")
	if cond := scopeFilter("s.location_id", scope); cond != nil {
		q = q.Where(cond)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build levels query: %w", err)
	}

	var rows []levelThresholdRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock levels with thresholds: %w", err)
	}

	out := make([]entity.LevelWithThreshold, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.LevelWithThreshold{
			Level: entity.StockLevel{
				TenantID:    row.TenantID,
				ProductID:   row.ProductID,
				LocationID:  row.LocationID,
				Quantity:    row.Quantity,
				AverageCost: row.AverageCost,
				UpdatedAt:   row.UpdatedAt,
			},
			ProductName:  row.ProductName,
			MinThreshold: row.MinThreshold,
		})
	}
	return out, nil
}
