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

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implementación de TransferRepository sobre PostgreSQL (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de transferencias. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

type transferRow struct {
	ID             string     `db:"id"`
	TenantID       string     `db:"tenant_id"`
	FromLocationID *string    `db:"from_location_id"`
	ToLocationID   *string    `db:"to_location_id"`
	Status         string     `db:"status"`
	CreatedBy      string     `db:"created_by"`
	CreatedAt      time.Time  `db:"created_at"`
	CompletedAt    *time.Time `db:"completed_at"`
}

func (t transferRow) toEntity() *entity.Transfer {
	return &entity.Transfer{
		ID:             t.ID,
		TenantID:       t.TenantID,
		FromLocationID: t.FromLocationID,
		ToLocationID:   t.ToLocationID,
		Status:         entity.TransferStatus(t.Status),
		CreatedBy:      t.CreatedBy,
		CreatedAt:      t.CreatedAt,
		CompletedAt:    t.CompletedAt,
	}
}

type transferItemRow struct {
	ID         string          `db:"id"`
	TransferID string          `db:"transfer_id"`
	ProductID  string          `db:"product_id"`
	Quantity   decimal.Decimal `db:"quantity"`
}

const selectTransfer = `
	SELECT id, tenant_id, from_location_id, to_location_id, status, created_by, created_at, completed_at
	FROM stock_transfers
	WHERE tenant_id = $1 AND id = $2`

// Create inserta la cabecera y sus ítems. Debe llamarse dentro de una transacción.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_transfers (id, tenant_id, from_location_id, to_location_id, status, created_by, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.TenantID, t.FromLocationID, t.ToLocationID, string(t.Status), t.CreatedBy, t.CreatedAt, t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock transfer: %w", err)
	}
	for _, item := range t.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO stock_transfer_items (id, transfer_id, product_id, quantity)
			VALUES ($1, $2, $3, $4)`,
			item.ID, t.ID, item.ProductID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert stock transfer item: %w", err)
		}
	}
	return nil
}

// Get transferencia con ítems; (nil, nil) si no existe en el tenant.
func (r *TransferRepo) Get(ctx context.Context, tenantID, id string) (*entity.Transfer, error) {
	return r.get(ctx, selectTransfer, tenantID, id)
}

// GetForUpdate igual que Get pero bloquea la cabecera hasta el fin de la transacción.
func (r *TransferRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Transfer, error) {
	return r.get(ctx, selectTransfer+" FOR UPDATE", tenantID, id)
}

func (r *TransferRepo) get(ctx context.Context, query, tenantID, id string) (*entity.Transfer, error) {
	var row transferRow
	if err := pgxscan.Get(ctx, r.q, &row, query, tenantID, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock transfer: %w", err)
	}
	t := row.toEntity()
	items, err := r.listItems(ctx, []string{t.ID})
	if err != nil {
		return nil, err
	}
	t.Items = items[t.ID]
	return t, nil
}

// UpdateStatus persiste estado y fecha de cierre.
func (r *TransferRepo) UpdateStatus(ctx context.Context, t *entity.Transfer) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_transfers SET status = $3, completed_at = $4
		WHERE tenant_id = $1 AND id = $2`,
		t.TenantID, t.ID, string(t.Status), t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock transfer: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("update stock transfer: %s no encontrada", t.ID)
	}
	return nil
}

// ListByTenant transferencias del tenant, más recientes primero.
func (r *TransferRepo) ListByTenant(ctx context.Context, tenantID string) ([]*entity.Transfer, error) {
	sql, args, err := psql.Select("id", "tenant_id", "from_location_id", "to_location_id", "status", "created_by", "created_at", "completed_at").
		From("stock_transfers").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build transfers query: %w", err)
	}
	var rows []transferRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock transfers: %w", err)
	}
	if len(rows) == 0 {
		return []*entity.Transfer{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	items, err := r.listItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.Transfer, 0, len(rows))
	for _, row := range rows {
		t := row.toEntity()
		t.Items = items[t.ID]
		out = append(out, t)
	}
	return out, nil
}

func (r *TransferRepo) listItems(ctx context.Context, transferIDs []string) (map[string][]entity.TransferItem, error) {
	sql, args, err := psql.Select("id", "transfer_id", "product_id", "quantity").
		From("stock_transfer_items").
		Where(squirrel.Eq{"transfer_id": transferIDs}).
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build transfer items query: %w", err)
	}
	var rows []transferItemRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock transfer items: %w", err)
	}
	out := make(map[string][]entity.TransferItem, len(transferIDs))
	for _, row := range rows {
		out[row.TransferID] = append(out[row.TransferID], entity.TransferItem{
			ID:         row.ID,
			TransferID: row.TransferID,
			ProductID:  row.ProductID,
			Quantity:   row.Quantity,
		})
	}
	return out, nil
}
