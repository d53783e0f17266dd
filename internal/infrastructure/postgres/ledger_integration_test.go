package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Requiere una base real: STOCK_LEDGER_TEST_DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres/
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("STOCK_LEDGER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("STOCK_LEDGER_TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

type pgLedger struct {
	tenant    string
	movements *inventory.MovementUseCase
	transfers *inventory.TransferUseCase
	kardex    *inventory.KardexUseCase
	alerts    *inventory.AlertUseCase
	products  *postgres.ProductRepo
}

func newPGLedger(t *testing.T) *pgLedger {
	pool := testPool(t)
	runner := postgres.NewTxRunner(pool, 5*time.Second)
	hooks := inventory.NewCommitHooks(nil, nil, logger.Nop())
	movements := inventory.NewMovementUseCase(runner, hooks, logger.Nop())
	levels := postgres.NewStockLevelRepository(pool)
	return &pgLedger{
		// Un tenant nuevo por test: no hace falta limpiar tablas
		tenant:    uuid.NewString(),
		movements: movements,
		transfers: inventory.NewTransferUseCase(runner, movements, postgres.NewTransferRepository(pool), postgres.NewStockMovementRepository(pool), hooks, logger.Nop()),
		kardex:    inventory.NewKardexUseCase(postgres.NewStockMovementRepository(pool), levels),
		alerts:    inventory.NewAlertUseCase(levels, nil, logger.Nop()),
		products:  postgres.NewProductRepository(pool),
	}
}

func (l *pgLedger) apply(t *testing.T, product string, loc *string, typ entity.MovementType, qty string, cost *decimal.Decimal) (*inventory.MovementResult, error) {
	t.Helper()
	return l.movements.ApplyMovement(context.Background(), inventory.MovementInput{
		TenantID:   l.tenant,
		ProductID:  product,
		LocationID: loc,
		Type:       typ,
		Quantity:   decimal.RequireFromString(qty),
		UnitCost:   cost,
		ActorID:    "tester",
	})
}

func ptr[T any](v T) *T { return &v }

func TestPostgres_CostoPromedioYStockNegativo(t *testing.T) {
	l := newPGLedger(t)
	loc := ptr("L")

	_, err := l.apply(t, "p1", loc, entity.MovementPurchase, "10", ptr(decimal.NewFromInt(5)))
	require.NoError(t, err)
	res, err := l.apply(t, "p1", loc, entity.MovementPurchase, "10", ptr(decimal.NewFromInt(7)))
	require.NoError(t, err)
	assert.True(t, res.Level.AverageCost.Equal(decimal.NewFromInt(6)), "promedio ponderado: %s", res.Level.AverageCost)

	_, err = l.apply(t, "p1", loc, entity.MovementSale, "25", nil)
	assert.ErrorIs(t, err, domain.ErrNegativeStockNotAllowed)

	drift, err := l.kardex.VerifyLevel(context.Background(), entity.LevelKey{TenantID: l.tenant, ProductID: "p1", LocationID: loc})
	require.NoError(t, err)
	assert.True(t, drift.InSync)
	assert.True(t, drift.Cached.Equal(decimal.NewFromInt(20)))
}

func TestPostgres_CentralYUbicacionSonIndependientes(t *testing.T) {
	l := newPGLedger(t)

	_, err := l.apply(t, "p1", nil, entity.MovementInitial, "4", nil)
	require.NoError(t, err)
	_, err = l.apply(t, "p1", ptr("L"), entity.MovementInitial, "9", nil)
	require.NoError(t, err)
	// Segundo INITIAL central: debe reutilizar la fila con location_id NULL
	res, err := l.apply(t, "p1", nil, entity.MovementInitial, "1", nil)
	require.NoError(t, err)
	assert.True(t, res.Level.Quantity.Equal(decimal.NewFromInt(5)))

	entries, err := l.kardex.GetKardex(context.Background(), inventory.KardexQuery{
		TenantID:  l.tenant,
		ProductID: "p1",
		Scope:     entity.AtLocation(nil),
		Order:     inventory.OldestFirst,
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[1].StockAfter.Equal(decimal.NewFromInt(5)))
}

func TestPostgres_VentasConcurrentesNoSobrevenden(t *testing.T) {
	l := newPGLedger(t)
	loc := ptr("L")
	_, err := l.apply(t, "p1", loc, entity.MovementInitial, "10", nil)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.apply(t, "p1", loc, entity.MovementSale, "1", nil)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, domain.ErrNegativeStockNotAllowed) {
				fail++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 5, fail)
}

func TestPostgres_TransferenciaCompleta(t *testing.T) {
	l := newPGLedger(t)
	ctx := context.Background()
	_, err := l.apply(t, "p1", ptr("A"), entity.MovementPurchase, "10", ptr(decimal.NewFromInt(3)))
	require.NoError(t, err)

	tr, err := l.transfers.CreateTransfer(ctx, inventory.CreateTransferInput{
		TenantID:       l.tenant,
		FromLocationID: ptr("A"),
		ToLocationID:   ptr("B"),
		Items:          []inventory.TransferItemInput{{ProductID: "p1", Quantity: decimal.NewFromInt(4)}},
		ActorID:        "tester",
	})
	require.NoError(t, err)

	done, err := l.transfers.CompleteTransfer(ctx, l.tenant, tr.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	_, err = l.transfers.CancelTransfer(ctx, l.tenant, tr.ID)
	assert.ErrorIs(t, err, domain.ErrTransferInvalidStatus)

	list, err := l.transfers.ListTransfers(ctx, l.tenant)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Items, 1)

	entries, err := l.kardex.GetKardex(ctx, inventory.KardexQuery{
		TenantID:  l.tenant,
		ProductID: "p1",
		Scope:     entity.AtLocation(ptr("B")),
		Order:     inventory.NewestFirst,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.MovementTransferIn, entries[0].Movement.Type)
	assert.True(t, entries[0].StockAfter.Equal(decimal.NewFromInt(4)))
}

func TestPostgres_TransferenciaFallidaNoDejaRastro(t *testing.T) {
	l := newPGLedger(t)
	ctx := context.Background()
	_, err := l.apply(t, "p1", ptr("A"), entity.MovementInitial, "5", nil)
	require.NoError(t, err)
	_, err = l.apply(t, "p2", ptr("A"), entity.MovementInitial, "1", nil)
	require.NoError(t, err)

	tr, err := l.transfers.CreateTransfer(ctx, inventory.CreateTransferInput{
		TenantID:       l.tenant,
		FromLocationID: ptr("A"),
		ToLocationID:   ptr("B"),
		Items: []inventory.TransferItemInput{
			{ProductID: "p1", Quantity: decimal.NewFromInt(2)},
			{ProductID: "p2", Quantity: decimal.NewFromInt(3)},
		},
	})
	require.NoError(t, err)

	_, err = l.transfers.CompleteTransfer(ctx, l.tenant, tr.ID, "tester")
	assert.ErrorIs(t, err, domain.ErrNegativeStockNotAllowed)

	got, err := l.transfers.GetTransfer(ctx, l.tenant, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferPending, got.Status)

	entries, err := l.kardex.GetKardex(ctx, inventory.KardexQuery{
		TenantID:  l.tenant,
		ProductID: "p1",
		Scope:     entity.AllLocations(),
		Order:     inventory.NewestFirst,
	})
	require.NoError(t, err)
	assert.Len(t, entries, 1, "solo el INITIAL; el TRANSFER_OUT de p1 se revirtió")
}

func TestPostgres_Alertas(t *testing.T) {
	l := newPGLedger(t)
	ctx := context.Background()
	pid := uuid.NewString()
	require.NoError(t, l.products.Upsert(ctx, &entity.Product{
		ID: pid, TenantID: l.tenant, Name: "Arroz", MinThreshold: decimal.NewFromInt(5), CreatedAt: time.Now(),
	}))
	_, err := l.apply(t, pid, nil, entity.MovementInitial, "5", nil)
	require.NoError(t, err)
	_, err = l.apply(t, pid, ptr("L"), entity.MovementInitial, "6", nil)
	require.NoError(t, err)

	rows, err := l.alerts.GetStockAlerts(ctx, l.tenant, entity.AllLocations())
	require.NoError(t, err)
	require.Len(t, rows, 1, "igual al umbral alerta; por encima no")
	assert.Nil(t, rows[0].LocationID)
	assert.Equal(t, "Arroz", rows[0].ProductName)
}

func TestPostgres_ListByProductOrdenaPorSeq(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewStockMovementRepository(pool)
	tenantID := uuid.NewString()
	base := time.Now().UTC().Truncate(time.Second)

	// Relojes desfasados: cada fila insertada lleva una fecha anterior a la previa
	var ids []string
	for i := 0; i < 3; i++ {
		m := &entity.StockMovement{
			ID:        uuid.NewString(),
			TenantID:  tenantID,
			ProductID: "p1",
			Type:      entity.MovementPurchase,
			Quantity:  decimal.NewFromInt(int64(i + 1)),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, m))
		ids = append(ids, m.ID)
	}

	got, err := repo.ListByProduct(ctx, tenantID, "p1", entity.AllLocations())
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, m := range got {
		assert.Equal(t, ids[i], m.ID)
	}
}

func TestPostgres_MovimientosDeTransferencia(t *testing.T) {
	l := newPGLedger(t)
	ctx := context.Background()
	_, err := l.apply(t, "p1", ptr("A"), entity.MovementInitial, "5", nil)
	require.NoError(t, err)

	tr, err := l.transfers.CreateTransfer(ctx, inventory.CreateTransferInput{
		TenantID:       l.tenant,
		FromLocationID: ptr("A"),
		ToLocationID:   ptr("B"),
		Items:          []inventory.TransferItemInput{{ProductID: "p1", Quantity: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)
	_, err = l.transfers.CompleteTransfer(ctx, l.tenant, tr.ID, "tester")
	require.NoError(t, err)

	movs, err := l.transfers.TransferMovements(ctx, l.tenant, tr.ID)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTransferOut, movs[0].Type)
	assert.Equal(t, entity.MovementTransferIn, movs[1].Type)
}
