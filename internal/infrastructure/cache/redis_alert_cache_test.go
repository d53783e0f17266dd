package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	return client
}

func TestScopeField(t *testing.T) {
	loc := "bodega-1"
	assert.Equal(t, "all", scopeField(entity.AllLocations()))
	assert.Equal(t, "central", scopeField(entity.AtLocation(nil)))
	assert.Equal(t, "loc:bodega-1", scopeField(entity.AtLocation(&loc)))
}

func TestNoopAlertCache_SiempreMiss(t *testing.T) {
	var c NoopAlertCache
	ctx := context.Background()
	v, err := c.Version(ctx, "t1")
	require.NoError(t, err)
	assert.Zero(t, v)
	require.NoError(t, c.Set(ctx, "t1", entity.AllLocations(), v, []inventory.AlertRow{{ProductID: "p1"}}))
	rows, ok, err := c.Get(ctx, "t1", entity.AllLocations())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, rows)
	assert.NoError(t, c.Invalidate(ctx, "t1"))
}

func TestRedisAlertCache_SetGetInvalidate(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	tenantID := "test-tenant-" + time.Now().Format("150405.000000")
	c := NewRedisAlertCache(client, time.Minute)
	defer client.Del(ctx, tenantKey(tenantID), versionKey(tenantID))

	loc := "A"
	rows := []inventory.AlertRow{
		{ProductID: "p1", ProductName: "Café", LocationID: &loc, Quantity: decimal.RequireFromString("1.5"), MinThreshold: decimal.NewFromInt(2)},
	}

	_, ok, err := c.Get(ctx, tenantID, entity.AllLocations())
	require.NoError(t, err)
	assert.False(t, ok, "miss antes de Set")

	v, err := c.Version(ctx, tenantID)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, tenantID, entity.AllLocations(), v, rows))
	require.NoError(t, c.Set(ctx, tenantID, entity.AtLocation(nil), v, []inventory.AlertRow{}))

	got, ok, err := c.Get(ctx, tenantID, entity.AllLocations())
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Café", got[0].ProductName)
	assert.Equal(t, &loc, got[0].LocationID)
	assert.True(t, got[0].Quantity.Equal(decimal.RequireFromString("1.5")))

	got, ok, err = c.Get(ctx, tenantID, entity.AtLocation(nil))
	require.NoError(t, err)
	assert.True(t, ok, "una lista vacía también es un hit")
	assert.Empty(t, got)

	ttl, err := client.TTL(ctx, tenantKey(tenantID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx, tenantID))
	_, ok, err = c.Get(ctx, tenantID, entity.AllLocations())
	require.NoError(t, err)
	assert.False(t, ok, "Invalidate borra todas las vistas del tenant")
	_, ok, err = c.Get(ctx, tenantID, entity.AtLocation(nil))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisAlertCache_SetConVersionViejaSeDescarta(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	tenantID := "test-tenant-" + time.Now().Format("150405.000000")
	c := NewRedisAlertCache(client, time.Minute)
	defer client.Del(ctx, tenantKey(tenantID), versionKey(tenantID))

	// Lectura que empieza antes del commit
	before, err := c.Version(ctx, tenantID)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx, tenantID))
	after, err := c.Version(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	stale := []inventory.AlertRow{{ProductID: "p1", Quantity: decimal.NewFromInt(9)}}
	require.NoError(t, c.Set(ctx, tenantID, entity.AllLocations(), before, stale))
	_, ok, err := c.Get(ctx, tenantID, entity.AllLocations())
	require.NoError(t, err)
	assert.False(t, ok, "filas calculadas antes de la invalidación no se guardan")

	require.NoError(t, c.Set(ctx, tenantID, entity.AllLocations(), after, stale))
	_, ok, err = c.Get(ctx, tenantID, entity.AllLocations())
	require.NoError(t, err)
	assert.True(t, ok)
}
