package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RedisAlertCache guarda las alertas de cada tenant en un hash (un campo por filtro de ubicación),
// así una sola DEL invalida todas las vistas del tenant tras un commit.
// Las escrituras van condicionadas a la versión del tenant (WATCH sobre versionKey).
type RedisAlertCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAlertCache ttl <= 0 deja las entradas sin expiración (solo invalidación explícita).
func NewRedisAlertCache(client *redis.Client, ttl time.Duration) *RedisAlertCache {
	return &RedisAlertCache{client: client, ttl: ttl}
}

type alertPayload struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	LocationID   *string         `json:"location_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	MinThreshold decimal.Decimal `json:"min_threshold"`
}

func (c *RedisAlertCache) Get(ctx context.Context, tenantID string, scope entity.LocationScope) ([]inventory.AlertRow, bool, error) {
	val, err := c.client.HGet(ctx, tenantKey(tenantID), scopeField(scope)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis hget alerts: %w", err)
	}

	var payload []alertPayload
	if err := json.Unmarshal([]byte(val), &payload); err != nil {
		return nil, false, fmt.Errorf("decode cached alerts: %w", err)
	}
	rows := make([]inventory.AlertRow, 0, len(payload))
	for _, p := range payload {
		rows = append(rows, inventory.AlertRow{
			ProductID:    p.ProductID,
			ProductName:  p.ProductName,
			LocationID:   p.LocationID,
			Quantity:     p.Quantity,
			MinThreshold: p.MinThreshold,
		})
	}
	return rows, true, nil
}

// errStaleAlerts la versión cambió desde que se calcularon las filas.
var errStaleAlerts = errors.New("stale alerts")

func (c *RedisAlertCache) Version(ctx context.Context, tenantID string) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(tenantID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get alerts version: %w", err)
	}
	return v, nil
}

func (c *RedisAlertCache) Set(ctx context.Context, tenantID string, scope entity.LocationScope, version int64, rows []inventory.AlertRow) error {
	payload := make([]alertPayload, 0, len(rows))
	for _, r := range rows {
		payload = append(payload, alertPayload{
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			LocationID:   r.LocationID,
			Quantity:     r.Quantity,
			MinThreshold: r.MinThreshold,
		})
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode alerts: %w", err)
	}

	key, vkey := tenantKey(tenantID), versionKey(tenantID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleAlerts
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, scopeField(scope), data)
			if c.ttl > 0 {
				pipe.Expire(ctx, key, c.ttl)
			}
			return nil
		})
		return err
	}, vkey)
	// Una invalidación concurrente gana: no se escribe y no es un error
	if errors.Is(err, errStaleAlerts) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis hset alerts: %w", err)
	}
	return nil
}

func (c *RedisAlertCache) Invalidate(ctx context.Context, tenantID string) error {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, versionKey(tenantID))
	pipe.Del(ctx, tenantKey(tenantID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis del alerts: %w", err)
	}
	return nil
}
