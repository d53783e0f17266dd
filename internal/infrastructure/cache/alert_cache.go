package cache

import (
	"context"

	appinventory "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

var (
	_ appinventory.AlertCache = NoopAlertCache{}
	_ appinventory.AlertCache = (*RedisAlertCache)(nil)
)

// NoopAlertCache se usa cuando REDIS_ADDR está vacío: siempre miss.
type NoopAlertCache struct{}

func (NoopAlertCache) Get(context.Context, string, entity.LocationScope) ([]inventory.AlertRow, bool, error) {
	return nil, false, nil
}

func (NoopAlertCache) Version(context.Context, string) (int64, error) { return 0, nil }

func (NoopAlertCache) Set(context.Context, string, entity.LocationScope, int64, []inventory.AlertRow) error {
	return nil
}

func (NoopAlertCache) Invalidate(context.Context, string) error { return nil }

func tenantKey(tenantID string) string {
	return "stock:alerts:" + tenantID
}

// versionKey contador que sube con cada invalidación; vive fuera del hash para sobrevivir a la DEL.
func versionKey(tenantID string) string {
	return "stock:alerts:" + tenantID + ":version"
}

// scopeField campo del hash para el filtro: all, central o loc:<id>.
func scopeField(scope entity.LocationScope) string {
	switch {
	case scope.All:
		return "all"
	case scope.LocationID == nil:
		return "central"
	default:
		return "loc:" + *scope.LocationID
	}
}
