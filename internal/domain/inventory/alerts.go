package inventory

import (
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AlertRow saldo en o por debajo del umbral de reorden.
type AlertRow struct {
	ProductID    string
	ProductName  string
	LocationID   *string
	Quantity     decimal.Decimal
	MinThreshold decimal.Decimal
}

// EvaluateAlerts filtra los saldos con quantity <= minThreshold. Función pura.
func EvaluateAlerts(rows []entity.LevelWithThreshold) []AlertRow {
	alerts := make([]AlertRow, 0)
	for _, r := range rows {
		if r.Level.Quantity.LessThanOrEqual(r.MinThreshold) {
			alerts = append(alerts, AlertRow{
				ProductID:    r.Level.ProductID,
				ProductName:  r.ProductName,
				LocationID:   r.Level.LocationID,
				Quantity:     r.Level.Quantity,
				MinThreshold: r.MinThreshold,
			})
		}
	}
	return alerts
}
