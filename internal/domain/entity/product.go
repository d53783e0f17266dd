package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product colaborador de solo lectura: el núcleo únicamente consulta el umbral mínimo.
type Product struct {
	ID           string
	TenantID     string
	Name         string
	MinThreshold decimal.Decimal // punto de reorden; alerta cuando quantity <= MinThreshold
	CreatedAt    time.Time
}
