package inventory

import "github.com/shopspring/decimal"

// Decimales persistidos: cantidades numeric(14,3), costos numeric(14,4).
const (
	QuantityScale    = 3
	UnitCostScale    = 4
	AverageCostScale = 4
)

// FitsScale indica si v se representa sin redondeo con la cantidad de decimales dada.
// Los ceros a la derecha no cuentan: 1.5000 cabe en 3 decimales.
func FitsScale(v decimal.Decimal, places int32) bool {
	return v.Equal(v.Round(places))
}

// WeightedAverageCost implementa el costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Si la cantidad resultante no es positiva se conserva el costo actual en lugar de dividir por cero.
func WeightedAverageCost(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return costoActual
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum).Round(AverageCostScale)
}
