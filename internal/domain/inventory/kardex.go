package inventory

import (
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// KardexEntry movimiento anotado con el saldo inmediatamente posterior.
type KardexEntry struct {
	Movement   *entity.StockMovement
	StockAfter decimal.Decimal
}

// ReplayKardex reconstruye el saldo corrido a partir del libro mayor.
// Recibe los movimientos en orden de aplicación (orden de inserción del libro mayor, no created_at)
// y acumula las cantidades con signo según la tabla de direcciones. No modifica la entrada.
func ReplayKardex(movements []*entity.StockMovement) []KardexEntry {
	running := decimal.Zero
	entries := make([]KardexEntry, 0, len(movements))
	for _, m := range movements {
		running = running.Add(m.Type.Signed(m.Quantity))
		entries = append(entries, KardexEntry{Movement: m, StockAfter: running})
	}
	return entries
}

// FinalBalance saldo después del último movimiento de una reproducción ascendente.
func FinalBalance(entries []KardexEntry) decimal.Decimal {
	if len(entries) == 0 {
		return decimal.Zero
	}
	return entries[len(entries)-1].StockAfter
}

// Reverse invierte in situ (de más reciente a más antiguo).
func Reverse(entries []KardexEntry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}
