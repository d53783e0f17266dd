package postgres

import (
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// psql builder de squirrel con placeholders $n.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// isSerializationFailure verifica si el error es un deadlock (40P01) o fallo de serialización (40001).
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40P01" || pgErr.Code == "40001"
	}
	return false
}

// scopeFilter traduce el filtro de ubicación a una condición sobre la columna indicada.
// squirrel.Eq con nil genera "IS NULL" (saldo central).
func scopeFilter(column string, scope entity.LocationScope) squirrel.Sqlizer {
	if scope.All {
		return nil
	}
	if scope.LocationID == nil {
		return squirrel.Eq{column: nil}
	}
	return squirrel.Eq{column: *scope.LocationID}
}
