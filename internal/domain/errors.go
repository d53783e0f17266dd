package domain

import "errors"

// Error es un error de dominio con código legible por máquina.
// El código viaja hasta la capa HTTP sin depender del mensaje.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Códigos de error del libro mayor de inventario.
const (
	CodeNegativeStockNotAllowed = "NEGATIVE_STOCK_NOT_ALLOWED"
	CodeTransferNotFound        = "TRANSFER_NOT_FOUND"
	CodeTransferInvalidStatus   = "TRANSFER_INVALID_STATUS"
	CodeValidation              = "VALIDATION"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput            = &Error{Code: CodeValidation, Message: "entrada inválida"}
	ErrNegativeStockNotAllowed = &Error{Code: CodeNegativeStockNotAllowed, Message: "stock insuficiente"}
	ErrTransferNotFound        = &Error{Code: CodeTransferNotFound, Message: "transferencia no encontrada"}
	ErrTransferInvalidStatus   = &Error{Code: CodeTransferInvalidStatus, Message: "la transferencia no está en un estado válido para la operación"}
)

// CodeOf devuelve el código del primer *Error en la cadena, o "" si es un error de infraestructura.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
