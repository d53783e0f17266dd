package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// statusFor traduce el código de dominio a HTTP. Errores sin código son de infraestructura (500).
func statusFor(code string) int {
	switch code {
	case domain.CodeNegativeStockNotAllowed, domain.CodeTransferInvalidStatus:
		return fiber.StatusConflict
	case domain.CodeTransferNotFound:
		return fiber.StatusNotFound
	case domain.CodeValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError responde con dto.ErrorResponse. El detalle de errores internos solo va al log.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return c.Status(statusFor(de.Code)).JSON(dto.ErrorResponse{Code: de.Code, Message: de.Message})
	}
	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: domain.CodeValidation, Message: message})
}
