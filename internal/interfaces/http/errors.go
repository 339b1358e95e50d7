package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	app "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// retryAfterSeconds sugerido al cliente ante contención de bloqueos.
const retryAfterSeconds = "1"

// statusFor traduce el código de dominio a status HTTP.
func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation, domain.CodeMissingQuantity, domain.CodeInvalidMeasurement, domain.CodeUnsupportedOperation:
		return fiber.StatusBadRequest
	case domain.CodeItemNotFound, domain.CodeMeasurementNotFound, domain.CodeLocationNotFound, domain.CodeLedgerEntryNotFound:
		return fiber.StatusNotFound
	case domain.CodeInsufficientStock:
		return fiber.StatusConflict
	case domain.CodeConcurrentContention:
		return fiber.StatusServiceUnavailable
	case domain.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case domain.CodeForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError escribe el error como dto.ErrorResponse. Los errores sin código de dominio
// se registran y se devuelven como 500 sin exponer el detalle.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	if errors.Is(err, app.ErrStatementsDisabled) {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: err.Error()})
	}
	var coded domain.Coded
	if !errors.As(err, &coded) {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
	status := statusFor(coded.ErrorCode())
	if status == fiber.StatusServiceUnavailable {
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: string(coded.ErrorCode()), Message: coded.Error()})
}
