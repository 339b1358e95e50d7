package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrorCode identifica la clase de un error de dominio; los llamadores ramifican por código,
// nunca por el texto del mensaje.
type ErrorCode string

const (
	CodeItemNotFound         ErrorCode = "ITEM_NOT_FOUND"
	CodeMeasurementNotFound  ErrorCode = "MEASUREMENT_NOT_FOUND"
	CodeLocationNotFound     ErrorCode = "LOCATION_NOT_FOUND"
	CodeLedgerEntryNotFound  ErrorCode = "LEDGER_ENTRY_NOT_FOUND"
	CodeInvalidMeasurement   ErrorCode = "INVALID_MEASUREMENT"
	CodeMissingQuantity      ErrorCode = "MISSING_QUANTITY"
	CodeInsufficientStock    ErrorCode = "INSUFFICIENT_STOCK"
	CodeUnsupportedOperation ErrorCode = "UNSUPPORTED_OPERATION"
	CodeConcurrentContention ErrorCode = "CONCURRENT_CONTENTION"
	CodeValidation           ErrorCode = "VALIDATION"
	CodeUnauthorized         ErrorCode = "UNAUTHORIZED"
	CodeForbidden            ErrorCode = "FORBIDDEN"
)

// Error es el error tipado del dominio. Dos errores son equivalentes para errors.Is
// cuando comparten código, así que los sentinelas de abajo sirven como objetivo de comparación
// aunque el mensaje concreto sea distinto.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string { return e.Message }

// ErrorCode implementa Coded.
func (e *Error) ErrorCode() ErrorCode { return e.Code }

// Is compara por código.
func (e *Error) Is(target error) bool {
	var c Coded
	if !errors.As(target, &c) {
		return false
	}
	return c.ErrorCode() == e.Code
}

// Coded lo implementa cualquier error que lleve un ErrorCode.
type Coded interface {
	error
	ErrorCode() ErrorCode
}

// Errores de dominio.
var (
	ErrItemNotFound         = &Error{Code: CodeItemNotFound, Message: "item no encontrado"}
	ErrMeasurementNotFound  = &Error{Code: CodeMeasurementNotFound, Message: "medida no encontrada"}
	ErrLocationNotFound     = &Error{Code: CodeLocationNotFound, Message: "ubicación no encontrada"}
	ErrLedgerEntryNotFound  = &Error{Code: CodeLedgerEntryNotFound, Message: "movimiento no encontrado"}
	ErrInvalidMeasurement   = &Error{Code: CodeInvalidMeasurement, Message: "medida inválida"}
	ErrMissingQuantity      = &Error{Code: CodeMissingQuantity, Message: "falta la cantidad"}
	ErrInsufficientStock    = &Error{Code: CodeInsufficientStock, Message: "stock insuficiente"}
	ErrUnsupportedOperation = &Error{Code: CodeUnsupportedOperation, Message: "operación no soportada"}
	ErrConcurrentContention = &Error{Code: CodeConcurrentContention, Message: "contención concurrente, reintente"}
	ErrInvalidInput         = &Error{Code: CodeValidation, Message: "entrada inválida"}
	ErrUnauthorized         = &Error{Code: CodeUnauthorized, Message: "no autorizado"}
	ErrForbidden            = &Error{Code: CodeForbidden, Message: "acceso denegado"}
)

// Errorf construye un error de dominio con mensaje formateado.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError detalla una salida rechazada. errors.Is(err, ErrInsufficientStock) es true.
type InsufficientStockError struct {
	LocationID string
	ItemID     string
	Available  decimal.Decimal
	Requested  decimal.Decimal
	Unit       string
}

func (e *InsufficientStockError) Error() string {
	unit := e.Unit
	if unit == "" {
		unit = "unidad base"
	}
	return fmt.Sprintf("stock insuficiente: solo %s %s disponibles, solicitado %s %s",
		e.Available.String(), unit, e.Requested.String(), unit)
}

// ErrorCode implementa Coded.
func (e *InsufficientStockError) ErrorCode() ErrorCode { return CodeInsufficientStock }

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	var c Coded
	return errors.As(target, &c) && c.ErrorCode() == CodeInsufficientStock
}

// CodeOf devuelve el código del primer error de dominio en la cadena, o "" si no hay ninguno.
func CodeOf(err error) ErrorCode {
	var c Coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// IsRetryable indica si el llamador puede reintentar la operación con backoff.
func IsRetryable(err error) bool {
	return CodeOf(err) == CodeConcurrentContention
}
