package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Garantiza atomicidad para el ledger.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		entryRepo repository.LedgerEntryRepository,
		accountRepo repository.StockAccountRepository,
		itemRepo repository.ItemRepository,
	) error) error
}

// Observer recibe el resultado de cada operación del ledger (métricas).
// outcome es "ok" o el código de error de dominio en minúsculas.
type Observer interface {
	ObserveOperation(operation, outcome string, elapsed time.Duration)
	ObserveDrift(locationID, itemID string)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, string, time.Duration) {}
func (nopObserver) ObserveDrift(string, string)                   {}

// StatementData datos de un extracto (kardex) de una cuenta.
type StatementData struct {
	Location    *entity.Location
	Item        *entity.Item
	Account     *entity.StockAccount
	Entries     []*entity.LedgerEntry // por Seq ascendente
	GeneratedAt time.Time
}

// StatementGenerator genera el documento PDF del extracto.
type StatementGenerator interface {
	Generate(data StatementData) ([]byte, error)
}
