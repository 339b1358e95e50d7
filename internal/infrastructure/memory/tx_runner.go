package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner implementa inventory.TxRunner sobre el Store.
type TxRunner struct {
	s *Store
}

// NewTxRunner crea el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// tx escrituras pendientes y candados tomados por una transacción.
type tx struct {
	held     map[accountKey]bool
	order    []accountKey
	balances map[accountKey]decimal.Decimal
	created  map[accountKey]bool
	entries  []*entity.LedgerEntry
}

// Run ejecuta fn con repositorios atados a una transacción nueva. Commit si fn devuelve nil;
// si no, las escrituras se descartan. Los candados se liberan siempre.
func (r *TxRunner) Run(ctx context.Context, fn func(
	entryRepo repository.LedgerEntryRepository,
	accountRepo repository.StockAccountRepository,
	itemRepo repository.ItemRepository,
) error) error {
	t := &tx{
		held:     map[accountKey]bool{},
		balances: map[accountKey]decimal.Decimal{},
		created:  map[accountKey]bool{},
	}
	defer func() {
		for _, k := range t.order {
			r.s.release(k)
		}
	}()

	if err := fn(&EntryRepository{s: r.s, tx: t}, &AccountRepository{s: r.s, tx: t}, r.s.Items()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.commit(t)
	return nil
}

func (r *TxRunner) commit(t *tx) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for k := range t.created {
		if _, ok := s.accounts[k]; !ok {
			s.accounts[k] = &entity.StockAccount{LocationID: k.locationID, ItemID: k.itemID, CreatedAt: now, UpdatedAt: now}
		}
	}
	for k, b := range t.balances {
		a, ok := s.accounts[k]
		if !ok {
			a = &entity.StockAccount{LocationID: k.locationID, ItemID: k.itemID, CreatedAt: now}
			s.accounts[k] = a
		}
		a.Balance = b
		a.UpdatedAt = now
	}
	s.entries = append(s.entries, t.entries...)
}
