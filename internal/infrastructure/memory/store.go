// Package memory implementa los puertos del ledger en memoria. Emula los bloqueos de fila
// con un candado por cuenta y descarta las escrituras de una transacción que no confirma.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type accountKey struct {
	locationID string
	itemID     string
}

// FaultFunc se invoca antes de cada escritura de una transacción; si devuelve error la escritura falla.
// op es "entries.Create" o "accounts.UpdateBalance".
type FaultFunc func(op, locationID, itemID string) error

// Store estado compartido. Sus métodos son seguros para uso concurrente.
type Store struct {
	mu           sync.Mutex
	locations    map[string]*entity.Location
	items        map[string]*entity.Item
	measurements map[string]*entity.MeasurementUnit
	accounts     map[accountKey]*entity.StockAccount
	entries      []*entity.LedgerEntry
	seq          int64
	locks        map[accountKey]chan struct{}
	fault        FaultFunc
	lockTimeout  time.Duration
}

// NewStore crea un store vacío. lockTimeout <= 0 espera indefinidamente (hasta cancelar ctx).
func NewStore(lockTimeout time.Duration) *Store {
	return &Store{
		locations:    map[string]*entity.Location{},
		items:        map[string]*entity.Item{},
		measurements: map[string]*entity.MeasurementUnit{},
		accounts:     map[accountKey]*entity.StockAccount{},
		locks:        map[accountKey]chan struct{}{},
		lockTimeout:  lockTimeout,
	}
}

// AddLocation registra una ubicación.
func (s *Store) AddLocation(l entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[l.ID] = &l
}

// AddItem registra un item con sus medidas.
func (s *Store) AddItem(it entity.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it.Measurements = append([]entity.MeasurementUnit(nil), it.Measurements...)
	s.items[it.ID] = &it
	for i := range it.Measurements {
		m := it.Measurements[i]
		m.ItemID = it.ID
		it.Measurements[i] = m
		s.measurements[m.ID] = &m
	}
}

// InjectFault instala (o quita, con nil) una función de fallo para las escrituras.
func (s *Store) InjectFault(f FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = f
}

// SetBalance fuerza el saldo en caché sin pasar por el ledger, para simular una caché desviada.
func (s *Store) SetBalance(locationID, itemID string, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := accountKey{locationID, itemID}
	acct, ok := s.accounts[k]
	if !ok {
		acct = &entity.StockAccount{LocationID: locationID, ItemID: itemID, CreatedAt: time.Now().UTC()}
		s.accounts[k] = acct
	}
	acct.Balance = balance
	acct.UpdatedAt = time.Now().UTC()
}

// EntryCount número de movimientos confirmados.
func (s *Store) EntryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Accounts repositorio de saldos fuera de transacción (solo lectura).
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{s: s} }

// Entries repositorio del ledger fuera de transacción (solo lectura).
func (s *Store) Entries() *EntryRepository { return &EntryRepository{s: s} }

// Items repositorio del catálogo de items.
func (s *Store) Items() *ItemRepository { return &ItemRepository{s: s} }

// Locations repositorio de ubicaciones.
func (s *Store) Locations() *LocationRepository { return &LocationRepository{s: s} }

// acquire toma el candado de la cuenta respetando ctx y lockTimeout.
func (s *Store) acquire(ctx context.Context, k accountKey) error {
	s.mu.Lock()
	ch, ok := s.locks[k]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[k] = ch
	}
	s.mu.Unlock()

	var timeout <-chan time.Time
	if s.lockTimeout > 0 {
		t := time.NewTimer(s.lockTimeout)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case ch <- struct{}{}:
		return nil
	case <-timeout:
		return domain.Errorf(domain.CodeConcurrentContention, "tiempo de espera agotado bloqueando %s/%s", k.locationID, k.itemID)
	case <-ctx.Done():
		return fmt.Errorf("bloqueo %s/%s: %w", k.locationID, k.itemID, ctx.Err())
	}
}

func (s *Store) release(k accountKey) {
	s.mu.Lock()
	ch := s.locks[k]
	s.mu.Unlock()
	<-ch
}

func (s *Store) checkFault(op, locationID, itemID string) error {
	s.mu.Lock()
	f := s.fault
	s.mu.Unlock()
	if f == nil {
		return nil
	}
	return f(op, locationID, itemID)
}

func (s *Store) nextSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// committedAccount copia del saldo confirmado; nil si no existe.
func (s *Store) committedAccount(k accountKey) *entity.StockAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[k]; ok {
		cp := *a
		return &cp
	}
	return nil
}

// committedEntries movimientos confirmados de la cuenta por Seq ascendente.
func (s *Store) committedEntries(k accountKey) []*entity.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.LedgerEntry
	for _, e := range s.entries {
		if e.LocationID == k.locationID && e.ItemID == k.itemID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sortBySeq(out)
	return out
}

func sortBySeq(entries []*entity.LedgerEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
}
