package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.StockAccountRepository = (*AccountRepository)(nil)
	_ repository.LedgerEntryRepository  = (*EntryRepository)(nil)
	_ repository.ItemRepository         = (*ItemRepository)(nil)
	_ repository.LocationRepository     = (*LocationRepository)(nil)
)

var errNoTx = errors.New("memory: escritura fuera de transacción")

// AccountRepository implementa repository.StockAccountRepository.
type AccountRepository struct {
	s  *Store
	tx *tx
}

// Get devuelve el saldo visible para la transacción (o el confirmado); cero si no existe.
func (r *AccountRepository) Get(_ context.Context, locationID, itemID string) (*entity.StockAccount, error) {
	k := accountKey{locationID, itemID}
	acct := r.s.committedAccount(k)
	if acct == nil {
		acct = &entity.StockAccount{LocationID: locationID, ItemID: itemID, Balance: decimal.Zero}
	}
	if r.tx != nil {
		if b, ok := r.tx.balances[k]; ok {
			acct.Balance = b
		}
	}
	return acct, nil
}

// LockOrCreate toma el candado de la cuenta (una vez por transacción) y la crea en cero si no existe.
func (r *AccountRepository) LockOrCreate(ctx context.Context, locationID, itemID string) (*entity.StockAccount, error) {
	if r.tx == nil {
		return nil, errNoTx
	}
	k := accountKey{locationID, itemID}
	if !r.tx.held[k] {
		if err := r.s.acquire(ctx, k); err != nil {
			return nil, err
		}
		r.tx.held[k] = true
		r.tx.order = append(r.tx.order, k)
	}
	if r.s.committedAccount(k) == nil {
		r.tx.created[k] = true
	}
	return r.Get(ctx, locationID, itemID)
}

// UpdateBalance deja el nuevo saldo pendiente hasta el commit. Exige el candado de la cuenta.
func (r *AccountRepository) UpdateBalance(_ context.Context, locationID, itemID string, balance decimal.Decimal) error {
	if r.tx == nil {
		return errNoTx
	}
	k := accountKey{locationID, itemID}
	if !r.tx.held[k] {
		return errors.New("memory: UpdateBalance sin bloquear la cuenta")
	}
	if err := r.s.checkFault("accounts.UpdateBalance", locationID, itemID); err != nil {
		return err
	}
	r.tx.balances[k] = balance
	return nil
}

// ListByLocation saldos confirmados de la ubicación ordenados por código de item.
func (r *AccountRepository) ListByLocation(_ context.Context, locationID string, limit, offset int) ([]*entity.StockLevel, int, error) {
	r.s.mu.Lock()
	var levels []*entity.StockLevel
	for k, a := range r.s.accounts {
		if k.locationID != locationID {
			continue
		}
		lvl := &entity.StockLevel{StockAccount: *a}
		if it, ok := r.s.items[k.itemID]; ok {
			lvl.ItemCode, lvl.ItemName, lvl.BaseUnit = it.Code, it.Name, it.BaseUnit
		}
		levels = append(levels, lvl)
	}
	r.s.mu.Unlock()

	sort.Slice(levels, func(i, j int) bool {
		if levels[i].ItemCode != levels[j].ItemCode {
			return levels[i].ItemCode < levels[j].ItemCode
		}
		return levels[i].ItemID < levels[j].ItemID
	})
	return paginate(levels, limit, offset), len(levels), nil
}

// EntryRepository implementa repository.LedgerEntryRepository.
type EntryRepository struct {
	s  *Store
	tx *tx
}

// Create asigna Seq y deja el movimiento pendiente hasta el commit.
func (r *EntryRepository) Create(_ context.Context, e *entity.LedgerEntry) error {
	if r.tx == nil {
		return errNoTx
	}
	if err := r.s.checkFault("entries.Create", e.LocationID, e.ItemID); err != nil {
		return err
	}
	if e.ConvertedQuantity.IsNegative() || !e.Direction.Valid() {
		return errors.New("memory: movimiento inválido")
	}
	e.Seq = r.s.nextSeq()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	cp := *e
	r.tx.entries = append(r.tx.entries, &cp)
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *EntryRepository) GetByID(_ context.Context, id string) (*entity.LedgerEntry, error) {
	for _, e := range r.visible(func(*entity.LedgerEntry) bool { return true }) {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

// ListByAccount por Seq descendente.
func (r *EntryRepository) ListByAccount(_ context.Context, locationID, itemID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	all := r.byAccount(locationID, itemID)
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return paginate(all, limit, offset), nil
}

// CountByAccount número de movimientos de la cuenta.
func (r *EntryRepository) CountByAccount(_ context.Context, locationID, itemID string) (int, error) {
	return len(r.byAccount(locationID, itemID)), nil
}

// ListAllByAccount toda la historia por Seq ascendente.
func (r *EntryRepository) ListAllByAccount(_ context.Context, locationID, itemID string) ([]*entity.LedgerEntry, error) {
	return r.byAccount(locationID, itemID), nil
}

// ListItemIDsByLocation items con cuenta o movimientos en la ubicación.
func (r *EntryRepository) ListItemIDsByLocation(_ context.Context, locationID string) ([]string, error) {
	seen := map[string]bool{}
	r.s.mu.Lock()
	for k := range r.s.accounts {
		if k.locationID == locationID {
			seen[k.itemID] = true
		}
	}
	for _, e := range r.s.entries {
		if e.LocationID == locationID {
			seen[e.ItemID] = true
		}
	}
	r.s.mu.Unlock()
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *EntryRepository) byAccount(locationID, itemID string) []*entity.LedgerEntry {
	return r.visible(func(e *entity.LedgerEntry) bool {
		return e.LocationID == locationID && e.ItemID == itemID
	})
}

// visible movimientos confirmados más los pendientes de la transacción, por Seq ascendente.
func (r *EntryRepository) visible(match func(*entity.LedgerEntry) bool) []*entity.LedgerEntry {
	var out []*entity.LedgerEntry
	r.s.mu.Lock()
	for _, e := range r.s.entries {
		if match(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	r.s.mu.Unlock()
	if r.tx != nil {
		for _, e := range r.tx.entries {
			if match(e) {
				cp := *e
				out = append(out, &cp)
			}
		}
	}
	sortBySeq(out)
	return out
}

// ItemRepository implementa repository.ItemRepository.
type ItemRepository struct {
	s *Store
}

// GetByID devuelve nil, nil si no existe.
func (r *ItemRepository) GetByID(_ context.Context, id string) (*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	cp.Measurements = append([]entity.MeasurementUnit(nil), it.Measurements...)
	return &cp, nil
}

// GetMeasurementByID devuelve nil, nil si no existe.
func (r *ItemRepository) GetMeasurementByID(_ context.Context, id string) (*entity.MeasurementUnit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.measurements[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

// LocationRepository implementa repository.LocationRepository.
type LocationRepository struct {
	s *Store
}

// GetByID devuelve nil, nil si no existe.
func (r *LocationRepository) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
