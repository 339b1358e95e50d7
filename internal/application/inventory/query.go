package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// LedgerPage página de movimientos, del más reciente al más antiguo.
type LedgerPage struct {
	Entries []*entity.LedgerEntry
	Total   int
	Page    int
	Limit   int
}

// StockPage página de saldos de una ubicación.
type StockPage struct {
	Levels []*entity.StockLevel
	Total  int
	Page   int
	Limit  int
}

// LedgerQueryUseCase consultas de solo lectura sobre el ledger y los saldos.
type LedgerQueryUseCase struct {
	entryRepo    repository.LedgerEntryRepository
	accountRepo  repository.StockAccountRepository
	catalog      catalog
	defaultLimit int
	maxLimit     int
	statements   StatementGenerator
}

// NewLedgerQueryUseCase construye el caso de uso. statements puede ser nil si no se generan extractos.
func NewLedgerQueryUseCase(
	entryRepo repository.LedgerEntryRepository,
	accountRepo repository.StockAccountRepository,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	statements StatementGenerator,
	defaultLimit, maxLimit int,
) *LedgerQueryUseCase {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &LedgerQueryUseCase{
		entryRepo:    entryRepo,
		accountRepo:  accountRepo,
		catalog:      catalog{itemRepo: itemRepo, locationRepo: locationRepo},
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		statements:   statements,
	}
}

func (uc *LedgerQueryUseCase) page(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = uc.defaultLimit
	}
	if limit > uc.maxLimit {
		limit = uc.maxLimit
	}
	return page, limit, (page - 1) * limit
}

// ListLedger pagina los movimientos de una cuenta por Seq descendente.
func (uc *LedgerQueryUseCase) ListLedger(ctx context.Context, locationID, itemID string, page, limit int) (*LedgerPage, error) {
	if _, _, err := uc.catalog.account(ctx, locationID, itemID); err != nil {
		return nil, err
	}
	page, limit, offset := uc.page(page, limit)
	entries, err := uc.entryRepo.ListByAccount(ctx, locationID, itemID, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.entryRepo.CountByAccount(ctx, locationID, itemID)
	if err != nil {
		return nil, err
	}
	return &LedgerPage{Entries: entries, Total: total, Page: page, Limit: limit}, nil
}

// GetEntry busca un movimiento por id, para auditoría (p. ej. el id devuelto por un traslado).
func (uc *LedgerQueryUseCase) GetEntry(ctx context.Context, id string) (*entity.LedgerEntry, error) {
	e, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrLedgerEntryNotFound
	}
	return e, nil
}

// GetAccount devuelve el saldo actual; una cuenta sin movimientos tiene saldo cero.
func (uc *LedgerQueryUseCase) GetAccount(ctx context.Context, locationID, itemID string) (*entity.StockAccount, *entity.Item, error) {
	_, item, err := uc.catalog.account(ctx, locationID, itemID)
	if err != nil {
		return nil, nil, err
	}
	acct, err := uc.accountRepo.Get(ctx, locationID, itemID)
	if err != nil {
		return nil, nil, err
	}
	return acct, item, nil
}

// ListLocationStock pagina los saldos de una ubicación junto a los datos de cada item.
func (uc *LedgerQueryUseCase) ListLocationStock(ctx context.Context, locationID string, page, limit int) (*StockPage, error) {
	if _, err := uc.catalog.location(ctx, locationID); err != nil {
		return nil, err
	}
	page, limit, offset := uc.page(page, limit)
	levels, total, err := uc.accountRepo.ListByLocation(ctx, locationID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &StockPage{Levels: levels, Total: total, Page: page, Limit: limit}, nil
}

// Statement genera el extracto PDF (kardex) de una cuenta con toda su historia.
func (uc *LedgerQueryUseCase) Statement(ctx context.Context, locationID, itemID string) ([]byte, error) {
	loc, item, err := uc.catalog.account(ctx, locationID, itemID)
	if err != nil {
		return nil, err
	}
	if uc.statements == nil {
		return nil, ErrStatementsDisabled
	}
	acct, err := uc.accountRepo.Get(ctx, locationID, itemID)
	if err != nil {
		return nil, err
	}
	entries, err := uc.entryRepo.ListAllByAccount(ctx, locationID, itemID)
	if err != nil {
		return nil, err
	}
	return uc.statements.Generate(StatementData{
		Location:    loc,
		Item:        item,
		Account:     acct,
		Entries:     entries,
		GeneratedAt: time.Now().UTC(),
	})
}
