package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RebuildResult saldo antes y después de reconstruir una cuenta desde el ledger.
type RebuildResult struct {
	LocationID      string
	ItemID          string
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	EntryCount      int
}

// Drifted indica si la caché difería de la historia.
func (r *RebuildResult) Drifted() bool {
	return !r.PreviousBalance.Equal(r.NewBalance)
}

// DriftReport comparación de solo lectura entre la caché y la reproducción del ledger.
type DriftReport struct {
	LocationID      string
	ItemID          string
	CachedBalance   decimal.Decimal
	ReplayedBalance decimal.Decimal
	Drift           decimal.Decimal // cached - replayed
	EntryCount      int
}

// InSync indica si la caché coincide con la historia.
func (r *DriftReport) InSync() bool {
	return r.Drift.IsZero()
}

// Reconciler recalcula saldos reproduciendo el ledger. Nunca escribe movimientos.
type Reconciler struct {
	txRunner    TxRunner
	catalog     catalog
	observer    Observer
	log         *logger.Logger
	concurrency int
}

// NewReconciler construye el caso de uso. concurrency acota RebuildLocation (mínimo 1).
func NewReconciler(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	observer Observer,
	log *logger.Logger,
	concurrency int,
) *Reconciler {
	if log == nil {
		log = logger.Nop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Reconciler{
		txRunner:    txRunner,
		catalog:     catalog{itemRepo: itemRepo, locationRepo: locationRepo},
		observer:    orNop(observer),
		log:         log,
		concurrency: concurrency,
	}
}

// Rebuild bloquea la cuenta (creándola si no existe), suma toda su historia por Seq y
// sobrescribe el saldo. Idempotente.
func (uc *Reconciler) Rebuild(ctx context.Context, locationID, itemID string) (res *RebuildResult, err error) {
	start := time.Now()
	defer func() { observe(uc.observer, OpRebuild, start, err) }()

	if _, _, err := uc.catalog.account(ctx, locationID, itemID); err != nil {
		return nil, err
	}
	res, err = uc.rebuild(ctx, locationID, itemID)
	if err != nil {
		return nil, err
	}
	if res.Drifted() {
		uc.observer.ObserveDrift(locationID, itemID)
		uc.log.ForAccount(locationID, itemID).Warn().
			Str("previous_balance", res.PreviousBalance.String()).
			Str("new_balance", res.NewBalance.String()).
			Msg("saldo en caché corregido desde el ledger")
	}
	return res, nil
}

func (uc *Reconciler) rebuild(ctx context.Context, locationID, itemID string) (*RebuildResult, error) {
	var res *RebuildResult
	err := uc.txRunner.Run(ctx, func(
		entryRepo repository.LedgerEntryRepository,
		accountRepo repository.StockAccountRepository,
		_ repository.ItemRepository,
	) error {
		acct, err := accountRepo.LockOrCreate(ctx, locationID, itemID)
		if err != nil {
			return err
		}
		entries, err := entryRepo.ListAllByAccount(ctx, locationID, itemID)
		if err != nil {
			return err
		}
		balance := inventory.Replay(entries)
		if !balance.Equal(acct.Balance) {
			if err := accountRepo.UpdateBalance(ctx, locationID, itemID, balance); err != nil {
				return err
			}
		}
		res = &RebuildResult{
			LocationID:      locationID,
			ItemID:          itemID,
			PreviousBalance: acct.Balance,
			NewBalance:      balance,
			EntryCount:      len(entries),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Drift compara la caché con la historia sin bloquear ni escribir. Con escrituras concurrentes
// el resultado es orientativo; Rebuild es la fuente autoritativa.
func (uc *Reconciler) Drift(ctx context.Context, locationID, itemID string) (*DriftReport, error) {
	if _, _, err := uc.catalog.account(ctx, locationID, itemID); err != nil {
		return nil, err
	}
	var rep *DriftReport
	err := uc.txRunner.Run(ctx, func(
		entryRepo repository.LedgerEntryRepository,
		accountRepo repository.StockAccountRepository,
		_ repository.ItemRepository,
	) error {
		acct, err := accountRepo.Get(ctx, locationID, itemID)
		if err != nil {
			return err
		}
		entries, err := entryRepo.ListAllByAccount(ctx, locationID, itemID)
		if err != nil {
			return err
		}
		replayed := inventory.Replay(entries)
		rep = &DriftReport{
			LocationID:      locationID,
			ItemID:          itemID,
			CachedBalance:   acct.Balance,
			ReplayedBalance: replayed,
			Drift:           acct.Balance.Sub(replayed),
			EntryCount:      len(entries),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// RebuildLocation reconstruye todas las cuentas de una ubicación, una transacción por cuenta,
// con a lo sumo concurrency reconstrucciones en paralelo. Se detiene en el primer error.
func (uc *Reconciler) RebuildLocation(ctx context.Context, locationID string) ([]*RebuildResult, error) {
	if locationID == "" {
		return nil, domain.Errorf(domain.CodeValidation, "location_id es obligatorio")
	}
	if _, err := uc.catalog.location(ctx, locationID); err != nil {
		return nil, err
	}
	var itemIDs []string
	err := uc.txRunner.Run(ctx, func(
		entryRepo repository.LedgerEntryRepository,
		_ repository.StockAccountRepository,
		_ repository.ItemRepository,
	) error {
		var err error
		itemIDs, err = entryRepo.ListItemIDsByLocation(ctx, locationID)
		return err
	})
	if err != nil {
		return nil, err
	}

	results := make([]*RebuildResult, len(itemIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)
	for i, itemID := range itemIDs {
		g.Go(func() error {
			r, err := uc.Rebuild(gctx, locationID, itemID)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	uc.log.Info().Str("location_id", locationID).Int("accounts", len(results)).Msg("ubicación reconstruida")
	return results, nil
}
