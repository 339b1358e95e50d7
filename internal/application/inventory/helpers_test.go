package inventory_test

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	app "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

const (
	locA   = "loc-a"
	locB   = "loc-b"
	itemID = "item-harina"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func raw(s string) inventory.QuantitySpec {
	return inventory.QuantitySpec{RawBaseAmount: dp(s)}
}

func boxes(n string) inventory.QuantitySpec {
	return inventory.QuantitySpec{Entries: []inventory.MeasurementEntry{{MeasurementUnitID: "box", Count: d(n)}}}
}

func boxesOf(unitID, n string) inventory.QuantitySpec {
	return inventory.QuantitySpec{Entries: []inventory.MeasurementEntry{{MeasurementUnitID: unitID, Count: d(n)}}}
}

type recordingObserver struct {
	mu     sync.Mutex
	ops    []string
	drifts int
}

func (o *recordingObserver) ObserveOperation(op, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, op+":"+outcome)
}

func (o *recordingObserver) ObserveDrift(string, string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.drifts++
}

type fixture struct {
	store      *memory.Store
	writer     *app.LedgerWriter
	transfers  *app.TransferCoordinator
	reconciler *app.Reconciler
	adjuster   *app.AbsoluteAdjuster
	query      *app.LedgerQueryUseCase
	observer   *recordingObserver
}

func newFixture() *fixture {
	s := memory.NewStore(2 * time.Second)
	s.AddLocation(entity.Location{ID: locA, Kind: entity.LocationKindStore, Name: "Tienda Centro"})
	s.AddLocation(entity.Location{ID: locB, Kind: entity.LocationKindCentral, Name: "Cocina Central"})
	s.AddItem(entity.Item{
		ID: itemID, Code: "HAR-01", Name: "Harina", BaseUnit: "g",
		Measurements: []entity.MeasurementUnit{
			{ID: "box", ConversionFactor: d("12")},
			{ID: "pack", ConversionFactor: d("6")},
		},
	})
	s.AddItem(entity.Item{
		ID: "item-azucar", Code: "AZU-01", Name: "Azúcar", BaseUnit: "g",
		Measurements: []entity.MeasurementUnit{{ID: "saco", ConversionFactor: d("1000")}},
	})

	runner := memory.NewTxRunner(s)
	obs := &recordingObserver{}
	return &fixture{
		store:      s,
		writer:     app.NewLedgerWriter(runner, s.Items(), s.Locations(), obs),
		transfers:  app.NewTransferCoordinator(runner, s.Items(), s.Locations(), obs),
		reconciler: app.NewReconciler(runner, s.Items(), s.Locations(), obs, nil, 3),
		adjuster:   app.NewAbsoluteAdjuster(runner, s.Items(), s.Locations(), obs),
		query:      app.NewLedgerQueryUseCase(s.Entries(), s.Accounts(), s.Items(), s.Locations(), nil, 2, 10),
		observer:   obs,
	}
}
