package http

import (
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	app "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func toQuantitySpec(q dto.QuantityRequest) domaininv.QuantitySpec {
	spec := domaininv.QuantitySpec{
		MeasurementUnitID: q.MeasurementUnitID,
		Quantity:          q.Quantity,
		RawBaseAmount:     q.RawBaseAmount,
	}
	for _, e := range q.MeasurementEntries {
		spec.Entries = append(spec.Entries, domaininv.MeasurementEntry{MeasurementUnitID: e.MeasurementUnitID, Count: e.Count})
	}
	return spec
}

func toLedgerEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	terms := make([]dto.BreakdownTermResponse, 0, len(e.Breakdown.MeasurementEntries))
	for _, t := range e.Breakdown.MeasurementEntries {
		terms = append(terms, dto.BreakdownTermResponse{
			MeasurementUnitID: t.MeasurementUnitID,
			Count:             t.Count,
			ConversionFactor:  t.ConversionFactor,
			Subtotal:          t.Subtotal,
		})
	}
	return dto.LedgerEntryResponse{
		Seq:                    e.Seq,
		ID:                     e.ID,
		LocationID:             e.LocationID,
		ItemID:                 e.ItemID,
		TransferID:             e.TransferID,
		Kind:                   string(e.Kind),
		Direction:              int8(e.Direction),
		MeasurementUnitID:      e.MeasurementUnitID,
		RawQuantity:            e.RawQuantity,
		ConvertedQuantity:      e.ConvertedQuantity,
		SignedQuantity:         e.Signed(),
		CounterpartyLocationID: e.CounterpartyLocationID,
		Breakdown:              dto.BreakdownResponse{MeasurementEntries: terms, RawBaseAmount: e.Breakdown.RawBaseAmount},
		BalanceAfter:           e.BalanceAfter,
		Reference:              e.Reference,
		Note:                   e.Note,
		ActorID:                e.ActorID,
		CreatedAt:              e.CreatedAt,
	}
}

func toAccountResponse(a *entity.StockAccount) dto.AccountResponse {
	out := dto.AccountResponse{LocationID: a.LocationID, ItemID: a.ItemID, Balance: a.Balance}
	if !a.UpdatedAt.IsZero() {
		t := a.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

func toRebuildResponse(r *app.RebuildResult) dto.RebuildResponse {
	return dto.RebuildResponse{
		LocationID:      r.LocationID,
		ItemID:          r.ItemID,
		PreviousBalance: r.PreviousBalance,
		NewBalance:      r.NewBalance,
		EntryCount:      r.EntryCount,
		Drifted:         r.Drifted(),
	}
}
