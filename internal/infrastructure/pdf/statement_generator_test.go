package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func sampleStatement() inventory.StatementData {
	box := "box"
	three := decimal.NewFromInt(3)
	other := "loc-b"
	return inventory.StatementData{
		Location: &entity.Location{ID: "loc-a", Kind: entity.LocationKindStore, Name: "Tienda Centro"},
		Item:     &entity.Item{ID: "item-harina", Code: "HAR-01", Name: "Harina", BaseUnit: "g"},
		Account:  &entity.StockAccount{LocationID: "loc-a", ItemID: "item-harina", Balance: decimal.NewFromInt(50)},
		Entries: []*entity.LedgerEntry{
			{Seq: 1, Kind: entity.MovementTypeIN, Direction: entity.DirectionIncrease, ConvertedQuantity: decimal.NewFromInt(100),
				BalanceAfter: decimal.NewFromInt(100), Reference: "OC-1"},
			{Seq: 2, Kind: entity.MovementTypeOUT, Direction: entity.DirectionDecrease, ConvertedQuantity: decimal.NewFromInt(36),
				MeasurementUnitID: &box, RawQuantity: &three, BalanceAfter: decimal.NewFromInt(64)},
			{Seq: 3, Kind: entity.MovementTypeTransferOUT, Direction: entity.DirectionDecrease, ConvertedQuantity: decimal.NewFromInt(14),
				CounterpartyLocationID: &other, BalanceAfter: decimal.NewFromInt(50), Note: "Transfer to central loc-b"},
		},
		GeneratedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestGenerate_ProducePDF(t *testing.T) {
	out, err := NewStatementGenerator().Generate(sampleStatement())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerate_DatosIncompletos(t *testing.T) {
	data := sampleStatement()
	data.Account = nil
	_, err := NewStatementGenerator().Generate(data)
	assert.Error(t, err)
}

func TestHelpers(t *testing.T) {
	data := sampleStatement()
	assert.Equal(t, "3 × box", measurementLabel(data.Entries[1]))
	assert.Equal(t, "-", measurementLabel(data.Entries[0]))
	assert.Equal(t, "TRANSFER_OUT ↔ loc-b", kindLabel(data.Entries[2]))
	assert.Equal(t, "loc-a|item-harina|seq=3|balance=50|2026-03-01T10:00:00Z", verificationCode(data, decimal.NewFromInt(50)))
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
