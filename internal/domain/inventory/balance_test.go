package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func TestReplay_SumaConSigno(t *testing.T) {
	entries := []*entity.LedgerEntry{
		{Kind: entity.MovementTypeIN, Direction: entity.DirectionIncrease, ConvertedQuantity: d("100")},
		{Kind: entity.MovementTypeOUT, Direction: entity.DirectionDecrease, ConvertedQuantity: d("36")},
		{Kind: entity.MovementTypeTransferOUT, Direction: entity.DirectionDecrease, ConvertedQuantity: d("20")},
		{Kind: entity.MovementTypeADJUSTMENT, Direction: entity.DirectionIncrease, ConvertedQuantity: d("0.5")},
		{Kind: entity.MovementTypeTransferIN, Direction: entity.DirectionIncrease, ConvertedQuantity: d("7")},
	}
	assert.True(t, d("51.5").Equal(inventory.Replay(entries)))
	assert.True(t, inventory.Replay(nil).IsZero())
}

func TestApplyDelta(t *testing.T) {
	assert.True(t, d("8").Equal(inventory.ApplyDelta(d("10"), entity.DirectionDecrease, d("2"))))
	assert.True(t, d("12").Equal(inventory.ApplyDelta(d("10"), entity.DirectionIncrease, d("2"))))
}
