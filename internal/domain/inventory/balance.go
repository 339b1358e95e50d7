package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Replay suma los movimientos con su signo. El orden no altera el total, pero los llamadores
// pasan la historia por Seq ascendente para que los saldos intermedios tengan sentido.
func Replay(entries []*entity.LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Signed())
	}
	return total
}

// ApplyDelta devuelve el saldo tras aplicar qty en la dirección indicada.
func ApplyDelta(balance decimal.Decimal, dir entity.Direction, qty decimal.Decimal) decimal.Decimal {
	if dir == entity.DirectionDecrease {
		return balance.Sub(qty)
	}
	return balance.Add(qty)
}
