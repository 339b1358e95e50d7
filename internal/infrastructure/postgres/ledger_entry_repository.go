package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.LedgerEntryRepository = (*LedgerEntryRepo)(nil)

// LedgerEntryRepo implementación sobre PostgreSQL (usable con pool o tx). La tabla es append-only.
type LedgerEntryRepo struct {
	q Querier
}

// NewLedgerEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerEntryRepository(q Querier) *LedgerEntryRepo {
	return &LedgerEntryRepo{q: q}
}

const entryColumns = `seq, id, transfer_id, location_id, item_id, kind, direction, measurement_unit_id,
		raw_quantity, converted_quantity, counterparty_location_id, breakdown, balance_after,
		reference, note, actor_id, created_at`

// Create persiste un movimiento y asigna Seq y CreatedAt desde la BD.
func (r *LedgerEntryRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO ledger_entries (id, transfer_id, location_id, item_id, kind, direction, measurement_unit_id,
			raw_quantity, converted_quantity, counterparty_location_id, breakdown, balance_after,
			reference, note, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, COALESCE($16, now()))
		RETURNING seq, created_at`
	var createdAt any
	if !e.CreatedAt.IsZero() {
		createdAt = e.CreatedAt
	}
	err := r.q.QueryRow(ctx, query,
		e.ID, e.TransferID, e.LocationID, e.ItemID, string(e.Kind), int16(e.Direction), e.MeasurementUnitID,
		e.RawQuantity, e.ConvertedQuantity, e.CounterpartyLocationID, e.Breakdown, e.BalanceAfter,
		e.Reference, e.Note, e.ActorID, createdAt,
	).Scan(&e.Seq, &e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Errorf(domain.CodeValidation, "movimiento %s duplicado", e.ID)
		}
		return wrapErr("create ledger entry", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID. Devuelve nil, nil si no existe.
func (r *LedgerEntryRepo) GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error) {
	row := r.q.QueryRow(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE id = $1`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get ledger entry", err)
	}
	return e, nil
}

// ListByAccount lista los movimientos de una cuenta del más reciente al más antiguo.
func (r *LedgerEntryRepo) ListByAccount(ctx context.Context, locationID, itemID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + `
		FROM ledger_entries WHERE location_id = $1 AND item_id = $2
		ORDER BY seq DESC LIMIT $3 OFFSET $4`
	return r.list(ctx, query, locationID, itemID, limit, offset)
}

// CountByAccount cuenta los movimientos de una cuenta.
func (r *LedgerEntryRepo) CountByAccount(ctx context.Context, locationID, itemID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_entries WHERE location_id = $1 AND item_id = $2`,
		locationID, itemID).Scan(&n)
	if err != nil {
		return 0, wrapErr("count ledger entries", err)
	}
	return n, nil
}

// ListAllByAccount toda la historia de la cuenta en orden de reproducción (seq ascendente).
func (r *LedgerEntryRepo) ListAllByAccount(ctx context.Context, locationID, itemID string) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + `
		FROM ledger_entries WHERE location_id = $1 AND item_id = $2
		ORDER BY seq ASC`
	return r.list(ctx, query, locationID, itemID)
}

// ListItemIDsByLocation items con cuenta o movimientos en la ubicación.
func (r *LedgerEntryRepo) ListItemIDsByLocation(ctx context.Context, locationID string) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT item_id FROM stock_accounts WHERE location_id = $1
		UNION
		SELECT item_id FROM ledger_entries WHERE location_id = $1
		ORDER BY 1`, locationID)
	if err != nil {
		return nil, wrapErr("list item ids", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrapErr("list item ids", err)
	}
	return ids, nil
}

func (r *LedgerEntryRepo) list(ctx context.Context, query string, args ...any) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list ledger entries", err)
	}
	defer rows.Close()

	var list []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list ledger entries", err)
	}
	return list, nil
}

func scanEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var (
		e         entity.LedgerEntry
		kind      string
		direction int16
	)
	err := row.Scan(
		&e.Seq, &e.ID, &e.TransferID, &e.LocationID, &e.ItemID, &kind, &direction, &e.MeasurementUnitID,
		&e.RawQuantity, &e.ConvertedQuantity, &e.CounterpartyLocationID, &e.Breakdown, &e.BalanceAfter,
		&e.Reference, &e.Note, &e.ActorID, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Kind = entity.MovementType(kind)
	e.Direction = entity.Direction(direction)
	return &e, nil
}
