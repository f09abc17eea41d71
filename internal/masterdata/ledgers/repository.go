package ledgers

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]LedgerWithGroup, int, error)
	Get(ctx context.Context, companyID, id int64) (LedgerWithGroup, error)
	Create(ctx context.Context, ledger Ledger) (Ledger, error)
	Update(ctx context.Context, id int64, ledger Ledger) error
	Delete(ctx context.Context, id int64) error
	EntryCount(ctx context.Context, id int64) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const selectLedger = `SELECT l.id, l.company_id, l.group_id, l.name, l.opening_balance, l.opening_balance_side,
COALESCE(l.state,''), COALESCE(l.gstin,''), l.created_at, l.updated_at, g.name, g.type
FROM ledgers l JOIN groups g ON g.id = l.group_id`

func scanLedger(row pgx.Row) (LedgerWithGroup, error) {
	var l LedgerWithGroup
	err := row.Scan(&l.ID, &l.CompanyID, &l.GroupID, &l.Name, &l.OpeningBalance, &l.OpeningBalanceSide,
		&l.State, &l.GSTIN, &l.CreatedAt, &l.UpdatedAt, &l.GroupName, &l.GroupType)
	return l, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]LedgerWithGroup, int, error) {
	query := selectLedger + ` WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM ledgers l WHERE 1=1`
	args := []interface{}{}
	countArgs := []interface{}{}
	argCount := 0

	if filters.CompanyID != nil {
		argCount++
		clause := ` AND l.company_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.CompanyID)
		countArgs = append(countArgs, *filters.CompanyID)
	}
	if filters.GroupID != nil {
		argCount++
		clause := ` AND l.group_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.GroupID)
		countArgs = append(countArgs, *filters.GroupID)
	}
	if filters.Search != "" {
		argCount++
		clause := ` AND l.name ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY l.name ASC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []LedgerWithGroup
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (LedgerWithGroup, error) {
	l, err := scanLedger(r.pool.QueryRow(ctx, selectLedger+` WHERE l.id=$1 AND l.company_id=$2`, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LedgerWithGroup{}, shared.ErrNotFound
		}
		return LedgerWithGroup{}, err
	}
	return l, nil
}

func (r *repository) Create(ctx context.Context, ledger Ledger) (Ledger, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO ledgers (company_id, group_id, name, opening_balance, opening_balance_side, state, gstin)
VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),NULLIF($7,'')) RETURNING id, created_at, updated_at`,
		ledger.CompanyID, ledger.GroupID, ledger.Name, ledger.OpeningBalance, ledger.OpeningBalanceSide, ledger.State, ledger.GSTIN).
		Scan(&ledger.ID, &ledger.CreatedAt, &ledger.UpdatedAt)
	if err != nil {
		return Ledger{}, err
	}
	return ledger, nil
}

func (r *repository) Update(ctx context.Context, id int64, ledger Ledger) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE ledgers SET group_id=$2, name=$3, opening_balance=$4, opening_balance_side=$5,
state=NULLIF($6,''), gstin=NULLIF($7,''), updated_at=NOW() WHERE id=$1`,
		id, ledger.GroupID, ledger.Name, ledger.OpeningBalance, ledger.OpeningBalanceSide, ledger.State, ledger.GSTIN)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM ledgers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) EntryCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM voucher_entries WHERE ledger_id=$1`, id).Scan(&count)
	return count, err
}
