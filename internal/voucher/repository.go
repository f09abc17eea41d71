package voucher

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/finyears"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/groups"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/ledgers"
	"github.com/bahikhata-erp/bahikhata/internal/platform/db"
)

// Repository encapsulates DB operations for vouchers. Mutations run
// through WithTx so a voucher and its entries commit as one unit.
type Repository interface {
	List(ctx context.Context, companyID int64, from, to time.Time) ([]Voucher, error)
	GetWithEntries(ctx context.Context, companyID, voucherID int64) (Voucher, error)
	Activity(ctx context.Context, companyID, ledgerID int64, asOf time.Time) (LedgerActivity, error)
	StatementRows(ctx context.Context, companyID, ledgerID int64, from, to time.Time) ([]StatementRow, error)
	SetBankAllocationDate(ctx context.Context, companyID, entryID int64, date *time.Time) error
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the mutations available inside a posting
// transaction.
type TxRepository interface {
	InsertVoucher(ctx context.Context, in PostingInput) (Voucher, error)
	InsertEntries(ctx context.Context, voucherID int64, entries []EntryInput) error
	DeleteEntries(ctx context.Context, voucherID int64) error
	DeleteVoucher(ctx context.Context, voucherID int64) error
	UpdateVoucherHeader(ctx context.Context, voucherID int64, in PostingInput) error
	GetVoucherForUpdate(ctx context.Context, companyID, voucherID int64) (Voucher, error)
	YearForDate(ctx context.Context, companyID int64, date time.Time) (finyears.FinancialYear, bool, error)
	LedgerExists(ctx context.Context, companyID, ledgerID int64) (bool, error)
	LinkSource(ctx context.Context, module string, ref uuid.UUID, voucherID int64) error
	UnlinkSource(ctx context.Context, voucherID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, companyID int64, from, to time.Time) ([]Voucher, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, company_id, voucher_type, voucher_number, date, COALESCE(narration,''),
COALESCE(source_module,''), source_id, created_at, updated_at
FROM vouchers WHERE company_id=$1 AND date BETWEEN $2 AND $3 ORDER BY date ASC, id ASC`, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var vouchers []Voucher
	for rows.Next() {
		var v Voucher
		var sourceID *uuid.UUID
		if err := rows.Scan(&v.ID, &v.CompanyID, &v.VoucherType, &v.VoucherNumber, &v.Date, &v.Narration,
			&v.SourceModule, &sourceID, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		if sourceID != nil {
			v.SourceID = *sourceID
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, rows.Err()
}

func (r *repository) GetWithEntries(ctx context.Context, companyID, voucherID int64) (Voucher, error) {
	var v Voucher
	var sourceID *uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT id, company_id, voucher_type, voucher_number, date, COALESCE(narration,''),
COALESCE(source_module,''), source_id, created_at, updated_at
FROM vouchers WHERE id=$1 AND company_id=$2`, voucherID, companyID).
		Scan(&v.ID, &v.CompanyID, &v.VoucherType, &v.VoucherNumber, &v.Date, &v.Narration,
			&v.SourceModule, &sourceID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voucher{}, ErrVoucherNotFound
		}
		return Voucher{}, err
	}
	if sourceID != nil {
		v.SourceID = *sourceID
	}
	rows, err := r.pool.Query(ctx, `SELECT id, voucher_id, ledger_id, amount, side,
COALESCE(instrument_number,''), instrument_date, bank_allocation_date
FROM voucher_entries WHERE voucher_id=$1 ORDER BY id ASC`, voucherID)
	if err != nil {
		return Voucher{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.VoucherID, &e.LedgerID, &e.Amount, &e.Side,
			&e.InstrumentNumber, &e.InstrumentDate, &e.BankAllocationDate); err != nil {
			return Voucher{}, err
		}
		v.Entries = append(v.Entries, e)
	}
	return v, rows.Err()
}

// Activity aggregates the opening position and entry sums dated at or
// before asOf. Balances are always derived from this, never stored.
func (r *repository) Activity(ctx context.Context, companyID, ledgerID int64, asOf time.Time) (LedgerActivity, error) {
	var act LedgerActivity
	var groupType groups.GroupType
	err := r.pool.QueryRow(ctx, `SELECT l.id, l.opening_balance, l.opening_balance_side, g.type,
COALESCE(SUM(e.amount) FILTER (WHERE e.side='DR' AND v.date <= $3), 0),
COALESCE(SUM(e.amount) FILTER (WHERE e.side='CR' AND v.date <= $3), 0)
FROM ledgers l
JOIN groups g ON g.id = l.group_id
LEFT JOIN voucher_entries e ON e.ledger_id = l.id
LEFT JOIN vouchers v ON v.id = e.voucher_id
WHERE l.id = $2 AND l.company_id = $1
GROUP BY l.id, l.opening_balance, l.opening_balance_side, g.type`, companyID, ledgerID, asOf).
		Scan(&act.LedgerID, &act.Opening, &act.OpeningSide, &groupType, &act.Debit, &act.Credit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LedgerActivity{}, ErrLedgerNotFound
		}
		return LedgerActivity{}, err
	}
	act.NaturalSide = ledgers.NaturalSide(groupType)
	return act, nil
}

// StatementRows returns the ledger's entries in range ordered by
// (date, voucher id, entry id); running balances are filled in by the
// service.
func (r *repository) StatementRows(ctx context.Context, companyID, ledgerID int64, from, to time.Time) ([]StatementRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT e.id, e.voucher_id, e.ledger_id, e.amount, e.side,
COALESCE(e.instrument_number,''), e.instrument_date, e.bank_allocation_date,
v.voucher_number, v.voucher_type, v.date, COALESCE(v.narration,'')
FROM voucher_entries e
JOIN vouchers v ON v.id = e.voucher_id
WHERE e.ledger_id=$2 AND v.company_id=$1 AND v.date BETWEEN $3 AND $4
ORDER BY v.date ASC, v.id ASC, e.id ASC`, companyID, ledgerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StatementRow
	for rows.Next() {
		var row StatementRow
		if err := rows.Scan(&row.Entry.ID, &row.Entry.VoucherID, &row.Entry.LedgerID, &row.Entry.Amount, &row.Entry.Side,
			&row.Entry.InstrumentNumber, &row.Entry.InstrumentDate, &row.Entry.BankAllocationDate,
			&row.VoucherNumber, &row.VoucherType, &row.Date, &row.Narration); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) SetBankAllocationDate(ctx context.Context, companyID, entryID int64, date *time.Time) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE voucher_entries e SET bank_allocation_date=$3
FROM vouchers v WHERE e.id=$2 AND v.id=e.voucher_id AND v.company_id=$1`, companyID, entryID, date)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertVoucher(ctx context.Context, in PostingInput) (Voucher, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO vouchers (company_id, voucher_type, voucher_number, date, narration, source_module, source_id)
VALUES ($1, $2, (SELECT COALESCE(MAX(voucher_number), 0) + 1 FROM vouchers WHERE company_id=$1), $3, NULLIF($4,''), NULLIF($5,''), $6)
RETURNING id, voucher_number, created_at, updated_at`,
		in.CompanyID, in.VoucherType, in.Date, in.Narration, in.SourceModule, nullUUID(in.SourceID))
	v := Voucher{
		CompanyID:    in.CompanyID,
		VoucherType:  in.VoucherType,
		Date:         in.Date,
		Narration:    in.Narration,
		SourceModule: in.SourceModule,
		SourceID:     in.SourceID,
	}
	if err := row.Scan(&v.ID, &v.VoucherNumber, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return Voucher{}, db.ConflictOn(err, "uq_vouchers_number")
	}
	return v, nil
}

func (r *txRepository) InsertEntries(ctx context.Context, voucherID int64, entries []EntryInput) error {
	for _, entry := range entries {
		if _, err := r.tx.Exec(ctx, `INSERT INTO voucher_entries (voucher_id, ledger_id, amount, side, instrument_number, instrument_date, bank_allocation_date)
VALUES ($1,$2,$3,$4,NULLIF($5,''),$6,$7)`,
			voucherID, entry.LedgerID, entry.Amount, entry.Side, entry.InstrumentNumber, entry.InstrumentDate, entry.BankAllocationDate); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) DeleteEntries(ctx context.Context, voucherID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM voucher_entries WHERE voucher_id=$1`, voucherID)
	return err
}

func (r *txRepository) DeleteVoucher(ctx context.Context, voucherID int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM vouchers WHERE id=$1`, voucherID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVoucherNotFound
	}
	return nil
}

func (r *txRepository) UpdateVoucherHeader(ctx context.Context, voucherID int64, in PostingInput) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE vouchers SET voucher_type=$2, date=$3, narration=NULLIF($4,''), updated_at=NOW() WHERE id=$1`,
		voucherID, in.VoucherType, in.Date, in.Narration)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVoucherNotFound
	}
	return nil
}

func (r *txRepository) GetVoucherForUpdate(ctx context.Context, companyID, voucherID int64) (Voucher, error) {
	var v Voucher
	var sourceID *uuid.UUID
	err := r.tx.QueryRow(ctx, `SELECT id, company_id, voucher_type, voucher_number, date, COALESCE(narration,''),
COALESCE(source_module,''), source_id, created_at, updated_at
FROM vouchers WHERE id=$1 AND company_id=$2 FOR UPDATE`, voucherID, companyID).
		Scan(&v.ID, &v.CompanyID, &v.VoucherType, &v.VoucherNumber, &v.Date, &v.Narration,
			&v.SourceModule, &sourceID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voucher{}, ErrVoucherNotFound
		}
		return Voucher{}, err
	}
	if sourceID != nil {
		v.SourceID = *sourceID
	}
	return v, nil
}

// YearForDate resolves the financial year covering date. The second
// return is false when no year is configured for that date, in which
// case posting is allowed.
func (r *txRepository) YearForDate(ctx context.Context, companyID int64, date time.Time) (finyears.FinancialYear, bool, error) {
	var y finyears.FinancialYear
	err := r.tx.QueryRow(ctx, `SELECT id, company_id, name, start_date, end_date, is_active, is_closed, created_at, updated_at
FROM financial_years WHERE company_id=$1 AND $2 BETWEEN start_date AND end_date`, companyID, date).
		Scan(&y.ID, &y.CompanyID, &y.Name, &y.StartDate, &y.EndDate, &y.IsActive, &y.IsClosed, &y.CreatedAt, &y.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return finyears.FinancialYear{}, false, nil
		}
		return finyears.FinancialYear{}, false, err
	}
	return y, true, nil
}

func (r *txRepository) LedgerExists(ctx context.Context, companyID, ledgerID int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ledgers WHERE id=$1 AND company_id=$2)`, ledgerID, companyID).Scan(&exists)
	return exists, err
}

func (r *txRepository) LinkSource(ctx context.Context, module string, ref uuid.UUID, voucherID int64) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO source_links (module, ref_id, voucher_id) VALUES ($1,$2,$3)`, module, ref, voucherID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_source_links" {
			return ErrSourceConflict
		}
		return err
	}
	return nil
}

func (r *txRepository) UnlinkSource(ctx context.Context, voucherID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM source_links WHERE voucher_id=$1`, voucherID)
	return err
}

func nullUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}
