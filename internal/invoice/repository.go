package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/finyears"
	"github.com/bahikhata-erp/bahikhata/internal/platform/db"
	"github.com/bahikhata-erp/bahikhata/internal/voucher"
)

const selectInvoice = `SELECT i.id, i.company_id, i.type, i.invoice_number, i.date, i.due_date,
i.party_ledger_id, i.sales_ledger_id, i.discount_percent,
COALESCE(i.original_invoice_number,''), i.original_invoice_date,
i.subtotal, i.tax_total, i.discount_amount, i.grand_total,
i.paid_amount, i.payment_status, i.voucher_id, i.created_at, i.updated_at
FROM invoices i`

// Repository encapsulates DB operations for invoices and their
// payments. Every mutation runs through WithTx: an invoice, its
// generated voucher and any stock movement commit as one unit.
type Repository interface {
	List(ctx context.Context, f ListFilters) ([]Invoice, int, error)
	GetWithItems(ctx context.Context, companyID, invoiceID int64) (Invoice, error)
	ListPayments(ctx context.Context, companyID, invoiceID int64) ([]Payment, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository is the mutation surface inside an invoice transaction.
// The voucher statements mirror the voucher package's own repository;
// they are repeated here so the invoice, its voucher and its stock
// adjustments share one transaction.
type TxRepository interface {
	InsertInvoice(ctx context.Context, inv *Invoice) error
	InsertItems(ctx context.Context, invoiceID int64, items []Item) error
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	DeleteItems(ctx context.Context, invoiceID int64) error
	DeleteInvoice(ctx context.Context, invoiceID int64) error
	GetInvoiceForUpdate(ctx context.Context, companyID, invoiceID int64) (Invoice, error)
	ListItems(ctx context.Context, invoiceID int64) ([]Item, error)
	UpdatePaymentState(ctx context.Context, invoiceID int64, paid decimal.Decimal, status PaymentStatus) error

	InsertPayment(ctx context.Context, p *Payment) error
	DeletePayment(ctx context.Context, paymentID int64) error
	GetPaymentForUpdate(ctx context.Context, invoiceID, paymentID int64) (Payment, error)
	ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error)

	InsertVoucher(ctx context.Context, companyID int64, voucherType string, date time.Time, narration string, entries []voucher.EntryInput) (int64, error)
	ReplaceVoucherEntries(ctx context.Context, voucherID int64, voucherType string, date time.Time, narration string, entries []voucher.EntryInput) error
	DeleteVoucher(ctx context.Context, voucherID int64) error

	YearForDate(ctx context.Context, companyID int64, date time.Time) (finyears.FinancialYear, bool, error)
	AdjustStock(ctx context.Context, itemID int64, delta decimal.Decimal) error
	TaxLedgers(ctx context.Context, companyID int64) (taxLedgerSet, error)
	CompanyState(ctx context.Context, companyID int64) (string, error)
	LedgerState(ctx context.Context, companyID, ledgerID int64) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, f ListFilters) ([]Invoice, int, error) {
	where := []string{"i.company_id = $1"}
	args := []any{f.CompanyID}
	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, fmt.Sprintf("i.type = $%d", len(args)))
	}
	if f.PaymentStatus != "" {
		args = append(args, f.PaymentStatus)
		where = append(where, fmt.Sprintf("i.payment_status = $%d", len(args)))
	}
	if f.PartyLedgerID > 0 {
		args = append(args, f.PartyLedgerID)
		where = append(where, fmt.Sprintf("i.party_ledger_id = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("i.date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("i.date <= $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM invoices i WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Offset())
	query := fmt.Sprintf("%s WHERE %s ORDER BY i.date DESC, i.id DESC LIMIT $%d OFFSET $%d",
		selectInvoice, cond, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, inv)
	}
	return out, total, rows.Err()
}

func (r *repository) GetWithItems(ctx context.Context, companyID, invoiceID int64) (Invoice, error) {
	row := r.pool.QueryRow(ctx, selectInvoice+" WHERE i.id=$1 AND i.company_id=$2", invoiceID, companyID)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrInvoiceNotFound
		}
		return Invoice{}, err
	}
	inv.Items, err = listItems(ctx, r.pool, invoiceID)
	if err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

func (r *repository) ListPayments(ctx context.Context, companyID, invoiceID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.invoice_id, p.voucher_id, p.payment_date, p.amount,
p.payment_mode, COALESCE(p.reference_number,''), COALESCE(p.notes,''), p.created_at
FROM payments p JOIN invoices i ON i.id = p.invoice_id
WHERE p.invoice_id=$2 AND i.company_id=$1 ORDER BY p.payment_date ASC, p.id ASC`, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertInvoice(ctx context.Context, inv *Invoice) error {
	return r.tx.QueryRow(ctx, `INSERT INTO invoices (company_id, type, invoice_number, date, due_date,
party_ledger_id, sales_ledger_id, discount_percent, original_invoice_number, original_invoice_date,
subtotal, tax_total, discount_amount, grand_total, paid_amount, payment_status, voucher_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULLIF($9,''),$10,$11,$12,$13,$14,0,'UNPAID',$15)
RETURNING id, paid_amount, payment_status, created_at, updated_at`,
		inv.CompanyID, inv.Type, inv.InvoiceNumber, inv.Date, inv.DueDate,
		inv.PartyLedgerID, inv.SalesLedgerID, inv.DiscountPercent, inv.OriginalInvoiceNumber, inv.OriginalInvoiceDate,
		inv.Subtotal, inv.TaxTotal, inv.DiscountAmount, inv.GrandTotal, inv.VoucherID).
		Scan(&inv.ID, &inv.PaidAmount, &inv.PaymentStatus, &inv.CreatedAt, &inv.UpdatedAt)
}

func (r *txRepository) InsertItems(ctx context.Context, invoiceID int64, items []Item) error {
	for _, it := range items {
		if _, err := r.tx.Exec(ctx, `INSERT INTO invoice_items (invoice_id, item_id, description, quantity, rate,
tax_rate_percent, discount_percent, amount, discount_amount, taxable_amount, cgst, sgst, igst)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
			invoiceID, it.ItemID, it.Description, it.Quantity, it.Rate,
			it.TaxRatePercent, it.DiscountPercent, it.Amount, it.DiscountAmount, it.TaxableAmount,
			it.CGST, it.SGST, it.IGST); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) UpdateInvoice(ctx context.Context, inv *Invoice) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE invoices SET type=$2, invoice_number=$3, date=$4, due_date=$5,
party_ledger_id=$6, sales_ledger_id=$7, discount_percent=$8,
original_invoice_number=NULLIF($9,''), original_invoice_date=$10,
subtotal=$11, tax_total=$12, discount_amount=$13, grand_total=$14, updated_at=NOW()
WHERE id=$1`,
		inv.ID, inv.Type, inv.InvoiceNumber, inv.Date, inv.DueDate,
		inv.PartyLedgerID, inv.SalesLedgerID, inv.DiscountPercent,
		inv.OriginalInvoiceNumber, inv.OriginalInvoiceDate,
		inv.Subtotal, inv.TaxTotal, inv.DiscountAmount, inv.GrandTotal)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *txRepository) DeleteItems(ctx context.Context, invoiceID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id=$1`, invoiceID)
	return err
}

func (r *txRepository) DeleteInvoice(ctx context.Context, invoiceID int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM invoices WHERE id=$1`, invoiceID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *txRepository) GetInvoiceForUpdate(ctx context.Context, companyID, invoiceID int64) (Invoice, error) {
	row := r.tx.QueryRow(ctx, selectInvoice+" WHERE i.id=$1 AND i.company_id=$2 FOR UPDATE", invoiceID, companyID)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrInvoiceNotFound
		}
		return Invoice{}, err
	}
	return inv, nil
}

func (r *txRepository) ListItems(ctx context.Context, invoiceID int64) ([]Item, error) {
	return listItems(ctx, r.tx, invoiceID)
}

func (r *txRepository) UpdatePaymentState(ctx context.Context, invoiceID int64, paid decimal.Decimal, status PaymentStatus) error {
	_, err := r.tx.Exec(ctx, `UPDATE invoices SET paid_amount=$2, payment_status=$3, updated_at=NOW() WHERE id=$1`,
		invoiceID, paid, status)
	return err
}

func (r *txRepository) InsertPayment(ctx context.Context, p *Payment) error {
	return r.tx.QueryRow(ctx, `INSERT INTO payments (invoice_id, voucher_id, payment_date, amount, payment_mode, reference_number, notes)
VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),NULLIF($7,'')) RETURNING id, created_at`,
		p.InvoiceID, p.VoucherID, p.PaymentDate, p.Amount, p.PaymentMode, p.ReferenceNumber, p.Notes).
		Scan(&p.ID, &p.CreatedAt)
}

func (r *txRepository) DeletePayment(ctx context.Context, paymentID int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM payments WHERE id=$1`, paymentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *txRepository) GetPaymentForUpdate(ctx context.Context, invoiceID, paymentID int64) (Payment, error) {
	var p Payment
	err := r.tx.QueryRow(ctx, `SELECT id, invoice_id, voucher_id, payment_date, amount,
payment_mode, COALESCE(reference_number,''), COALESCE(notes,''), created_at
FROM payments WHERE id=$1 AND invoice_id=$2 FOR UPDATE`, paymentID, invoiceID).
		Scan(&p.ID, &p.InvoiceID, &p.VoucherID, &p.PaymentDate, &p.Amount,
			&p.PaymentMode, &p.ReferenceNumber, &p.Notes, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, ErrPaymentNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

func (r *txRepository) ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, invoice_id, voucher_id, payment_date, amount,
payment_mode, COALESCE(reference_number,''), COALESCE(notes,''), created_at
FROM payments WHERE invoice_id=$1 ORDER BY payment_date ASC, id ASC`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

// Voucher statements repeated from the voucher repository so everything
// commits in this transaction.

func (r *txRepository) InsertVoucher(ctx context.Context, companyID int64, voucherType string, date time.Time, narration string, entries []voucher.EntryInput) (int64, error) {
	var voucherID int64
	err := r.tx.QueryRow(ctx, `INSERT INTO vouchers (company_id, voucher_type, voucher_number, date, narration)
VALUES ($1, $2, (SELECT COALESCE(MAX(voucher_number), 0) + 1 FROM vouchers WHERE company_id=$1), $3, NULLIF($4,''))
RETURNING id`, companyID, voucherType, date, narration).Scan(&voucherID)
	if err != nil {
		return 0, db.ConflictOn(err, "uq_vouchers_number")
	}
	return voucherID, r.insertEntries(ctx, voucherID, entries)
}

func (r *txRepository) ReplaceVoucherEntries(ctx context.Context, voucherID int64, voucherType string, date time.Time, narration string, entries []voucher.EntryInput) error {
	if _, err := r.tx.Exec(ctx, `UPDATE vouchers SET voucher_type=$2, date=$3, narration=NULLIF($4,''), updated_at=NOW() WHERE id=$1`,
		voucherID, voucherType, date, narration); err != nil {
		return err
	}
	if _, err := r.tx.Exec(ctx, `DELETE FROM voucher_entries WHERE voucher_id=$1`, voucherID); err != nil {
		return err
	}
	return r.insertEntries(ctx, voucherID, entries)
}

func (r *txRepository) insertEntries(ctx context.Context, voucherID int64, entries []voucher.EntryInput) error {
	for _, entry := range entries {
		if _, err := r.tx.Exec(ctx, `INSERT INTO voucher_entries (voucher_id, ledger_id, amount, side, instrument_number, instrument_date)
VALUES ($1,$2,$3,$4,NULLIF($5,''),$6)`,
			voucherID, entry.LedgerID, entry.Amount, entry.Side, entry.InstrumentNumber, entry.InstrumentDate); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) DeleteVoucher(ctx context.Context, voucherID int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM voucher_entries WHERE voucher_id=$1`, voucherID); err != nil {
		return err
	}
	_, err := r.tx.Exec(ctx, `DELETE FROM vouchers WHERE id=$1`, voucherID)
	return err
}

// YearForDate mirrors the voucher repository's resolution of the
// financial year covering date.
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

func (r *txRepository) AdjustStock(ctx context.Context, itemID int64, delta decimal.Decimal) error {
	_, err := r.tx.Exec(ctx, `UPDATE items SET quantity = quantity + $2, updated_at=NOW()
WHERE id=$1 AND track_inventory`, itemID, delta)
	return err
}

// TaxLedgers resolves the company's GST ledger mappings. Missing keys
// come back as zero ids; the poster rejects them only when the
// corresponding tax component is nonzero.
func (r *txRepository) TaxLedgers(ctx context.Context, companyID int64) (taxLedgerSet, error) {
	rows, err := r.tx.Query(ctx, `SELECT mapping_key, ledger_id FROM account_mappings
WHERE company_id=$1 AND module='GST'`, companyID)
	if err != nil {
		return taxLedgerSet{}, err
	}
	defer rows.Close()
	var set taxLedgerSet
	for rows.Next() {
		var key string
		var ledgerID int64
		if err := rows.Scan(&key, &ledgerID); err != nil {
			return taxLedgerSet{}, err
		}
		switch key {
		case "CGST":
			set.CGST = ledgerID
		case "SGST":
			set.SGST = ledgerID
		case "IGST":
			set.IGST = ledgerID
		}
	}
	return set, rows.Err()
}

func (r *txRepository) CompanyState(ctx context.Context, companyID int64) (string, error) {
	var state string
	err := r.tx.QueryRow(ctx, `SELECT COALESCE(state,'') FROM companies WHERE id=$1`, companyID).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrInvoiceNotFound
	}
	return state, err
}

func (r *txRepository) LedgerState(ctx context.Context, companyID, ledgerID int64) (string, error) {
	var state string
	err := r.tx.QueryRow(ctx, `SELECT COALESCE(state,'') FROM ledgers WHERE id=$1 AND company_id=$2`, ledgerID, companyID).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", voucher.ErrLedgerNotFound
	}
	return state, err
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.CompanyID, &inv.Type, &inv.InvoiceNumber, &inv.Date, &inv.DueDate,
		&inv.PartyLedgerID, &inv.SalesLedgerID, &inv.DiscountPercent,
		&inv.OriginalInvoiceNumber, &inv.OriginalInvoiceDate,
		&inv.Subtotal, &inv.TaxTotal, &inv.DiscountAmount, &inv.GrandTotal,
		&inv.PaidAmount, &inv.PaymentStatus, &inv.VoucherID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return Invoice{}, err
	}
	inv.OutstandingAmount = outstandingAmount(inv.GrandTotal, inv.PaidAmount)
	return inv, nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listItems(ctx context.Context, q queryer, invoiceID int64) ([]Item, error) {
	rows, err := q.Query(ctx, `SELECT id, invoice_id, item_id, description, quantity, rate,
tax_rate_percent, discount_percent, amount, discount_amount, taxable_amount, cgst, sgst, igst
FROM invoice_items WHERE invoice_id=$1 ORDER BY id ASC`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.ItemID, &it.Description, &it.Quantity, &it.Rate,
			&it.TaxRatePercent, &it.DiscountPercent, &it.Amount, &it.DiscountAmount, &it.TaxableAmount,
			&it.CGST, &it.SGST, &it.IGST); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func scanPayments(rows pgx.Rows) ([]Payment, error) {
	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.VoucherID, &p.PaymentDate, &p.Amount,
			&p.PaymentMode, &p.ReferenceNumber, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
