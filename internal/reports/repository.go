package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/groups"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/ledgers"
	"github.com/bahikhata-erp/bahikhata/internal/voucher"
)

// activityRow carries one ledger's identity alongside its aggregated
// posting activity.
type activityRow struct {
	LedgerID   int64
	LedgerName string
	GroupName  string
	GroupType  groups.GroupType
	Activity   voucher.LedgerActivity
}

// gstrInvoiceRow is one outward invoice with the state columns needed
// for classification.
type gstrInvoiceRow struct {
	GSTR1Invoice
	PartyState   string
	CompanyState string
}

// Repository reads the aggregates the reports are computed from. All
// reads are single statements so each report sees one consistent
// snapshot.
type Repository interface {
	ClosingActivities(ctx context.Context, companyID int64, asOf time.Time) ([]activityRow, error)
	PeriodActivities(ctx context.Context, companyID int64, from, to time.Time) ([]activityRow, error)
	SalesInvoices(ctx context.Context, companyID int64, from, to time.Time) ([]gstrInvoiceRow, error)
	TaxTotals(ctx context.Context, companyID int64, invoiceType string, from, to time.Time) (TaxSummary, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// ClosingActivities aggregates opening balance plus all entries dated
// at or before asOf, per ledger.
func (r *repository) ClosingActivities(ctx context.Context, companyID int64, asOf time.Time) ([]activityRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT l.id, l.name, g.name, g.type, l.opening_balance, l.opening_balance_side,
COALESCE(SUM(e.amount) FILTER (WHERE e.side='DR' AND v.date <= $2), 0),
COALESCE(SUM(e.amount) FILTER (WHERE e.side='CR' AND v.date <= $2), 0)
FROM ledgers l
JOIN groups g ON g.id = l.group_id
LEFT JOIN voucher_entries e ON e.ledger_id = l.id
LEFT JOIN vouchers v ON v.id = e.voucher_id
WHERE l.company_id = $1
GROUP BY l.id, l.name, g.name, g.type, l.opening_balance, l.opening_balance_side
ORDER BY g.type ASC, l.name ASC`, companyID, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivityRows(rows, true)
}

// PeriodActivities aggregates only the entries dated inside the range;
// opening balances are excluded so the result is a period delta.
func (r *repository) PeriodActivities(ctx context.Context, companyID int64, from, to time.Time) ([]activityRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT l.id, l.name, g.name, g.type, l.opening_balance, l.opening_balance_side,
COALESCE(SUM(e.amount) FILTER (WHERE e.side='DR' AND v.date BETWEEN $2 AND $3), 0),
COALESCE(SUM(e.amount) FILTER (WHERE e.side='CR' AND v.date BETWEEN $2 AND $3), 0)
FROM ledgers l
JOIN groups g ON g.id = l.group_id
LEFT JOIN voucher_entries e ON e.ledger_id = l.id
LEFT JOIN vouchers v ON v.id = e.voucher_id
WHERE l.company_id = $1
GROUP BY l.id, l.name, g.name, g.type, l.opening_balance, l.opening_balance_side
ORDER BY g.type ASC, l.name ASC`, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivityRows(rows, false)
}

func (r *repository) SalesInvoices(ctx context.Context, companyID int64, from, to time.Time) ([]gstrInvoiceRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT i.id, i.invoice_number, i.date, pl.name,
COALESCE(pl.gstin,''), COALESCE(pl.state,''), COALESCE(c.state,''),
COALESCE(SUM(ii.taxable_amount), 0), COALESCE(SUM(ii.cgst), 0), COALESCE(SUM(ii.sgst), 0), COALESCE(SUM(ii.igst), 0),
i.grand_total
FROM invoices i
JOIN ledgers pl ON pl.id = i.party_ledger_id
JOIN companies c ON c.id = i.company_id
LEFT JOIN invoice_items ii ON ii.invoice_id = i.id
WHERE i.company_id = $1 AND i.type = 'SALES' AND i.date BETWEEN $2 AND $3
GROUP BY i.id, i.invoice_number, i.date, pl.name, pl.gstin, pl.state, c.state, i.grand_total
ORDER BY i.date ASC, i.id ASC`, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []gstrInvoiceRow
	for rows.Next() {
		var row gstrInvoiceRow
		if err := rows.Scan(&row.InvoiceID, &row.InvoiceNumber, &row.Date, &row.PartyName,
			&row.PartyGSTIN, &row.PartyState, &row.CompanyState,
			&row.TaxableValue, &row.CGST, &row.SGST, &row.IGST, &row.GrandTotal); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) TaxTotals(ctx context.Context, companyID int64, invoiceType string, from, to time.Time) (TaxSummary, error) {
	var t TaxSummary
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(ii.taxable_amount), 0), COALESCE(SUM(ii.igst), 0),
COALESCE(SUM(ii.cgst), 0), COALESCE(SUM(ii.sgst), 0)
FROM invoice_items ii
JOIN invoices i ON i.id = ii.invoice_id
WHERE i.company_id = $1 AND i.type = $2 AND i.date BETWEEN $3 AND $4`, companyID, invoiceType, from, to).
		Scan(&t.TaxableValue, &t.IGST, &t.CGST, &t.SGST)
	return t, err
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanActivityRows(rows pgxRows, withOpening bool) ([]activityRow, error) {
	var out []activityRow
	for rows.Next() {
		var row activityRow
		if err := rows.Scan(&row.LedgerID, &row.LedgerName, &row.GroupName, &row.GroupType,
			&row.Activity.Opening, &row.Activity.OpeningSide, &row.Activity.Debit, &row.Activity.Credit); err != nil {
			return nil, err
		}
		row.Activity.LedgerID = row.LedgerID
		row.Activity.NaturalSide = ledgers.NaturalSide(row.GroupType)
		if !withOpening {
			row.Activity.Opening = decimal.Zero
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
