package recurring

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrTemplateNotFound = errors.New("recurring: template not found")

const selectTemplate = `SELECT id, company_id, profile_name, cron_expression, next_invoice_date,
last_generated_date, party_ledger_id, sales_ledger_id, discount_percent, is_active, created_at, updated_at
FROM recurring_templates`

// Repository persists recurring invoice templates.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]Template, error)
	ListDue(ctx context.Context, asOf time.Time) ([]Template, error)
	Get(ctx context.Context, companyID, templateID int64) (Template, error)
	Create(ctx context.Context, t *Template) error
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, companyID, templateID int64) error
	MarkFired(ctx context.Context, templateID int64, generated, next time.Time) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Template, error) {
	rows, err := r.pool.Query(ctx, selectTemplate+` WHERE company_id=$1 ORDER BY profile_name ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(ctx, rows)
}

// ListDue returns active templates whose next invoice date has passed.
func (r *repository) ListDue(ctx context.Context, asOf time.Time) ([]Template, error) {
	rows, err := r.pool.Query(ctx, selectTemplate+` WHERE is_active AND next_invoice_date <= $1 ORDER BY next_invoice_date ASC`, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(ctx, rows)
}

func (r *repository) Get(ctx context.Context, companyID, templateID int64) (Template, error) {
	t, err := scanTemplate(r.pool.QueryRow(ctx, selectTemplate+` WHERE id=$1 AND company_id=$2`, templateID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Template{}, ErrTemplateNotFound
		}
		return Template{}, err
	}
	t.Items, err = r.listItems(ctx, t.ID)
	return t, err
}

func (r *repository) Create(ctx context.Context, t *Template) error {
	err := r.pool.QueryRow(ctx, `INSERT INTO recurring_templates (company_id, profile_name, cron_expression,
next_invoice_date, party_ledger_id, sales_ledger_id, discount_percent, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at, updated_at`,
		t.CompanyID, t.ProfileName, t.CronExpression, t.NextInvoiceDate,
		t.PartyLedgerID, t.SalesLedgerID, t.DiscountPercent, t.IsActive).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return err
	}
	return r.replaceItems(ctx, t.ID, t.Items)
}

func (r *repository) Update(ctx context.Context, t *Template) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE recurring_templates SET profile_name=$3, cron_expression=$4,
next_invoice_date=$5, party_ledger_id=$6, sales_ledger_id=$7, discount_percent=$8, is_active=$9, updated_at=NOW()
WHERE id=$1 AND company_id=$2`,
		t.ID, t.CompanyID, t.ProfileName, t.CronExpression,
		t.NextInvoiceDate, t.PartyLedgerID, t.SalesLedgerID, t.DiscountPercent, t.IsActive)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return r.replaceItems(ctx, t.ID, t.Items)
}

func (r *repository) Delete(ctx context.Context, companyID, templateID int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM recurring_template_items WHERE template_id=$1`, templateID); err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM recurring_templates WHERE id=$1 AND company_id=$2`, templateID, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (r *repository) MarkFired(ctx context.Context, templateID int64, generated, next time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE recurring_templates SET last_generated_date=$2, next_invoice_date=$3, updated_at=NOW()
WHERE id=$1`, templateID, generated, next)
	return err
}

func (r *repository) replaceItems(ctx context.Context, templateID int64, items []TemplateItem) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM recurring_template_items WHERE template_id=$1`, templateID); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := r.pool.Exec(ctx, `INSERT INTO recurring_template_items (template_id, item_id, description,
quantity, rate, tax_rate_percent, discount_percent) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			templateID, it.ItemID, it.Description, it.Quantity, it.Rate, it.TaxRatePercent, it.DiscountPercent); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) listItems(ctx context.Context, templateID int64) ([]TemplateItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, template_id, item_id, description, quantity, rate,
tax_rate_percent, discount_percent
FROM recurring_template_items WHERE template_id=$1 ORDER BY id ASC`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TemplateItem
	for rows.Next() {
		var it TemplateItem
		if err := rows.Scan(&it.ID, &it.TemplateID, &it.ItemID, &it.Description, &it.Quantity, &it.Rate,
			&it.TaxRatePercent, &it.DiscountPercent); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *repository) scanAll(ctx context.Context, rows pgx.Rows) ([]Template, error) {
	var out []Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := r.listItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func scanTemplate(row pgx.Row) (Template, error) {
	var t Template
	err := row.Scan(&t.ID, &t.CompanyID, &t.ProfileName, &t.CronExpression, &t.NextInvoiceDate,
		&t.LastGeneratedDate, &t.PartyLedgerID, &t.SalesLedgerID, &t.DiscountPercent, &t.IsActive,
		&t.CreatedAt, &t.UpdatedAt)
	return t, err
}
