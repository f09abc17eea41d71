package finyears

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/shared"
	"github.com/bahikhata-erp/bahikhata/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, companyID int64) ([]FinancialYear, error)
	Get(ctx context.Context, companyID, id int64) (FinancialYear, error)
	Create(ctx context.Context, year FinancialYear) (FinancialYear, error)
	SetActive(ctx context.Context, companyID, id int64) error
	SetClosed(ctx context.Context, companyID, id int64, closed bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const selectYear = `SELECT id, company_id, name, start_date, end_date, is_active, is_closed, created_at, updated_at FROM financial_years`

func scanYear(row pgx.Row) (FinancialYear, error) {
	var y FinancialYear
	err := row.Scan(&y.ID, &y.CompanyID, &y.Name, &y.StartDate, &y.EndDate, &y.IsActive, &y.IsClosed, &y.CreatedAt, &y.UpdatedAt)
	return y, err
}

func (r *repository) List(ctx context.Context, companyID int64) ([]FinancialYear, error) {
	rows, err := r.pool.Query(ctx, selectYear+` WHERE company_id=$1 ORDER BY start_date DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var years []FinancialYear
	for rows.Next() {
		y, err := scanYear(rows)
		if err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (FinancialYear, error) {
	y, err := scanYear(r.pool.QueryRow(ctx, selectYear+` WHERE id=$1 AND company_id=$2`, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FinancialYear{}, shared.ErrNotFound
		}
		return FinancialYear{}, err
	}
	return y, nil
}

func (r *repository) Create(ctx context.Context, year FinancialYear) (FinancialYear, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO financial_years (company_id, name, start_date, end_date, is_active, is_closed)
VALUES ($1,$2,$3,$4,$5,false) RETURNING id, created_at, updated_at`,
		year.CompanyID, year.Name, year.StartDate, year.EndDate, year.IsActive).
		Scan(&year.ID, &year.CreatedAt, &year.UpdatedAt)
	if err != nil {
		return FinancialYear{}, err
	}
	return year, nil
}

// SetActive marks one year active and deactivates the rest of the
// company's years in the same transaction.
func (r *repository) SetActive(ctx context.Context, companyID, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE financial_years SET is_active=false, updated_at=NOW() WHERE company_id=$1 AND is_active`, companyID); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `UPDATE financial_years SET is_active=true, updated_at=NOW() WHERE id=$1 AND company_id=$2`, id, companyID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *repository) SetClosed(ctx context.Context, companyID, id int64, closed bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE financial_years SET is_closed=$3, updated_at=NOW() WHERE id=$1 AND company_id=$2`, id, companyID, closed)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
