package companies

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context) ([]Company, error)
	Get(ctx context.Context, id int64) (Company, error)
	Create(ctx context.Context, company Company) (Company, error)
	Update(ctx context.Context, id int64, company Company) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context) ([]Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, state, gstin, address, created_at, updated_at FROM companies ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.State, &c.GSTIN, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `SELECT id, name, state, gstin, address, created_at, updated_at FROM companies WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.State, &c.GSTIN, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, shared.ErrNotFound
		}
		return Company{}, err
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, company Company) (Company, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO companies (name, state, gstin, address) VALUES ($1,$2,$3,$4) RETURNING id, created_at, updated_at`,
		company.Name, company.State, company.GSTIN, company.Address).
		Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		return Company{}, err
	}
	return company, nil
}

func (r *repository) Update(ctx context.Context, id int64, company Company) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE companies SET name=$2, state=$3, gstin=$4, address=$5, updated_at=NOW() WHERE id=$1`,
		id, company.Name, company.State, company.GSTIN, company.Address)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
