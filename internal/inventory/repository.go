package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, companyID int64) ([]Item, error)
	Get(ctx context.Context, companyID, id int64) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, id int64, item Item) error
	AdjustStock(ctx context.Context, itemID int64, delta decimal.Decimal) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const selectItem = `SELECT id, company_id, name, COALESCE(description,''), unit_price, track_inventory, quantity, created_at, updated_at FROM items`

func (r *repository) List(ctx context.Context, companyID int64) ([]Item, error) {
	rows, err := r.pool.Query(ctx, selectItem+` WHERE company_id=$1 ORDER BY name ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.CompanyID, &it.Name, &it.Description, &it.UnitPrice, &it.TrackInventory, &it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Item, error) {
	var it Item
	err := r.pool.QueryRow(ctx, selectItem+` WHERE id=$1 AND company_id=$2`, id, companyID).
		Scan(&it.ID, &it.CompanyID, &it.Name, &it.Description, &it.UnitPrice, &it.TrackInventory, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.ErrNotFound
		}
		return Item{}, err
	}
	return it, nil
}

func (r *repository) Create(ctx context.Context, item Item) (Item, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO items (company_id, name, description, unit_price, track_inventory, quantity)
VALUES ($1,$2,NULLIF($3,''),$4,$5,$6) RETURNING id, created_at, updated_at`,
		item.CompanyID, item.Name, item.Description, item.UnitPrice, item.TrackInventory, item.Quantity).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (r *repository) Update(ctx context.Context, id int64, item Item) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE items SET name=$2, description=NULLIF($3,''), unit_price=$4, track_inventory=$5, updated_at=NOW() WHERE id=$1`,
		id, item.Name, item.Description, item.UnitPrice, item.TrackInventory)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) AdjustStock(ctx context.Context, itemID int64, delta decimal.Decimal) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE items SET quantity = quantity + $2, updated_at=NOW() WHERE id=$1 AND track_inventory`, itemID, delta)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
