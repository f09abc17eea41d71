package groups

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Group, int, error)
	Get(ctx context.Context, id int64) (Group, error)
	Create(ctx context.Context, group Group) (Group, error)
	Update(ctx context.Context, id int64, group Group) error
	Delete(ctx context.Context, id int64) error
	LedgerCount(ctx context.Context, id int64) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Group, int, error) {
	query := `SELECT id, name, type, created_at, updated_at FROM groups WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM groups WHERE 1=1`
	countArgs := []interface{}{}
	if filters.Search != "" {
		countQuery += ` AND name ILIKE $1`
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`
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

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Type, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, 0, err
		}
		groups = append(groups, g)
	}
	return groups, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Group, error) {
	var g Group
	err := r.pool.QueryRow(ctx, `SELECT id, name, type, created_at, updated_at FROM groups WHERE id=$1`, id).
		Scan(&g.ID, &g.Name, &g.Type, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Group{}, shared.ErrNotFound
		}
		return Group{}, err
	}
	return g, nil
}

func (r *repository) Create(ctx context.Context, group Group) (Group, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO groups (name, type) VALUES ($1,$2) RETURNING id, created_at, updated_at`,
		group.Name, group.Type).Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		return Group{}, err
	}
	return group, nil
}

func (r *repository) Update(ctx context.Context, id int64, group Group) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE groups SET name=$2, type=$3, updated_at=NOW() WHERE id=$1`,
		id, group.Name, group.Type)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM groups WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) LedgerCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ledgers WHERE group_id=$1`, id).Scan(&count)
	return count, err
}
