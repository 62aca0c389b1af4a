package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inventory/api/internal/models"
)

var ErrItemNotFound = errors.New("item not found")

type ItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

func (r *ItemRepository) Create(ctx context.Context, item models.Item) error {
	const query = `
		INSERT INTO items (
			id, name, quantity, location, photo_key, photo_url, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.Name,
		item.Quantity,
		item.Location,
		item.PhotoKey,
		item.PhotoURL,
		item.CreatedAt,
	)
	return err
}

func (r *ItemRepository) Update(ctx context.Context, item models.Item) error {
	const query = `
		UPDATE items
		SET name = $2,
		    quantity = $3,
		    location = $4,
		    photo_key = COALESCE($5, photo_key),
		    photo_url = COALESCE($6, photo_url)
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		item.ID,
		item.Name,
		item.Quantity,
		item.Location,
		item.PhotoKey,
		item.PhotoURL,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Delete removes the record. Deleting an absent id is a no-op success.
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM items WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (models.Item, error) {
	const query = `
		SELECT id, name, quantity, location, photo_key, photo_url, created_at
		FROM items WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Item{}, ErrItemNotFound
		}
		return models.Item{}, err
	}
	return item, nil
}

// List returns the full catalog, newest-created first.
func (r *ItemRepository) List(ctx context.Context) ([]models.Item, error) {
	const query = `
		SELECT id, name, quantity, location, photo_key, photo_url, created_at
		FROM items
		ORDER BY created_at DESC
	`
	return r.queryItems(ctx, query)
}

// ListByName returns the catalog ordered by name, used by the export.
func (r *ItemRepository) ListByName(ctx context.Context) ([]models.Item, error) {
	const query = `
		SELECT id, name, quantity, location, photo_key, photo_url, created_at
		FROM items
		ORDER BY name
	`
	return r.queryItems(ctx, query)
}

// SuggestByName finds up to limit items whose name contains the fragment,
// case-insensitively, against current server truth.
func (r *ItemRepository) SuggestByName(ctx context.Context, fragment string, limit int) ([]models.Item, error) {
	const query = `
		SELECT id, name, quantity, location, photo_key, photo_url, created_at
		FROM items
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, fragment, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// FindByNameLocation looks up the exact trimmed (name, location) pair for
// duplicate detection.
func (r *ItemRepository) FindByNameLocation(ctx context.Context, name, location string) (models.Item, error) {
	const query = `
		SELECT id, name, quantity, location, photo_key, photo_url, created_at
		FROM items
		WHERE name = $1 AND location = $2
		LIMIT 1
	`
	row := r.pool.QueryRow(ctx, query, name, location)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Item{}, ErrItemNotFound
		}
		return models.Item{}, err
	}
	return item, nil
}

// ReferencedPhotoKeys returns every photo key some item still points at.
// The orphan sweep subtracts these from the bucket listing.
func (r *ItemRepository) ReferencedPhotoKeys(ctx context.Context) (map[string]struct{}, error) {
	const query = `SELECT photo_key FROM items WHERE photo_key IS NOT NULL`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys[key] = struct{}{}
	}
	return keys, rows.Err()
}

func (r *ItemRepository) queryItems(ctx context.Context, query string) ([]models.Item, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]models.Item, error) {
	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanItem(row pgx.Row) (models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Quantity,
		&item.Location,
		&item.PhotoKey,
		&item.PhotoURL,
		&item.CreatedAt,
	)
	return item, err
}
