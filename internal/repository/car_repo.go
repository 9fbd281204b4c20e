package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"car_market/internal/models"
)

type CarRepository struct {
	db *sql.DB
}

func NewCarRepository(db *sql.DB) *CarRepository {
	return &CarRepository{db: db}
}

var _ Cars = (*CarRepository)(nil)

const carColumns = `id, user_id, title, description, images, car_type, company, dealer, created_at, updated_at`

const (
	insertCarSQL = `INSERT INTO cars (` + carColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectCarsByOwnerSQL = `SELECT ` + carColumns + ` FROM cars WHERE user_id = ? ORDER BY created_at DESC`

	selectCarByOwnerSQL = `SELECT ` + carColumns + ` FROM cars WHERE id = ? AND user_id = ?`

	updateCarSQL = `UPDATE cars SET title = ?, description = ?, images = ?, car_type = ?, company = ?, dealer = ?, updated_at = ? WHERE id = ? AND user_id = ?`

	updateCarImagesSQL = `UPDATE cars SET images = ?, updated_at = ? WHERE id = ? AND user_id = ?`

	deleteCarSQL = `DELETE FROM cars WHERE id = ? AND user_id = ?`

	searchCarsByOwnerSQL = `SELECT ` + carColumns + ` FROM cars WHERE user_id = ? AND (` +
		`title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR ` +
		`car_type LIKE ? ESCAPE '\' OR company LIKE ? ESCAPE '\' OR dealer LIKE ? ESCAPE '\'` +
		`) ORDER BY created_at DESC`
)

// marshalImages converts the URL slice to its JSON column representation.
func marshalImages(images []string) (string, error) {
	b, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("marshal images: %w", err)
	}
	return string(b), nil
}

func unmarshalImages(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var images []string
	if err := json.Unmarshal([]byte(s), &images); err != nil {
		return nil, fmt.Errorf("unmarshal images: %w", err)
	}
	return images, nil
}

// scanCar reads one car row via the given Scan function (works for both
// *sql.Row and *sql.Rows).
func scanCar(scan func(dest ...any) error) (models.Car, error) {
	var (
		c         models.Car
		imagesStr string
	)
	if err := scan(
		&c.ID, &c.UserID, &c.Title, &c.Description, &imagesStr,
		&c.Tags.CarType, &c.Tags.Company, &c.Tags.Dealer,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return models.Car{}, err
	}
	images, err := unmarshalImages(imagesStr)
	if err != nil {
		return models.Car{}, err
	}
	c.Images = images
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

// Insert persists a new listing.
func (r *CarRepository) Insert(ctx context.Context, car models.Car) error {
	imagesStr, err := marshalImages(car.Images)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertCarSQL,
		car.ID, car.UserID, car.Title, car.Description, imagesStr,
		car.Tags.CarType, car.Tags.Company, car.Tags.Dealer,
		car.CreatedAt.UTC(), car.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert car %q: %w", car.ID, err)
	}
	return nil
}

// ListByOwner returns all of owner's listings, newest first.
func (r *CarRepository) ListByOwner(ctx context.Context, owner int) ([]models.Car, error) {
	rows, err := r.db.QueryContext(ctx, selectCarsByOwnerSQL, owner)
	if err != nil {
		return nil, fmt.Errorf("list cars for owner %d: %w", owner, err)
	}
	return collectCars(rows)
}

// GetByOwner returns the listing only when it belongs to owner.
// Returns (nil, nil) when missing or owned by someone else.
func (r *CarRepository) GetByOwner(ctx context.Context, owner int, id string) (*models.Car, error) {
	row := r.db.QueryRowContext(ctx, selectCarByOwnerSQL, id, owner)
	c, err := scanCar(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select car %q: %w", id, err)
	}
	return &c, nil
}

// Update rewrites all mutable columns, keyed by (id, user_id). Returns
// false when no row matched.
func (r *CarRepository) Update(ctx context.Context, car models.Car) (bool, error) {
	imagesStr, err := marshalImages(car.Images)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, updateCarSQL,
		car.Title, car.Description, imagesStr,
		car.Tags.CarType, car.Tags.Company, car.Tags.Dealer,
		car.UpdatedAt.UTC(),
		car.ID, car.UserID,
	)
	if err != nil {
		return false, fmt.Errorf("update car %q: %w", car.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for car %q: %w", car.ID, err)
	}
	return n > 0, nil
}

// DeleteByOwner removes the listing and returns the deleted row so the
// caller can clean up its media. Returns (nil, nil) on ownership mismatch
// or missing id.
func (r *CarRepository) DeleteByOwner(ctx context.Context, owner int, id string) (*models.Car, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin delete car %q: %w", id, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, selectCarByOwnerSQL, id, owner)
	c, err := scanCar(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select car %q for delete: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, deleteCarSQL, id, owner); err != nil {
		return nil, fmt.Errorf("delete car %q: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete car %q: %w", id, err)
	}
	return &c, nil
}

// PullImage removes exactly one matching URL from the listing's image
// sequence, atomically. Returns (nil, nil) when the listing is not owned
// by owner or the URL is not present.
func (r *CarRepository) PullImage(ctx context.Context, owner int, id, imageURL string) (*models.Car, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin pull image for car %q: %w", id, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, selectCarByOwnerSQL, id, owner)
	c, err := scanCar(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select car %q for pull: %w", id, err)
	}

	idx := -1
	for i, img := range c.Images {
		if img == imageURL {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}

	c.Images = append(c.Images[:idx], c.Images[idx+1:]...)
	c.UpdatedAt = time.Now().UTC()

	imagesStr, err := marshalImages(c.Images)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, updateCarImagesSQL, imagesStr, c.UpdatedAt, id, owner); err != nil {
		return nil, fmt.Errorf("pull image from car %q: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit pull image for car %q: %w", id, err)
	}
	return &c, nil
}

// likePattern escapes LIKE metacharacters in q so it is matched literally,
// then wraps it for substring matching.
func likePattern(q string) string {
	repl := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + repl.Replace(q) + "%"
}

// SearchByOwner performs a case-insensitive literal substring match over
// title, description and the three tag columns, newest first. An empty
// query matches everything.
func (r *CarRepository) SearchByOwner(ctx context.Context, owner int, query string) ([]models.Car, error) {
	p := likePattern(query)
	rows, err := r.db.QueryContext(ctx, searchCarsByOwnerSQL, owner, p, p, p, p, p)
	if err != nil {
		return nil, fmt.Errorf("search cars for owner %d: %w", owner, err)
	}
	return collectCars(rows)
}

func collectCars(rows *sql.Rows) ([]models.Car, error) {
	defer rows.Close()

	out := make([]models.Car, 0, 16)
	for rows.Next() {
		c, err := scanCar(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
