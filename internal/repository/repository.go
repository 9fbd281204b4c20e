package repository

import (
	"context"
	"database/sql"

	"car_market/internal/models"
)

type Users interface {
	Create(ctx context.Context, name, email, passwordHash string) (int, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// Cars is owner-scoped by construction: every lookup and mutation carries
// the owner id, so a listing belonging to another user is indistinguishable
// from a missing one.
type Cars interface {
	Insert(ctx context.Context, car models.Car) error
	ListByOwner(ctx context.Context, owner int) ([]models.Car, error)
	GetByOwner(ctx context.Context, owner int, id string) (*models.Car, error)
	Update(ctx context.Context, car models.Car) (bool, error)
	DeleteByOwner(ctx context.Context, owner int, id string) (*models.Car, error)
	PullImage(ctx context.Context, owner int, id, imageURL string) (*models.Car, error)
	SearchByOwner(ctx context.Context, owner int, query string) ([]models.Car, error)
}

type Repository struct {
	Users Users
	Cars  Cars
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users: NewUserRepository(db),
		Cars:  NewCarRepository(db),
	}
}
