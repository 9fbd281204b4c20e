package service

import (
	"context"

	"car_market/internal/logger"
	"car_market/internal/media"
	"car_market/internal/models"
	"car_market/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, name, email, password string) (models.User, string, error)
	Login(ctx context.Context, email, password string) (models.User, string, error)
	// Authenticate resolves a bearer token to its user. Rejection order:
	// revoked, cryptographically invalid/expired, user gone.
	Authenticate(ctx context.Context, token string) (models.User, error)
	// Logout revokes the presented token for the rest of the process
	// lifetime. Idempotent.
	Logout(token string)
}

// Cars exposes the owner-scoped listing operations. Every call carries the
// resolved caller id; a listing owned by someone else behaves exactly like
// a missing one.
type Cars interface {
	Create(ctx context.Context, owner int, in CreateCarInput) (models.Car, error)
	List(ctx context.Context, owner int) ([]models.Car, error)
	Get(ctx context.Context, owner int, id string) (models.Car, error)
	Update(ctx context.Context, owner int, id string, in UpdateCarInput) (models.Car, error)
	Delete(ctx context.Context, owner int, id string) error
	RemoveImage(ctx context.Context, owner int, id, imageURL string) (models.Car, error)
	Search(ctx context.Context, owner int, query string) ([]models.Car, error)
}

// CreateCarInput carries validated-from-transport fields plus the local
// paths of staged image files awaiting upload.
type CreateCarInput struct {
	Title       string
	Description string
	Tags        models.CarTags
	ImagePaths  []string
}

// UpdateCarInput uses empty strings to mean "keep the previous value".
// Tags merge per key. A non-empty ImagePaths replaces the whole image
// sequence; empty leaves it untouched.
type UpdateCarInput struct {
	Title       string
	Description string
	Tags        models.CarTags
	ImagePaths  []string
}

type Service struct {
	Authorization
	Cars
}

func NewService(repos *repository.Repository, store media.Store, log *logger.Logger, authCfg AuthConfig) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Users, authCfg),
		Cars:          NewCarService(repos.Cars, store, log),
	}
}
