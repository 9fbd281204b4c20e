package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"car_market/internal/apperr"
	"car_market/internal/logger"
	"car_market/internal/media"
	"car_market/internal/models"
	"car_market/internal/repository"

	"github.com/google/uuid"
)

const (
	minImages = 1
	maxImages = 10
)

const errNoCarMsg = "no car found with that ID"

// CarService implements the owner-scoped listing operations. Persistence
// is owner-filtered at the repository, so this layer only adds validation,
// field merging and media orchestration.
type CarService struct {
	cars  repository.Cars
	media media.Store
	log   *logger.Logger
}

var _ Cars = (*CarService)(nil)

func NewCarService(cars repository.Cars, store media.Store, log *logger.Logger) *CarService {
	return &CarService{cars: cars, media: store, log: log}
}

func (s *CarService) List(ctx context.Context, owner int) ([]models.Car, error) {
	return s.cars.ListByOwner(ctx, owner)
}

func (s *CarService) Get(ctx context.Context, owner int, id string) (models.Car, error) {
	car, err := s.cars.GetByOwner(ctx, owner, id)
	if err != nil {
		return models.Car{}, err
	}
	if car == nil {
		return models.Car{}, apperr.NotFound(errNoCarMsg)
	}
	return *car, nil
}

func (s *CarService) Create(ctx context.Context, owner int, in CreateCarInput) (models.Car, error) {
	if err := validateFields(in.Title, in.Description, in.Tags); err != nil {
		return models.Car{}, err
	}
	if len(in.ImagePaths) < minImages {
		return models.Car{}, apperr.Validation("please provide at least one image")
	}
	if len(in.ImagePaths) > maxImages {
		return models.Car{}, apperr.Validation("maximum 10 images allowed")
	}

	urls, err := s.uploadAll(ctx, in.ImagePaths)
	if err != nil {
		return models.Car{}, apperr.Internal("error uploading images", err)
	}

	now := time.Now().UTC()
	car := models.Car{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Images:      urls,
		Tags:        in.Tags,
		UserID:      owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.cars.Insert(ctx, car); err != nil {
		return models.Car{}, err
	}
	return car, nil
}

// Update merges partial fields onto the existing listing: empty scalars
// keep prior values, tags merge per key, and a non-empty image batch
// replaces the previous sequence entirely.
func (s *CarService) Update(ctx context.Context, owner int, id string, in UpdateCarInput) (models.Car, error) {
	existing, err := s.cars.GetByOwner(ctx, owner, id)
	if err != nil {
		return models.Car{}, err
	}
	if existing == nil {
		return models.Car{}, apperr.NotFound(errNoCarMsg)
	}

	car := *existing
	if t := strings.TrimSpace(in.Title); t != "" {
		car.Title = t
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		car.Description = d
	}
	if v := strings.TrimSpace(in.Tags.CarType); v != "" {
		car.Tags.CarType = v
	}
	if v := strings.TrimSpace(in.Tags.Company); v != "" {
		car.Tags.Company = v
	}
	if v := strings.TrimSpace(in.Tags.Dealer); v != "" {
		car.Tags.Dealer = v
	}

	if len(in.ImagePaths) > 0 {
		if len(in.ImagePaths) > maxImages {
			return models.Car{}, apperr.Validation("maximum 10 images allowed")
		}
		urls, err := s.uploadAll(ctx, in.ImagePaths)
		if err != nil {
			return models.Car{}, apperr.Internal("error uploading images", err)
		}
		car.Images = urls
	}

	car.UpdatedAt = time.Now().UTC()
	ok, err := s.cars.Update(ctx, car)
	if err != nil {
		return models.Car{}, err
	}
	if !ok {
		// deleted between read and write
		return models.Car{}, apperr.NotFound(errNoCarMsg)
	}
	return car, nil
}

// Delete removes the listing and detaches best-effort media cleanup; a
// slow or failing media host never turns a completed delete into an error.
func (s *CarService) Delete(ctx context.Context, owner int, id string) error {
	car, err := s.cars.DeleteByOwner(ctx, owner, id)
	if err != nil {
		return err
	}
	if car == nil {
		return apperr.NotFound(errNoCarMsg)
	}
	go s.cleanupImages(car.Images)
	return nil
}

// RemoveImage pulls exactly one URL from the listing's image sequence and
// best-effort deletes the underlying object.
func (s *CarService) RemoveImage(ctx context.Context, owner int, id, imageURL string) (models.Car, error) {
	if strings.TrimSpace(imageURL) == "" {
		return models.Car{}, apperr.Validation("image URL is required")
	}
	car, err := s.cars.PullImage(ctx, owner, id, imageURL)
	if err != nil {
		return models.Car{}, err
	}
	if car == nil {
		return models.Car{}, apperr.NotFound("car or image not found")
	}
	go s.cleanupImages([]string{imageURL})
	return *car, nil
}

func (s *CarService) Search(ctx context.Context, owner int, query string) ([]models.Car, error) {
	return s.cars.SearchByOwner(ctx, owner, strings.TrimSpace(query))
}

func validateFields(title, description string, tags models.CarTags) error {
	switch {
	case strings.TrimSpace(title) == "":
		return apperr.Validation("please provide a title")
	case strings.TrimSpace(description) == "":
		return apperr.Validation("please provide a description")
	case strings.TrimSpace(tags.CarType) == "":
		return apperr.Validation("please provide car type")
	case strings.TrimSpace(tags.Company) == "":
		return apperr.Validation("please provide company name")
	case strings.TrimSpace(tags.Dealer) == "":
		return apperr.Validation("please provide dealer name")
	}
	return nil
}

// uploadAll pushes every staged file to the media host in parallel and
// waits for the whole batch. Any single failure fails the batch.
func (s *CarService) uploadAll(ctx context.Context, paths []string) ([]string, error) {
	urls := make([]string, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			urls[i], errs[i] = s.media.Upload(ctx, p)
		}(i, p)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return urls, nil
}

// cleanupImages deletes media objects in parallel, logging failures and
// never reporting them to the caller. Runs detached from the request.
func (s *CarService) cleanupImages(urls []string) {
	ctx := context.Background()
	var wg sync.WaitGroup
	for _, u := range urls {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			if err := s.media.Delete(ctx, u); err != nil && s.log != nil {
				s.log.Errorw("media_delete_failed", "url", u, "err", err)
			}
		}(u)
	}
	wg.Wait()
}
