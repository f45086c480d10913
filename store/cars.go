package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/krishkalaria12/car-vault/models"
)

// Sentinel errors for the handler layer. Backend causes stay in the logs;
// callers only ever see these.
var (
	ErrNotFound         = errors.New("car not found")
	ErrPermissionDenied = errors.New("you do not have permission to access this car")
	ErrLoadFailed       = errors.New("failed to load cars")
	ErrCreateFailed     = errors.New("failed to create car")
	ErrUpdateFailed     = errors.New("failed to update car")
	ErrDeleteFailed     = errors.New("failed to delete car")
)

// ErrIndexNotReady marks the one backend failure class the list operation
// recovers from by sorting in memory.
var ErrIndexNotReady = errors.New("sort index not ready")

// UpdatePatch is the edit surface: title and description only.
type UpdatePatch struct {
	Title       string
	Description string
}

// CarStore is the only component that talks to the cars table. Ownership is
// enforced here, not in the handlers: every read, update and delete is keyed
// by owner.
type CarStore struct {
	db          *gorm.DB
	log         *zap.Logger
	diagnostics bool
}

// NewCarStore wires a store over the given DB handle. diagnostics enables
// the development-only fallback notice.
func NewCarStore(db *gorm.DB, log *zap.Logger, diagnostics bool) *CarStore {
	return &CarStore{db: db, log: log, diagnostics: diagnostics}
}

// List returns the owner's cars newest first. When the ordered query fails
// because the sort index is not ready, it falls back to an unordered fetch
// plus an in-memory sort; any other failure surfaces as ErrLoadFailed.
func (s *CarStore) List(ctx context.Context, ownerID string) ([]models.Car, error) {
	cars, err := s.listOrdered(ctx, ownerID)
	if err == nil {
		return cars, nil
	}

	if !isIndexNotReady(err) {
		s.log.Error("list cars", zap.String("owner", ownerID), zap.Error(err))
		return nil, ErrLoadFailed
	}

	if s.diagnostics {
		s.log.Warn("sort index not ready, sorting in memory as a fallback",
			zap.String("owner", ownerID), zap.Error(err))
	}
	return s.listFallback(ctx, ownerID)
}

func (s *CarStore) listOrdered(ctx context.Context, ownerID string) ([]models.Car, error) {
	var cars []models.Car
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&cars).Error
	return cars, err
}

func (s *CarStore) listFallback(ctx context.Context, ownerID string) ([]models.Car, error) {
	var cars []models.Car
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Find(&cars).Error
	if err != nil {
		s.log.Error("list cars fallback", zap.String("owner", ownerID), zap.Error(err))
		return nil, ErrLoadFailed
	}
	SortByCreatedAt(cars)
	return cars, nil
}

// SortByCreatedAt orders cars newest first in place. The sort is stable, so
// equal timestamps keep arrival order.
func SortByCreatedAt(cars []models.Car) {
	sort.SliceStable(cars, func(i, j int) bool {
		return cars[i].CreatedAt.After(cars[j].CreatedAt)
	})
}

// Get fetches one car for the given owner. A car that exists but belongs to
// someone else is ErrPermissionDenied regardless of what the caller knows.
func (s *CarStore) Get(ctx context.Context, ownerID, id string) (*models.Car, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	var car models.Car
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&car).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error("get car", zap.String("id", id), zap.Error(err))
		return nil, ErrLoadFailed
	}

	if car.OwnerID != ownerID {
		return nil, ErrPermissionDenied
	}
	return &car, nil
}

// Create persists a new car, assigning its ID and timestamps at call time.
// The whole record is written or none of it.
func (s *CarStore) Create(ctx context.Context, car *models.Car) error {
	car.ID = uuid.NewString()
	now := time.Now()
	car.CreatedAt = now
	car.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(car).Error; err != nil {
		s.log.Error("create car", zap.String("owner", car.OwnerID), zap.Error(err))
		return ErrCreateFailed
	}
	return nil
}

// Update applies a title/description patch and refreshes UpdatedAt.
// Concurrent edits are last-writer-wins.
func (s *CarStore) Update(ctx context.Context, ownerID, id string, patch UpdatePatch) (*models.Car, error) {
	car, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	car.Title = patch.Title
	car.Description = patch.Description
	car.UpdatedAt = time.Now()

	err = s.db.WithContext(ctx).Model(&models.Car{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(map[string]interface{}{
			"title":       car.Title,
			"description": car.Description,
			"updated_at":  car.UpdatedAt,
		}).Error
	if err != nil {
		s.log.Error("update car", zap.String("id", id), zap.Error(err))
		return nil, ErrUpdateFailed
	}
	return car, nil
}

// Delete removes a car permanently. There is no soft delete.
func (s *CarStore) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Car{}).Error
	if err != nil {
		s.log.Error("delete car", zap.String("id", id), zap.Error(err))
		return ErrDeleteFailed
	}
	return nil
}

func isIndexNotReady(err error) bool {
	if errors.Is(err, ErrIndexNotReady) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "index not ready") ||
		strings.Contains(msg, "failed-precondition")
}
