package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/arttrack/arttrack/models"
	"gorm.io/gorm"
)

var (
	// ErrConflict is returned when an insert violates a uniqueness
	// constraint (e.g. two first-logins racing on the same username).
	ErrConflict = errors.New("store: conflict")
	ErrNotFound = errors.New("store: not found")
)

// CreateUser inserts a new user. Exactly one of two concurrent inserts for
// the same username succeeds; the loser gets ErrConflict.
func CreateUser(ctx context.Context, db *gorm.DB, user *models.User) error {
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func UserByUsername(ctx context.Context, db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user by username: %w", err)
	}
	return &user, nil
}

func CreateImage(ctx context.Context, db *gorm.DB, image *models.Image) error {
	if err := db.WithContext(ctx).Create(image).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return fmt.Errorf("create image: %w", err)
	}
	return nil
}

func ImagesByUser(ctx context.Context, db *gorm.DB, userID uint) ([]models.Image, error) {
	var images []models.Image
	if err := db.WithContext(ctx).Where("user_id = ?", userID).Find(&images).Error; err != nil {
		return nil, fmt.Errorf("images by user: %w", err)
	}
	return images, nil
}

// CreateMatch inserts a match row. The service itself never calls this on
// the request path; it exists for the scan writer's contract and for tests.
func CreateMatch(ctx context.Context, db *gorm.DB, match *models.Match) error {
	if err := db.WithContext(ctx).Create(match).Error; err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

// MatchesByImageIDs fetches matches whose image_id is in ids, preserving
// query order. Match relates to User only transitively through Image, so
// callers resolve the owned-image-id set first and pass it here.
func MatchesByImageIDs(ctx context.Context, db *gorm.DB, ids []uint) ([]models.Match, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var matches []models.Match
	if err := db.WithContext(ctx).Where("image_id IN ?", ids).Find(&matches).Error; err != nil {
		return nil, fmt.Errorf("matches by image ids: %w", err)
	}
	return matches, nil
}
