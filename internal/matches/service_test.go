package matches

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/arttrack/arttrack/internal/store"
	"github.com/arttrack/arttrack/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testIndex = `title,url
File:found wave.jpg,https://commons.example.org/wiki/File:Found_wave.jpg
`

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.User{}, models.Image{}, models.Match{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	indexPath := filepath.Join(t.TempDir(), "index.csv")
	require.NoError(t, os.WriteFile(indexPath, []byte(testIndex), 0o644))

	return NewService(db, indexPath), db
}

func seedUserWithImage(t *testing.T, db *gorm.DB, username, filename string) *models.Image {
	t.Helper()
	ctx := context.Background()
	user := &models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, store.CreateUser(ctx, db, user))
	image := &models.Image{UserID: user.ID, Filename: filename}
	require.NoError(t, store.CreateImage(ctx, db, image))
	return image
}

func TestMatchesForUserNoImages(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.MatchesForUser(context.Background(), 42)
	require.ErrorIs(t, err, ErrNoImages)
}

func TestMatchesForUserNoMatches(t *testing.T) {
	svc, db := setupService(t)
	img := seedUserWithImage(t, db, "alice", "a1.png")

	_, err := svc.MatchesForUser(context.Background(), img.UserID)
	require.ErrorIs(t, err, ErrNoMatches)
}

func TestMatchesForUserEnrichment(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	img := seedUserWithImage(t, db, "alice", "a1.png")
	otherImg := seedUserWithImage(t, db, "bob", "b1.png")

	require.NoError(t, store.CreateMatch(ctx, db, &models.Match{
		ImageID:              img.ID,
		SimilarityScore:      0.97,
		NewImageFilename:     "found_wave.jpg",
		MatchedImageFilename: "a1.png",
	}))
	require.NoError(t, store.CreateMatch(ctx, db, &models.Match{
		ImageID:              img.ID,
		SimilarityScore:      0.81,
		NewImageFilename:     "not_in_index.png",
		MatchedImageFilename: "a1.png",
	}))
	// Belongs to another user; must never show up for alice.
	require.NoError(t, store.CreateMatch(ctx, db, &models.Match{
		ImageID:              otherImg.ID,
		SimilarityScore:      0.5,
		NewImageFilename:     "found_wave.jpg",
		MatchedImageFilename: "b1.png",
	}))

	enriched, err := svc.MatchesForUser(ctx, img.UserID)
	require.NoError(t, err)
	require.Len(t, enriched, 2)

	require.Equal(t, "found_wave.jpg", enriched[0].NewImageFilename)
	require.NotNil(t, enriched[0].ImageURL)
	require.Equal(t, "https://commons.example.org/wiki/File:Found_wave.jpg", *enriched[0].ImageURL)
	require.InDelta(t, 0.97, enriched[0].SimilarityScore, 1e-9)

	// A miss degrades to a null URL, not an error.
	require.Equal(t, "not_in_index.png", enriched[1].NewImageFilename)
	require.Nil(t, enriched[1].ImageURL)
}

func TestMatchesForUserIndexUnavailable(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	img := seedUserWithImage(t, db, "alice", "a1.png")
	require.NoError(t, store.CreateMatch(ctx, db, &models.Match{
		ImageID:              img.ID,
		SimilarityScore:      0.9,
		NewImageFilename:     "found_wave.jpg",
		MatchedImageFilename: "a1.png",
	}))

	svc.indexPath = filepath.Join(t.TempDir(), "missing.csv")
	_, err := svc.MatchesForUser(ctx, img.UserID)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoImages)
	require.NotErrorIs(t, err, ErrNoMatches)
}
