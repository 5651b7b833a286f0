// Package matches implements match retrieval: the two-step owned-images /
// referencing-matches query plus per-match URL enrichment.
package matches

import (
	"context"
	"errors"
	"fmt"

	"github.com/arttrack/arttrack/internal/provenance"
	"github.com/arttrack/arttrack/internal/store"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	// ErrNoImages and ErrNoMatches are the two expected empty-set
	// outcomes; both surface to clients as 404, not as failures.
	ErrNoImages  = errors.New("no images for user")
	ErrNoMatches = errors.New("no matches")
)

const resolveConcurrency = 8

// EnrichedMatch is a match row plus the resolved public URL of the
// externally found image, or null when no citation could be resolved.
type EnrichedMatch struct {
	MatchID              uint    `json:"match_id"`
	SimilarityScore      float64 `json:"similarity_score"`
	NewImageFilename     string  `json:"new_image_filename"`
	MatchedImageFilename string  `json:"matched_image_filename"`
	ImageURL             *string `json:"image_url"`
}

type Service struct {
	db        *gorm.DB
	indexPath string
}

func NewService(db *gorm.DB, indexPath string) *Service {
	return &Service{db: db, indexPath: indexPath}
}

// MatchesForUser returns the user's matches enriched with provenance URLs.
// A match whose filename has no index entry is still returned, with a null
// URL; an unreadable or malformed index fails the whole retrieval once.
func (s *Service) MatchesForUser(ctx context.Context, userID uint) ([]EnrichedMatch, error) {
	images, err := store.ImagesByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	ids := make([]uint, len(images))
	for i, img := range images {
		ids[i] = img.ID
	}

	rows, err := store.MatchesByImageIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoMatches
	}

	idx, err := provenance.Open(s.indexPath)
	if err != nil {
		return nil, fmt.Errorf("metadata index unavailable: %w", err)
	}

	enriched := make([]EnrichedMatch, len(rows))
	g := new(errgroup.Group)
	g.SetLimit(resolveConcurrency)
	for i, row := range rows {
		g.Go(func() error {
			em := EnrichedMatch{
				MatchID:              row.ID,
				SimilarityScore:      row.SimilarityScore,
				NewImageFilename:     row.NewImageFilename,
				MatchedImageFilename: row.MatchedImageFilename,
			}
			if u, err := idx.Resolve(row.NewImageFilename); err == nil {
				em.ImageURL = &u
			}
			enriched[i] = em
			return nil
		})
	}
	g.Wait()

	return enriched, nil
}
