package models

import (
	"time"
)

type User struct {
	ID           uint `gorm:"primarykey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Username     string  `gorm:"size:20;not null;uniqueIndex"`
	PasswordHash string  `gorm:"size:255;not null" json:"-"`
	Images       []Image `json:"images,omitempty"`
}

type Image struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint  `gorm:"not null;index"`
	User      *User `json:"user,omitempty" gorm:"constraint:OnUpdate:CASCADE;"`
	// Filename is the opaque stored name (uuid + extension), never taken
	// from user input. The external scan writer references images by it.
	Filename     string `gorm:"not null;uniqueIndex"`
	OriginalName string
	Key          string
	MimeType     string
}

// Match rows are written exclusively by the external scan process and are
// append-only; this service only reads them.
type Match struct {
	ID              uint    `gorm:"primarykey" json:"match_id"`
	ImageID         uint    `gorm:"not null;index" json:"-"`
	Image           *Image  `json:"-"`
	SimilarityScore float64 `gorm:"not null" json:"similarity_score"`
	// NewImageFilename names the file found in the external corpus; it is
	// the input to the provenance lookup.
	NewImageFilename string `gorm:"not null" json:"new_image_filename"`
	// MatchedImageFilename is the stored name of the user's own image.
	MatchedImageFilename string `gorm:"not null" json:"matched_image_filename"`
}
