package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/arttrack/arttrack/internal/auth"
	"github.com/arttrack/arttrack/internal/storage"
	"github.com/arttrack/arttrack/internal/store"
	"github.com/arttrack/arttrack/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/h2non/bimg"
	"gorm.io/gorm"
)

const thumbWidth = 320

// UploadImageHandler stores the uploaded bytes under an opaque generated
// filename and records the image row for the caller. The stored name is
// never derived from user input; the original name is kept as metadata.
func UploadImageHandler(w http.ResponseWriter, r *http.Request, db *gorm.DB, objects storage.ObjectStore) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusBadRequest, map[string]any{"message": "User ID is required"})
		return
	}
	userIDint, err := strconv.Atoi(userID)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid user ID"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"message": "Image file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Println("Failed to read upload:", err)
		respondJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to read image"})
		return
	}

	storedName := uuid.New().String() + filepath.Ext(header.Filename)
	key := fmt.Sprintf("images/%s/originals/%s", userID, storedName)
	contentType := header.Header.Get("Content-Type")

	if err := objects.Put(r.Context(), key, bytes.NewReader(data), contentType); err != nil {
		log.Println("Failed to store image:", err)
		respondJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to upload image"})
		return
	}

	// Thumbnail generation is best-effort; a file libvips cannot decode
	// still uploads fine.
	if thumb, err := bimg.NewImage(data).Process(bimg.Options{Width: thumbWidth, Type: bimg.JPEG}); err == nil {
		thumbKey := fmt.Sprintf("images/%s/thumbs/%s.jpg", userID, storedName)
		if err := objects.Put(r.Context(), thumbKey, bytes.NewReader(thumb), "image/jpeg"); err != nil {
			log.Println("Failed to store thumbnail:", err)
		}
	}

	image := &models.Image{
		UserID:       uint(userIDint),
		Filename:     storedName,
		OriginalName: header.Filename,
		Key:          key,
		MimeType:     contentType,
	}
	if err := store.CreateImage(r.Context(), db, image); err != nil {
		log.Println("Error adding image to database:", err)
		respondJSON(w, http.StatusInternalServerError, map[string]any{"message": "Error adding image to database"})
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message":  "Image uploaded and metadata stored",
		"filename": storedName,
	})
}

// GetImagesForUserHandler lists the stored filenames owned by the user in
// the path. No images is an empty list, not an error.
func GetImagesForUserHandler(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userId"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid user ID"})
		return
	}

	images, err := store.ImagesByUser(r.Context(), db, uint(userID))
	if err != nil {
		log.Println("Error fetching images:", err)
		respondJSON(w, http.StatusInternalServerError, map[string]any{"message": "Error fetching images"})
		return
	}

	filenames := make([]string, 0, len(images))
	for _, image := range images {
		filenames = append(filenames, image.Filename)
	}
	respondJSON(w, http.StatusOK, filenames)
}
