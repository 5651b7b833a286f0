package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/arttrack/arttrack/internal/auth"
	"github.com/arttrack/arttrack/internal/handlers"
	"github.com/arttrack/arttrack/internal/matches"
	"github.com/arttrack/arttrack/internal/scanner"
	"github.com/arttrack/arttrack/internal/storage"
	"github.com/arttrack/arttrack/models"
)

func main() {
	// Initialize environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded:", err)
	}

	// Chi
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Session store
	secretKey := os.Getenv("SESSION_SECRET_KEY")
	maxAge := 86400 * 30
	isProd := false
	store := sessions.NewCookieStore([]byte(secretKey))
	store.MaxAge(maxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = isProd
	auth.Store = store
	gothic.Store = store

	// Optional OAuth sign-in next to password login
	if key := os.Getenv("GOOGLE_KEY"); key != "" {
		goth.UseProviders(google.New(key, os.Getenv("GOOGLE_SECRET"), os.Getenv("GOOGLE_CALLBACK_URL")))
	}

	// Database connection
	dsn := os.Getenv("DSN")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate models
	if err := db.AutoMigrate(models.User{}, models.Image{}, models.Match{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}

	// Object storage: local disk or S3-compatible bucket (R2)
	objects, err := newObjectStore()
	if err != nil {
		log.Fatalf("Failed to configure object storage: %v", err)
	}

	// Metadata index used for provenance lookups
	indexPath := os.Getenv("INDEX_PATH")
	if indexPath == "" {
		indexPath = "data/commons_index.csv"
	}
	matchSvc := matches.NewService(db, indexPath)

	// External similarity-scan service
	scanURL := os.Getenv("SCAN_URL")
	if scanURL == "" {
		scanURL = "http://localhost:8000"
	}
	scanClient := scanner.New(scanURL)

	// Login and OAuth
	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		handlers.LoginHandler(w, r, db)
	})
	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		handlers.OAuthCallbackHandler(w, r, db)
	})
	r.Post("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		if gothUser, err := gothic.CompleteUserAuth(w, r); err == nil {
			fmt.Fprintf(w, "User already authenticated: %s\n", gothUser.Name)
		} else {
			gothic.BeginAuthHandler(w, r)
		}
	})
	r.Post("/logout/{provider}", func(w http.ResponseWriter, r *http.Request) {
		gothic.Logout(w, r)
	})

	// Read side
	r.Get("/images/{userId}", func(w http.ResponseWriter, r *http.Request) {
		handlers.GetImagesForUserHandler(w, r, db)
	})
	r.Get("/matches/{userId}", func(w http.ResponseWriter, r *http.Request) {
		handlers.GetMatchesForUserHandler(w, r, matchSvc)
	})

	// Routes that need a caller identity
	r.Group(func(r chi.Router) {
		r.Use(auth.UserMiddleware)
		r.Use(httprate.Limit(
			20,
			1*time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		))
		r.Post("/images/upload", func(w http.ResponseWriter, r *http.Request) {
			handlers.UploadImageHandler(w, r, db, objects)
		})
		r.Post("/images/scan", func(w http.ResponseWriter, r *http.Request) {
			handlers.ScanHandler(w, r, scanClient)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	log.Println("Starting API server on :" + port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}

// newObjectStore picks the image byte store from the environment. STORAGE=disk
// writes under STORAGE_DIR; anything else targets an R2 bucket over the S3 API.
func newObjectStore() (storage.ObjectStore, error) {
	if os.Getenv("STORAGE") == "disk" {
		dir := os.Getenv("STORAGE_DIR")
		if dir == "" {
			dir = "images"
		}
		return storage.NewDiskStore(dir), nil
	}

	accountID := os.Getenv("ACCOUNT_ID")
	accessKeyID := os.Getenv("ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("ACCESS_KEY_SECRET")

	// Create custom HTTP client with TLS config
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS13,
			CipherSuites: []uint16{
				tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
				tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			},
		},
	}
	httpClient := &http.Client{Transport: tr}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithHTTPClient(httpClient),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID))
	})
	return storage.NewS3Store(client, os.Getenv("BUCKET_NAME")), nil
}
