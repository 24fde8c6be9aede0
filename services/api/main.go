package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/legacyvault/internal/blob"
	bloblocal "github.com/legacyvault/internal/blob/local"
	blobs3 "github.com/legacyvault/internal/blob/s3"
	"github.com/legacyvault/internal/config"
	"github.com/legacyvault/internal/handler"
	"github.com/legacyvault/internal/logger"
	"github.com/legacyvault/internal/middleware"
	"github.com/legacyvault/internal/rentcast"
	"github.com/legacyvault/internal/repository"
	"github.com/legacyvault/internal/startup"
	"github.com/legacyvault/internal/storage"
	"github.com/legacyvault/internal/storage/memory"
	"github.com/legacyvault/internal/token"
	"github.com/legacyvault/migrations"
)

func main() {
	logger.SetPrefix("api")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	dev := flag.Bool("dev", false, "start with embedded PostgreSQL and in-memory store (no external services required)")
	flag.Parse()

	logger.Info("starting API service")
	cfg := config.Load()

	// Секрет подписи обязателен: падаем на старте, а не на первом логине.
	tokens, err := token.New([]byte(cfg.Auth.Secret), cfg.Auth.Lifetime)
	if err != nil {
		if errors.Is(err, token.ErrEmptySecret) {
			logger.Errorf("JWT_SECRET is not set; refusing to start")
		} else {
			logger.Errorf("token service: %v", err)
		}
		os.Exit(1)
	}

	var embeddedDB *embeddedpostgres.EmbeddedPostgres
	if *dev {
		embeddedDB, err = startEmbeddedPostgres(cfg)
		if err != nil {
			logger.Errorf("embedded postgres: %v", err)
			os.Exit(1)
		}
		defer func() {
			logger.Info("stopping embedded postgres...")
			if err := embeddedDB.Stop(); err != nil {
				logger.Errorf("embedded postgres stop: %v", err)
			}
		}()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		logger.Errorf("parse db config: %v", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = int32(cfg.DBMaxConnections())
	poolCfg.MinConns = 4

	pool := startup.ConnectDBWithRetry(poolCfg, 60*time.Second, "")
	defer pool.Close()

	runMigrations(pool)
	if *migrate && !*dev {
		return
	}
	logger.Info("database connected, migrations applied")

	var store storage.Store
	if *dev {
		store = memory.New()
	} else {
		store = startup.ConnectRedisWithRetry(cfg.Redis.URL, 60*time.Second, "")
	}
	defer store.Close()

	var blobs blob.Store
	localBlobs := false
	if cfg.BlobUseS3() && !*dev {
		blobs, err = blobs3.New(context.Background(), cfg.S3)
		if err != nil {
			logger.Errorf("s3 blob store: %v", err)
			os.Exit(1)
		}
		logger.Infof("blob storage: s3 bucket %s", cfg.S3.Bucket)
	} else {
		blobs = bloblocal.New(cfg.UploadDir)
		localBlobs = true
		logger.Infof("blob storage: local dir %s", cfg.UploadDir)
	}
	defer blobs.Close()

	rcClient := rentcast.New(cfg.Rentcast.BaseURL, cfg.Rentcast.APIKey)
	if !rcClient.Enabled() {
		logger.Info("rentcast: no API key, property search disabled")
	}

	userRepo := repository.NewUserRepository(pool)
	docRepo := repository.NewDocumentRepository(pool)
	familyRepo := repository.NewFamilyRepository(pool)
	estateRepo := repository.NewRealEstateRepository(pool)

	authH := handler.NewAuthHandler(userRepo, tokens, store)
	docH := handler.NewDocumentHandler(docRepo, blobs, cfg.MaxUploadSize)
	familyH := handler.NewFamilyHandler(familyRepo)
	estateH := handler.NewRealEstateHandler(estateRepo)
	propertyH := handler.NewPropertyHandler(rcClient, store)
	profileH := handler.NewProfileHandler(userRepo, blobs, cfg.MaxUploadSize)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(middleware.RecoverJSON)
	r.Use(chimw.Compress(5))
	r.Use(middleware.RequestLog)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.RateLimitAPI)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSAllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK); w.Write([]byte("ok")) })

	r.Post("/api/auth/register", authH.Register)
	r.Post("/api/auth/login", authH.Login)
	r.Post("/api/auth/logout", authH.Logout)
	r.Get("/api/auth/me", authH.Me)

	if localBlobs {
		r.Get("/uploads/*", handler.ServeUploads(blobs))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens))
		r.Use(middleware.RateLimitUser)
		r.Get("/api/documents", docH.List)
		r.Get("/api/documents/count", docH.Count)
		r.Post("/api/documents/upload", docH.Upload)
		r.Get("/api/documents/{id}", docH.Serve)
		r.Delete("/api/documents/{id}", docH.Delete)
		r.Post("/api/family-members", familyH.Create)
		r.Get("/api/family-members", familyH.List)
		r.Get("/api/family-members/count", familyH.Count)
		r.Delete("/api/family-members/{id}", familyH.Delete)
		r.Get("/api/real-estate", estateH.List)
		r.Post("/api/real-estate", estateH.Create)
		r.Get("/api/real-estate/{id}", estateH.Get)
		r.Put("/api/real-estate/{id}", estateH.Update)
		r.Delete("/api/real-estate/{id}", estateH.Delete)
		r.Get("/api/properties", propertyH.List)
		r.Get("/api/properties/search", propertyH.Search)
		r.Post("/api/profile/picture", profileH.UploadPicture)
	})

	webDist := "./web/dist"
	if info, err := os.Stat(webDist); err == nil && info.IsDir() {
		r.Group(func(r chi.Router) {
			r.Use(middleware.PageGuard(tokens))
			r.Get("/*", spaHandler(webDist))
		})
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	var srvWg sync.WaitGroup
	errCh := make(chan error, 1)
	srvWg.Add(1)
	go func() {
		defer srvWg.Done()
		logger.Infof("server listening on %s", cfg.ServerAddr)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Errorf("server error: %v", err)
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	logger.Info("server stopped accepting connections")
	srvWg.Wait()
	logger.Info("server goroutine exited")
}

func spaHandler(dir string) http.HandlerFunc {
	fileDir := http.Dir(dir)
	fileServer := http.FileServer(fileDir)
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(filepath.Clean(r.URL.Path), "/")
		if path == "" {
			path = "index.html"
		}
		if f, err := fileDir.Open(path); err != nil {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
		} else {
			f.Close()
			fileServer.ServeHTTP(w, r)
		}
	}
}

// runMigrations применяет встроенные миграции по порядку имён файлов.
func runMigrations(pool *pgxpool.Pool) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entries, err := fs.ReadDir(migrations.Files, ".")
	if err != nil {
		logger.Errorf("read migrations: %v", err)
		os.Exit(1)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := migrations.Files.ReadFile(name)
		if err != nil {
			logger.Errorf("read migration %s: %v", name, err)
			os.Exit(1)
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			logger.Errorf("run migration %s: %v", name, err)
			os.Exit(1)
		}
	}
	logger.Info("migrations applied")
}

func startEmbeddedPostgres(cfg *config.Config) (*embeddedpostgres.EmbeddedPostgres, error) {
	const (
		port     = 5432
		user     = "legacyvault"
		password = "legacyvault_secret"
		database = "legacyvault"
	)

	dataDir := filepath.Join(".", ".pgdata")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create pgdata dir: %w", err)
	}

	db := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(port).
			Username(user).
			Password(password).
			Database(database).
			DataPath(dataDir).
			RuntimePath(filepath.Join(os.TempDir(), "embedded-pg-runtime")),
	)

	logger.Info("starting embedded PostgreSQL...")
	if err := db.Start(); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	cfg.Database.URL = fmt.Sprintf(
		"postgres://%s:%s@localhost:%d/%s?sslmode=disable",
		user, password, port, database,
	)
	logger.Infof("embedded PostgreSQL running on port %d", port)
	return db, nil
}
