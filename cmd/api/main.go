package main

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"

	"eventshare/config"
	_ "eventshare/docs"
	adapterauth "eventshare/internal/adapters/auth"
	"eventshare/internal/adapters/blob"
	delivery "eventshare/internal/delivery/http"
	"eventshare/internal/delivery/http/middleware"
	"eventshare/internal/repository/postgres"
	"eventshare/internal/services"
)

const serviceTimeout = 10 * time.Second

// @title Eventshare API
// @version 1.0
// @description Multi-tenant event photo sharing: accounts, invitation-based
// @description event membership, and access-controlled photo storage.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	blobs, err := blob.NewBlobStore(blob.S3Config{
		Provider:        cfg.S3.Provider,
		Region:          cfg.S3.Region,
		Bucket:          cfg.S3.Bucket,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
	})
	if err != nil {
		logger.Error("failed to create blob store", "error", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	credentialRepo := postgres.NewCredentialRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)
	photoRepo := postgres.NewPhotoRepository(db)

	tokens := adapterauth.NewJWTManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	hasher := adapterauth.NewBcryptHasher(0)

	authSvc := services.NewAuthService(userRepo, credentialRepo, tokens, hasher)
	userSvc := services.NewUserService(userRepo, credentialRepo, eventRepo, photoRepo, blobs, hasher, logger)
	eventSvc := services.NewEventService(eventRepo, membershipRepo, blobs, logger, serviceTimeout)
	photoSvc := services.NewPhotoService(photoRepo, membershipRepo, blobs, logger, serviceTimeout)

	mux := delivery.NewRouter(delivery.Controllers{
		Auth:  delivery.NewAuthController(authSvc, logger),
		User:  delivery.NewUserController(userSvc, logger),
		Event: delivery.NewEventController(eventSvc, logger),
		Photo: delivery.NewPhotoController(photoSvc, logger),
	}, tokens)

	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.Logging(logger, mux))

	addr := ":" + cfg.Port
	logger.Info("starting server", "addr", addr, "env", cfg.Environment)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
