package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"roadward.org/internal/config"
	"roadward.org/internal/httpapi"
	"roadward.org/internal/identity"
	"roadward.org/internal/obs"
	"roadward.org/internal/ors"
	"roadward.org/internal/upload"
)

var (
	version = "1.1.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var (
		db          *sql.DB
		userStore   identity.Store
		recordStore ors.Store
	)
	if cfg.PGDSN != "" {
		db, err = sql.Open("pgx", cfg.PGDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		userStore = identity.NewPGStore(db)
		recordStore = ors.NewPGStore(db)
	} else {
		log.Printf("no DSN configured, using in-memory stores")
		mem := identity.NewMemoryStore()
		userStore = mem
		recordStore = ors.NewMemoryStore(mem)
	}

	idSvc, err := identity.NewService(userStore)
	if err != nil {
		log.Fatalf("identity service: %v", err)
	}
	tokens, err := identity.NewTokenIssuer(cfg.TokenSecret, identity.WithTokenTTL(cfg.TokenTTL))
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}
	orsSvc, err := ors.NewService(recordStore)
	if err != nil {
		log.Fatalf("ors service: %v", err)
	}

	var fileStore upload.Store
	var fileDir string
	if cfg.UploadDir != "" {
		disk, err := upload.NewDiskStore(cfg.UploadDir, "/files")
		if err != nil {
			log.Fatalf("upload store: %v", err)
		}
		fileStore = disk
		fileDir = disk.Dir()
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, httpapi.Options{
		Identity:     idSvc,
		Tokens:       tokens,
		ORS:          orsSvc,
		Uploads:      upload.NewService(fileStore),
		FileDir:      fileDir,
		Dev:          cfg.Development(),
		RateBurst:    cfg.RateBurst,
		RatePerSec:   cfg.RatePerSec,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting roadward-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
