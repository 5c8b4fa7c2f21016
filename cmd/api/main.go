package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mkandawire/explotrack-backend/internal/config"
	"github.com/mkandawire/explotrack-backend/internal/modules/auth"
	"github.com/mkandawire/explotrack-backend/internal/modules/store"
	"github.com/mkandawire/explotrack-backend/internal/modules/supplier"
	"github.com/mkandawire/explotrack-backend/internal/modules/transfer"
	"github.com/mkandawire/explotrack-backend/internal/modules/user"
	"github.com/mkandawire/explotrack-backend/internal/modules/warehouse"
	"github.com/mkandawire/explotrack-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog := logger.Must(logger.New())
	defer zlog.Sync()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		zlog.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		zlog.Fatal("ping database", zap.Error(err))
	}
	zlog.Info("connected to database")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Phase 1: Identity & Access ──────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	user.NewHandler(userService).RegisterRoutes(router)

	authService := auth.NewService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenHours)
	auth.NewHandler(authService).RegisterRoutes(router)

	supplierRepo := supplier.NewPostgresRepository(db)
	supplierService := supplier.NewService(supplierRepo)
	supplier.NewHandler(supplierService).RegisterRoutes(router)

	// ── Phase 2: Central Warehouse ──────────────────────────
	warehouseRepo := warehouse.NewPostgresRepository(db)
	warehouseService := warehouse.NewService(warehouseRepo, logger.Named(zlog, "warehouse"))
	warehouse.NewHandler(warehouseService).RegisterRoutes(router)

	// ── Phase 3: Blasting Stores ────────────────────────────
	storeRepo := store.NewPostgresRepository(db)
	storeService := store.NewService(storeRepo, logger.Named(zlog, "store"), cfg.Inventory.ExpiryWarningDays)
	store.NewHandler(storeService).RegisterRoutes(router)

	// ── Phase 4: Transfer Workflow ──────────────────────────
	transferRepo := transfer.NewPostgresRepository(db)
	transferService := transfer.NewService(transferRepo, warehouseRepo, storeRepo,
		logger.Named(zlog, "transfer"), cfg.Inventory.ExpiryWarningDays, cfg.Inventory.UrgentWindowHours)
	transfer.NewHandler(transferService, cfg.Inventory.UrgentWindowHours).RegisterRoutes(router)

	// ── Start Server ─────────────────────────────────────────
	zlog.Info("explotrack api listening", zap.String("port", cfg.Server.Port))
	if err := http.ListenAndServe(":"+cfg.Server.Port, router); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
