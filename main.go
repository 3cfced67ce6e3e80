package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/datachat-labs/datachat-engine/pkg/config"
	"github.com/datachat-labs/datachat-engine/pkg/database"
	"github.com/datachat-labs/datachat-engine/pkg/handlers"
	"github.com/datachat-labs/datachat-engine/pkg/intent"
	"github.com/datachat-labs/datachat-engine/pkg/llm"
	"github.com/datachat-labs/datachat-engine/pkg/logging"
	"github.com/datachat-labs/datachat-engine/pkg/relevance"
	"github.com/datachat-labs/datachat-engine/pkg/repositories"
	"github.com/datachat-labs/datachat-engine/pkg/services"
	"github.com/datachat-labs/datachat-engine/pkg/shaper"
	"github.com/datachat-labs/datachat-engine/pkg/sqlrepair"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Migrations need database/sql rather than the pgx pool.
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	generator, err := llm.NewGenerator(&cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	catalog, err := intent.DefaultCatalog()
	if err != nil {
		logger.Fatal("Failed to load intent catalog", zap.Error(err))
	}

	datasetRepo := repositories.NewDatasetRepository(db)
	tableStore := repositories.NewTableStore(db, logger)
	historyRepo := repositories.NewSavedQueryRepository(db)

	uploadService := services.NewUploadService(datasetRepo, tableStore, logger)
	askService := services.NewAskService(
		datasetRepo,
		tableStore,
		relevance.NewSelector(tableStore, logger),
		intent.NewClassifier(catalog),
		generator,
		sqlrepair.NewEngine(logger),
		shaper.NewShaper(),
		historyRepo,
		logger,
	)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewUploadHandler(uploadService, cfg.Upload.MaxFileSizeMB, logger).RegisterRoutes(mux)
	handlers.NewAskHandler(askService, logger).RegisterRoutes(mux)
	handlers.NewDatasetsHandler(datasetRepo, historyRepo, logger).RegisterRoutes(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("Starting datachat-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
