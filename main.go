package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Sabare1/ecommerce-ai-agent/pkg/config"
	"github.com/Sabare1/ecommerce-ai-agent/pkg/handlers"
	"github.com/Sabare1/ecommerce-ai-agent/pkg/llm"
	"github.com/Sabare1/ecommerce-ai-agent/pkg/logging"
	"github.com/Sabare1/ecommerce-ai-agent/pkg/middleware"
	"github.com/Sabare1/ecommerce-ai-agent/pkg/models"
	"github.com/Sabare1/ecommerce-ai-agent/pkg/services"
	"github.com/Sabare1/ecommerce-ai-agent/pkg/store"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// A .env file is optional; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("database", cfg.Database.Path),
		zap.String("ai_endpoint", cfg.AI.Endpoint),
		zap.String("ai_model", cfg.AI.Model))

	schema := models.DefaultSchema()

	if err := store.Bootstrap(context.Background(), cfg.Database.Path, cfg.Database.SeedDir, schema, logger); err != nil {
		logger.Fatal("Failed to bootstrap database", zap.Error(err))
	}

	client, err := llm.NewClient(&llm.Config{
		Endpoint:    cfg.AI.Endpoint,
		Model:       cfg.AI.Model,
		APIKey:      cfg.AI.APIKey,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout(),
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create completion client", zap.Error(err))
	}

	warehouse := store.NewStore(cfg.Database.Path, cfg.Query.Timeout(), logger)

	agent := services.NewAgent(
		services.NewSQLGenerator(client, schema, logger),
		warehouse,
		services.NewAnswerSynthesizer(client, logger),
		services.NewVisualizer(logger),
		schema,
		logger,
	)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(middleware.RequestLogger(logger))

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(r)
	handlers.NewAskHandler(agent, logger).RegisterRoutes(r)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting ecommerce-ai-agent",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
