package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"ckryptbit/internal/config"
	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/handler"
	"ckryptbit/internal/middleware"
	"ckryptbit/internal/provider"
	"ckryptbit/internal/provider/gemini"
	"ckryptbit/internal/provider/hfinference"
	"ckryptbit/internal/provider/openaicompat"
	"ckryptbit/internal/provider/selfhosted"
	"ckryptbit/internal/repository"
	"ckryptbit/internal/repository/memory"
	"ckryptbit/internal/repository/postgres"
	blueprintsvc "ckryptbit/internal/service/blueprint"
	chatsvc "ckryptbit/internal/service/chat"
	storesvc "ckryptbit/internal/service/store"
	"ckryptbit/internal/taskmode"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logOut := io.Writer(os.Stdout)
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Provider adapters. The hosted Gemini adapter also powers blueprint
	// synthesis and digital-asset generation.
	geminiAdapter := gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	providers := provider.NewRegistry(
		geminiAdapter,
		openaicompat.New(cfg.OpenAICompatBaseURL, cfg.OpenAICompatModel),
		selfhosted.New(cfg.SelfHostedBaseURL, cfg.SelfHostedModel),
		hfinference.New(cfg.HFBaseURL, cfg.HFModelID, cfg.HFAPIKey),
	)

	defaultProvider := models.ProviderID(cfg.DefaultProvider)
	if !defaultProvider.Valid() {
		logger.Warn("unknown DEFAULT_PROVIDER, using gemini", "value", cfg.DefaultProvider)
		defaultProvider = models.ProviderGemini
	}

	// Task mode registry (embedded YAML)
	modes, err := taskmode.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load task modes: %v", err)
	}

	// Persistence: postgres when DATABASE_URL is set, in-memory otherwise.
	ctx := context.Background()
	var kv repository.KVStore
	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		kv, err = postgres.NewKVStore(ctx, pool, cfg.TablePrefix, logger)
		if err != nil {
			log.Fatalf("Failed to initialize document store: %v", err)
		}
		logger.Info("database connected", "table_prefix", cfg.TablePrefix)
	} else {
		kv = memory.NewKVStore()
		logger.Warn("DATABASE_URL not set, store state will not survive restarts")
	}

	// Services
	blueprintService, err := blueprintsvc.NewService(logger, providers)
	if err != nil {
		log.Fatalf("Failed to create blueprint service: %v", err)
	}
	chatService := chatsvc.NewService(logger, modes, blueprintService, providers, defaultProvider)
	storeService, err := storesvc.NewService(ctx, logger, kv, geminiAdapter, cfg.StoreStepDelay)
	if err != nil {
		log.Fatalf("Failed to create store service: %v", err)
	}

	// Handlers
	chatHandler := handler.NewChatHandler(chatService, providers, logger)
	blueprintHandler := handler.NewBlueprintHandler(blueprintService, logger)
	storeHandler := handler.NewStoreHandler(storeService, logger)
	taskModeHandler := handler.NewTaskModeHandler(modes, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Identity stub
	mux.HandleFunc("POST /api/auth/login", storeHandler.Login)

	// Chat routes
	mux.HandleFunc("GET /api/chat/turns", chatHandler.GetTurns)
	mux.HandleFunc("POST /api/chat/turns", chatHandler.SendTurn)
	mux.HandleFunc("DELETE /api/chat/turns", chatHandler.ResetTurns)
	mux.HandleFunc("GET /api/chat/provider", chatHandler.GetProvider)
	mux.HandleFunc("PUT /api/chat/provider", chatHandler.SetProvider)
	mux.HandleFunc("PUT /api/chat/config/{provider}", chatHandler.ConfigureProvider)

	// Blueprint routes
	mux.HandleFunc("POST /api/blueprint/synthesize", blueprintHandler.Synthesize)
	mux.HandleFunc("GET /api/blueprint", blueprintHandler.Get)
	mux.HandleFunc("DELETE /api/blueprint", blueprintHandler.Close)
	mux.HandleFunc("POST /api/blueprint/fileops", blueprintHandler.ApplyFileOps)
	mux.HandleFunc("PUT /api/blueprint/files/{name...}", blueprintHandler.SetFileContent)
	mux.HandleFunc("GET /api/blueprint/tree", blueprintHandler.GetTree)
	mux.HandleFunc("GET /api/blueprint/export", blueprintHandler.Export)

	// Product routes
	mux.HandleFunc("GET /api/products", storeHandler.ListProducts)
	mux.HandleFunc("POST /api/products", storeHandler.CreateProduct)
	mux.HandleFunc("PUT /api/products/{id}", storeHandler.UpdateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", storeHandler.DeleteProduct)

	// Cart routes
	mux.HandleFunc("GET /api/cart", storeHandler.GetCart)
	mux.HandleFunc("POST /api/cart/items", storeHandler.AddCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", storeHandler.RemoveCartItem)
	mux.HandleFunc("POST /api/cart/checkout", storeHandler.Checkout)

	// Order routes
	mux.HandleFunc("GET /api/orders", storeHandler.ListOrders)
	mux.HandleFunc("POST /api/orders/{id}/target-info", storeHandler.SubmitTargetInfo)
	mux.HandleFunc("POST /api/orders/{id}/feedback", storeHandler.SubmitFeedback)
	mux.HandleFunc("POST /api/orders/{id}/acknowledge", storeHandler.AcknowledgeUpdate)
	mux.HandleFunc("GET /api/orders/{id}/report", storeHandler.DownloadReport)

	// Admin order routes
	mux.HandleFunc("GET /api/admin/orders", storeHandler.ListAllOrders)
	mux.HandleFunc("PUT /api/admin/orders/{id}/status", storeHandler.UpdateOrderStatus)
	mux.HandleFunc("POST /api/admin/orders/{id}/notify", storeHandler.NotifyCustomer)

	// Digital asset routes
	mux.HandleFunc("GET /api/assets", storeHandler.ListAssets)

	// Task mode routes
	mux.HandleFunc("GET /api/taskmodes", taskModeHandler.List)

	// Build middleware chain (applied in reverse order, they wrap each other)
	// Order: CORS → Recovery → RequestLogger → Identity → Routes
	var root http.Handler = mux
	root = middleware.Identity()(root)
	root = middleware.RequestLogger(logger)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "X-Username"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     root,
		ReadTimeout: 15 * time.Second,
		// No write timeout: provider calls can outlive any fixed deadline.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
