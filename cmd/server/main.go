package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automeal/automeal-server/internal/catalog"
	"github.com/automeal/automeal-server/internal/config"
	"github.com/automeal/automeal-server/internal/handlers"
	"github.com/automeal/automeal-server/internal/middleware"
	"github.com/automeal/automeal-server/internal/promo"
	"github.com/automeal/automeal-server/internal/rpc"
	"github.com/automeal/automeal-server/internal/service"
	"github.com/automeal/automeal-server/internal/store"
	"github.com/automeal/automeal-server/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting automeal agent server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
	)

	// Load the catalog before anything serves: every operation depends
	// on it being fully populated.
	log.Info("loading catalog data...",
		"dishes_file", cfg.Data.DishesFile,
		"restaurants_file", cfg.Data.RestaurantsFile,
	)
	cat, err := catalog.Load(cfg.Data.DishesFile, cfg.Data.RestaurantsFile)
	if err != nil {
		log.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	log.Info("catalog loaded",
		"dishes", len(cat.ListDishes()),
		"restaurants", len(cat.ListRestaurants()),
	)

	// Initialize promo validator
	promoValidator := promo.NewValidator()
	if len(cfg.Promo.Files) > 0 {
		log.Info("loading promo code files...", "files", len(cfg.Promo.Files))
		if err := promoValidator.LoadFromFiles(context.Background(), cfg.Promo.Files); err != nil {
			log.Error("failed to load promo codes", "error", err)
			os.Exit(1)
		}
		stats := promoValidator.Stats()
		log.Info("promo codes loaded",
			"total_files", stats["total_files"],
			"approximate_codes", stats["approximate_codes"],
		)
	} else {
		log.Info("no promo files configured, promo codes disabled")
	}

	// Initialize store and services
	orderStore := store.New()
	orderService := service.NewOrderService(cat, orderStore, promoValidator)

	// Build the operation registry and dispatcher
	registry := rpc.NewRegistry(cat, orderService)
	dispatcher := rpc.NewDispatcher(registry, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cat, log)
	dishHandler := handlers.NewDishHandler(cat, log)
	restaurantHandler := handlers.NewRestaurantHandler(cat, log)
	orderHandler := handlers.NewOrderHandler(orderService, log)
	promoHandler := handlers.NewPromoHandler(promoValidator, log)
	mcpHandler := handlers.NewMCPHandler(registry, cat, log)
	wsHandler := handlers.NewWSHandler(dispatcher, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", healthHandler.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/dishes", dishHandler.ListDishes)
		r.Post("/dishes/search", dishHandler.SearchDishes)
		r.Get("/dishes/{dishID}", dishHandler.GetDish)

		r.Get("/restaurants", restaurantHandler.ListRestaurants)
		r.Get("/restaurants/{restaurantID}/menu", restaurantHandler.GetMenu)

		r.Post("/orders", orderHandler.CreateOrder)
		r.Get("/orders/{orderID}", orderHandler.GetOrder)
		r.Get("/orders/{orderID}/delivery", orderHandler.GetDelivery)
		r.Patch("/orders/{orderID}/status", orderHandler.UpdateStatus)

		r.Get("/promo/stats", promoHandler.GetStats)
		r.Get("/promo/{code}", promoHandler.ValidateCode)
	})

	// MCP routes: manifest/tool/resource introspection plus the
	// WebSocket endpoint carrying both envelope protocols.
	r.Route("/mcp", func(r chi.Router) {
		r.Get("/manifest", mcpHandler.GetManifest)
		r.Get("/tools", mcpHandler.ListTools)
		r.Post("/tools/call", mcpHandler.CallTool)
		r.Get("/resources", mcpHandler.ListResources)
		r.Get("/resources/read", mcpHandler.ReadResource)
		r.Get("/ws", wsHandler.ServeHTTP)
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
