package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/maketee/maketee/backend-go/internal/asset"
	"github.com/maketee/maketee/backend-go/internal/auth"
	"github.com/maketee/maketee/backend-go/internal/catalog"
	"github.com/maketee/maketee/backend-go/internal/config"
	"github.com/maketee/maketee/backend-go/internal/design"
	"github.com/maketee/maketee/backend-go/internal/export"
	"github.com/maketee/maketee/backend-go/internal/imgproxy"
	mw "github.com/maketee/maketee/backend-go/internal/middleware"
	"github.com/maketee/maketee/backend-go/internal/order"
	"github.com/maketee/maketee/backend-go/internal/pricing"
	"github.com/maketee/maketee/backend-go/internal/render"
	"github.com/maketee/maketee/backend-go/internal/session"
	"github.com/maketee/maketee/backend-go/internal/store"
)

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	st := store.New(pool)
	if err := st.Migrate(ctx); err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		slog.Error("load catalog", "error", err)
		os.Exit(1)
	}

	priceEngine, err := pricing.Load(cfg.PricingPath)
	if err != nil {
		slog.Error("load pricing", "error", err)
		os.Exit(1)
	}

	loader := render.NewImageLoader(cfg.AssetDir, cfg.ImageLoadTimeout)
	fonts := render.LoadFonts(cfg.FontDir)
	renderer := render.NewRenderer(loader, fonts, cfg.PixelRatio)
	coordinator := export.NewCoordinator(renderer)

	// Snapshot saver/loader for the session hub (cart persistence)
	snapSaver := func(sessionID string, snap design.Snapshot) error {
		doc, err := design.MarshalSnapshot(snap)
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
		return st.SaveSessionSnapshot(context.Background(), sessionID, snap.ProductID, doc)
	}
	snapLoader := func(sessionID string) (design.Snapshot, error) {
		doc, err := st.GetSessionSnapshot(context.Background(), sessionID)
		if err != nil {
			return design.Snapshot{}, err
		}
		return design.UnmarshalSnapshot(doc)
	}

	hub := session.NewHub(cat, float64(cfg.CanvasWidth), float64(cfg.CanvasHeight), snapSaver, snapLoader)
	go hub.Run()

	authService := auth.NewService(st, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	orderService := order.NewService(st, cat, priceEngine)
	orderHandler := order.NewHandler(orderService)

	catalogHandler := catalog.NewHandler(cat)
	sessionHandler := session.NewHandler(hub, cat)
	exportHandler := export.NewHandler(coordinator, hub)
	assetHandler := asset.NewHandler(cfg.AssetDir)
	proxyHandler := imgproxy.NewHandler(cfg.ImgProxyMaxBytes)

	origins := strings.Split(cfg.AllowedOrigins, ",")

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(origins))

	// Staff auth (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Catalog (public — the storefront renders from this)
	r.HandleFunc("/products", catalogHandler.List).Methods("GET")
	r.HandleFunc("/products/{productId}", catalogHandler.Get).Methods("GET")

	// Customizer sessions (public — buyers are anonymous)
	r.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	r.HandleFunc("/sessions/{sessionId}", sessionHandler.Get).Methods("GET")
	r.HandleFunc("/sessions/{sessionId}/export", exportHandler.ExportAll).Methods("POST", "OPTIONS")
	r.HandleFunc("/sessions/{sessionId}/export/active", exportHandler.ExportActive).Methods("GET")
	r.HandleFunc("/sessions/{sessionId}/design.png", exportHandler.Download).Methods("GET")

	// Asset endpoints (public — buyer artwork uploads)
	r.HandleFunc("/api/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Image proxy for remote library artwork
	r.Handle("/api/img", proxyHandler).Methods("GET")

	// Order intake (public checkout)
	r.HandleFunc("/orders", orderHandler.Submit).Methods("POST", "OPTIONS")

	// Protected staff routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/orders", orderHandler.List).Methods("GET")
	api.HandleFunc("/orders/{orderId}", orderHandler.Get).Methods("GET")
	api.HandleFunc("/orders/{orderId}/status", orderHandler.UpdateStatus).Methods("PATCH")
	api.HandleFunc("/assets/{assetId}", assetHandler.Remove).Methods("DELETE")

	// WebSocket endpoint
	r.HandleFunc("/ws/session/{sessionId}", sessionHandler.ServeWS(origins))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first so dirty session snapshots are saved
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
