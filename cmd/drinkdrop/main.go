package main

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"drinkdrop-go/internal/app"
	"drinkdrop-go/internal/handlers"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := app.Config{
		Addr:    getenv("ADDR", ":8080"),
		BaseURL: getenv("BASE_URL", "http://localhost:8080"),

		DataDir:   getenv("DATA_DIR", "/data"),
		DBPath:    getenv("DB_PATH", "/data/drinkdrop.db"),
		UploadDir: getenv("UPLOAD_DIR", "/data/uploads"),

		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		BootstrapAdminName:     os.Getenv("BOOTSTRAP_ADMIN_NAME"),
	}

	if hk := strings.TrimSpace(os.Getenv("SESSION_KEY_HEX")); hk != "" {
		if b, err := hex.DecodeString(hk); err == nil {
			cfg.SessionKey = b
		}
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("app init failed", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Use(a.MiddlewareLoadCurrentUser)

	h := &handlers.Server{App: a}

	// Public
	r.Get("/health", h.Health)
	r.Post("/signup", h.SignupPost)
	r.Post("/login", h.LoginPost)
	r.Post("/logout", h.LogoutPost)

	// Item images
	fileServer(r, "/uploads", http.Dir(a.Config().UploadDir))

	// Authenticated
	r.Group(func(ar chi.Router) {
		ar.Use(a.RequireAuth)

		ar.Get("/me", h.MeGet)
		ar.Put("/me", h.MeUpdatePut)

		ar.Get("/menu", h.MenuGet)
		ar.Get("/menu/{id}", h.MenuItemGet)

		ar.Get("/cart", h.CartGet)
		ar.Post("/cart/items", h.CartItemAddPost)
		ar.Patch("/cart/items/{id}", h.CartItemUpdatePatch)
		ar.Delete("/cart/items/{id}", h.CartItemDelete)
		ar.Delete("/cart", h.CartClearDelete)

		ar.Get("/delivery-slots", h.SlotsGet)
		ar.Post("/checkout", h.CheckoutPost)

		ar.Get("/orders", h.OrdersGet)
		ar.Get("/orders/{id}", h.OrderGet)
		ar.Post("/orders/{id}/cancel", h.OrderCancelPost)

		ar.Post("/tickets", h.TicketCreatePost)
		ar.Get("/tickets", h.TicketsGet)
		ar.Get("/tickets/{id}", h.TicketGet)

		ar.Get("/events", h.EventsGet)
	})

	// Admin
	r.Route("/admin", func(ad chi.Router) {
		ad.Use(a.RequireRole(app.RoleAdmin))

		ad.Get("/menu", h.AdminMenuGet)
		ad.Post("/menu", h.AdminMenuCreatePost)
		ad.Put("/menu/{id}", h.AdminMenuUpdatePut)
		ad.Delete("/menu/{id}", h.AdminMenuDelete)
		ad.Post("/menu/{id}/toggle-live", h.AdminMenuToggleLivePost)
		ad.Post("/menu/{id}/toggle-stock", h.AdminMenuToggleStockPost)
		ad.Post("/menu/{id}/assign", h.AdminMenuAssignPost)
		ad.Post("/menu/{id}/image", h.AdminMenuImagePost)

		ad.Get("/orders", h.AdminOrdersGet)
		ad.Get("/orders/{id}", h.AdminOrderGet)
		ad.Post("/orders/{id}/status", h.AdminOrderStatusPost)

		ad.Get("/tickets", h.AdminTicketsGet)
		ad.Post("/tickets/{id}", h.AdminTicketUpdatePost)

		ad.Get("/users", h.AdminUsersGet)
		ad.Post("/users/{id}/toggle", h.AdminUserTogglePost)
		ad.Delete("/users/{id}", h.AdminUserDelete)

		ad.Get("/settings/schedule", h.AdminScheduleGet)
		ad.Put("/settings/schedule", h.AdminSchedulePut)
		ad.Post("/seed", h.AdminSeedPost)
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", cfg.Addr, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info("shutdown complete")
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func fileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("fileServer does not permit URL params")
	}
	fs := http.StripPrefix(path, http.FileServer(root))
	if path != "/" && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	r.Get(path+"/*", func(w http.ResponseWriter, r *http.Request) {
		fs.ServeHTTP(w, r)
	})
}
