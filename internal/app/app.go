package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"drinkdrop-go/internal/cache"
	"drinkdrop-go/internal/cart"
	"drinkdrop-go/internal/db"
	"drinkdrop-go/internal/identity"
	"drinkdrop-go/internal/payment"
	"drinkdrop-go/internal/provision"
	"drinkdrop-go/internal/slots"
)

const ScheduleSettingKey = "delivery_schedule"
const menuCacheTTL = 5 * time.Minute

type Config struct {
	Addr    string
	BaseURL string

	DataDir   string
	DBPath    string
	UploadDir string

	SessionKey []byte

	BootstrapAdminEmail    string
	BootstrapAdminPassword string
	BootstrapAdminName     string
}

type App struct {
	cfg   Config
	store *db.Store
	log   *slog.Logger

	ids   identity.Service
	prov  *provision.Service
	pay   payment.Gateway
	carts *cart.Codec
	cache *cache.TTLCache
	hub   *Hub
}

func New(cfg Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "/data"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "drinkdrop.db")
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = filepath.Join(cfg.DataDir, "uploads")
	}

	// NOTE: /data is a Docker volume; ensure paths exist.
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir upload dir: %w", err)
	}

	if len(cfg.SessionKey) == 0 {
		if hk := strings.TrimSpace(os.Getenv("SESSION_KEY_HEX")); hk != "" {
			b, err := hex.DecodeString(hk)
			if err != nil {
				return nil, fmt.Errorf("SESSION_KEY_HEX invalid hex: %w", err)
			}
			cfg.SessionKey = b
		}
	}
	if len(cfg.SessionKey) < 32 {
		cfg.SessionKey = make([]byte, 32)
		_, _ = rand.Read(cfg.SessionKey)
		logger.Warn("SESSION_KEY_HEX not set (or too short) - generating ephemeral key; sessions and carts will reset on restart")
	}

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Migrate(store.DB); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	ids, err := identity.NewLocal(store.DB, cfg.SessionKey)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("init identity service: %w", err)
	}

	secure := strings.HasPrefix(strings.ToLower(cfg.BaseURL), "https://")

	a := &App{
		cfg:   cfg,
		store: store,
		log:   logger,
		ids:   ids,
		prov:  provision.New(ids, store.Q, logger),
		pay:   payment.NewMock(logger),
		carts: cart.NewCodec(cfg.SessionKey, secure),
		cache: cache.New(menuCacheTTL),
		hub:   NewHub(logger),
	}

	if err := a.bootstrapAdmin(); err != nil {
		_ = store.Close()
		return nil, err
	}

	// Seed catalog ONLY if empty (never touches users).
	empty, err := isCatalogEmpty(store.DB)
	if err != nil {
		a.log.Warn("catalog empty check failed", "err", err)
	} else if empty {
		if err := db.SeedCatalog(store.DB); err != nil {
			a.log.Warn("catalog seed failed", "err", err)
		} else {
			a.log.Info("catalog seeded")
		}
	}

	// Write the default delivery schedule once so admins have something to
	// edit; slot requests fall back to the demo schedule if this is absent.
	if raw, err := store.Q.GetSetting(ScheduleSettingKey); err == nil && raw == "" {
		if b, err := marshalSchedule(slots.DefaultSchedule()); err == nil {
			if err := store.Q.SetSetting(ScheduleSettingKey, b); err != nil {
				a.log.Warn("default schedule write failed", "err", err)
			}
		}
	}

	return a, nil
}

func (a *App) bootstrapAdmin() error {
	hasAdmin, err := a.store.Q.HasAnyAdmin()
	if err != nil {
		return err
	}
	if hasAdmin {
		return nil
	}

	email := strings.TrimSpace(a.cfg.BootstrapAdminEmail)
	pass := strings.TrimSpace(a.cfg.BootstrapAdminPassword)
	name := strings.TrimSpace(a.cfg.BootstrapAdminName)
	if email == "" || pass == "" || name == "" {
		a.log.Warn("no admin exists and bootstrap env is unset; admin endpoints will be unreachable")
		return nil
	}

	u, err := a.prov.CreateAccount(context.Background(), provision.Params{
		Email:       email,
		Password:    pass,
		DisplayName: name,
		Role:        RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	a.log.Info("bootstrapped admin user", "email", u.Email)
	return nil
}

func marshalSchedule(s slots.Schedule) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func isCatalogEmpty(dbh *sql.DB) (bool, error) {
	var n int
	if err := dbh.QueryRow(`SELECT COUNT(1) FROM menu_items;`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

// LoadSchedule returns the stored delivery schedule. ok is false when the
// configuration is missing or unreadable and the caller should serve the
// demo fallback.
func (a *App) LoadSchedule() (slots.Schedule, bool) {
	raw, err := a.store.Q.GetSetting(ScheduleSettingKey)
	if err != nil || raw == "" {
		if err != nil {
			a.log.Warn("schedule setting read failed", "err", err)
		}
		return slots.Schedule{}, false
	}
	s, err := slots.Parse(raw)
	if err != nil {
		a.log.Warn("stored schedule is invalid", "err", err)
		return slots.Schedule{}, false
	}
	return s, true
}

func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

func (a *App) Store() *db.Store               { return a.store }
func (a *App) Log() *slog.Logger              { return a.log }
func (a *App) Identity() identity.Service     { return a.ids }
func (a *App) Provision() *provision.Service  { return a.prov }
func (a *App) Payments() payment.Gateway      { return a.pay }
func (a *App) Carts() *cart.Codec             { return a.carts }
func (a *App) Cache() *cache.TTLCache         { return a.cache }
func (a *App) Events() *Hub                   { return a.hub }
func (a *App) Config() Config                 { return a.cfg }
