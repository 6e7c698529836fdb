package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/xtding233/football-gacha/internal/config"
	"github.com/xtding233/football-gacha/internal/gacha"
	"github.com/xtding233/football-gacha/internal/inventory"
	"github.com/xtding233/football-gacha/internal/pricing"
	"github.com/xtding233/football-gacha/internal/store/memory"
	redisstore "github.com/xtding233/football-gacha/internal/store/redis"
	"github.com/xtding233/football-gacha/internal/store/sqlite"
	"github.com/xtding233/football-gacha/internal/wallet"
)

type serverConfig struct {
	Addr          string        `env:"ADDR" envDefault:":8080"`
	ConfigDir     string        `env:"CONFIG_DIR" envDefault:"configs"`
	Store         string        `env:"PITY_STORE" envDefault:"sqlite"` // memory | sqlite | redis
	SQLitePath    string        `env:"SQLITE_PATH" envDefault:"gacha.db"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisTTL      time.Duration `env:"REDIS_TTL" envDefault:"0"`
	WatchInterval time.Duration `env:"CONFIG_WATCH_INTERVAL" envDefault:"10s"`
	FreeDraws     bool          `env:"FREE_DRAWS" envDefault:"false"`
	Dev           bool          `env:"DEV" envDefault:"false"`
}

func main() {
	var cfg serverConfig
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	log, err := newLogger(cfg.Dev)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg serverConfig, log *zap.Logger) error {
	loader := config.NewLoader(cfg.ConfigDir)

	cat, err := loader.LoadCatalog()
	if err != nil {
		return err
	}
	banners, err := loader.LoadBanners(cat)
	if err != nil {
		return err
	}
	registry := gacha.NewRegistry(banners...)
	log.Info("banners loaded", zap.Strings("ids", registry.IDs()), zap.Int("cards", cat.Size()))

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var w *wallet.Memory
	engineCfg := gacha.EngineConfig{
		Banners:   registry,
		Cards:     cat,
		Store:     store,
		Inventory: inventory.NewMemory(),
	}
	if !cfg.FreeDraws {
		w = wallet.NewMemory()
		engineCfg.Wallet = w
	}

	engine, err := gacha.NewEngine(engineCfg)
	if err != nil {
		return err
	}

	// hot reload: a changed or new banner file swaps the whole registry;
	// a broken edit keeps the previous set
	watcher := config.NewDirWatcher(loader.BannerDir(), cfg.WatchInterval, func(path string) {
		loader.Invalidate()
		next, lerr := loader.LoadBanners(cat)
		if lerr != nil {
			log.Warn("banner reload failed, keeping previous set", zap.String("path", path), zap.Error(lerr))
			return
		}
		registry.Replace(next)
		log.Info("banners reloaded", zap.String("trigger", path), zap.Strings("ids", registry.IDs()))
	})
	watcher.Start()
	defer watcher.Stop()

	api := &api{
		log:      log,
		engine:   engine,
		registry: registry,
		cards:    cat,
		wallet:   w,
		packs:    pricing.DefaultCatalog(),
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func openStore(cfg serverConfig) (gacha.PityStore, func(), error) {
	switch cfg.Store {
	case "memory":
		return memory.New(), func() {}, nil
	case "sqlite":
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s, err := redisstore.Open(ctx, cfg.RedisAddr, cfg.RedisTTL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, errors.New("PITY_STORE must be one of: memory, sqlite, redis")
	}
}
