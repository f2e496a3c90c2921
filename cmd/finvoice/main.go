// Command finvoice drafts, exports and tracks invoices.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/finvoice/internal/adapters/driven/config/file"
	"github.com/custodia-labs/finvoice/internal/adapters/driven/pdf"
	"github.com/custodia-labs/finvoice/internal/adapters/driven/raster"
	"github.com/custodia-labs/finvoice/internal/adapters/driven/render"
	"github.com/custodia-labs/finvoice/internal/adapters/driven/scanner/gemini"
	"github.com/custodia-labs/finvoice/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/finvoice/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/finvoice/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/cli"
	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driven"
	"github.com/custodia-labs/finvoice/internal/core/services"
	"github.com/custodia-labs/finvoice/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := &app{}
	cli.SetVersion(version)
	cli.SetBootstrap(a.bootstrap)

	err := cli.Execute(ctx)
	a.close()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// app owns the adapters opened for one run.
type app struct {
	closers []func() error
}

// bootstrap opens the configured adapters and installs the services.
func (a *app) bootstrap(ctx context.Context, opts cli.Options) error {
	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return err
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	logger.Debug("Config file: %s", configStore.Path())
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	store := a.openStore(ctx, settings.Storage, opts.DataDir)
	invoiceService := services.NewInvoiceService(store, settings.User.Profile(), settings.Invoice)

	renderer, err := render.NewRenderer()
	if err != nil {
		return err
	}
	exportService := services.NewExportService(
		invoiceService,
		renderer,
		raster.New(raster.Options{ExecPath: settings.Export.ChromePath}),
		pdf.NewWriter(),
		settings.Export,
	)

	scanner, err := openScanner(settings.Scanner, filepath.Join(configDir, "prompts"))
	if err != nil {
		return err
	}

	cli.SetSettingsService(settingsService)
	cli.SetInvoiceService(invoiceService)
	cli.SetExportService(exportService)
	cli.SetScanService(services.NewScanService(scanner, invoiceService))
	return nil
}

// openStore opens the configured record store. A store that cannot be
// reached is replaced by one that reports the failure on every call, so
// commands that never touch invoices keep working.
func (a *app) openStore(ctx context.Context, cfg domain.StorageSettings, dataDir string) driven.InvoiceStore {
	switch cfg.Backend {
	case domain.StorageBackendMemory:
		return memory.NewInvoiceStore()

	case domain.StorageBackendRedis:
		store, err := redis.NewStore(ctx, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Warn("redis store unavailable: %v", err)
			return offlineStore{err: err}
		}
		a.closers = append(a.closers, store.Close)
		if err := store.Watch(ctx); err != nil {
			logger.Warn("live updates disabled: %v", err)
		}
		return store

	default:
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			logger.Warn("sqlite store unavailable: %v", err)
			return offlineStore{err: err}
		}
		a.closers = append(a.closers, store.Close)
		if err := store.Watch(ctx); err != nil {
			logger.Warn("live updates disabled: %v", err)
		}
		return store.InvoiceStore()
	}
}

// openScanner returns nil when no API key is configured.
func openScanner(cfg domain.ScannerSettings, promptDir string) (driven.ItemScanner, error) {
	if !cfg.IsConfigured() {
		return nil, nil
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, err
	}
	scanner, err := gemini.New(gemini.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	}, prompts)
	if err != nil {
		return nil, err
	}
	return scanner, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("close: %v", err)
		}
	}
	a.closers = nil
}

// offlineStore stands in for a record store that failed to open.
type offlineStore struct {
	err error
}

var _ driven.InvoiceStore = offlineStore{}

func (s offlineStore) Save(context.Context, *domain.Invoice) error { return s.err }

func (s offlineStore) Get(context.Context, string, string) (*domain.Invoice, error) {
	return nil, s.err
}

func (s offlineStore) Delete(context.Context, string, string) error { return s.err }

func (s offlineStore) List(context.Context, string) ([]domain.Invoice, error) { return nil, s.err }

func (s offlineStore) ListAll(context.Context) ([]domain.Invoice, error) { return nil, s.err }

func (s offlineStore) Subscribe(context.Context, domain.StoreScope, driven.SnapshotFunc) (func(), error) {
	return nil, s.err
}
