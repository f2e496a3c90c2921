package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const unknownDescription = "Unknown"

// StorageBackend identifies where saved invoices are kept.
type StorageBackend string

// Available storage backends.
const (
	// StorageBackendSQLite keeps invoices in a local SQLite database.
	StorageBackendSQLite StorageBackend = "sqlite"

	// StorageBackendRedis keeps invoices in a shared Redis instance.
	StorageBackendRedis StorageBackend = "redis"

	// StorageBackendMemory keeps invoices in process memory only.
	StorageBackendMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageBackendSQLite, StorageBackendRedis, StorageBackendMemory:
		return true
	default:
		return false
	}
}

// IsPersistent returns true if invoices survive a restart.
func (b StorageBackend) IsPersistent() bool {
	return b == StorageBackendSQLite || b == StorageBackendRedis
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageBackendSQLite:
		return "SQLite (local file)"
	case StorageBackendRedis:
		return "Redis (shared, live updates)"
	case StorageBackendMemory:
		return "Memory (not persisted)"
	default:
		return unknownDescription
	}
}

// AllStorageBackends returns all available storage backends.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{
		StorageBackendSQLite,
		StorageBackendRedis,
		StorageBackendMemory,
	}
}

// InvoiceDefaults seed new invoices.
type InvoiceDefaults struct {
	Currency      string
	TaxRate       decimal.Decimal
	Locale        string
	BrandColor    string
	SignatureText string

	// HideStatus turns the status badge off on new invoices.
	HideStatus bool
}

// ExportSettings holds PDF and CSV export configuration.
type ExportSettings struct {
	// OutputDir is where exported files are written. Empty means the working directory.
	OutputDir string

	// Scale is the rasterizer device scale factor.
	Scale float64

	// Background is the opaque capture background colour.
	Background string

	// ToleranceMm is the pagination overflow tolerance.
	ToleranceMm float64

	// Timeout bounds a single rasterization. Zero disables the bound.
	Timeout time.Duration

	// ChromePath overrides the Chromium executable used for rasterizing.
	ChromePath string
}

// StorageSettings selects and configures the invoice store.
type StorageSettings struct {
	Backend StorageBackend

	// RedisAddr is host:port of the Redis server.
	RedisAddr string

	// RedisPassword is the optional Redis password.
	RedisPassword string

	// RedisDB is the Redis logical database index.
	RedisDB int
}

// ScannerSettings configures the photo line-item scanner.
type ScannerSettings struct {
	// APIKey is the Gemini API key.
	APIKey string

	// Model is the Gemini model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string
}

// IsConfigured returns true if the scanner can be used.
func (s ScannerSettings) IsConfigured() bool {
	return s.APIKey != ""
}

// UserSettings identifies the signed-in user.
type UserSettings struct {
	UID   string
	Email string
}

// Profile returns the user profile for these settings.
func (u UserSettings) Profile() UserProfile {
	return NewUserProfile(u.UID, u.Email)
}

// AppSettings holds all application settings.
type AppSettings struct {
	Invoice InvoiceDefaults
	Export  ExportSettings
	Storage StorageSettings
	Scanner ScannerSettings
	User    UserSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The scanner and user are left unconfigured.
func DefaultAppSettings() AppSettings {
	inv := DefaultInvoiceSettings()
	return AppSettings{
		Invoice: InvoiceDefaults{
			Currency:      inv.Currency,
			TaxRate:       inv.TaxRate,
			Locale:        inv.Locale,
			BrandColor:    inv.BrandColor,
			SignatureText: inv.SignatureText,
		},
		Export: ExportSettings{
			Scale:       2,
			Background:  "#ffffff",
			ToleranceMm: DefaultPageToleranceMm,
			Timeout:     30 * time.Second,
		},
		Storage: StorageSettings{
			Backend:   StorageBackendSQLite,
			RedisAddr: "localhost:6379",
		},
		Scanner: ScannerSettings{
			Model:   "gemini-2.5-flash-image",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		},
	}
}

// InvoiceSettings returns per-invoice settings seeded from these defaults.
func (d InvoiceDefaults) InvoiceSettings() InvoiceSettings {
	s := DefaultInvoiceSettings()
	if d.Currency != "" {
		s.Currency = d.Currency
	}
	s.TaxRate = d.TaxRate
	if d.Locale != "" {
		s.Locale = d.Locale
	}
	if d.BrandColor != "" {
		s.BrandColor = d.BrandColor
	}
	if d.SignatureText != "" {
		s.SignatureText = d.SignatureText
	}
	s.UseStatus = !d.HideStatus
	return s
}

// RasterOptions returns the rasterizer options for these export settings.
func (e ExportSettings) RasterOptions() RasterOptions {
	return RasterOptions{Scale: e.Scale, Background: e.Background}
}

// PageGeometry returns the A4 geometry with the configured tolerance.
func (e ExportSettings) PageGeometry() PageGeometry {
	return A4Portrait(e.ToleranceMm)
}
