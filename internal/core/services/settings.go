package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driven"
	"github.com/custodia-labs/finvoice/internal/core/ports/driving"
	"github.com/custodia-labs/finvoice/internal/locale"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyInvoiceCurrency   = "invoice.currency"
	keyInvoiceTaxRate    = "invoice.tax_rate"
	keyInvoiceLocale     = "invoice.locale"
	keyInvoiceBrandColor = "invoice.brand_color"
	keyInvoiceSignature  = "invoice.signature_text"
	keyInvoiceHideStatus = "invoice.hide_status"
	keyExportOutputDir   = "export.output_dir"
	keyExportScale       = "export.scale"
	keyExportBackground  = "export.background"
	keyExportTolerance   = "export.tolerance_mm"
	keyExportTimeout     = "export.timeout"
	keyExportChromePath  = "export.chrome_path"
	keyStorageBackend    = "storage.backend"
	keyRedisAddr         = "storage.redis_addr"
	keyRedisPassword     = "storage.redis_password"
	keyRedisDB           = "storage.redis_db"
	keyScannerAPIKey     = "scanner.api_key"
	keyScannerModel      = "scanner.model"
	keyScannerBaseURL    = "scanner.base_url"
	keyUserUID           = "user.uid"
	keyUserEmail         = "user.email"
)

// EnvScannerAPIKey overrides scanner.api_key when set.
//
//nolint:gosec // G101: environment variable name, not a credential.
const EnvScannerAPIKey = "FINVOICE_SCANNER_API_KEY"

// settingParser converts a command-line value into the typed value stored
// in the config file.
type settingParser func(value string) (any, error)

var settingParsers = map[string]settingParser{
	keyInvoiceCurrency:   parseCurrency,
	keyInvoiceTaxRate:    parseTaxRate,
	keyInvoiceLocale:     parseLocale,
	keyInvoiceBrandColor: parseColor,
	keyInvoiceSignature:  parseText,
	keyInvoiceHideStatus: parseBool,
	keyExportOutputDir:   parseText,
	keyExportScale:       parsePositiveFloat,
	keyExportBackground:  parseColor,
	keyExportTolerance:   parseNonNegativeFloat,
	keyExportTimeout:     parseDuration,
	keyExportChromePath:  parseText,
	keyStorageBackend:    parseBackend,
	keyRedisAddr:         parseText,
	keyRedisPassword:     parseText,
	keyRedisDB:           parseNonNegativeInt,
	keyScannerAPIKey:     parseText,
	keyScannerModel:      parseText,
	keyScannerBaseURL:    parseText,
	keyUserUID:           parseText,
	keyUserEmail:         parseText,
}

// settingOrder lists keys in display order.
var settingOrder = []string{
	keyInvoiceCurrency, keyInvoiceTaxRate, keyInvoiceLocale, keyInvoiceBrandColor, keyInvoiceSignature,
	keyInvoiceHideStatus,
	keyExportOutputDir, keyExportScale, keyExportBackground, keyExportTolerance, keyExportTimeout,
	keyExportChromePath,
	keyStorageBackend, keyRedisAddr, keyRedisPassword, keyRedisDB,
	keyScannerAPIKey, keyScannerModel, keyScannerBaseURL,
	keyUserUID, keyUserEmail,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Invoice: domain.InvoiceDefaults{
			Currency:      s.getString(keyInvoiceCurrency, defaults.Invoice.Currency),
			TaxRate:       s.getDecimal(keyInvoiceTaxRate, defaults.Invoice.TaxRate),
			Locale:        s.getString(keyInvoiceLocale, defaults.Invoice.Locale),
			BrandColor:    s.getString(keyInvoiceBrandColor, defaults.Invoice.BrandColor),
			SignatureText: s.getString(keyInvoiceSignature, defaults.Invoice.SignatureText),
			HideStatus:    s.configStore.GetBool(keyInvoiceHideStatus),
		},
		Export: domain.ExportSettings{
			OutputDir:   s.configStore.GetString(keyExportOutputDir),
			Scale:       s.getFloat(keyExportScale, defaults.Export.Scale),
			Background:  s.getString(keyExportBackground, defaults.Export.Background),
			ToleranceMm: s.getFloat(keyExportTolerance, defaults.Export.ToleranceMm),
			Timeout:     s.getDuration(keyExportTimeout, defaults.Export.Timeout),
			ChromePath:  s.configStore.GetString(keyExportChromePath),
		},
		Storage: domain.StorageSettings{
			Backend:       s.getBackend(defaults.Storage.Backend),
			RedisAddr:     s.getString(keyRedisAddr, defaults.Storage.RedisAddr),
			RedisPassword: s.configStore.GetString(keyRedisPassword),
			RedisDB:       s.configStore.GetInt(keyRedisDB),
		},
		Scanner: domain.ScannerSettings{
			APIKey:  s.configStore.GetString(keyScannerAPIKey),
			Model:   s.getString(keyScannerModel, defaults.Scanner.Model),
			BaseURL: s.getString(keyScannerBaseURL, defaults.Scanner.BaseURL),
		},
		User: domain.UserSettings{
			UID:   s.configStore.GetString(keyUserUID),
			Email: s.configStore.GetString(keyUserEmail),
		},
	}

	if key := s.getenv(EnvScannerAPIKey); key != "" {
		settings.Scanner.APIKey = key
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyInvoiceCurrency, settings.Invoice.Currency},
		{keyInvoiceTaxRate, settings.Invoice.TaxRate.String()},
		{keyInvoiceLocale, settings.Invoice.Locale},
		{keyInvoiceBrandColor, settings.Invoice.BrandColor},
		{keyInvoiceSignature, settings.Invoice.SignatureText},
		{keyInvoiceHideStatus, settings.Invoice.HideStatus},
		{keyExportOutputDir, settings.Export.OutputDir},
		{keyExportScale, settings.Export.Scale},
		{keyExportBackground, settings.Export.Background},
		{keyExportTolerance, settings.Export.ToleranceMm},
		{keyExportTimeout, settings.Export.Timeout.String()},
		{keyExportChromePath, settings.Export.ChromePath},
		{keyStorageBackend, settings.Storage.Backend.String()},
		{keyRedisAddr, settings.Storage.RedisAddr},
		{keyRedisDB, settings.Storage.RedisDB},
		{keyScannerModel, settings.Scanner.Model},
		{keyScannerBaseURL, settings.Scanner.BaseURL},
		{keyUserUID, settings.User.UID},
		{keyUserEmail, settings.User.Email},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Secrets are only written when present so an empty form does not wipe them.
	if settings.Storage.RedisPassword != "" {
		if err := s.configStore.Set(keyRedisPassword, settings.Storage.RedisPassword); err != nil {
			return fmt.Errorf("save %s: %w", keyRedisPassword, err)
		}
	}
	if settings.Scanner.APIKey != "" && settings.Scanner.APIKey != s.getenv(EnvScannerAPIKey) {
		if err := s.configStore.Set(keyScannerAPIKey, settings.Scanner.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyScannerAPIKey, err)
		}
	}

	return nil
}

// Set validates and stores a single key.
func (s *SettingsService) Set(key, value string) error {
	parse, ok := settingParsers[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	typed, err := parse(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return s.configStore.Set(key, typed)
}

// Keys lists the keys accepted by Set.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingOrder))
	copy(keys, settingOrder)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDecimal(key string, defaultVal decimal.Decimal) decimal.Decimal {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return defaultVal
		}
		return d
	case int64:
		return decimal.NewFromInt(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case float64:
		return decimal.NewFromFloat(v)
	default:
		return defaultVal
	}
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	val := s.configStore.GetString(keyStorageBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.StorageBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

// Parsers for Set.

func parseText(value string) (any, error) {
	return value, nil
}

func parseBool(value string) (any, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %q must be true or false", domain.ErrInvalidInput, value)
	}
	return b, nil
}

func parseCurrency(value string) (any, error) {
	code := strings.ToUpper(value)
	if err := locale.ValidateCurrency(code); err != nil {
		return nil, err
	}
	return code, nil
}

func parseLocale(value string) (any, error) {
	if err := locale.ValidateLocale(value); err != nil {
		return nil, err
	}
	return value, nil
}

func parseTaxRate(value string) (any, error) {
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: tax rate %q is not a number", domain.ErrInvalidInput, value)
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("%w: tax rate must not be negative", domain.ErrInvalidInput)
	}
	return rate.String(), nil
}

func parseColor(value string) (any, error) {
	hex, ok := strings.CutPrefix(value, "#")
	if !ok || (len(hex) != 3 && len(hex) != 6) {
		return nil, fmt.Errorf("%w: colour %q must be #RGB or #RRGGBB", domain.ErrInvalidInput, value)
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return nil, fmt.Errorf("%w: colour %q is not hexadecimal", domain.ErrInvalidInput, value)
	}
	return value, nil
}

func parsePositiveFloat(value string) (any, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 {
		return nil, fmt.Errorf("%w: %q must be a positive number", domain.ErrInvalidInput, value)
	}
	return f, nil
}

func parseNonNegativeFloat(value string) (any, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return nil, fmt.Errorf("%w: %q must be zero or a positive number", domain.ErrInvalidInput, value)
	}
	return f, nil
}

func parseNonNegativeInt(value string) (any, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: %q must be zero or a positive integer", domain.ErrInvalidInput, value)
	}
	return n, nil
}

func parseDuration(value string) (any, error) {
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return nil, fmt.Errorf("%w: %q must be a duration such as 30s", domain.ErrInvalidInput, value)
	}
	return d.String(), nil
}

func parseBackend(value string) (any, error) {
	backend := domain.StorageBackend(strings.ToLower(value))
	if !backend.IsValid() {
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, value)
	}
	return backend.String(), nil
}
