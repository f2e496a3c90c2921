package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/finvoice/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure invoice defaults, export, storage, scanner and user settings.

Settings are stored in ~/.finvoice/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its dot-notation key, for example:

  finvoice settings set invoice.tax_rate 11
  finvoice settings set storage.backend redis

Omit the value of scanner.api_key or storage.redis_password to be prompted
without echo. Run 'finvoice settings keys' for the full list.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Invoice]")
	cmd.Printf("  Currency: %s\n", settings.Invoice.Currency)
	cmd.Printf("  Tax Rate: %s%%\n", settings.Invoice.TaxRate.String())
	cmd.Printf("  Locale: %s\n", settings.Invoice.Locale)
	cmd.Printf("  Brand Colour: %s\n", settings.Invoice.BrandColor)
	cmd.Printf("  Signature: %s\n", settings.Invoice.SignatureText)
	badge := "shown"
	if settings.Invoice.HideStatus {
		badge = "hidden"
	}
	cmd.Printf("  Status Badge: %s\n", badge)
	cmd.Println()

	cmd.Println("[Export]")
	outDir := settings.Export.OutputDir
	if outDir == "" {
		outDir = "(working directory)"
	}
	cmd.Printf("  Output Dir: %s\n", outDir)
	cmd.Printf("  Scale: %g\n", settings.Export.Scale)
	cmd.Printf("  Background: %s\n", settings.Export.Background)
	cmd.Printf("  Page Tolerance: %gmm\n", settings.Export.ToleranceMm)
	cmd.Printf("  Timeout: %s\n", settings.Export.Timeout)
	if settings.Export.ChromePath != "" {
		cmd.Printf("  Chrome: %s\n", settings.Export.ChromePath)
	}
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend.Description())
	if settings.Storage.Backend == domain.StorageBackendRedis {
		cmd.Printf("  Address: %s\n", settings.Storage.RedisAddr)
		cmd.Printf("  DB: %d\n", settings.Storage.RedisDB)
		if settings.Storage.RedisPassword != "" {
			cmd.Printf("  Password: %s\n", maskAPIKey(settings.Storage.RedisPassword))
		}
	}
	cmd.Println()

	cmd.Println("[Scanner]")
	cmd.Printf("  Model: %s\n", settings.Scanner.Model)
	if settings.Scanner.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Scanner.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	status := "configured"
	if !settings.Scanner.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[User]")
	profile := settings.User.Profile()
	if profile.IsGuest() {
		cmd.Println("  Guest (invoices are not saved)")
	} else {
		cmd.Printf("  UID: %s\n", profile.UID)
		if profile.Email != "" {
			cmd.Printf("  Email: %s\n", profile.Email)
		}
		if profile.IsAdmin {
			cmd.Println("  Role: admin")
		}
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		if !isSecretKey(key) {
			return fmt.Errorf("a value is required for %s", key)
		}
		cmd.Printf("Enter %s: ", key)
		value = readPassword()
		cmd.Println()
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if isSecretKey(key) {
		cmd.Printf("Set %s\n", key)
	} else {
		cmd.Printf("Set %s = %s\n", key, value)
	}
	if strings.HasPrefix(key, "storage.") || strings.HasPrefix(key, "user.") {
		cmd.Println("Restart finvoice for the change to take effect.")
	}
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func isSecretKey(key string) bool {
	return key == "scanner.api_key" || key == "storage.redis_password"
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func readPassword() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(bufio.NewReader(os.Stdin))
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
