package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/medtrans/internal"
	"codeberg.org/snonux/medtrans/internal/llm/factory"
	"codeberg.org/snonux/medtrans/internal/table"
	"codeberg.org/snonux/medtrans/internal/translation"
)

// ErrMissingAPIKey is returned when no credential is configured for the
// selected provider.
var ErrMissingAPIKey = errors.New("API key not found")

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "medtrans",
		Short: "Medicine spreadsheet translator (English to Simplified Chinese)",
		Long: `medtrans translates the name, category and description of every
medicine in a spreadsheet from English to Simplified Chinese using a hosted
language model, and writes the result as a UTF-8 CSV that Excel opens
correctly.

The API key is read from OPENROUTER_API_KEY (or GEMINI_API_KEY with
--provider gemini), a .env file in the working directory, or the config file.

Examples:
  medtrans                                   # example.xlsx -> medical_info_translated.csv
  medtrans -i drugs.xlsx -o out/drugs_zh.csv
  medtrans -i drugs.csv --limit 5 --verbose  # dry run on the first 5 records
  medtrans --list-models --model-filter gemini`,
		Args:    cobra.NoArgs,
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.medtrans.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.InputFile, "input", "i", flags.InputFile, "Input spreadsheet (.xlsx, .xlsm, .xltx or .csv)")
	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", flags.OutputFile, "Output CSV file")
	cmd.Flags().StringVar(&flags.Sheet, "sheet", "", "Worksheet to read (default: first sheet)")
	cmd.Flags().IntVar(&flags.Limit, "limit", 0, "Translate at most N non-empty rows (0 = all)")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move an existing output file to archive/ before writing")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List models available for the current API key")
	cmd.Flags().StringVar(&flags.ModelFilter, "model-filter", "", "Only list models containing this text")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")

	// Column flags
	cmd.Flags().StringVar(&flags.NameColumn, "name-column", flags.NameColumn, "Column holding the English medicine name")
	cmd.Flags().StringVar(&flags.CategoryColumn, "category-column", flags.CategoryColumn, "Column holding the English category")
	cmd.Flags().StringVar(&flags.DescriptionColumn, "description-column", flags.DescriptionColumn, "Column holding the English description")

	// Provider flags
	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "Model provider: openrouter or gemini")
	cmd.Flags().StringVar(&flags.Model, "model", flags.Model, "Model identifier")
	cmd.Flags().StringVar(&flags.BaseURL, "base-url", "", "Override the provider API base URL")
	cmd.Flags().IntVar(&flags.Retries, "retries", flags.Retries, "Attempts per row before marking it failed")
	cmd.Flags().DurationVar(&flags.RetryDelay, "retry-delay", flags.RetryDelay, "Base delay between attempts")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Per-request timeout")
	cmd.Flags().DurationVar(&flags.RowDelay, "row-delay", flags.RowDelay, "Minimum interval between translated rows (0 disables pacing)")
	cmd.Flags().IntVar(&flags.BreakerThreshold, "breaker-threshold", flags.BreakerThreshold, "Consecutive failures that open the circuit breaker; refused calls count against row retries (0 disables it)")
	cmd.Flags().DurationVar(&flags.BreakerCooldown, "breaker-cooldown", flags.BreakerCooldown, "How long the open circuit rejects calls")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("input.file", cmd.Flags().Lookup("input"))
	viper.BindPFlag("input.sheet", cmd.Flags().Lookup("sheet"))
	viper.BindPFlag("input.name_column", cmd.Flags().Lookup("name-column"))
	viper.BindPFlag("input.category_column", cmd.Flags().Lookup("category-column"))
	viper.BindPFlag("input.description_column", cmd.Flags().Lookup("description-column"))
	viper.BindPFlag("output.file", cmd.Flags().Lookup("output"))
	viper.BindPFlag("translate.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("translate.model", cmd.Flags().Lookup("model"))
	viper.BindPFlag("translate.base_url", cmd.Flags().Lookup("base-url"))
	viper.BindPFlag("translate.retries", cmd.Flags().Lookup("retries"))
	viper.BindPFlag("translate.retry_delay", cmd.Flags().Lookup("retry-delay"))
	viper.BindPFlag("translate.timeout", cmd.Flags().Lookup("timeout"))
	viper.BindPFlag("batch.row_delay", cmd.Flags().Lookup("row-delay"))
	viper.BindPFlag("batch.limit", cmd.Flags().Lookup("limit"))
	viper.BindPFlag("breaker.threshold", cmd.Flags().Lookup("breaker-threshold"))
	viper.BindPFlag("breaker.cooldown", cmd.Flags().Lookup("breaker-cooldown"))
}

// InitConfig loads .env and initializes viper configuration
func InitConfig(cfgFile string) {
	// A missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".medtrans" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".medtrans")
	}

	// Environment variables
	viper.SetEnvPrefix("MEDTRANS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetAPIKey retrieves the provider's API key from environment or config
func GetAPIKey(provider string) string {
	envVar, configKey := "OPENROUTER_API_KEY", "api.openrouter_key"
	if provider == factory.ProviderGemini {
		envVar, configKey = "GEMINI_API_KEY", "api.gemini_key"
	}

	// First check environment variable
	if key := os.Getenv(envVar); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString(configKey)
}

// GetSiteURL returns the site URL forwarded as request metadata.
func GetSiteURL() string {
	if v := os.Getenv("YOUR_SITE_URL"); v != "" {
		return v
	}
	return viper.GetString("site.url")
}

// GetSiteName returns the site name forwarded as request metadata.
func GetSiteName() string {
	if v := os.Getenv("YOUR_SITE_NAME"); v != "" {
		return v
	}
	return viper.GetString("site.name")
}

// Config is the resolved run configuration.
type Config struct {
	InputFile  string
	OutputFile string
	Sheet      string
	Schema     table.Schema
	Limit      int
	Archive    bool
	RowDelay   time.Duration

	Provider    factory.Config
	Translation translation.Options
}

// ResolveConfig merges flags, config file and environment. It fails with
// ErrMissingAPIKey when the selected provider has no credential.
func ResolveConfig(flags *Flags) (*Config, error) {
	provider := stringOr("translate.provider", flags.Provider)
	if provider != factory.ProviderOpenRouter && provider != factory.ProviderGemini {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}

	apiKey := GetAPIKey(provider)
	if apiKey == "" {
		return nil, fmt.Errorf("%w for provider %s", ErrMissingAPIKey, provider)
	}

	schema := table.DefaultSchema()
	schema.NameColumn = stringOr("input.name_column", flags.NameColumn)
	schema.CategoryColumn = stringOr("input.category_column", flags.CategoryColumn)
	schema.DescriptionColumn = stringOr("input.description_column", flags.DescriptionColumn)

	opts := translation.DefaultOptions()
	opts.Model = stringOr("translate.model", flags.Model)
	opts.RetryCount = intOr("translate.retries", flags.Retries)
	opts.RetryDelay = durationOr("translate.retry_delay", flags.RetryDelay)
	opts.Timeout = durationOr("translate.timeout", flags.Timeout)

	threshold := intOr("breaker.threshold", flags.BreakerThreshold)
	if threshold < 0 {
		threshold = 0
	}

	return &Config{
		InputFile:  stringOr("input.file", flags.InputFile),
		OutputFile: stringOr("output.file", flags.OutputFile),
		Sheet:      stringOr("input.sheet", flags.Sheet),
		Schema:     schema,
		Limit:      intOr("batch.limit", flags.Limit),
		Archive:    flags.Archive,
		RowDelay:   durationOr("batch.row_delay", flags.RowDelay),
		Provider: factory.Config{
			Provider:         provider,
			APIKey:           apiKey,
			BaseURL:          stringOr("translate.base_url", flags.BaseURL),
			SiteURL:          GetSiteURL(),
			SiteName:         GetSiteName(),
			BreakerThreshold: uint32(threshold),
			BreakerCooldown:  durationOr("breaker.cooldown", flags.BreakerCooldown),
		},
		Translation: opts,
	}, nil
}

func stringOr(key, fallback string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	return fallback
}
