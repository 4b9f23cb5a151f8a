package cli

import (
	"time"

	"codeberg.org/snonux/medtrans/internal/llm/factory"
	"codeberg.org/snonux/medtrans/internal/table"
	"codeberg.org/snonux/medtrans/internal/translation"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile     string
	InputFile   string
	OutputFile  string
	Sheet       string
	Limit       int
	Archive     bool
	ListModels  bool
	ModelFilter string
	Verbose     bool

	// Column names
	NameColumn        string
	CategoryColumn    string
	DescriptionColumn string

	// Provider flags
	Provider   string
	Model      string
	BaseURL    string
	Retries    int
	RetryDelay time.Duration
	Timeout    time.Duration
	RowDelay   time.Duration

	// Circuit breaker flags
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	opts := translation.DefaultOptions()
	schema := table.DefaultSchema()

	return &Flags{
		InputFile:         "example.xlsx",
		OutputFile:        "medical_info_translated.csv",
		NameColumn:        schema.NameColumn,
		CategoryColumn:    schema.CategoryColumn,
		DescriptionColumn: schema.DescriptionColumn,
		Provider:          factory.ProviderOpenRouter,
		Model:             opts.Model,
		Retries:           opts.RetryCount,
		RetryDelay:        opts.RetryDelay,
		Timeout:           opts.Timeout,
		RowDelay:          time.Second,
		BreakerThreshold:  0,
		BreakerCooldown:   time.Minute,
	}
}
