package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"codeberg.org/snonux/medtrans/internal/table"
	"codeberg.org/snonux/medtrans/internal/translation"
)

// FailureMarker is written into all three target cells of a failed row.
const FailureMarker = "翻译失败"

// Translator translates a single record.
type Translator interface {
	Translate(ctx context.Context, r translation.Record) (translation.Triple, error)
}

// Throttle paces requests. *rate.Limiter satisfies it.
type Throttle interface {
	Wait(ctx context.Context) error
}

type noThrottle struct{}

func (noThrottle) Wait(ctx context.Context) error { return ctx.Err() }

// NewThrottle allows one translated row per interval. A zero interval
// disables pacing.
func NewThrottle(interval time.Duration) Throttle {
	if interval <= 0 {
		return noThrottle{}
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Options configures a Driver.
type Options struct {
	// Limit caps the number of translated rows. Zero means no limit.
	Limit    int
	Throttle Throttle
	Logger   *zap.Logger
	// Out receives progress lines. Defaults to os.Stdout.
	Out io.Writer
}

// Summary counts the outcome of a run.
type Summary struct {
	Total      int
	Translated int
	Failed     int
	Skipped    int
	// Limited counts rows left untranslated because of Options.Limit.
	Limited     int
	Interrupted bool
}

// Driver runs a Translator over every row of a table.
type Driver struct {
	translator Translator
	opts       Options
}

// NewDriver creates a driver with defaults filled in.
func NewDriver(tr Translator, opts Options) *Driver {
	if opts.Throttle == nil {
		opts.Throttle = noThrottle{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Driver{translator: tr, opts: opts}
}

// Run processes rows in order. When ctx is cancelled it stops before the
// next row, leaving the targets of unreached rows empty.
func (d *Driver) Run(ctx context.Context, tbl *table.Table) Summary {
	log := d.opts.Logger
	summary := Summary{Total: tbl.Len()}
	attempted := 0

	for i := 0; i < tbl.Len(); i++ {
		row := i + 1
		name, category, description := tbl.Source(i)
		rec := translation.Record{Name: name, Category: category, Description: description}

		if rec.Empty() {
			log.Info("skipping row with empty source columns", zap.Int("row", row))
			summary.Skipped++
			continue
		}
		if d.opts.Limit > 0 && attempted >= d.opts.Limit {
			log.Debug("row beyond limit left untranslated", zap.Int("row", row), zap.Int("limit", d.opts.Limit))
			summary.Limited++
			continue
		}

		if err := d.opts.Throttle.Wait(ctx); err != nil {
			log.Warn("run interrupted", zap.Int("row", row), zap.Error(err))
			summary.Interrupted = true
			break
		}
		attempted++

		fmt.Fprintf(d.opts.Out, "Translating row %d/%d: %s\n", row, tbl.Len(), name)
		triple, err := d.translator.Translate(ctx, rec)
		if err != nil {
			log.Error("row translation failed", zap.Int("row", row), zap.String("name", name), zap.Error(err))
			tbl.SetTranslation(i, FailureMarker, FailureMarker, FailureMarker)
			summary.Failed++
		} else {
			log.Info("row translated", zap.Int("row", row))
			tbl.SetTranslation(i, triple.Name, triple.Category, triple.Description)
			summary.Translated++
		}

		if ctx.Err() != nil {
			log.Warn("run interrupted", zap.Int("row", row), zap.Error(ctx.Err()))
			summary.Interrupted = true
			break
		}
	}

	if d.opts.Limit > 0 && attempted >= d.opts.Limit {
		log.Info("row limit reached", zap.Int("limit", d.opts.Limit))
	}
	return summary
}

// Print writes the summary block.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "\n=== Translation Summary ===\n")
	fmt.Fprintf(w, "Total rows: %d\n", s.Total)
	fmt.Fprintf(w, "Translated: %d\n", s.Translated)
	fmt.Fprintf(w, "Skipped (empty): %d\n", s.Skipped)
	if s.Limited > 0 {
		fmt.Fprintf(w, "Not translated (limit): %d\n", s.Limited)
	}
	if s.Failed > 0 {
		fmt.Fprintf(w, "Failed: %d\n", s.Failed)
	}
	if s.Interrupted {
		fmt.Fprintf(w, "Interrupted before the last row\n")
	}
	fmt.Fprintf(w, "===========================\n")
}
