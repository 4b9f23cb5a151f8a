package processor

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"codeberg.org/snonux/medtrans/internal/archive"
	"codeberg.org/snonux/medtrans/internal/batch"
	"codeberg.org/snonux/medtrans/internal/cli"
	"codeberg.org/snonux/medtrans/internal/llm"
	"codeberg.org/snonux/medtrans/internal/table"
	"codeberg.org/snonux/medtrans/internal/translation"
)

// Processor handles one translation run
type Processor struct {
	cfg        *cli.Config
	translator *translation.Translator
	throttle   batch.Throttle
	logger     *zap.Logger
	out        io.Writer
}

// NewProcessor creates a processor translating through completer
func NewProcessor(cfg *cli.Config, completer llm.Completer, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		cfg:        cfg,
		translator: translation.NewTranslator(completer, cfg.Translation, logger),
		throttle:   batch.NewThrottle(cfg.RowDelay),
		logger:     logger,
		out:        os.Stdout,
	}
}

// SetOutput redirects progress output.
func (p *Processor) SetOutput(w io.Writer) {
	p.out = w
}

// ProcessFile runs the whole pipeline. Load, validation and write failures
// are logged and returned.
func (p *Processor) ProcessFile(ctx context.Context) (batch.Summary, error) {
	log := p.logger.With(zap.String("input", p.cfg.InputFile))
	log.Info("processing file")

	tbl, err := table.Load(p.cfg.InputFile, p.cfg.Schema, p.cfg.Sheet)
	if err != nil {
		log.Error("failed to load input", zap.Error(err))
		return batch.Summary{}, err
	}
	log.Info("input loaded", zap.Int("rows", tbl.Len()))

	driver := batch.NewDriver(p.translator, batch.Options{
		Limit:    p.cfg.Limit,
		Throttle: p.throttle,
		Logger:   p.logger,
		Out:      p.out,
	})
	summary := driver.Run(ctx, tbl)

	if p.cfg.Archive {
		p.archivePrevious()
	}

	if err := tbl.WriteCSV(p.cfg.OutputFile); err != nil {
		p.logger.Error("failed to write output", zap.String("output", p.cfg.OutputFile), zap.Error(err))
		return summary, err
	}
	p.logger.Info("translation written", zap.String("output", p.cfg.OutputFile))

	summary.Print(p.out)
	fmt.Fprintf(p.out, "\nDone! Results saved to: %s\n", p.cfg.OutputFile)
	return summary, nil
}

func (p *Processor) archivePrevious() {
	if _, err := os.Stat(p.cfg.OutputFile); os.IsNotExist(err) {
		return
	}
	archived, err := archive.ArchiveOutput(p.cfg.OutputFile)
	if err != nil {
		p.logger.Warn("failed to archive previous output", zap.Error(err))
		return
	}
	fmt.Fprintf(p.out, "Previous output archived to: %s\n", archived)
}
