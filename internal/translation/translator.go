package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/medtrans/internal/llm"
)

// DefaultModel is the OpenRouter model used when none is configured.
const DefaultModel = "google/gemini-flash-1.5-8b"

// Options controls requests and retries.
type Options struct {
	Model      string
	RetryCount int
	RetryDelay time.Duration
	// Timeout bounds a single request. Zero means no per-request timeout.
	Timeout time.Duration

	Temperature      float32
	TopP             float32
	FrequencyPenalty float32
	PresencePenalty  float32
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		Model:            DefaultModel,
		RetryCount:       3,
		RetryDelay:       5 * time.Second,
		Timeout:          30 * time.Second,
		Temperature:      0.3,
		TopP:             0.9,
		FrequencyPenalty: 0.1,
		PresencePenalty:  0.1,
	}
}

// FailedError is the only error Translate returns.
type FailedError struct {
	Attempts int
	Err      error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("translation failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *FailedError) Unwrap() error { return e.Err }

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Translator translates records through an llm.Completer.
type Translator struct {
	completer llm.Completer
	opts      Options
	sleep     SleepFunc
	logger    *zap.Logger
}

// NewTranslator creates a translator. A nil logger discards log output.
func NewTranslator(completer llm.Completer, opts Options, logger *zap.Logger) *Translator {
	if opts.RetryCount < 1 {
		opts.RetryCount = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{
		completer: completer,
		opts:      opts,
		sleep:     sleepContext,
		logger:    logger,
	}
}

// SetSleep replaces the function used to wait between attempts.
func (t *Translator) SetSleep(fn SleepFunc) {
	t.sleep = fn
}

// Translate asks the model for the Chinese triple of r. Every failure is
// reported as *FailedError.
func (t *Translator) Translate(ctx context.Context, r Record) (Triple, error) {
	prompt := BuildPrompt(r)
	retries := t.opts.RetryCount

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		t.logger.Debug("requesting translation",
			zap.String("name", r.Name),
			zap.String("category", r.Category),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", retries))

		text, err := t.complete(ctx, prompt)
		if err == nil {
			t.logger.Debug("raw response", zap.String("response", text))

			triple, perr := ParseResponse(text)
			if perr != nil {
				t.logger.Warn("unparseable response", zap.Error(perr))
				return Triple{}, &FailedError{Attempts: attempt, Err: perr}
			}
			return triple, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return Triple{}, &FailedError{Attempts: attempt, Err: err}
		}
		if attempt == retries {
			t.logger.Error("translation attempts exhausted",
				zap.Int("attempts", attempt),
				zap.Error(err))
			break
		}

		wait := t.opts.RetryDelay
		switch {
		case llm.IsRateLimit(err):
			wait = t.opts.RetryDelay * time.Duration(attempt)
			t.logger.Warn("rate limited, retrying",
				zap.Duration("wait", wait),
				zap.Int("attempt", attempt),
				zap.Error(err))
		case llm.IsAPIError(err):
			t.logger.Error("API call failed, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", retries),
				zap.Error(err))
		default:
			t.logger.Error("translation request failed, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", retries),
				zap.Error(err))
		}

		if err := t.sleep(ctx, wait); err != nil {
			return Triple{}, &FailedError{Attempts: attempt, Err: err}
		}
	}

	return Triple{}, &FailedError{Attempts: retries, Err: lastErr}
}

func (t *Translator) complete(ctx context.Context, prompt string) (string, error) {
	if t.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.opts.Timeout)
		defer cancel()
	}

	return t.completer.Complete(ctx, llm.Request{
		Model:            t.opts.Model,
		Prompt:           prompt,
		Temperature:      t.opts.Temperature,
		TopP:             t.opts.TopP,
		FrequencyPenalty: t.opts.FrequencyPenalty,
		PresencePenalty:  t.opts.PresencePenalty,
	})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsFailed reports whether err came from Translate.
func IsFailed(err error) bool {
	var fe *FailedError
	return errors.As(err, &fe)
}
