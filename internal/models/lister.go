package models

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"codeberg.org/snonux/medtrans/internal/llm"
)

// Lister prints available models
type Lister struct {
	provider string
	source   llm.ModelLister
	out      io.Writer
}

// NewLister creates a model lister writing to stdout
func NewLister(provider string, source llm.ModelLister) *Lister {
	return &Lister{
		provider: provider,
		source:   source,
		out:      os.Stdout,
	}
}

// SetOutput redirects the listing.
func (l *Lister) SetOutput(w io.Writer) {
	l.out = w
}

// ListAvailableModels prints the provider's models, sorted. A non-empty
// filter keeps only ids containing it, case-insensitively.
func (l *Lister) ListAvailableModels(ctx context.Context, filter string) error {
	ids, err := l.source.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	filter = strings.ToLower(filter)
	var matched []string
	for _, id := range ids {
		if filter == "" || strings.Contains(strings.ToLower(id), filter) {
			matched = append(matched, id)
		}
	}
	sort.Strings(matched)

	fmt.Fprintf(l.out, "Available %s models:\n", l.provider)
	if len(matched) == 0 {
		fmt.Fprintln(l.out, "  No models found")
		return nil
	}
	for _, id := range matched {
		fmt.Fprintf(l.out, "  %s\n", id)
	}
	if filter != "" {
		fmt.Fprintf(l.out, "  (%d of %d models match %q)\n", len(matched), len(ids), filter)
	}
	return nil
}
