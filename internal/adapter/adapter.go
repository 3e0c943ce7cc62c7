// Package adapter extracts raw roster entries from external sources. One
// selector-driven implementation covers the many near-identical roster
// pages; a feed implementation covers sites that publish each day's roster
// as a post. Adapters only extract — normalization and persistence happen
// downstream.
package adapter

import (
	"context"
	"fmt"
	"time"

	"rotisserie/internal/config"
	"rotisserie/internal/fetch"
	"rotisserie/internal/model"
	"rotisserie/internal/rules"
)

// Adapter produces one source's raw entries. Implementations are free to
// fail; the orchestrator records the failure and moves on.
type Adapter interface {
	Fetch(ctx context.Context) ([]model.RawEntry, error)
}

// Options carry the shared collaborators an adapter needs.
type Options struct {
	Source config.Source
	Client *fetch.Client
	Preset rules.Preset
	Loc    *time.Location // weekday-tab sources resolve "today" in this zone
}

// New returns the adapter for the source's type.
func New(opts Options) (Adapter, error) {
	switch opts.Source.Type {
	case "page", "":
		return &pageAdapter{opts: opts}, nil
	case "feed":
		return &feedAdapter{opts: opts}, nil
	default:
		return nil, fmt.Errorf("source %s: unsupported type %q", opts.Source.Name, opts.Source.Type)
	}
}
