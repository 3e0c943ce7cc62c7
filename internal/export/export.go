// Package export writes run artifacts: per-source canonical snapshots
// (pre-reconcile debug aid) and a roster.json view of the stored data.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"rotisserie/internal/model"
	"rotisserie/internal/store"
)

// ToJSON writes the given date's roster plus stats and shops to path.
func ToJSON(ctx context.Context, s *store.Store, date, path string) error {
	entries, err := s.RosterFor(ctx, date)
	if err != nil {
		return fmt.Errorf("roster for %s: %w", date, err)
	}
	shops, err := s.ListShops(ctx)
	if err != nil {
		return fmt.Errorf("list shops: %w", err)
	}
	stats, err := s.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	out := model.Export{Stats: stats, Shops: shops, Entries: entries}
	return writeJSON(path, out)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json to %s: %w", path, err)
	}
	return nil
}
