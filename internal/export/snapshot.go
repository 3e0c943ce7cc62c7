package export

import (
	"fmt"
	"path/filepath"

	"rotisserie/internal/model"
)

// Snapshot dumps one source's canonical batch to <dir>/<slug>.json before
// reconciliation. Written even when the batch is empty, so a broken selector
// shows up as an empty file rather than a stale one.
func Snapshot(dir, slug string, records []model.Record) error {
	if slug == "" {
		return fmt.Errorf("snapshot: slug required")
	}
	if records == nil {
		records = []model.Record{}
	}
	return writeJSON(filepath.Join(dir, slug+".json"), records)
}

// Batches writes every dry-run batch keyed by slug to a single file.
func Batches(path string, batches map[string][]model.Record) error {
	if batches == nil {
		batches = map[string][]model.Record{}
	}
	return writeJSON(path, batches)
}
