// Package model defines the data types shared across the pipeline:
// raw adapter output, canonical roster records, and the persisted entities.
package model

import "time"

// LockState tags whether a girl's name/origin may be overwritten by scrapes.
type LockState string

const (
	// Scrapable is the normal state: every sighting refreshes all fields.
	Scrapable LockState = "scrapable"
	// Locked marks a human-verified profile: name and origin are frozen,
	// only photo and shop association follow the scrape. Set externally;
	// there is no automated way back to Scrapable.
	Locked LockState = "locked"
)

// Shop is a roster source. Identity is the canonical URL (trailing slashes
// stripped); name/location/slug may be refreshed, identity never changes.
type Shop struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	URL          string     `json:"url"`
	CanonicalURL string     `json:"canonical_url"`
	Location     string     `json:"location,omitempty"`
	Slug         string     `json:"slug,omitempty"`
	LastScraped  *time.Time `json:"last_scraped,omitempty"`
}

// Girl is a profile appearing on one or more rosters. Identity is the
// profile URL; a girl without one cannot be persisted at all.
type Girl struct {
	ID         int64     `json:"id"`
	ShopID     int64     `json:"shop_id"`
	Name       string    `json:"name"`
	Origin     string    `json:"origin,omitempty"`
	ProfileURL string    `json:"profile_url"`
	PhotoURL   string    `json:"photo_url,omitempty"`
	Lock       LockState `json:"lock"`
}

// RosterEntry states "this girl is rostered at this shop on this date".
// Unique per (shop, girl, date); re-scrapes update in place.
type RosterEntry struct {
	ID        int64     `json:"id"`
	ShopID    int64     `json:"shop_id"`
	GirlID    int64     `json:"girl_id"`
	Date      string    `json:"date"` // YYYY-MM-DD in the run's timezone
	ShiftText string    `json:"shift_text,omitempty"`
	SourceURL string    `json:"source_url,omitempty"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// Photo is one ordered gallery image. Unique per (girl, url); re-insertion
// is a no-op and never reorders existing rows.
type Photo struct {
	ID       int64  `json:"id"`
	GirlID   int64  `json:"girl_id"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// RawEntry is what an adapter extracts from one roster row, before any
// normalization. Fields may be empty or noisy; the builder sorts it out.
type RawEntry struct {
	Name       string   `json:"name"`
	Origin     string   `json:"origin,omitempty"`
	Shift      string   `json:"shift,omitempty"`
	ProfileURL string   `json:"profile_link,omitempty"`
	PhotoURL   string   `json:"photo,omitempty"`
	Photos     []string `json:"photos,omitempty"`
	SourceURL  string   `json:"source_url,omitempty"`
}

// Record is the canonical roster record: the contract between normalization
// and reconciliation. In-memory only.
type Record struct {
	Name       string   `json:"name"`
	Origin     string   `json:"origin,omitempty"`
	Shift      string   `json:"shift,omitempty"`
	ProfileURL string   `json:"profile_link"`
	PhotoURL   string   `json:"photo,omitempty"`
	Photos     []string `json:"photos,omitempty"`
	SourceURL  string   `json:"source_url,omitempty"`
}

// Result is the per-source reconciliation outcome.
type Result struct {
	Persisted int `json:"persisted"`
	Skipped   int `json:"skipped"`
}

// SourceResult is one source's outcome as reported by the run.
type SourceResult struct {
	Slug      string `json:"slug"`
	Shop      string `json:"shop"`
	Persisted int    `json:"persisted"`
	Rejected  int    `json:"rejected"`
	Skipped   int    `json:"skipped"`
	Error     string `json:"error,omitempty"`
}

// Stats summarizes the store for exports.
type Stats struct {
	Shops     int       `json:"shops"`
	Girls     int       `json:"girls"`
	Entries   int       `json:"entries"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Export is the top-level structure written by the roster export.
type Export struct {
	Stats   Stats         `json:"stats"`
	Shops   []Shop        `json:"shops"`
	Entries []RosterEntry `json:"entries"`
}
