// Package rules loads the per-theme selector presets (rules.yaml) that tell
// the page adapter where roster rows, names, shifts, links and photos live.
// Presets are keyed by theme name (e.g. timetable/avia/swiper).
package rules

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules is the full rule set: preset name → preset.
type Rules struct {
	Presets map[string]Preset `yaml:",inline"`
}

// Preset is one theme's selectors.
type Preset struct {
	Roster  *RosterPage  `yaml:"roster_page"`
	Profile *ProfilePage `yaml:"profile_page"`
}

// RosterPage describes how to pull roster rows out of a listing page.
// Expression syntax (shared with ProfilePage):
//   - text: ".timetable__name" or "." for the current item's text
//   - attribute: "a@href" / "img@src" / "@data-href" for the current item
//   - fallback: candidates joined with "||", tried in order
type RosterPage struct {
	Item  string `yaml:"item"`  // container per roster row
	Name  string `yaml:"name"`  // raw name text (may carry code/origin)
	Shift string `yaml:"shift"` // shift text, optional
	Link  string `yaml:"link"`  // profile link
	Photo string `yaml:"photo"` // inline photo, optional

	// WeekdayContainer narrows the page to today's tab before selecting
	// items. It is a format string receiving the weekday token (mon..sun,
	// with "thur" for Thursday — one theme family misspells the id).
	WeekdayContainer string `yaml:"weekday_container"`

	// SkipText drops rows whose raw name contains this token
	// (case-insensitive), e.g. "double" billing entries.
	SkipText string `yaml:"skip_text"`
}

// ProfilePage describes the optional per-profile enrichment visit.
type ProfilePage struct {
	Photos   string `yaml:"photos"`   // gallery <img> nodes
	Fallback string `yaml:"fallback"` // single-photo selector when no gallery
}

// Load reads rules.yaml into Rules.Presets.
func Load(path string) (*Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules %s: %w", path, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	var r Rules
	if err := yaml.Unmarshal(b, &r.Presets); err != nil {
		return nil, fmt.Errorf("unmarshal rules %s: %w", path, err)
	}
	return &r, nil
}

// GetPreset looks a preset up by name, case-insensitively, falling back to
// "default" when the name is empty or unknown.
func (r *Rules) GetPreset(name string) (Preset, bool) {
	if r == nil || len(r.Presets) == 0 {
		return Preset{}, false
	}
	if name == "" {
		name = "default"
	}
	if p, ok := r.Presets[name]; ok {
		return p, true
	}
	lower := strings.ToLower(name)
	for k, v := range r.Presets {
		if strings.ToLower(k) == lower {
			return v, true
		}
	}
	if p, ok := r.Presets["default"]; ok {
		return p, true
	}
	return Preset{}, false
}
