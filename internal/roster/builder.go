// Package roster turns raw adapter entries into canonical roster records:
// normalization of names/origins/photos, identity checks, and in-run
// deduplication. Stateless; the reconciler owns all persistence.
package roster

import (
	"strings"

	"rotisserie/internal/model"
	"rotisserie/internal/normalize"
)

// Build assembles one canonical record from a raw entry. The second return
// is false when the record must be rejected: without a profile URL there is
// no identity to deduplicate or persist against.
func Build(raw model.RawEntry) (model.Record, bool) {
	if strings.TrimSpace(raw.ProfileURL) == "" {
		return model.Record{}, false
	}

	name, code := normalize.SplitNameCode(raw.Name)
	name, paren, rest := normalize.SplitParenOrigin(name)
	origin := raw.Origin
	if origin == "" {
		origin = paren
	}
	if raw.Shift == "" {
		raw.Shift = rest
	}
	originCode := normalize.Origin(origin)
	if originCode == "" && code != "" {
		originCode = normalize.Origin(code)
	}
	// prefer the canonical code; an unclassifiable token stays as free text
	if originCode == "" {
		originCode = strings.TrimSpace(origin)
	}

	rec := model.Record{
		Name:       name,
		Origin:     originCode,
		Shift:      strings.TrimSpace(raw.Shift),
		ProfileURL: strings.TrimSpace(raw.ProfileURL),
		PhotoURL:   normalize.StripThumbSuffix(strings.TrimSpace(raw.PhotoURL)),
		SourceURL:  strings.TrimSpace(raw.SourceURL),
	}
	for _, p := range raw.Photos {
		if p = normalize.StripThumbSuffix(strings.TrimSpace(p)); p != "" {
			rec.Photos = append(rec.Photos, p)
		}
	}
	// first gallery entry becomes primary unless the adapter supplied one
	if rec.PhotoURL == "" && len(rec.Photos) > 0 {
		rec.PhotoURL = rec.Photos[0]
	}
	if rec.SourceURL == "" {
		rec.SourceURL = rec.ProfileURL
	}
	return rec, true
}

// BuildBatch builds and deduplicates one run's records. Duplicates are
// detected by profile URL and, as a fallback, by (lowercased name, link);
// first occurrence wins. Returns the records plus the rejected count.
func BuildBatch(raws []model.RawEntry) ([]model.Record, int) {
	var out []model.Record
	rejected := 0
	seen := map[string]bool{}
	for _, raw := range raws {
		rec, ok := Build(raw)
		if !ok {
			rejected++
			continue
		}
		key := rec.ProfileURL
		nameKey := strings.ToLower(rec.Name) + "|" + rec.ProfileURL
		if seen[key] || seen[nameKey] {
			continue
		}
		seen[key] = true
		seen[nameKey] = true
		out = append(out, rec)
	}
	return out, rejected
}
