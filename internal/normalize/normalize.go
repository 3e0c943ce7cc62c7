// Package normalize holds the pure field normalizers: name/code splitting,
// origin canonicalization, responsive-image selection and thumbnail-suffix
// stripping. Every function is total (malformed input degrades to an empty or
// best-effort value) and idempotent.
package normalize

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// knownCodes is the allow-list of short codes some shops prefix names with,
// e.g. "J Momoe". Anything else in code position is treated as part of the name.
var knownCodes = map[string]bool{
	"J": true, "K": true, "C": true, "T": true, "V": true,
	"Tw": true, "Brz": true, "Au": true, "Indo": true, "TK": true,
}

var (
	nameWithCode = regexp.MustCompile(`^\s*([A-Za-z]{1,5})\s+([A-Za-z][A-Za-z '\-]{1,60})\s*$`)
	firstDay     = regexp.MustCompile(`(?i)^\s*First\s*Day[-–—:\s]*`)
	parenOrigin  = regexp.MustCompile(`^(.*?)\s*\(([^)]*)\)\s*(.*)$`)
	thumbSuffix  = regexp.MustCompile(`-\d+x\d+(\.\w+)$`)
	srcsetWidth  = regexp.MustCompile(`\s(\d+)w`)
	nonLetter    = regexp.MustCompile(`[^a-z\s]`)
)

// SplitNameCode splits "<code> <name>" into (name, code) when the code is on
// the allow-list; otherwise the trimmed input comes back with an empty code.
// A leading "First Day" marker is stripped from the name either way.
func SplitNameCode(raw string) (name, code string) {
	t := strings.TrimSpace(raw)
	if m := nameWithCode.FindStringSubmatch(t); m != nil && knownCodes[m[1]] {
		return strings.TrimSpace(m[2]), m[1]
	}
	t = strings.TrimSpace(firstDay.ReplaceAllString(t, ""))
	return t, ""
}

// SplitParenOrigin splits "<name> (<origin>) <trailing>" into its parts.
// Without parentheses it returns (trimmed input, "", "").
func SplitParenOrigin(raw string) (name, origin, trailing string) {
	t := strings.TrimSpace(raw)
	m := parenOrigin.FindStringSubmatch(t)
	if m == nil {
		return t, "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), strings.TrimSpace(m[3])
}

// originAliases maps many possible inputs to one canonical code.
var originAliases = map[string]string{
	// Japanese
	"j": "j", "jp": "j", "jpn": "j", "japan": "j", "japanese": "j",
	// Chinese
	"c": "c", "cn": "c", "china": "c", "chinese": "c",
	// Korean
	"k": "k", "kr": "k", "korea": "k", "korean": "k",
	// Thai
	"t": "t", "th": "t", "thai": "t", "thailand": "t",
	// Vietnamese
	"v": "v", "vn": "v", "vietnam": "v", "vietnamese": "v",
	// Filipina
	"f": "f", "ph": "f", "philippines": "f", "filipina": "f", "filipino": "f",
	// Indonesian
	"i": "i", "indo": "i", "indonesia": "i", "indonesian": "i",
	// Malaysian
	"m": "m", "my": "m", "malaysia": "m", "malaysian": "m",
	// Singaporean
	"sg": "sg", "sgp": "sg", "singapore": "sg", "singaporean": "sg",
	// Taiwanese
	"tw": "tw", "taiwan": "tw", "taiwanese": "tw",
	// Hong Kong
	"hk": "hk", "hong kong": "hk", "hongkong": "hk", "hkg": "hk",
	// Indian
	"in": "in", "india": "in", "indian": "in",
	// Nepalese
	"np": "np", "nepal": "np", "nepalese": "np", "nepali": "np",
	// Mongolian
	"mn": "mn", "mongolia": "mn", "mongolian": "mn",
	// Eurasian / mixed
	"eur": "eur", "eurasian": "eur", "mix": "eur", "mixed": "eur",
	// Australian
	"au": "au", "aus": "au", "australia": "au", "australian": "au",
}

// canonOrigins is the closed set of codes considered clean to store.
var canonOrigins = map[string]bool{
	"j": true, "c": true, "k": true, "t": true, "v": true, "f": true,
	"i": true, "m": true, "sg": true, "tw": true, "hk": true, "in": true,
	"np": true, "mn": true, "eur": true, "au": true,
}

// longAliases is the alias keys of three letters or more, longest first, used
// for substring matching. Short keys match exactly only: "martian" contains
// "t" but is not Thai.
var longAliases = func() []string {
	var keys []string
	for k := range originAliases {
		if len(k) >= 3 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// Origin maps a free-form nationality token to one canonical short code.
// Matching order: exact alias, substring containment of a long alias,
// canonical-code passthrough. Anything else returns "" (unclassified).
func Origin(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.ToLower(strings.TrimSpace(raw))
	s = nonLetter.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, "hongkong", "hong kong")
	if c, ok := originAliases[s]; ok {
		return c
	}
	for _, k := range longAliases {
		if strings.Contains(s, k) {
			return originAliases[k]
		}
	}
	if canonOrigins[s] {
		return s
	}
	return ""
}

// BestSrcset picks the URL with the largest declared width from a
// srcset-style list ("url1 150w, url2 600w"). Candidates without a parsable
// width rank lowest but still win when nothing else is present.
func BestSrcset(srcset string) string {
	best, bestW := "", -2
	for _, part := range strings.Split(srcset, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		w := -1
		if m := srcsetWidth.FindStringSubmatch(part); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				w = n
			}
		}
		if w > bestW {
			bestW = w
			best = strings.Fields(part)[0]
		}
	}
	return best
}

// BestImage selects the best candidate image URL: the widest srcset entry if
// any, else the first non-empty fallback (direct source, lazy-load source,
// original source — in the order the caller supplies them).
func BestImage(srcset string, fallbacks ...string) string {
	if u := BestSrcset(srcset); u != "" {
		return u
	}
	for _, f := range fallbacks {
		if f = strings.TrimSpace(f); f != "" {
			return f
		}
	}
	return ""
}

// StripThumbSuffix removes a generated-thumbnail "-<w>x<h>" suffix right
// before the file extension, recovering the full-resolution URL. Applied
// after image selection, which may already have picked a full-size URL.
func StripThumbSuffix(u string) string {
	return thumbSuffix.ReplaceAllString(u, "$1")
}
