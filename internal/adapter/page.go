// Selector-driven roster page adapter. Expression syntax, shared with the
// feed adapter:
//   - text: ".timetable__name" or "." (current item's text)
//   - attribute: "a@href" / "img@src" / "@data-href" (current item)
//   - fallback: candidates joined with "||", tried in order
package adapter

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rotisserie/internal/logx"
	"rotisserie/internal/model"
	"rotisserie/internal/normalize"
)

type pageAdapter struct {
	opts Options
}

// Fetch GETs the roster page, narrows to today's weekday tab when the theme
// has one, and extracts one RawEntry per item node. When the preset carries
// profile-page selectors, each profile link is visited for its gallery with
// a politeness pause between requests; a failed profile fetch just leaves
// that entry's photo empty.
func (a *pageAdapter) Fetch(ctx context.Context) ([]model.RawEntry, error) {
	src := a.opts.Source
	rp := a.opts.Preset.Roster
	if rp == nil {
		return nil, fmt.Errorf("source %s: theme %q has no roster_page rules", src.Name, src.Theme)
	}
	resp, err := a.opts.Client.Get(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("GET roster page %s: %w", src.URL, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read roster page %s: %w", src.URL, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(b)))
	if err != nil {
		return nil, fmt.Errorf("parse roster page html: %w", err)
	}

	scope := doc.Selection
	if rp.WeekdayContainer != "" {
		sel := fmt.Sprintf(rp.WeekdayContainer, weekdayToken(time.Now().In(a.loc())))
		if s := doc.Find(sel); s.Length() > 0 {
			scope = s
		} else {
			// some builds lack the tab id; scan the whole page
			logx.Warnf("%s: weekday container %q not found, scanning whole page", src.Name, sel)
		}
	}

	var out []model.RawEntry
	scope.Find(rp.Item).Each(func(_ int, s *goquery.Selection) {
		rawName := getVal(s, rp.Name)
		if rawName == "" {
			return
		}
		if rp.SkipText != "" && strings.Contains(strings.ToLower(rawName), strings.ToLower(rp.SkipText)) {
			return
		}
		out = append(out, model.RawEntry{
			Name:       rawName,
			Shift:      getVal(s, rp.Shift),
			ProfileURL: abs(src.URL, getVal(s, rp.Link)),
			PhotoURL:   abs(src.URL, imgVal(s, rp.Photo)),
			SourceURL:  src.URL,
		})
	})
	logx.Infof("%s: %d roster rows", src.Name, len(out))

	if pp := a.opts.Preset.Profile; pp != nil {
		for i := range out {
			if out[i].ProfileURL == "" {
				continue
			}
			a.opts.Client.Pause(ctx)
			if err := ctx.Err(); err != nil {
				return out, err
			}
			a.enrich(ctx, &out[i])
		}
	}
	return out, nil
}

// enrich visits one profile page for its photo gallery. Fetch or parse
// failure degrades to "no photo" and the pipeline proceeds.
func (a *pageAdapter) enrich(ctx context.Context, e *model.RawEntry) {
	pp := a.opts.Preset.Profile
	resp, err := a.opts.Client.Get(ctx, e.ProfileURL)
	if err != nil {
		logx.Warnf("profile fetch failed %s: %v", e.ProfileURL, err)
		return
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		logx.Warnf("profile read failed %s: %v", e.ProfileURL, err)
		return
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(b)))
	if err != nil {
		logx.Warnf("profile parse failed %s: %v", e.ProfileURL, err)
		return
	}
	if pp.Photos != "" {
		doc.Find(pp.Photos).Each(func(_ int, img *goquery.Selection) {
			if u := abs(e.ProfileURL, bestImg(img)); u != "" {
				e.Photos = append(e.Photos, u)
			}
		})
	}
	if len(e.Photos) > 0 {
		if e.PhotoURL == "" {
			e.PhotoURL = e.Photos[0]
		}
		return
	}
	if pp.Fallback != "" && e.PhotoURL == "" {
		if img := doc.Find(pp.Fallback).First(); img.Length() > 0 {
			e.PhotoURL = abs(e.ProfileURL, bestImg(img))
		}
	}
}

// weekdayToken maps a time to the tab id token the avia theme family uses;
// Thursday is "thur" because the sites misspell it.
func weekdayToken(t time.Time) string {
	tok := strings.ToLower(t.Format("Mon"))
	if tok == "thu" {
		tok = "thur"
	}
	return tok
}

func (a *pageAdapter) loc() *time.Location {
	if a.opts.Loc != nil {
		return a.opts.Loc
	}
	return time.Local
}

// bestImg picks the best URL from an <img> selection: widest srcset entry,
// else the usual direct/lazy-load/original attributes in order.
func bestImg(img *goquery.Selection) string {
	srcset, _ := img.Attr("srcset")
	src, _ := img.Attr("src")
	dataSrc, _ := img.Attr("data-src")
	lazy, _ := img.Attr("data-lazy-src")
	orig, _ := img.Attr("data-original")
	return normalize.BestImage(srcset, src, dataSrc, lazy, orig)
}

// imgVal resolves a photo expression. A plain selector targets an <img> and
// goes through bestImg; "sel@attr" and "||" fallbacks behave like getVal.
func imgVal(scope *goquery.Selection, expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return ""
	}
	for _, p := range strings.Split(expr, "||") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.Contains(p, "@") {
			if v := getValSingle(scope, p); v != "" {
				return v
			}
			continue
		}
		if img := scope.Find(p).First(); img.Length() > 0 {
			if v := bestImg(img); v != "" {
				return v
			}
		}
	}
	return ""
}

// getVal evaluates an expression with "||" fallback.
func getVal(scope *goquery.Selection, expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return ""
	}
	if strings.Contains(expr, "||") {
		for _, p := range strings.Split(expr, "||") {
			if v := getValSingle(scope, strings.TrimSpace(p)); v != "" {
				return v
			}
		}
		return ""
	}
	return getValSingle(scope, expr)
}

// getValSingle evaluates one expression: text or attribute read.
func getValSingle(scope *goquery.Selection, expr string) string {
	if expr == "" {
		return ""
	}
	if expr == "." {
		return strings.TrimSpace(scope.Text())
	}
	if at := strings.Index(expr, "@"); at != -1 {
		sel := strings.TrimSpace(expr[:at])
		attr := strings.TrimSpace(expr[at+1:])
		if sel == "" {
			val, _ := scope.Attr(attr)
			return strings.TrimSpace(val)
		}
		if el := scope.Find(sel).First(); el != nil {
			val, _ := el.Attr(attr)
			return strings.TrimSpace(val)
		}
		return ""
	}
	if el := scope.Find(expr).First(); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

// abs resolves a possibly relative link against the page URL.
func abs(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	bu, err := url.Parse(base)
	if err != nil {
		return ref
	}
	ru, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return bu.ResolveReference(ru).String()
}
