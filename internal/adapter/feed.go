// Feed adapter: some WordPress-built shops publish each day's roster as a
// post. The adapter finds the site feed, picks the newest item whose title
// matches the source keyword, and runs the item's HTML content through the
// same selector rules the page adapter uses.
package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"rotisserie/internal/logx"
	"rotisserie/internal/model"
)

type feedAdapter struct {
	opts Options
}

// feedCandidates are the endpoints tried, in order, when the configured URL
// is not itself a parsable feed. WordPress variants first.
var feedCandidates = []string{
	"/feed",
	"/feed/",
	"/?feed=rss2",
	"/?feed=atom",
	"/feed.xml",
	"/rss.xml",
	"/atom.xml",
	"/index.xml",
}

func (a *feedAdapter) Fetch(ctx context.Context) ([]model.RawEntry, error) {
	src := a.opts.Source
	feed, err := a.parseFeed(ctx, src.URL)
	if err != nil {
		feed, err = a.discover(ctx, src.URL)
		if err != nil {
			return nil, err
		}
	}
	item := pickItem(feed, src.Keyword)
	if item == nil {
		return nil, fmt.Errorf("source %s: no feed item matching %q", src.Name, src.Keyword)
	}
	logx.Infof("%s: roster post %q (%s)", src.Name, item.Title, item.Link)

	html := item.Content
	if html == "" {
		html = item.Description
	}
	return a.extract(html, item.Link)
}

// parseFeed fetches and parses one candidate feed URL.
func (a *feedAdapter) parseFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	resp, err := a.opts.Client.Get(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("GET feed %s: %w", feedURL, err)
	}
	defer resp.Body.Close()
	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	return feed, nil
}

// discover walks the common feed endpoints under the site URL.
func (a *feedAdapter) discover(ctx context.Context, site string) (*gofeed.Feed, error) {
	base := strings.TrimRight(site, "/")
	for _, suffix := range feedCandidates {
		u := base + suffix
		logx.Debugf("probing feed candidate: %s", u)
		if feed, err := a.parseFeed(ctx, u); err == nil {
			return feed, nil
		}
	}
	return nil, fmt.Errorf("no feed discovered for %s", site)
}

// pickItem returns the newest item whose title contains the keyword
// (case-insensitive). Publish dates decide when present; items without one
// keep feed order, which is newest-first for the sites in scope.
func pickItem(feed *gofeed.Feed, keyword string) *gofeed.Item {
	kw := strings.ToLower(keyword)
	var best *gofeed.Item
	for _, it := range feed.Items {
		if kw != "" && !strings.Contains(strings.ToLower(it.Title), kw) {
			continue
		}
		if best == nil {
			best = it
			continue
		}
		if it.PublishedParsed != nil &&
			(best.PublishedParsed == nil || it.PublishedParsed.After(*best.PublishedParsed)) {
			best = it
		}
	}
	return best
}

// extract applies the roster selectors to the post's HTML content.
func (a *feedAdapter) extract(html, postURL string) ([]model.RawEntry, error) {
	rp := a.opts.Preset.Roster
	if rp == nil {
		return nil, fmt.Errorf("source %s: theme %q has no roster_page rules", a.opts.Source.Name, a.opts.Source.Theme)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse feed content html: %w", err)
	}
	base := postURL
	if base == "" {
		base = a.opts.Source.URL
	}
	var out []model.RawEntry
	doc.Find(rp.Item).Each(func(_ int, s *goquery.Selection) {
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
			ProfileURL: abs(base, getVal(s, rp.Link)),
			PhotoURL:   abs(base, imgVal(s, rp.Photo)),
			SourceURL:  base,
		})
	})
	return out, nil
}
