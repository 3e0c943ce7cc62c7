package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"rotisserie/internal/config"
	"rotisserie/internal/rules"
)

func TestFeedAdapter_DiscoverAndExtract(t *testing.T) {
	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, `<?xml version="1.0"?><rss version="2.0"><channel>
        <title>Ginza Club</title>
        <item>
          <title>Todays ROSTER update</title>
          <link>%s/roster-post/</link>
          <description><![CDATA[
            <ul>
              <li class="g"><a href="/girls/mimi">K Mimi</a><span class="sh">11am - 9pm</span></li>
              <li class="g"><a href="/girls/lulu">Lulu (Vietnam)</a></li>
            </ul>
          ]]></description>
        </item>
        <item><title>Unrelated news</title></item>
        </channel></rss>`, srvURL)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	preset := rules.Preset{Roster: &rules.RosterPage{
		Item:  "li.g",
		Name:  "a",
		Shift: ".sh",
		Link:  "a@href",
	}}
	ad, err := New(Options{
		Source: config.Source{Name: "Ginza", Slug: "ginza", URL: srv.URL + "/", Type: "feed", Keyword: "roster"},
		Client: testClient(t),
		Preset: preset,
	})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	raws, err := ad.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("entries = %d, want 2", len(raws))
	}
	if raws[0].Name != "K Mimi" || raws[0].Shift != "11am - 9pm" {
		t.Fatalf("entry 0: %+v", raws[0])
	}
	if raws[0].ProfileURL != srv.URL+"/girls/mimi" {
		t.Fatalf("link resolved against post url: %q", raws[0].ProfileURL)
	}
	if raws[0].SourceURL != srv.URL+"/roster-post/" {
		t.Fatalf("source url: %q", raws[0].SourceURL)
	}
}

func TestFeedAdapter_NoMatchingItem(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel>
        <title>X</title><item><title>Grand opening</title></item></channel></rss>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ad, _ := New(Options{
		Source: config.Source{Name: "X", Slug: "x", URL: srv.URL + "/", Type: "feed", Keyword: "roster"},
		Client: testClient(t),
		Preset: rules.Preset{Roster: &rules.RosterPage{Item: "li", Name: "a"}},
	})
	if _, err := ad.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error when no item matches the keyword")
	}
}

func TestPickItem_CaseInsensitiveFirstMatch(t *testing.T) {
	feed := func(titles ...string) *gofeed.Feed {
		f := &gofeed.Feed{}
		for _, title := range titles {
			f.Items = append(f.Items, &gofeed.Item{Title: title})
		}
		return f
	}
	if it := pickItem(feed("A", "B"), ""); it == nil || it.Title != "A" {
		t.Fatalf("empty keyword must pick the newest item")
	}
	if it := pickItem(feed("News", "Roster Friday"), "ROSTER"); it == nil || it.Title != "Roster Friday" {
		t.Fatalf("keyword match failed")
	}
	if it := pickItem(feed("News"), "roster"); it != nil {
		t.Fatalf("no match must return nil")
	}
}

func TestPickItem_NewestByPublishDate(t *testing.T) {
	day := func(d int) *time.Time {
		t := time.Date(2026, 9, d, 8, 0, 0, 0, time.UTC)
		return &t
	}
	f := &gofeed.Feed{Items: []*gofeed.Item{
		{Title: "Roster Monday", PublishedParsed: day(1)},
		{Title: "Roster Wednesday", PublishedParsed: day(3)},
		{Title: "Roster Tuesday", PublishedParsed: day(2)},
	}}
	if it := pickItem(f, "roster"); it == nil || it.Title != "Roster Wednesday" {
		t.Fatalf("unordered feed must pick the latest dated item, got %+v", it)
	}

	// a dated item beats an undated one, and undated-only keeps feed order
	f = &gofeed.Feed{Items: []*gofeed.Item{
		{Title: "Roster undated"},
		{Title: "Roster dated", PublishedParsed: day(1)},
	}}
	if it := pickItem(f, "roster"); it == nil || it.Title != "Roster dated" {
		t.Fatalf("dated item must win, got %+v", it)
	}
	f = &gofeed.Feed{Items: []*gofeed.Item{
		{Title: "Roster first"},
		{Title: "Roster second"},
	}}
	if it := pickItem(f, "roster"); it == nil || it.Title != "Roster first" {
		t.Fatalf("undated feed must keep feed order, got %+v", it)
	}
}
