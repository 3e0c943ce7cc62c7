// Package run orchestrates one scrape run:
// - per source: adapter → canonical builder → snapshot → reconciler
// - sources proceed independently; one source's failure never stops the run
// - per-source outcome and last-scraped bookkeeping
package run

import (
	"context"
	"sync"
	"time"

	"rotisserie/internal/adapter"
	"rotisserie/internal/config"
	"rotisserie/internal/export"
	"rotisserie/internal/fetch"
	"rotisserie/internal/logx"
	"rotisserie/internal/model"
	"rotisserie/internal/reconcile"
	"rotisserie/internal/roster"
	"rotisserie/internal/rules"
	"rotisserie/internal/store"
)

// Runner drives one run over the configured sources.
type Runner struct {
	cfg   *config.Config
	rules *rules.Rules
	fetch *fetch.Client
	store *store.Store
	rec   *reconcile.Reconciler
	loc   *time.Location
	// dry-run: collect canonical records instead of writing the store
	buf *Buffer
}

// New creates a Runner. store may be nil only in dry-run mode.
func New(cfg *config.Config, s *store.Store, cl *fetch.Client, rl *rules.Rules, loc *time.Location) *Runner {
	r := &Runner{cfg: cfg, store: s, fetch: cl, rules: rl, loc: loc}
	if cfg.DryRun {
		r.buf = NewBuffer()
	} else {
		r.rec = reconcile.New(s)
	}
	return r
}

// Date returns the run's calendar date in the operating timezone.
func (r *Runner) Date() string {
	return time.Now().In(r.loc).Format("2006-01-02")
}

// Run scrapes every configured source with bounded parallelism and returns
// the per-source outcomes. Only a canceled context is returned as an error;
// source failures live in the outcomes.
func (r *Runner) Run(ctx context.Context) ([]model.SourceResult, error) {
	date := r.Date()
	logx.Infof("run start: %d sources, date=%s, dry=%v", len(r.cfg.Sources), date, r.cfg.DryRun)

	results := make([]model.SourceResult, len(r.cfg.Sources))
	sem := make(chan struct{}, max(1, r.cfg.Concurrency.Sources))
	var wg sync.WaitGroup
	spawned := 0
	for i, src := range r.cfg.Sources {
		if ctx.Err() != nil {
			break
		}
		i, src := i, src
		spawned++
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = r.processSource(ctx, src, date)
		}()
	}
	// in-flight sources must finish before anyone reads the results
	wg.Wait()
	results = results[:spawned]

	total, failed := 0, 0
	for _, res := range results {
		if res.Error != "" {
			failed++
			continue
		}
		total += res.Persisted
	}
	logx.Infof("run done: %d entries persisted, %d/%d sources failed", total, failed, len(results))
	return results, ctx.Err()
}

// processSource runs the full pipeline for one shop.
func (r *Runner) processSource(ctx context.Context, src config.Source, date string) model.SourceResult {
	res := model.SourceResult{Slug: src.Slug, Shop: src.Name}

	var preset rules.Preset
	if r.rules != nil {
		if p, ok := r.rules.GetPreset(src.Theme); ok {
			preset = p
		}
	}
	ad, err := adapter.New(adapter.Options{Source: src, Client: r.fetch, Preset: preset, Loc: r.loc})
	if err != nil {
		res.Error = err.Error()
		logx.Errorf("[%s] adapter: %v", src.Slug, err)
		return res
	}
	raws, err := ad.Fetch(ctx)
	if err != nil {
		// zero entries, failure recorded; the run moves on
		res.Error = err.Error()
		logx.Warnf("[%s] fetch failed: %v", src.Slug, err)
		return res
	}

	records, rejected := roster.BuildBatch(raws)
	res.Rejected = rejected
	logx.Infof("[%s] %d canonical records (%d rejected)", src.Slug, len(records), rejected)

	// debug snapshot before reconciliation; best-effort
	if r.cfg.SnapshotDir != "" {
		if err := export.Snapshot(r.cfg.SnapshotDir, src.Slug, records); err != nil {
			logx.Warnf("[%s] snapshot: %v", src.Slug, err)
		}
	}

	if r.buf != nil {
		r.buf.Add(src.Slug, records)
		res.Persisted = len(records)
		return res
	}

	outcome, err := r.rec.Apply(ctx, model.Shop{
		Name:         src.Name,
		URL:          src.URL,
		CanonicalURL: src.URL,
		Location:     src.Location,
		Slug:         src.Slug,
	}, records, date)
	if err != nil {
		res.Error = err.Error()
		logx.Errorf("[%s] reconcile: %v", src.Slug, err)
		return res
	}
	res.Persisted = outcome.Persisted
	res.Skipped = outcome.Skipped
	if err := r.store.MarkShopScraped(ctx, src.Slug); err != nil {
		logx.Warnf("[%s] mark scraped: %v", src.Slug, err)
	}
	logx.Infof("[%s] persisted=%d skipped=%d rejected=%d", src.Slug, res.Persisted, res.Skipped, res.Rejected)
	return res
}

// BufferData returns the records collected in dry-run mode, keyed by slug.
func (r *Runner) BufferData() map[string][]model.Record {
	if r == nil || r.buf == nil {
		return nil
	}
	return r.buf.Snapshot()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
