// Package reconcile merges one run's canonical records for one shop into the
// store. Shop identity failure is fatal for the run; anything that goes
// wrong for a single profile is logged and skipped. Nothing is ever deleted:
// absence from today's scrape is not evidence of absence from the roster.
package reconcile

import (
	"context"
	"fmt"
	"sync"

	"rotisserie/internal/logx"
	"rotisserie/internal/model"
	"rotisserie/internal/store"
)

// profileLocks serializes writes per profile URL so two sources running
// concurrently cannot race on the same girl's override check. Locks are
// never held across network I/O — all fetching happened upstream.
type profileLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (p *profileLocks) get(key string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.m == nil {
		p.m = make(map[string]*sync.Mutex)
	}
	l, ok := p.m[key]
	if !ok {
		l = &sync.Mutex{}
		p.m[key] = l
	}
	return l
}

// Reconciler applies canonical batches to a store handle. The handle is
// injected; there is no process-wide connection state.
type Reconciler struct {
	store *store.Store
	locks profileLocks
}

// New creates a Reconciler over the given store.
func New(s *store.Store) *Reconciler {
	return &Reconciler{store: s}
}

// Apply merges records into durable state for (shop, date). Each record runs
// as one transactional unit — girl, roster entry, then gallery — under that
// profile's lock; a failed unit is logged with the profile URL and skipped.
func (r *Reconciler) Apply(ctx context.Context, shop model.Shop, records []model.Record, date string) (model.Result, error) {
	var res model.Result
	shopID, err := r.store.GetOrCreateShop(ctx, shop)
	if err != nil {
		return res, fmt.Errorf("resolve shop: %w", err)
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			// aborting between units leaves no partial multi-table state
			return res, err
		}
		if rec.ProfileURL == "" {
			// the builder rejects these; belt for records built elsewhere
			res.Skipped++
			continue
		}
		if err := r.applyOne(ctx, shopID, rec, date); err != nil {
			logx.Warnf("skip profile %s: %v", rec.ProfileURL, err)
			res.Skipped++
			continue
		}
		res.Persisted++
	}
	return res, nil
}

func (r *Reconciler) applyOne(ctx context.Context, shopID int64, rec model.Record, date string) error {
	l := r.locks.get(rec.ProfileURL)
	l.Lock()
	defer l.Unlock()

	return r.store.Unit(ctx, func(u *store.Unit) error {
		girlID, err := u.UpsertGirl(ctx, model.Girl{
			ShopID:     shopID,
			Name:       rec.Name,
			Origin:     rec.Origin,
			ProfileURL: rec.ProfileURL,
			PhotoURL:   rec.PhotoURL,
		})
		if err != nil {
			return err
		}
		if err := u.UpsertRosterEntry(ctx, model.RosterEntry{
			ShopID:    shopID,
			GirlID:    girlID,
			Date:      date,
			ShiftText: rec.Shift,
			SourceURL: rec.SourceURL,
		}); err != nil {
			return err
		}
		// a single photo already lives on the girl row; galleries only
		if len(rec.Photos) > 1 {
			if err := u.UpsertPhotos(ctx, girlID, rec.Photos); err != nil {
				return err
			}
		}
		return nil
	})
}
