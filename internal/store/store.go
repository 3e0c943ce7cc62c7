// Package store is the durable side of reconciliation: migrations and the
// conflict-aware upserts for shops, girls, roster entries and photo
// galleries. It speaks two dialects through database/sql — sqlite
// (modernc, pure Go) and postgres (pgx stdlib driver).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"rotisserie/internal/model"
)

// Store wraps *sql.DB plus the dialect the SQL is rebound for.
type Store struct {
	db      *sql.DB
	dialect string
}

// Open opens the database for the given dialect and runs migrations.
func Open(dbType, dsn string) (*Store, error) {
	var driver string
	switch dbType {
	case "sqlite", "":
		driver = "sqlite"
	case "postgres":
		driver = "pgx"
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbType, err)
	}
	if driver == "sqlite" {
		// modernc sqlite is single-writer
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db, dialect: driver}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// migrate runs the idempotent DDL for the active dialect.
func (s *Store) migrate() error {
	stmts := sqliteSchema
	if s.dialect == "pgx" {
		stmts = postgresSchema
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("exec migrate: %w", err)
		}
	}
	return nil
}

// bind rewrites ? placeholders to $n for postgres; sqlite takes them as-is.
func (s *Store) bind(query string) string {
	if s.dialect != "pgx" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetOrCreateShop resolves a shop by canonical URL, creating it on first
// sight. Name/url/slug are refreshed on conflict; location only when the new
// value is non-empty; identity (canonical_url) never changes.
func (s *Store) GetOrCreateShop(ctx context.Context, shop model.Shop) (int64, error) {
	cu := strings.TrimRight(shop.CanonicalURL, "/")
	if cu == "" {
		cu = strings.TrimRight(shop.URL, "/")
	}
	if cu == "" {
		return 0, fmt.Errorf("shop %q: canonical url required", shop.Name)
	}
	now := time.Now()
	var id int64
	err := s.db.QueryRowContext(ctx, s.bind(`INSERT INTO shops (name, url, canonical_url, location, slug, created_at, updated_at)
        VALUES (?,?,?,?,?,?,?)
        ON CONFLICT (canonical_url) DO UPDATE SET
            name = excluded.name,
            url = excluded.url,
            slug = excluded.slug,
            location = CASE WHEN excluded.location IS NULL OR excluded.location = '' THEN shops.location ELSE excluded.location END,
            updated_at = excluded.updated_at
        RETURNING id`),
		shop.Name, shop.URL, cu, shop.Location, shop.Slug, now, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert shop %s: %w", cu, err)
	}
	return id, nil
}

// upsertGirl resolves or creates a girl by profile URL. A locked profile
// (manual_override) keeps its name and origin no matter what this run saw;
// photo and shop association always follow the scrape.
func (s *Store) upsertGirl(ctx context.Context, q dbtx, g model.Girl) (int64, error) {
	if g.ProfileURL == "" {
		return 0, fmt.Errorf("girl %q: profile url required", g.Name)
	}
	now := time.Now()
	var id int64
	err := q.QueryRowContext(ctx, s.bind(`INSERT INTO girls (name, origin, photo_url, shop_id, profile_url, manual_override, created_at, updated_at)
        VALUES (?,?,?,?,?,?,?,?)
        ON CONFLICT (profile_url) DO UPDATE SET
            name = CASE WHEN girls.manual_override THEN girls.name ELSE excluded.name END,
            origin = CASE WHEN girls.manual_override THEN girls.origin ELSE excluded.origin END,
            photo_url = excluded.photo_url,
            shop_id = excluded.shop_id,
            updated_at = excluded.updated_at
        RETURNING id`),
		g.Name, g.Origin, g.PhotoURL, g.ShopID, g.ProfileURL, false, now, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert girl %s: %w", g.ProfileURL, err)
	}
	return id, nil
}

// upsertRosterEntry writes one (shop, girl, date) row; re-scrapes overwrite
// shift text and refresh scraped_at, keeping the old source URL when the new
// one is empty.
func (s *Store) upsertRosterEntry(ctx context.Context, q dbtx, e model.RosterEntry) error {
	_, err := q.ExecContext(ctx, s.bind(`INSERT INTO roster_entries (date, girl_id, shop_id, shift_text, source_url, scraped_at)
        VALUES (?,?,?,?,?,?)
        ON CONFLICT (date, girl_id, shop_id) DO UPDATE SET
            shift_text = excluded.shift_text,
            scraped_at = excluded.scraped_at,
            source_url = CASE WHEN excluded.source_url IS NULL OR excluded.source_url = '' THEN roster_entries.source_url ELSE excluded.source_url END`),
		e.Date, e.GirlID, e.ShopID, e.ShiftText, e.SourceURL, time.Now())
	if err != nil {
		return fmt.Errorf("upsert roster entry girl=%d date=%s: %w", e.GirlID, e.Date, err)
	}
	return nil
}

// upsertPhotos inserts gallery URLs in order; an already-seen (girl, url)
// pair is a no-op and never reorders existing rows.
func (s *Store) upsertPhotos(ctx context.Context, q dbtx, girlID int64, photos []string) error {
	for i, u := range photos {
		if u == "" {
			continue
		}
		_, err := q.ExecContext(ctx, s.bind(`INSERT INTO girl_photos (girl_id, url, position)
            VALUES (?,?,?)
            ON CONFLICT (girl_id, url) DO NOTHING`), girlID, u, i)
		if err != nil {
			return fmt.Errorf("upsert photo girl=%d url=%s: %w", girlID, u, err)
		}
	}
	return nil
}

// Unit runs fn inside one transaction: the girl → roster entry → gallery
// sequence commits or rolls back as a whole, so an abort mid-unit can never
// leave a roster entry pointing at a girl that failed to commit.
func (s *Store) Unit(ctx context.Context, fn func(u *Unit) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&Unit{s: s, tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Unit is the transaction-scoped slice of the store a single profile's
// upsert sequence runs against.
type Unit struct {
	s  *Store
	tx *sql.Tx
}

func (u *Unit) UpsertGirl(ctx context.Context, g model.Girl) (int64, error) {
	return u.s.upsertGirl(ctx, u.tx, g)
}

func (u *Unit) UpsertRosterEntry(ctx context.Context, e model.RosterEntry) error {
	return u.s.upsertRosterEntry(ctx, u.tx, e)
}

func (u *Unit) UpsertPhotos(ctx context.Context, girlID int64, photos []string) error {
	return u.s.upsertPhotos(ctx, u.tx, girlID, photos)
}

// MarkShopScraped stamps last_scraped for the slug after a successful run.
func (s *Store) MarkShopScraped(ctx context.Context, slug string) error {
	_, err := s.db.ExecContext(ctx, s.bind(`UPDATE shops SET last_scraped = ? WHERE slug = ?`), time.Now(), slug)
	if err != nil {
		return fmt.Errorf("mark scraped %s: %w", slug, err)
	}
	return nil
}

// SetLock flips manual_override for one profile. This is the external human
// action; the scraper core only ever reads the flag.
func (s *Store) SetLock(ctx context.Context, profileURL string, state model.LockState) error {
	res, err := s.db.ExecContext(ctx, s.bind(`UPDATE girls SET manual_override = ? WHERE profile_url = ?`),
		state == model.Locked, profileURL)
	if err != nil {
		return fmt.Errorf("set lock %s: %w", profileURL, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set lock %s: no such profile", profileURL)
	}
	return nil
}

// GetGirl fetches one profile by its identity URL.
func (s *Store) GetGirl(ctx context.Context, profileURL string) (model.Girl, error) {
	var g model.Girl
	var override bool
	var origin, photo sql.NullString
	err := s.db.QueryRowContext(ctx, s.bind(`SELECT id, COALESCE(shop_id, 0), COALESCE(name, ''), origin, profile_url, photo_url, manual_override
        FROM girls WHERE profile_url = ?`), profileURL).
		Scan(&g.ID, &g.ShopID, &g.Name, &origin, &g.ProfileURL, &photo, &override)
	if err != nil {
		return g, fmt.Errorf("get girl %s: %w", profileURL, err)
	}
	g.Origin = origin.String
	g.PhotoURL = photo.String
	g.Lock = model.Scrapable
	if override {
		g.Lock = model.Locked
	}
	return g, nil
}

// ListPhotos returns a girl's gallery ordered by position.
func (s *Store) ListPhotos(ctx context.Context, girlID int64) ([]model.Photo, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(`SELECT id, girl_id, url, COALESCE(position, 0)
        FROM girl_photos WHERE girl_id = ? ORDER BY position, id`), girlID)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()
	var out []model.Photo
	for rows.Next() {
		var p model.Photo
		if err := rows.Scan(&p.ID, &p.GirlID, &p.URL, &p.Position); err != nil {
			return nil, fmt.Errorf("scan photos: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}
	return out, nil
}

// RosterFor returns all entries for one calendar date.
func (s *Store) RosterFor(ctx context.Context, date string) ([]model.RosterEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(`SELECT id, shop_id, girl_id, CAST(date AS TEXT), COALESCE(shift_text, ''), COALESCE(source_url, ''), scraped_at
        FROM roster_entries WHERE date = ? ORDER BY shop_id, girl_id`), date)
	if err != nil {
		return nil, fmt.Errorf("query roster %s: %w", date, err)
	}
	defer rows.Close()
	var out []model.RosterEntry
	for rows.Next() {
		var e model.RosterEntry
		var scraped sql.NullTime
		if err := rows.Scan(&e.ID, &e.ShopID, &e.GirlID, &e.Date, &e.ShiftText, &e.SourceURL, &scraped); err != nil {
			return nil, fmt.Errorf("scan roster: %w", err)
		}
		if scraped.Valid {
			e.ScrapedAt = scraped.Time
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster: %w", err)
	}
	return out, nil
}

// ListShops returns all shops ordered by name.
func (s *Store) ListShops(ctx context.Context) ([]model.Shop, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, url, canonical_url, COALESCE(location, ''), COALESCE(slug, ''), last_scraped FROM shops ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query shops: %w", err)
	}
	defer rows.Close()
	var out []model.Shop
	for rows.Next() {
		var sh model.Shop
		var last sql.NullTime
		if err := rows.Scan(&sh.ID, &sh.Name, &sh.URL, &sh.CanonicalURL, &sh.Location, &sh.Slug, &last); err != nil {
			return nil, fmt.Errorf("scan shops: %w", err)
		}
		if last.Valid {
			t := last.Time
			sh.LastScraped = &t
		}
		out = append(out, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shops: %w", err)
	}
	return out, nil
}

// Stats reports store-wide row counts for exports.
func (s *Store) Stats(ctx context.Context) (model.Stats, error) {
	var st model.Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM shops`).Scan(&st.Shops); err != nil {
		return st, fmt.Errorf("count shops: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM girls`).Scan(&st.Girls); err != nil {
		return st, fmt.Errorf("count girls: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM roster_entries`).Scan(&st.Entries); err != nil {
		return st, fmt.Errorf("count roster entries: %w", err)
	}
	st.UpdatedAt = time.Now()
	return st, nil
}

// CountRoster counts entries for (shop, date); used by idempotence checks.
func (s *Store) CountRoster(ctx context.Context, shopID int64, date string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.bind(`SELECT COUNT(1) FROM roster_entries WHERE shop_id = ? AND date = ?`), shopID, date).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count roster shop=%d: %w", shopID, err)
	}
	return n, nil
}
