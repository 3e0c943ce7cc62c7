package store

// Idempotent DDL per dialect. Shape mirrors the persisted schema contract:
// shops keyed by canonical_url, girls by profile_url, roster entries unique
// per (date, girl, shop), photos unique per (girl, url).

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS shops (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL,
        url TEXT NOT NULL,
        canonical_url TEXT NOT NULL UNIQUE,
        location TEXT,
        slug TEXT,
        last_scraped TIMESTAMP,
        created_at TIMESTAMP,
        updated_at TIMESTAMP
    );`,
	`CREATE TABLE IF NOT EXISTS girls (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        shop_id INTEGER REFERENCES shops(id),
        name TEXT,
        origin TEXT,
        profile_url TEXT NOT NULL UNIQUE,
        photo_url TEXT,
        manual_override INTEGER NOT NULL DEFAULT 0,
        created_at TIMESTAMP,
        updated_at TIMESTAMP
    );`,
	`CREATE TABLE IF NOT EXISTS roster_entries (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        date TEXT NOT NULL,
        girl_id INTEGER NOT NULL REFERENCES girls(id),
        shop_id INTEGER NOT NULL REFERENCES shops(id),
        shift_text TEXT,
        source_url TEXT,
        scraped_at TIMESTAMP NOT NULL,
        UNIQUE (date, girl_id, shop_id)
    );`,
	`CREATE TABLE IF NOT EXISTS girl_photos (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        girl_id INTEGER NOT NULL REFERENCES girls(id),
        url TEXT NOT NULL,
        position INTEGER,
        UNIQUE (girl_id, url)
    );`,
	`CREATE INDEX IF NOT EXISTS idx_girls_shop ON girls (shop_id);`,
	`CREATE INDEX IF NOT EXISTS idx_roster_shop_date ON roster_entries (shop_id, date);`,
	`CREATE INDEX IF NOT EXISTS idx_photos_girl ON girl_photos (girl_id);`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS shops (
        id SERIAL PRIMARY KEY,
        name VARCHAR(255) NOT NULL,
        url TEXT NOT NULL,
        canonical_url TEXT NOT NULL UNIQUE,
        location VARCHAR(255),
        slug TEXT,
        last_scraped TIMESTAMP,
        created_at TIMESTAMP,
        updated_at TIMESTAMP
    );`,
	`CREATE TABLE IF NOT EXISTS girls (
        id SERIAL PRIMARY KEY,
        shop_id INT REFERENCES shops(id),
        name VARCHAR(255),
        origin VARCHAR(100),
        profile_url TEXT NOT NULL UNIQUE,
        photo_url TEXT,
        manual_override BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMP,
        updated_at TIMESTAMP
    );`,
	`CREATE TABLE IF NOT EXISTS roster_entries (
        id SERIAL PRIMARY KEY,
        date DATE NOT NULL,
        girl_id INT NOT NULL REFERENCES girls(id),
        shop_id INT NOT NULL REFERENCES shops(id),
        shift_text VARCHAR(120),
        source_url TEXT,
        scraped_at TIMESTAMP NOT NULL,
        UNIQUE (date, girl_id, shop_id)
    );`,
	`CREATE TABLE IF NOT EXISTS girl_photos (
        id SERIAL PRIMARY KEY,
        girl_id INT NOT NULL REFERENCES girls(id),
        url TEXT NOT NULL,
        position INT,
        UNIQUE (girl_id, url)
    );`,
	`CREATE INDEX IF NOT EXISTS idx_girls_shop ON girls (shop_id);`,
	`CREATE INDEX IF NOT EXISTS idx_roster_shop_date ON roster_entries (shop_id, date);`,
	`CREATE INDEX IF NOT EXISTS idx_photos_girl ON girl_photos (girl_id);`,
}
