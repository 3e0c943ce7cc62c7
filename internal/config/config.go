// Package config loads and validates the application settings
// (settings.yaml), exposing the Config struct with defaults applied.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config keeps only the fields the pipeline needs.
type Config struct {
	Sources     []Source    `yaml:"SOURCES"`
	Timezone    string      `yaml:"TIMEZONE"` // roster dates use this zone
	Database    Database    `yaml:"DATABASE"`
	Concurrency Concurrency `yaml:"CONCURRENCY"`
	PauseMS     int         `yaml:"PAUSE_MS"` // politeness delay between profile fetches
	SnapshotDir string      `yaml:"SNAPSHOT_DIR"`
	DryRun      bool        `yaml:"DRY_RUN"` // build records, skip the store
	UserAgent   string      `yaml:"USER_AGENT"`
	Proxy       Proxy       `yaml:"PROXY"`
	LogLevel    string      `yaml:"LOG_LEVEL"`
	LogFormat   string      `yaml:"LOG_FORMAT"` // text|json|pretty
	LogColor    string      `yaml:"LOG_COLOR"`  // auto|always|never
}

// Source describes one shop to scrape.
type Source struct {
	Name     string `yaml:"name"`     // shop display name
	Slug     string `yaml:"slug"`     // stable short id, used for snapshots/last_scraped
	URL      string `yaml:"url"`      // roster page (type page) or site/feed URL (type feed)
	Type     string `yaml:"type"`     // page|feed
	Theme    string `yaml:"theme"`    // selector preset name in rules.yaml
	Location string `yaml:"location"` // optional, refreshes the shop row when set
	Keyword  string `yaml:"keyword"`  // feed sources: newest item whose title contains this
}

type Database struct {
	Type string `yaml:"type"` // sqlite (default) | postgres
	DSN  string `yaml:"dsn"`
}

type Concurrency struct {
	Sources int `yaml:"sources"` // sources scraped in parallel
	Retry   int `yaml:"retry"`   // HTTP retries per request
}

type Proxy struct {
	HTTP  string `yaml:"http"`
	HTTPS string `yaml:"https"`
}

// Load reads YAML from path, unmarshals and validates it.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Validate checks legality and fills defaults so business code never has to.
func (c *Config) Validate() error {
	for i := range c.Sources {
		s := &c.Sources[i]
		if s.Name == "" {
			return fmt.Errorf("source %d: name required", i)
		}
		if s.URL == "" {
			return fmt.Errorf("source %s: url required", s.Name)
		}
		if s.Type == "" {
			s.Type = "page"
		}
		if s.Type != "page" && s.Type != "feed" {
			return fmt.Errorf("source %s: unsupported type %q", s.Name, s.Type)
		}
		if s.Slug == "" {
			s.Slug = slugify(s.Name)
		}
		if s.Type == "feed" && s.Keyword == "" {
			s.Keyword = "roster"
		}
	}
	if c.Timezone == "" {
		c.Timezone = "Australia/Sydney"
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.Type != "sqlite" && c.Database.Type != "postgres" {
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.Database.DSN == "" {
		if c.Database.Type == "postgres" {
			return errors.New("DATABASE.dsn required for postgres")
		}
		c.Database.DSN = "./rotisserie.db"
	}
	// ROTISSERIE_DSN wins over the file so credentials stay out of settings.yaml
	if dsn := os.Getenv("ROTISSERIE_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if c.Concurrency.Sources <= 0 {
		c.Concurrency.Sources = 4
	}
	if c.Concurrency.Retry < 0 {
		c.Concurrency.Retry = 2
	}
	if c.PauseMS < 0 {
		return errors.New("PAUSE_MS must be >= 0")
	}
	if c.PauseMS == 0 {
		c.PauseMS = 350
	}
	if c.SnapshotDir == "" {
		c.SnapshotDir = "."
	}
	if c.LogFormat == "" {
		c.LogFormat = "pretty"
	}
	if c.LogColor == "" {
		c.LogColor = "auto"
	}
	return nil
}

// slugify derives a stable slug from a shop name: "No5 Marrickville" →
// "no5marrickville", the same shape the shops table carries.
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
