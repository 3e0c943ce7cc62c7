// Command-line entry point:
// - parses flags plus settings.yaml/rules.yaml
// - initializes logging, the HTTP client and the database
// - supports a selector-debugging mode (-discover) and dry runs
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"rotisserie/internal/adapter"
	"rotisserie/internal/config"
	"rotisserie/internal/export"
	"rotisserie/internal/fetch"
	"rotisserie/internal/logx"
	"rotisserie/internal/rules"
	"rotisserie/internal/run"
	"rotisserie/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "settings.yaml", "path to settings.yaml")
		rulesPath  = flag.String("rules", "rules.yaml", "path to rules.yaml")
		exportPath = flag.String("export", "", "write the day's roster to this json path after the run")
		discover   = flag.Bool("discover", false, "print raw entries per source and exit (no store writes)")
	)
	flag.Parse()

	// .env overlay so ROTISSERIE_DSN etc. can live next to the binary
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	var rl *rules.Rules
	if *rulesPath != "" {
		if r, err := rules.Load(*rulesPath); err == nil {
			rl = r
		} else {
			log.Printf("load rules failed: %v", err)
		}
	}
	logx.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogColor)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("load timezone %s: %v", cfg.Timezone, err)
	}

	cl, err := fetch.New(fetch.Options{
		ProxyHTTP:  cfg.Proxy.HTTP,
		ProxyHTTPS: cfg.Proxy.HTTPS,
		Timeout:    25 * time.Second,
		Retry:      cfg.Concurrency.Retry,
		UserAgent:  cfg.UserAgent,
		Pause:      time.Duration(cfg.PauseMS) * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("http client: %v", err)
	}

	ctx := context.Background()
	if *discover {
		// debug: extract raw entries only, no building, no store
		for _, src := range cfg.Sources {
			var preset rules.Preset
			if rl != nil {
				if p, ok := rl.GetPreset(src.Theme); ok {
					preset = p
				}
			}
			ad, err := adapter.New(adapter.Options{Source: src, Client: cl, Preset: preset, Loc: loc})
			if err != nil {
				logx.Errorf("[%s] adapter: %v", src.Slug, err)
				continue
			}
			raws, err := ad.Fetch(ctx)
			if err != nil {
				logx.Errorf("[%s] fetch: %v", src.Slug, err)
				continue
			}
			logx.Infof("[%s] %d raw entries", src.Slug, len(raws))
			for _, e := range raws {
				logx.Infof("- name=%q shift=%q link=%s photo=%s", e.Name, e.Shift, e.ProfileURL, e.PhotoURL)
			}
		}
		return
	}

	var st *store.Store
	if !cfg.DryRun {
		st, err = store.Open(cfg.Database.Type, cfg.Database.DSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer st.Close()
	} else {
		logx.Infof("dry run: store stays closed")
	}

	runner := run.New(cfg, st, cl, rl, loc)
	results, err := runner.Run(ctx)
	if err != nil {
		logx.Errorf("run aborted: %v", err)
		os.Exit(1)
	}
	for _, res := range results {
		if res.Error != "" {
			logx.Warnf("[%s] failed: %s", res.Slug, res.Error)
		}
	}

	if cfg.DryRun {
		if err := export.Batches("records.json", runner.BufferData()); err != nil {
			log.Fatalf("export dry-run batches: %v", err)
		}
		logx.Infof("wrote records.json")
		return
	}
	if *exportPath != "" {
		if err := export.ToJSON(ctx, st, runner.Date(), *exportPath); err != nil {
			log.Fatalf("export roster: %v", err)
		}
		logx.Infof("wrote %s", *exportPath)
	}
}
