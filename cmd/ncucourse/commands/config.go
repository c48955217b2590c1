package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"ncucourse/lib/configutil"
	"ncucourse/lib/course"
	"ncucourse/lib/coursestore"
	"ncucourse/lib/pgstore"
	"ncucourse/lib/scrapers/ncu"
	"ncucourse/services/catalog"

	devenv "ncucourse/dev/env"
)

const (
	envPostgresDsn = "NCUCOURSE_PG_DSN"
	envLibsqlUrl   = "NCUCOURSE_LIBSQL_URL"
)

type CacheConfig struct {
	// Dir holds the badger page cache, empty keeps the cache in memory.
	Dir      string `json:"dir"`
	TtlHours int    `json:"ttl_hours"`
	Disabled bool   `json:"disabled"`
}

type OutputConfig struct {
	Json        string             `json:"json"`
	RawJson     string             `json:"raw_json"`
	Database    coursestore.Config `json:"database"`
	PostgresDsn string             `json:"postgres_dsn"`
}

type Config struct {
	BaseUrl        string       `json:"base_url"`
	EntryPath      string       `json:"entry_path"`
	UserAgent      string       `json:"user_agent"`
	TimeoutSeconds int          `json:"timeout_seconds"`
	RetryCount     int          `json:"retry_count"`
	MinDelayMs     int          `json:"min_delay_ms"`
	MaxDelayMs     int          `json:"max_delay_ms"`
	Concurrency    int          `json:"concurrency"`
	Cache          CacheConfig  `json:"cache"`
	Output         OutputConfig `json:"output"`
}

func defaultConfig() Config {
	return Config{
		BaseUrl:        ncu.DefaultBaseUrl,
		EntryPath:      ncu.DefaultEntryPath,
		UserAgent:      ncu.DefaultUserAgent,
		TimeoutSeconds: 20,
		RetryCount:     3,
		MinDelayMs:     500,
		MaxDelayMs:     1500,
		Concurrency:    catalog.DefaultConcurrency,
		Cache: CacheConfig{
			Dir:      "<dev_state>/pagecache",
			TtlHours: 12,
		},
		Output: OutputConfig{
			Json: "ncu_courses.json",
		},
	}
}

func readConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfigWithDefaults(path, defaultConfig())
	if err != nil {
		return Config{}, err
	}
	if dsn := os.Getenv(envPostgresDsn); dsn != "" {
		cfg.Output.PostgresDsn = dsn
	}
	if url := os.Getenv(envLibsqlUrl); url != "" {
		cfg.Output.Database.Url = url
	}
	return cfg, nil
}

func (c Config) clientOptions() ncu.ClientOptions {
	return ncu.ClientOptions{
		BaseUrl:    c.BaseUrl,
		EntryPath:  c.EntryPath,
		UserAgent:  c.UserAgent,
		Timeout:    time.Duration(c.TimeoutSeconds) * time.Second,
		RetryCount: c.RetryCount,
		MinDelay:   time.Duration(c.MinDelayMs) * time.Millisecond,
		MaxDelay:   time.Duration(c.MaxDelayMs) * time.Millisecond,
	}
}

func (c CacheConfig) open() (*ncu.PageCache, error) {
	if c.Disabled {
		return nil, nil
	}
	dir := c.Dir
	if dir != "" {
		resolved, err := devenv.ResolvePath(dir)
		if err != nil {
			return nil, err
		}
		dir = resolved
	}
	return ncu.OpenPageCache(dir, time.Duration(c.TtlHours)*time.Hour)
}

// sinks opens every configured output, the returned function releases
// them.
func (c OutputConfig) sinks(ctx context.Context) ([]course.Sink, func(), error) {
	var sinks []course.Sink
	var closers []func()
	release := func() {
		for _, fn := range closers {
			fn()
		}
	}

	if c.Json != "" {
		path, err := devenv.ResolvePath(c.Json)
		if err != nil {
			return nil, release, err
		}
		sinks = append(sinks, course.JSONFile{Path: path})
	}
	if c.Database.Enabled() {
		db, err := c.Database.OpenDB()
		if err != nil {
			return nil, release, err
		}
		closers = append(closers, func() { db.Close() })
		sinks = append(sinks, coursestore.NewStore(db))
	}
	if c.PostgresDsn != "" {
		store, err := pgstore.Open(ctx, c.PostgresDsn)
		if err != nil {
			return nil, release, err
		}
		closers = append(closers, store.Close)
		sinks = append(sinks, store)
	}

	if len(sinks) == 0 {
		slog.Warn("no outputs configured, records will only be counted")
	}
	return sinks, release, nil
}
