package config

import (
	"strings"
	"time"
)

// Config is the root of the YAML configuration.
type Config struct {
	App         AppConfig         `toml:"app"`
	Predictions PredictionsConfig `toml:"predictions"`
	Chart       ChartConfig       `toml:"chart"`
	Render      RenderConfig      `toml:"render"`
	Session     SessionConfig     `toml:"session"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Store       StoreConfig       `toml:"store"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

// PredictionsConfig describes the upstream prediction API.
type PredictionsConfig struct {
	BaseURL                string            `toml:"base_url"`
	TimeoutSeconds         int               `toml:"timeout_seconds"`
	InsecureSkipVerify     bool              `toml:"insecure_skip_verify"`
	Headers                map[string]string `toml:"headers"`
	BreakerThreshold       int               `toml:"breaker_threshold"`
	BreakerCooldownSeconds int               `toml:"breaker_cooldown_seconds"`
}

func (p PredictionsConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

func (p PredictionsConfig) BreakerCooldown() time.Duration {
	return time.Duration(p.BreakerCooldownSeconds) * time.Second
}

// ChartConfig controls how payloads become scatter charts.
type ChartConfig struct {
	// LenientCoercion keeps the legacy behaviour: unparsable points become NaN instead of failing.
	LenientCoercion     bool   `toml:"lenient_coercion"`
	DeriveMissingColors bool   `toml:"derive_missing_colors"`
	HomeWinColor        string `toml:"home_win_color"`
	AwayWinColor        string `toml:"away_win_color"`
	TieColor            string `toml:"tie_color"`
	PointSize           int    `toml:"point_size"`
	Width               int    `toml:"width"`
	Height              int    `toml:"height"`
}

type RenderConfig struct {
	AssetsHost             string `toml:"assets_host"`
	SnapshotEnabled        bool   `toml:"snapshot_enabled"`
	SnapshotTimeoutSeconds int    `toml:"snapshot_timeout_seconds"`
}

func (r RenderConfig) SnapshotTimeout() time.Duration {
	return time.Duration(r.SnapshotTimeoutSeconds) * time.Second
}

type SessionConfig struct {
	IdleTTLSeconds         int `toml:"idle_ttl_seconds"`
	JanitorIntervalSeconds int `toml:"janitor_interval_seconds"`
}

func (s SessionConfig) IdleTTL() time.Duration {
	return time.Duration(s.IdleTTLSeconds) * time.Second
}

func (s SessionConfig) JanitorInterval() time.Duration {
	return time.Duration(s.JanitorIntervalSeconds) * time.Second
}

type CatalogConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

// StoreConfig locates the SQLite render log. Payloads are never stored.
type StoreConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// keySet tracks field paths set explicitly in the config files.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault describes how a single field gets its default.
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
