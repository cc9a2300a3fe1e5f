package config

import "strings"

const (
	defaultAppEnv             = "dev"
	defaultAppLogLevel        = "info"
	defaultAppHTTPAddr        = ":9992"
	defaultAppLogPath         = "/data/logs/bracketbuddy.log"
	defaultPredictionsBaseURL = "http://localhost:5000"
	defaultPredictionsTimeout = 15
	defaultBreakerThreshold   = 5
	defaultBreakerCooldown    = 30
	defaultHomeWinColor       = "#34d399"
	defaultAwayWinColor       = "#f87171"
	defaultTieColor           = "#9ca3af"
	defaultPointSize          = 8
	defaultChartWidth         = 900
	defaultChartHeight        = 900
	defaultAssetsHost         = "https://go-echarts.github.io/go-echarts-assets/assets/"
	defaultSnapshotTimeout    = 20
	defaultSessionIdleTTL     = 1800
	defaultSessionJanitor     = 60
	defaultCatalogPath        = "configs/catalog.yaml"
	defaultStorePath          = "/data/db/renders.db"
)

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Predictions.applyDefaults(keys)
	c.Chart.applyDefaults(keys)
	c.Render.applyDefaults(keys)
	c.Session.applyDefaults(keys)
	c.Catalog.applyDefaults(keys)
	c.Store.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
		stringFieldDefault("app.log_path", &a.LogPath, defaultAppLogPath),
	)
}

func (p *PredictionsConfig) applyDefaults(keys keySet) {
	if p == nil {
		return
	}
	p.BaseURL = strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
	applyFieldDefaults(keys,
		stringFieldDefault("predictions.base_url", &p.BaseURL, defaultPredictionsBaseURL),
		intFieldDefault("predictions.timeout_seconds", &p.TimeoutSeconds, defaultPredictionsTimeout),
		intFieldDefault("predictions.breaker_threshold", &p.BreakerThreshold, defaultBreakerThreshold),
		intFieldDefault("predictions.breaker_cooldown_seconds", &p.BreakerCooldownSeconds, defaultBreakerCooldown),
	)
}

func (c *ChartConfig) applyDefaults(keys keySet) {
	if c == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("chart.home_win_color", &c.HomeWinColor, defaultHomeWinColor),
		stringFieldDefault("chart.away_win_color", &c.AwayWinColor, defaultAwayWinColor),
		stringFieldDefault("chart.tie_color", &c.TieColor, defaultTieColor),
		intFieldDefault("chart.point_size", &c.PointSize, defaultPointSize),
		intFieldDefault("chart.width", &c.Width, defaultChartWidth),
		intFieldDefault("chart.height", &c.Height, defaultChartHeight),
	)
}

func (r *RenderConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("render.assets_host", &r.AssetsHost, defaultAssetsHost),
		intFieldDefault("render.snapshot_timeout_seconds", &r.SnapshotTimeoutSeconds, defaultSnapshotTimeout),
	)
}

func (s *SessionConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("session.idle_ttl_seconds", &s.IdleTTLSeconds, defaultSessionIdleTTL),
		intFieldDefault("session.janitor_interval_seconds", &s.JanitorIntervalSeconds, defaultSessionJanitor),
	)
}

func (c *CatalogConfig) applyDefaults(keys keySet) {
	if c == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("catalog.path", &c.Path, defaultCatalogPath),
		boolFieldDefault("catalog.watch", &c.Watch, true),
	)
}

func (s *StoreConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("store.enabled", &s.Enabled, true),
		stringFieldDefault("store.path", &s.Path, defaultStorePath),
	)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

// boolFieldDefault only applies when the key is absent, since false is a valid explicit value.
func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
