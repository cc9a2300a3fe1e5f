package config

import (
	"fmt"
	"net/url"
	"strings"
)

func validate(c *Config) error {
	if err := c.Predictions.validate(); err != nil {
		return err
	}
	if err := c.Chart.validate(); err != nil {
		return err
	}
	if err := c.Session.validate(); err != nil {
		return err
	}
	if c.Store.Enabled && strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path cannot be empty when store is enabled")
	}
	return nil
}

func (p *PredictionsConfig) validate() error {
	raw := strings.TrimSpace(p.BaseURL)
	if raw == "" {
		return fmt.Errorf("predictions.base_url cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("predictions.base_url is invalid: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("predictions.base_url must be http(s), got %q", parsed.Scheme)
	}
	if p.TimeoutSeconds <= 0 {
		return fmt.Errorf("predictions.timeout_seconds must be > 0")
	}
	if p.BreakerThreshold <= 0 {
		return fmt.Errorf("predictions.breaker_threshold must be > 0")
	}
	if p.BreakerCooldownSeconds < 0 {
		return fmt.Errorf("predictions.breaker_cooldown_seconds must be >= 0")
	}
	return nil
}

func (c *ChartConfig) validate() error {
	if c.PointSize <= 0 || c.PointSize > 64 {
		return fmt.Errorf("chart.point_size must be in (0, 64]")
	}
	if c.Width < 200 || c.Height < 200 {
		return fmt.Errorf("chart.width and chart.height must be >= 200")
	}
	if c.DeriveMissingColors {
		for key, val := range map[string]string{
			"chart.home_win_color": c.HomeWinColor,
			"chart.away_win_color": c.AwayWinColor,
			"chart.tie_color":      c.TieColor,
		} {
			if strings.TrimSpace(val) == "" {
				return fmt.Errorf("%s required when chart.derive_missing_colors is on", key)
			}
		}
	}
	return nil
}

func (s *SessionConfig) validate() error {
	if s.IdleTTLSeconds < 60 {
		return fmt.Errorf("session.idle_ttl_seconds must be >= 60")
	}
	if s.JanitorIntervalSeconds <= 0 || s.JanitorIntervalSeconds > s.IdleTTLSeconds {
		return fmt.Errorf("session.janitor_interval_seconds must be in (0, idle_ttl_seconds]")
	}
	return nil
}
