package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"bracketbuddy/internal/catalog"
	"bracketbuddy/internal/config"
)

type StartupSummary struct {
	Addr     string
	Upstream UpstreamSummary
	Chart    ChartSummary
	Sessions SessionSummary
	Catalog  CatalogSummary
	Store    StoreSummary

	out io.Writer
}

type UpstreamSummary struct {
	BaseURL          string
	Timeout          string
	BreakerThreshold int
	BreakerCooldown  string
}

type ChartSummary struct {
	Mode          string
	DeriveColors  bool
	Width, Height int
	Snapshots     bool
}

type SessionSummary struct {
	IdleTTL string
	Janitor string
}

type CatalogSummary struct {
	Path    string
	Watch   bool
	Seasons []string
	Teams   int
}

type StoreSummary struct {
	Enabled bool
	Path    string
}

func buildSummary(cfg *config.Config, reg *catalog.Registry) *StartupSummary {
	mode := "strict"
	if cfg.Chart.LenientCoercion {
		mode = "lenient"
	}
	s := &StartupSummary{
		Addr: cfg.App.HTTPAddr,
		Upstream: UpstreamSummary{
			BaseURL:          cfg.Predictions.BaseURL,
			Timeout:          cfg.Predictions.Timeout().String(),
			BreakerThreshold: cfg.Predictions.BreakerThreshold,
			BreakerCooldown:  cfg.Predictions.BreakerCooldown().String(),
		},
		Chart: ChartSummary{
			Mode:         mode,
			DeriveColors: cfg.Chart.DeriveMissingColors,
			Width:        cfg.Chart.Width,
			Height:       cfg.Chart.Height,
			Snapshots:    cfg.Render.SnapshotEnabled,
		},
		Sessions: SessionSummary{
			IdleTTL: cfg.Session.IdleTTL().String(),
			Janitor: cfg.Session.JanitorInterval().String(),
		},
		Catalog: CatalogSummary{Path: cfg.Catalog.Path, Watch: cfg.Catalog.Watch},
		Store:   StoreSummary{Enabled: cfg.Store.Enabled, Path: cfg.Store.Path},
	}
	if reg != nil {
		snap := reg.Snapshot()
		s.Catalog.Seasons = snap.Seasons
		s.Catalog.Teams = len(snap.Teams)
	}
	return s
}

func (s *StartupSummary) Print() {
	w := s.out
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
	title := "STARTUP SUMMARY"
	fmt.Fprintf(w, "%*s\n", 40+len(title)/2, title)
	fmt.Fprintln(w, strings.Repeat("=", 80))

	fmt.Fprintln(w, "[HTTP]")
	fmt.Fprintf(w, "  listen: %s\n", orDash(s.Addr))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[UPSTREAM]")
	fmt.Fprintf(w, "  base url: %s\n", orDash(s.Upstream.BaseURL))
	fmt.Fprintf(w, "  timeout:  %s\n", s.Upstream.Timeout)
	fmt.Fprintf(w, "  breaker:  %d failures, cooldown %s\n", s.Upstream.BreakerThreshold, s.Upstream.BreakerCooldown)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[CHART]")
	fmt.Fprintf(w, "  coercion: %s\n", s.Chart.Mode)
	fmt.Fprintf(w, "  derive colors: %t\n", s.Chart.DeriveColors)
	fmt.Fprintf(w, "  size: %dx%d\n", s.Chart.Width, s.Chart.Height)
	fmt.Fprintf(w, "  headless snapshots: %t\n", s.Chart.Snapshots)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[SESSIONS]")
	fmt.Fprintf(w, "  idle ttl: %s (janitor every %s)\n", s.Sessions.IdleTTL, s.Sessions.Janitor)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[CATALOG]")
	if s.Catalog.Path == "" {
		fmt.Fprintln(w, "  (none)")
	} else {
		fmt.Fprintf(w, "  file: %s (watch=%t)\n", s.Catalog.Path, s.Catalog.Watch)
		fmt.Fprintf(w, "  seasons: %s\n", formatList(s.Catalog.Seasons))
		fmt.Fprintf(w, "  teams: %d\n", s.Catalog.Teams)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[RENDER LOG]")
	if !s.Store.Enabled {
		fmt.Fprintln(w, "  (disabled)")
	} else {
		fmt.Fprintf(w, "  sqlite: %s\n", s.Store.Path)
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
