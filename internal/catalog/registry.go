// Package catalog serves the team and season choices offered by the viewer's dropdowns.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"bracketbuddy/internal/logger"
)

// Team is one selectable program. An empty Seasons list means every catalog season.
type Team struct {
	Name       string   `yaml:"name" json:"name"`
	Conference string   `yaml:"conference,omitempty" json:"conference,omitempty"`
	Seasons    []string `yaml:"seasons,omitempty" json:"seasons,omitempty"`
}

// FileConfig is the on-disk shape.
type FileConfig struct {
	Seasons []string `yaml:"seasons"`
	Teams   []Team   `yaml:"teams"`
}

// Snapshot is an immutable view of one successful load.
type Snapshot struct {
	Version  int64     `json:"version"`
	LoadedAt time.Time `json:"loaded_at"`
	Seasons  []string  `json:"seasons"`
	Teams    []Team    `json:"teams"`
}

// TeamsFor returns the teams that played in season, sorted by name.
func (s Snapshot) TeamsFor(season string) []Team {
	season = strings.TrimSpace(season)
	out := make([]Team, 0, len(s.Teams))
	for _, t := range s.Teams {
		if season == "" || len(t.Seasons) == 0 || contains(t.Seasons, season) {
			out = append(out, t)
		}
	}
	return out
}

// ChangeListener runs after every successful reload.
type ChangeListener func(Snapshot)

// Registry holds the current catalog and reloads it when the file changes.
// A reload that fails keeps the previous snapshot.
type Registry struct {
	path string
	log  *logger.Component

	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []ChangeListener
}

// NewRegistry reads path once. Call Watch to follow later edits.
func NewRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("catalog registry requires path")
	}
	r := &Registry{path: path, log: logger.Named("catalog")}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Watch reloads the catalog whenever its file is written or replaced, until
// ctx is done. The parent directory is watched so editors that swap files in
// place are still seen.
func (r *Registry) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("catalog watcher: %w", err)
	}
	target := filepath.Clean(r.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(evt.Name) != target || evt.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := r.Reload(); err != nil {
				r.log.Errorf("catalog reload after %s failed: %v", evt.Op, err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Warnf("catalog watcher: %v", err)
		}
	}
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSnapshot(r.snapshot)
}

// OnChange registers fn for future reloads.
func (r *Registry) OnChange(fn ChangeListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Reload rereads the file and notifies listeners on success.
func (r *Registry) Reload() error {
	if err := r.reload(); err != nil {
		return err
	}
	r.notifyListeners()
	return nil
}

func (r *Registry) reload() error {
	cfg, err := readCatalogFile(r.path)
	if err != nil {
		return err
	}
	seasons, teams, err := normalize(cfg)
	if err != nil {
		return fmt.Errorf("catalog %s: %w", filepath.Base(r.path), err)
	}
	r.mu.Lock()
	r.snapshot = Snapshot{
		Version:  r.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Seasons:  seasons,
		Teams:    teams,
	}
	r.mu.Unlock()
	r.log.Infof("loaded %d teams and %d seasons from %s", len(teams), len(seasons), filepath.Base(r.path))
	return nil
}

func (r *Registry) notifyListeners() {
	r.mu.RLock()
	snap := cloneSnapshot(r.snapshot)
	listeners := append([]ChangeListener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, fn := range listeners {
		func() {
			defer safeRecover(r.log)
			fn(snap)
		}()
	}
}

func safeRecover(log *logger.Component) {
	if rec := recover(); rec != nil {
		log.Errorf("catalog listener panic: %v", rec)
	}
}

func readCatalogFile(path string) (FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read catalog failed: %w", err)
	}
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse catalog failed: %w", err)
	}
	return cfg, nil
}

var errDuplicateTeam = errors.New("duplicate team")

func normalize(cfg FileConfig) ([]string, []Team, error) {
	seasons := uniqueSorted(cfg.Seasons)
	seen := make(map[string]bool, len(cfg.Teams))
	teams := make([]Team, 0, len(cfg.Teams))
	for i, t := range cfg.Teams {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return nil, nil, fmt.Errorf("teams[%d]: name is required", i)
		}
		key := strings.ToLower(t.Name)
		if seen[key] {
			return nil, nil, fmt.Errorf("%w: %s", errDuplicateTeam, t.Name)
		}
		seen[key] = true
		t.Conference = strings.TrimSpace(t.Conference)
		t.Seasons = uniqueSorted(t.Seasons)
		seasons = uniqueSorted(append(seasons, t.Seasons...))
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return seasons, teams, nil
}

func uniqueSorted(in []string) []string {
	set := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := set[s]; ok {
			continue
		}
		set[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func cloneSnapshot(src Snapshot) Snapshot {
	dst := src
	dst.Seasons = append([]string(nil), src.Seasons...)
	dst.Teams = make([]Team, len(src.Teams))
	for i, t := range src.Teams {
		t.Seasons = append([]string(nil), t.Seasons...)
		dst.Teams[i] = t
	}
	return dst
}

func contains(list []string, item string) bool {
	for _, s := range list {
		if s == item {
			return true
		}
	}
	return false
}
