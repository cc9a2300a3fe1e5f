package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
seasons: ["2021", "2019", "2020"]
teams:
  - name: UNC
    conference: ACC
  - name: Duke
    conference: ACC
    seasons: ["2020", "2021"]
  - name: Gonzaga
    conference: WCC
    seasons: ["2022"]
`

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestRegistry_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeFile(t, path, sampleCatalog)

	r, err := NewRegistry(path)
	require.NoError(t, err)
	snap := r.Snapshot()

	assert.Equal(t, int64(1), snap.Version)
	assert.Equal(t, []string{"2019", "2020", "2021", "2022"}, snap.Seasons)
	require.Len(t, snap.Teams, 3)
	assert.Equal(t, "Duke", snap.Teams[0].Name)

	names := func(ts []Team) []string {
		out := make([]string, len(ts))
		for i, t := range ts {
			out[i] = t.Name
		}
		return out
	}
	assert.Equal(t, []string{"UNC"}, names(snap.TeamsFor("2019")))
	assert.Equal(t, []string{"Duke", "UNC"}, names(snap.TeamsFor("2020")))
	assert.Equal(t, []string{"Duke", "Gonzaga", "UNC"}, names(snap.TeamsFor("")))

	snap.Teams[0].Name = "mutated"
	assert.Equal(t, "Duke", r.Snapshot().Teams[0].Name)
}

func TestRegistry_RejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown_field": "teams:\n  - name: Duke\n    mascot: devil\n",
		"duplicate":     "teams:\n  - name: Duke\n  - name: duke\n",
		"missing_name":  "teams:\n  - conference: ACC\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			writeFile(t, path, body)
			_, err := NewRegistry(path)
			assert.Error(t, err)
		})
	}

	_, err := NewRegistry(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
	_, err = NewRegistry(" ")
	assert.Error(t, err)
}

func TestRegistry_ReloadKeepsLastGood(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeFile(t, path, sampleCatalog)
	r, err := NewRegistry(path)
	require.NoError(t, err)

	var notified atomic.Int64
	r.OnChange(func(s Snapshot) { notified.Store(s.Version) })
	r.OnChange(func(Snapshot) { panic("listener bug") })

	writeFile(t, path, "teams: [\n")
	assert.Error(t, r.Reload())
	assert.Equal(t, int64(1), r.Snapshot().Version)
	assert.Len(t, r.Snapshot().Teams, 3)

	writeFile(t, path, "teams:\n  - name: Kansas\n")
	require.NoError(t, r.Reload())
	assert.Equal(t, int64(2), r.Snapshot().Version)
	assert.Equal(t, int64(2), notified.Load())
}

func TestRegistry_WatchPicksUpEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeFile(t, path, sampleCatalog)
	r, err := NewRegistry(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx) }()
	defer func() {
		cancel()
		assert.NoError(t, <-done)
	}()
	// give the watcher time to subscribe
	time.Sleep(100 * time.Millisecond)

	writeFile(t, path, "seasons: [\"2024\"]\nteams:\n  - name: Houston\n")
	assert.Eventually(t, func() bool {
		snap := r.Snapshot()
		return len(snap.Teams) == 1 && snap.Teams[0].Name == "Houston"
	}, 5*time.Second, 50*time.Millisecond)
}
