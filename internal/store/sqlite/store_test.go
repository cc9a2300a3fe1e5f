package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"bracketbuddy/internal/store/model"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	s, err := NewSqliteStore(filepath.Join(t.TempDir(), "nested", "renders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRenderRepo_InsertAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Renders()

	lo, hi := 65.0, 80.0
	details, err := json.Marshal(model.RenderDetails{XLabel: "2020 Duke Points", YLabel: "2021 UNC Points", Min: &lo, Max: &hi})
	require.NoError(t, err)

	rows := []*model.RenderModel{
		{SessionID: "a", Seq: 1, Revision: 1, HomeTeam: "Duke", Points: 2, Outcome: "ok", Details: datatypes.JSON(details), Timestamp: 100},
		{SessionID: "b", Seq: 1, Outcome: "status", Error: "upstream returned 500", Timestamp: 200},
		{SessionID: "a", Seq: 2, Outcome: "stale", Timestamp: 300},
	}
	for _, r := range rows {
		require.NoError(t, repo.Insert(ctx, r))
		assert.NotZero(t, r.ID)
	}

	recent, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "stale", recent[0].Outcome)
	assert.Equal(t, "status", recent[1].Outcome)

	all, err := repo.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := repo.ListBySession(ctx, "a", 10)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, uint64(1), mine[1].Seq)

	var got model.RenderDetails
	require.NoError(t, json.Unmarshal(mine[1].Details, &got))
	assert.Equal(t, "2020 Duke Points", got.XLabel)
	require.NotNil(t, got.Min)
	assert.Equal(t, 65.0, *got.Min)
}

func TestNewSqliteStore_RequiresPath(t *testing.T) {
	_, err := NewSqliteStore("  ")
	assert.Error(t, err)
	_, err = NewSqliteStoreFromDB(nil)
	assert.Error(t, err)
}
