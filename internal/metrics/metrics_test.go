package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/map-editor/internal/history"
	"github.com/annel0/map-editor/internal/vec"
	"github.com/annel0/map-editor/internal/world"
	"github.com/annel0/map-editor/internal/world/item"
)

func TestHistoryMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	hm := NewHistoryMetrics(reg)

	r := item.NewRegistry()
	r.Register(&item.ItemType{ID: 1, Name: "stone"})
	m := world.NewMap(r)
	h := history.New(m, history.WithObserver(hm))

	for x := int64(0); x < 3; x++ {
		tile := world.NewTile(vec.NewPosition(x, 0, 7))
		it, ok := r.Create(1, 0)
		require.True(t, ok)
		tile.AddItem(it)

		g := history.NewActionGroup(history.ActionSetTile, "")
		g.AddChanges(history.NewSetTile(tile))
		h.Commit(g)
	}
	h.Undo()

	assert.Equal(t, 3.0, testutil.ToFloat64(hm.commits.WithLabelValues("set_tile")))
	assert.Equal(t, 1.0, testutil.ToFloat64(hm.undos.WithLabelValues("set_tile")))
	assert.Equal(t, 3.0, testutil.ToFloat64(hm.changes))
	assert.Equal(t, 2.0, testutil.ToFloat64(hm.undoDepth))
	assert.Equal(t, 1.0, testutil.ToFloat64(hm.redoDepth))

	expected := `
# HELP mapeditor_history_redo_depth Групп доступно для повтора.
# TYPE mapeditor_history_redo_depth gauge
mapeditor_history_redo_depth 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "mapeditor_history_redo_depth"))
}

func TestStorageMetricsNilSafe(t *testing.T) {
	var sm *StorageMetrics
	assert.NotPanics(t, func() {
		sm.TileWritten(10)
		sm.TileRead()
		sm.TileDeleted()
		sm.CacheHit()
		sm.CacheMiss()
	})
}

func TestStorageMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	sm := NewStorageMetrics(reg)
	sm.TileWritten(100)
	sm.TileWritten(28)
	sm.CacheHit()
	sm.CacheMiss()
	sm.CacheMiss()

	assert.Equal(t, 2.0, testutil.ToFloat64(sm.tilesWritten))
	assert.Equal(t, 128.0, testutil.ToFloat64(sm.bytesWritten))
	assert.Equal(t, 2.0, testutil.ToFloat64(sm.cacheMisses))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}
