package history

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/annel0/map-editor/internal/vec"
	"github.com/annel0/map-editor/internal/world"
	"github.com/annel0/map-editor/internal/world/item"
)

const (
	grassID uint32 = 100
	dirtID  uint32 = 101
	stoneID uint32 = 200
	swordID uint32 = 201
	coinID  uint32 = 500
)

const testCatalog = `
items:
  - {id: 100, name: grass, group: ground}
  - {id: 101, name: dirt, group: ground}
  - {id: 200, name: stone}
  - {id: 201, name: sword}
  - {id: 300, name: border, always_on_top: true, top_order: 1}
  - {id: 500, name: gold coin, stackable: true}
`

func newTestMap(t *testing.T) *world.Map {
	t.Helper()
	r := item.NewRegistry()
	_, err := r.ReadCatalog(strings.NewReader(testCatalog))
	require.NoError(t, err)
	return world.NewMap(r)
}

func addItem(t *testing.T, m *world.Map, pos vec.Position, id uint32, subtype uint16) *item.Item {
	t.Helper()
	it, ok := m.Registry().Create(id, subtype)
	require.True(t, ok)
	m.AddItem(pos, it)
	return it
}

type itemState struct {
	ID       uint32
	Subtype  uint16
	Selected bool
	Attrs    map[item.AttributeKey]item.AttributeValue
}

type tileState struct {
	Ground    *itemState
	Items     []itemState
	Selection uint32
	Flags     world.TileFlags
	House     uint32
}

func stateOf(it *item.Item) itemState {
	return itemState{ID: it.TypeID(), Subtype: it.Subtype(), Selected: it.Selected(), Attrs: it.Attributes()}
}

// dump снимок всех непустых тайлов карты по значению
func dump(m *world.Map) map[vec.Position]tileState {
	result := make(map[vec.Position]tileState)
	for loc := range m.Tiles() {
		tile := loc.Tile()
		s := tileState{Selection: tile.SelectionCount(), Flags: tile.Flags(), House: tile.HouseID()}
		if g := tile.Ground(); g != nil {
			gs := stateOf(g)
			s.Ground = &gs
		}
		for _, it := range tile.Items() {
			s.Items = append(s.Items, stateOf(it))
		}
		result[loc.Position()] = s
	}
	return result
}

type recordingObserver struct {
	committed, undone, redone int
	undoDepth, redoDepth      int
}

func (o *recordingObserver) GroupCommitted(*ActionGroup) { o.committed++ }
func (o *recordingObserver) GroupUndone(*ActionGroup)    { o.undone++ }
func (o *recordingObserver) GroupRedone(*ActionGroup)    { o.redone++ }
func (o *recordingObserver) StackChanged(undo, redo int) {
	o.undoDepth, o.redoDepth = undo, redo
}
