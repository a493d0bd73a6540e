package world

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/annel0/map-editor/internal/world/item"
)

const (
	grassID  uint32 = 100
	stoneID  uint32 = 200
	borderID uint32 = 300
	wallID   uint32 = 400
	archID   uint32 = 450
	coinID   uint32 = 500
	border2  uint32 = 310
)

const testCatalog = `
items:
  - {id: 100, name: grass, group: ground}
  - {id: 101, name: dirt, group: ground}
  - {id: 200, name: stone}
  - {id: 201, name: sword}
  - {id: 300, name: grass border, always_on_top: true, top_order: 1}
  - {id: 310, name: dirt border, always_on_top: true, top_order: 1}
  - {id: 400, name: wall, always_on_top: true, top_order: 2}
  - {id: 450, name: arch, always_on_top: true, top_order: 3}
  - {id: 500, name: gold coin, stackable: true}
`

func newTestRegistry(t *testing.T) *item.Registry {
	t.Helper()
	r := item.NewRegistry()
	_, err := r.ReadCatalog(strings.NewReader(testCatalog))
	require.NoError(t, err)
	return r
}

func newItem(t *testing.T, r *item.Registry, id uint32) *item.Item {
	t.Helper()
	it, ok := r.Create(id, 0)
	require.True(t, ok, "тип %d должен быть в каталоге", id)
	return it
}

func typeIDs(items []*item.Item) []uint32 {
	ids := make([]uint32, len(items))
	for i, it := range items {
		ids[i] = it.TypeID()
	}
	return ids
}

// countSelected пересчитывает выделение напрямую, для проверки инварианта
func countSelected(tile *Tile) uint32 {
	var n uint32
	if tile.Ground() != nil && tile.Ground().Selected() {
		n++
	}
	for _, it := range tile.Items() {
		if it.Selected() {
			n++
		}
	}
	return n
}
