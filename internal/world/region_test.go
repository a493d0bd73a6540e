package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/map-editor/internal/vec"
)

func collectRegion(r *MapRegion) []vec.Position {
	var result []vec.Position
	for loc := range r.All() {
		result = append(result, loc.Position())
	}
	return result
}

func TestRegionEmptyMapCreatesNothing(t *testing.T) {
	m := NewMap(nil)
	region := m.Region(vec.NewPosition(0, 0, 7), vec.NewPosition(99, 99, 7))

	assert.False(t, region.Next())
	assert.Nil(t, region.Location())
	assert.False(t, region.Next(), "после конца обход остаётся завершённым")

	for i := 0; i < childCount; i++ {
		assert.Nil(t, m.root.children[i], "обход не должен создавать узлы")
	}
}

func TestRegionFloorsTopToBottom(t *testing.T) {
	r := newTestRegistry(t)
	m := NewMap(r)
	for _, z := range []int32{3, 7, 5} {
		m.AddItem(vec.NewPosition(10, 10, z), newItem(t, r, grassID))
	}

	got := collectRegion(m.Region(vec.NewPosition(0, 0, 2), vec.NewPosition(20, 20, 8)))
	assert.Equal(t, []vec.Position{
		vec.NewPosition(10, 10, 7),
		vec.NewPosition(10, 10, 5),
		vec.NewPosition(10, 10, 3),
	}, got)

	// углы в обратном порядке дают тот же обход
	got = collectRegion(m.Region(vec.NewPosition(20, 20, 8), vec.NewPosition(0, 0, 2)))
	assert.Len(t, got, 3)
	assert.Equal(t, int32(7), got[0].Z)
}

func TestRegionSkipsOutsideExactBounds(t *testing.T) {
	r := newTestRegistry(t)
	m := NewMap(r)
	// все позиции в одном чанке 8..11 x 8..11
	for x := int64(8); x < 12; x++ {
		for y := int64(8); y < 12; y++ {
			m.AddItem(vec.NewPosition(x, y, 7), newItem(t, r, grassID))
		}
	}

	got := collectRegion(m.Region(vec.NewPosition(9, 10, 7), vec.NewPosition(10, 11, 7)))
	assert.Equal(t, []vec.Position{
		vec.NewPosition(9, 10, 7),
		vec.NewPosition(9, 11, 7),
		vec.NewPosition(10, 10, 7),
		vec.NewPosition(10, 11, 7),
	}, got)
}

func TestRegionChunkOrder(t *testing.T) {
	r := newTestRegistry(t)
	m := NewMap(r)
	positions := []vec.Position{
		vec.NewPosition(5, 1, 7),
		vec.NewPosition(1, 5, 7),
		vec.NewPosition(1, 1, 7),
		vec.NewPosition(5, 5, 7),
	}
	for _, pos := range positions {
		m.AddItem(pos, newItem(t, r, grassID))
	}

	got := collectRegion(m.Region(vec.NewPosition(0, 0, 7), vec.NewPosition(7, 7, 7)))
	assert.Equal(t, []vec.Position{
		vec.NewPosition(1, 1, 7),
		vec.NewPosition(1, 5, 7),
		vec.NewPosition(5, 1, 7),
		vec.NewPosition(5, 5, 7),
	}, got)
}

func TestRegionSkipsEmptyTiles(t *testing.T) {
	r := newTestRegistry(t)
	m := NewMap(r)
	m.GetOrCreateTile(vec.NewPosition(2, 2, 7))
	m.AddItem(vec.NewPosition(3, 3, 7), newItem(t, r, stoneID))

	got := collectRegion(m.Region(vec.NewPosition(0, 0, 7), vec.NewPosition(3, 3, 7)))
	assert.Equal(t, []vec.Position{vec.NewPosition(3, 3, 7)}, got)
}

func TestRegionClampsBounds(t *testing.T) {
	r := newTestRegistry(t)
	m := NewMap(r)
	m.AddItem(vec.NewPosition(0, 0, 0), newItem(t, r, grassID))
	m.AddItem(vec.NewPosition(65535, 65535, 15), newItem(t, r, grassID))

	region := m.Region(vec.NewPosition(-100, -100, -3), vec.NewPosition(2, 2, 40))
	got := collectRegion(region)
	assert.Equal(t, []vec.Position{vec.NewPosition(0, 0, 0)}, got)

	got = collectRegion(m.Region(vec.NewPosition(65530, 65530, 15), vec.NewPosition(70000, 70000, 15)))
	assert.Equal(t, []vec.Position{vec.NewPosition(65535, 65535, 15)}, got)
}

func TestRegionOutsideMapIsEmpty(t *testing.T) {
	r := newTestRegistry(t)
	m := NewMap(r)
	m.AddItem(vec.NewPosition(0, 0, 7), newItem(t, r, grassID))
	m.AddItem(vec.NewPosition(65535, 65535, 7), newItem(t, r, grassID))
	m.AddItem(vec.NewPosition(0, 65535, 7), newItem(t, r, grassID))

	cases := [][2]vec.Position{
		{vec.NewPosition(-50, -50, 7), vec.NewPosition(-10, -10, 7)},
		{vec.NewPosition(70000, 70000, 7), vec.NewPosition(80000, 80000, 7)},
		{vec.NewPosition(-10, 0, 7), vec.NewPosition(-1, 65535, 7)},
		{vec.NewPosition(0, 65536, 7), vec.NewPosition(10, 70000, 7)},
		{vec.NewPosition(0, 0, 16), vec.NewPosition(10, 10, 20)},
	}
	for _, c := range cases {
		assert.Empty(t, collectRegion(m.Region(c[0], c[1])), "область %v - %v вне карты", c[0], c[1])
	}
}

func TestRegionSingleFloorAcrossLeaves(t *testing.T) {
	r := newTestRegistry(t)
	m := NewMap(r)
	for x := int64(0); x < 32; x += 3 {
		for y := int64(0); y < 32; y += 5 {
			m.AddItem(vec.NewPosition(x, y, 7), newItem(t, r, grassID))
			m.AddItem(vec.NewPosition(x, y, 6), newItem(t, r, stoneID))
		}
	}

	got := collectRegion(m.Region(vec.NewPosition(4, 4, 7), vec.NewPosition(20, 20, 7)))
	require.NotEmpty(t, got)
	for _, pos := range got {
		assert.Equal(t, int32(7), pos.Z)
		assert.True(t, pos.X >= 4 && pos.X <= 20 && pos.Y >= 4 && pos.Y <= 20, "позиция %v вне области", pos)
		assert.Zero(t, pos.X%3)
		assert.Zero(t, pos.Y%5)
	}
	// x: 6,9,12,15,18; y: 5,10,15,20
	assert.Len(t, got, 20)
}

func TestIteratorVisitsEveryTileOnce(t *testing.T) {
	r := newTestRegistry(t)
	m := NewMap(r)
	want := make(map[vec.Position]bool)
	for _, pos := range []vec.Position{
		vec.NewPosition(0, 0, 0),
		vec.NewPosition(1, 0, 0),
		vec.NewPosition(0, 0, 15),
		vec.NewPosition(4096, 17, 7),
		vec.NewPosition(65535, 0, 7),
		vec.NewPosition(0, 65535, 7),
		vec.NewPosition(32000, 32000, 8),
	} {
		m.AddItem(pos, newItem(t, r, grassID))
		want[pos] = true
	}

	it := m.Iterator()
	assert.Nil(t, it.Location())
	seen := make(map[vec.Position]int)
	for it.Next() {
		loc := it.Location()
		require.True(t, loc.HasTile())
		seen[loc.Position()]++
	}
	assert.True(t, it.Done())
	assert.False(t, it.Next())
	assert.Nil(t, it.Location())

	assert.Len(t, seen, len(want))
	for pos, n := range seen {
		assert.True(t, want[pos], "лишняя позиция %v", pos)
		assert.Equal(t, 1, n, "позиция %v пройдена %d раз", pos, n)
	}
}

func TestIteratorEmptyMap(t *testing.T) {
	m := NewMap(nil)
	it := m.Iterator()
	assert.False(t, it.Next())
	assert.True(t, it.Done())
	assert.Zero(t, m.TileCount())
}

func TestIteratorTilesEarlyBreak(t *testing.T) {
	r := newTestRegistry(t)
	m := NewMap(r)
	for x := int64(0); x < 10; x++ {
		m.AddItem(vec.NewPosition(x*100, 0, 7), newItem(t, r, grassID))
	}

	n := 0
	for range m.Tiles() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}
