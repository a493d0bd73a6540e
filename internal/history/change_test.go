package history

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/map-editor/internal/vec"
	"github.com/annel0/map-editor/internal/world"
	"github.com/annel0/map-editor/internal/world/item"
)

// checkUndoRedo применяет изменение через историю и проверяет, что undo
// возвращает исходное состояние, а redo состояние после commit.
func checkUndoRedo(t *testing.T, m *world.Map, changes ...Change) (before, after map[vec.Position]tileState) {
	t.Helper()
	before = dump(m)

	h := New(m)
	g := NewActionGroup(ActionOther, "проверка")
	g.AddChanges(changes...)
	h.Commit(g)
	after = dump(m)

	require.True(t, h.Undo())
	assert.Equal(t, before, dump(m), "undo должен вернуть исходное состояние")
	require.True(t, h.Redo())
	assert.Equal(t, after, dump(m), "redo должен вернуть состояние после commit")
	require.True(t, h.Undo())
	assert.Equal(t, before, dump(m), "повторный undo")
	require.True(t, h.Redo())
	assert.Equal(t, after, dump(m), "повторный redo")
	return before, after
}

func TestSetTileOnEmptySlot(t *testing.T) {
	m := newTestMap(t)
	pos := vec.NewPosition(10, 10, 7)

	tile := world.NewTile(pos)
	g, _ := m.Registry().Create(grassID, 0)
	tile.AddItem(g)

	_, after := checkUndoRedo(t, m, NewSetTile(tile))
	require.Contains(t, after, pos)
	assert.Equal(t, grassID, after[pos].Ground.ID)
}

func TestSetTileReplacesExisting(t *testing.T) {
	m := newTestMap(t)
	pos := vec.NewPosition(10, 10, 7)
	addItem(t, m, pos, grassID, 0)
	addItem(t, m, pos, stoneID, 0).SetAttribute(item.AttrText, item.StringValue("старый"))

	tile := world.NewTile(pos)
	d, _ := m.Registry().Create(dirtID, 0)
	tile.AddItem(d)
	tile.SetFlags(world.FlagNoPvp)

	before, after := checkUndoRedo(t, m, NewSetTile(tile))
	assert.Equal(t, grassID, before[pos].Ground.ID)
	assert.Equal(t, dirtID, after[pos].Ground.ID)
	assert.Empty(t, after[pos].Items)
	assert.Equal(t, world.FlagNoPvp, after[pos].Flags)
}

func TestRemoveTileUndoRedo(t *testing.T) {
	m := newTestMap(t)
	pos := vec.NewPosition(3, 4, 7)
	addItem(t, m, pos, grassID, 0)
	addItem(t, m, pos, coinID, 42)
	m.Tile(pos).SetHouseID(5)

	_, after := checkUndoRedo(t, m, NewRemoveTile(pos))
	assert.NotContains(t, after, pos)
	assert.Nil(t, m.Tile(pos))
	assert.NotNil(t, m.Location(pos), "слот переживает удаление тайла")
}

func TestRemoveTileOnEmptyPosition(t *testing.T) {
	m := newTestMap(t)
	before, after := checkUndoRedo(t, m, NewRemoveTile(vec.NewPosition(500, 500, 7)))
	assert.Empty(t, before)
	assert.Empty(t, after)
}

// Перемещение целиком с атрибутами на обоих концах
func TestMoveEntireRestoresBothEnds(t *testing.T) {
	m := newTestMap(t)
	a := vec.NewPosition(20, 20, 7)
	b := vec.NewPosition(21, 20, 7)

	addItem(t, m, a, grassID, 0)
	addItem(t, m, a, stoneID, 0).SetAttribute(item.AttrActionID, item.IntValue(1001))
	addItem(t, m, a, coinID, 7)
	m.Tile(a).SelectItemAtIndex(1)

	addItem(t, m, b, dirtID, 0)
	addItem(t, m, b, swordID, 0).SetAttribute(item.AttrText, item.StringValue("меч"))

	before, after := checkUndoRedo(t, m, NewEntireMove(a, b))

	assert.NotContains(t, after, a)
	assert.Equal(t, before[a].Items, after[b].Items)
	assert.Equal(t, before[a].Ground, after[b].Ground)
	assert.Equal(t, uint32(1), after[b].Selection)

	assert.Nil(t, m.Tile(a))
	assert.Equal(t, b, m.Tile(b).Position())
}

func TestMoveEntireToEmptySlot(t *testing.T) {
	m := newTestMap(t)
	a := vec.NewPosition(20, 20, 7)
	b := vec.NewPosition(40, 40, 6)
	addItem(t, m, a, grassID, 0)

	_, after := checkUndoRedo(t, m, NewEntireMove(a, b))
	assert.NotContains(t, after, a)
	assert.Contains(t, after, b)
}

func TestMoveEntireFromEmptySlotClearsDestination(t *testing.T) {
	m := newTestMap(t)
	a := vec.NewPosition(20, 20, 7)
	b := vec.NewPosition(21, 20, 7)
	addItem(t, m, b, dirtID, 0)
	addItem(t, m, b, swordID, 0)

	before, after := checkUndoRedo(t, m, NewEntireMove(a, b))
	assert.Contains(t, before, b)
	assert.NotContains(t, after, a)
	assert.NotContains(t, after, b, "пустой источник очищает назначение")
}

func TestMovePartial(t *testing.T) {
	m := newTestMap(t)
	a := vec.NewPosition(20, 20, 7)
	b := vec.NewPosition(20, 22, 7)
	addItem(t, m, a, grassID, 0)
	addItem(t, m, a, stoneID, 0)
	addItem(t, m, a, swordID, 0)
	addItem(t, m, a, coinID, 3)
	addItem(t, m, b, dirtID, 0)

	_, after := checkUndoRedo(t, m, NewPartialMove(a, b, false, []int{2, 0}))

	assert.Equal(t, grassID, after[a].Ground.ID)
	require.Len(t, after[a].Items, 1)
	assert.Equal(t, swordID, after[a].Items[0].ID)

	assert.Equal(t, dirtID, after[b].Ground.ID)
	require.Len(t, after[b].Items, 2)
	assert.Equal(t, stoneID, after[b].Items[0].ID)
	assert.Equal(t, coinID, after[b].Items[1].ID)
}

func TestMovePartialWithGround(t *testing.T) {
	m := newTestMap(t)
	a := vec.NewPosition(20, 20, 7)
	b := vec.NewPosition(21, 21, 7)
	addItem(t, m, a, grassID, 0)
	addItem(t, m, a, stoneID, 0)
	addItem(t, m, b, dirtID, 0)
	addItem(t, m, b, swordID, 0)

	_, after := checkUndoRedo(t, m, NewPartialMove(a, b, true, nil))

	assert.Nil(t, after[a].Ground)
	require.Len(t, after[a].Items, 1)
	assert.Equal(t, grassID, after[b].Ground.ID)
	require.Len(t, after[b].Items, 1)
	assert.Equal(t, swordID, after[b].Items[0].ID)
}

func TestSelectRecordsOnlyRealChanges(t *testing.T) {
	m := newTestMap(t)
	pos := vec.NewPosition(1, 1, 7)
	addItem(t, m, pos, grassID, 0)
	addItem(t, m, pos, stoneID, 0)
	addItem(t, m, pos, swordID, 0)
	m.Tile(pos).SelectItemAtIndex(1)

	// индекс 5 вне стопки и пропускается
	before, after := checkUndoRedo(t, m, NewSelect(pos, true, 0, 1, 5))
	assert.Equal(t, uint32(1), before[pos].Selection)
	assert.Equal(t, uint32(3), after[pos].Selection)

	h := New(m)
	m.Tile(pos).DeselectAll()
	m.Tile(pos).SelectItemAtIndex(1)
	h.Commit(singleChange(NewSelect(pos, true, 0, 1)))
	require.True(t, h.Undo())
	assert.True(t, m.Tile(pos).ItemAt(1).Selected(), "заранее выделенный предмет остаётся выделенным")
	assert.False(t, m.Tile(pos).ItemAt(0).Selected())
	assert.False(t, m.Tile(pos).GroundSelected())
	assert.Equal(t, uint32(1), m.Tile(pos).SelectionCount())
}

func TestDeselectRecordsOnlyRealChanges(t *testing.T) {
	m := newTestMap(t)
	pos := vec.NewPosition(1, 1, 7)
	addItem(t, m, pos, grassID, 0)
	addItem(t, m, pos, stoneID, 0)
	addItem(t, m, pos, swordID, 0)
	m.Tile(pos).SelectGround()
	m.Tile(pos).SelectItemAtIndex(0)

	before, after := checkUndoRedo(t, m, NewDeselect(pos, true, 0, 1))
	assert.Equal(t, uint32(2), before[pos].Selection)
	assert.Equal(t, uint32(0), after[pos].Selection)
	assert.False(t, before[pos].Items[1].Selected)
}

func TestSelectOnMissingTileIsNoop(t *testing.T) {
	m := newTestMap(t)
	before, after := checkUndoRedo(t, m, NewSelect(vec.NewPosition(9, 9, 7), true, 0))
	assert.Equal(t, before, after)
}

func TestSelectMultiple(t *testing.T) {
	m := newTestMap(t)
	var entries []SelectionEntry
	for x := int64(0); x < 4; x++ {
		pos := vec.NewPosition(x, 0, 7)
		addItem(t, m, pos, grassID, 0)
		addItem(t, m, pos, stoneID, 0)
		entries = append(entries, EntryForTile(m.Tile(pos)))
	}
	m.Tile(vec.NewPosition(2, 0, 7)).SelectGround()

	sel := NewSelectMultiple(true)
	for _, e := range entries {
		sel.Add(e)
	}
	sel.Add(SelectionEntry{Pos: vec.NewPosition(100, 100, 7), Ground: true})
	assert.Equal(t, 5, sel.Len())

	_, after := checkUndoRedo(t, m, sel)
	for _, e := range entries {
		assert.Equal(t, uint32(2), after[e.Pos].Selection)
	}

	desel := NewSelectMultiple(false)
	for _, e := range entries {
		desel.Add(e)
	}
	_, after = checkUndoRedo(t, m, desel)
	for _, e := range entries {
		assert.Zero(t, after[e.Pos].Selection)
	}
}

// fillBlock заполняет квадрат size x size различимыми тайлами
func fillBlock(t *testing.T, m *world.Map, origin vec.Position, size int64) []vec.Position {
	t.Helper()
	var positions []vec.Position
	n := uint16(0)
	for x := int64(0); x < size; x++ {
		for y := int64(0); y < size; y++ {
			n++
			pos := origin.Add(vec.NewPosition(x, y, 0))
			addItem(t, m, pos, grassID, 0)
			addItem(t, m, pos, coinID, n).SetAttribute(item.AttrText, item.StringValue(pos.String()))
			positions = append(positions, pos)
		}
	}
	return positions
}

// MultiMove не должен затирать ещё не перемещённые источники ни при каком
// знаке сдвига и ни при каком порядке добавления.
func TestMultiMoveAllDeltaDirections(t *testing.T) {
	var deltas []vec.Position
	for dx := int64(-2); dx <= 2; dx++ {
		for dy := int64(-2); dy <= 2; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			deltas = append(deltas, vec.NewPosition(dx, dy, 0))
		}
	}
	deltas = append(deltas, vec.NewPosition(0, 0, 1), vec.NewPosition(1, -1, -1))

	for _, delta := range deltas {
		t.Run(delta.String(), func(t *testing.T) {
			m := newTestMap(t)
			origin := vec.NewPosition(100, 100, 7)
			positions := fillBlock(t, m, origin, 3)
			initial := dump(m)

			rng := rand.New(rand.NewSource(int64(delta.Hash())))
			rng.Shuffle(len(positions), func(i, j int) { positions[i], positions[j] = positions[j], positions[i] })

			mm := NewMultiMove(delta)
			for _, pos := range positions {
				mm.AddEntire(pos)
			}

			expected := make(map[vec.Position]tileState)
			for pos, s := range initial {
				expected[pos.Add(delta)] = s
			}

			_, after := checkUndoRedo(t, m, mm)
			assert.Equal(t, expected, after)
		})
	}
}

func TestMultiMoveOrderIsDeterministic(t *testing.T) {
	delta := vec.NewPosition(1, 0, 0)
	build := func(order []vec.Position) []vec.Position {
		mm := NewMultiMove(delta)
		for _, pos := range order {
			mm.AddEntire(pos)
		}
		var result []vec.Position
		for _, mv := range mm.Moves() {
			result = append(result, mv.From())
		}
		return result
	}

	a := []vec.Position{vec.NewPosition(1, 0, 7), vec.NewPosition(0, 1, 7), vec.NewPosition(1, 1, 7), vec.NewPosition(0, 0, 7)}
	b := []vec.Position{a[3], a[2], a[1], a[0]}
	assert.Equal(t, build(a), build(b))
	assert.Equal(t, []vec.Position{
		vec.NewPosition(1, 0, 7),
		vec.NewPosition(1, 1, 7),
		vec.NewPosition(0, 0, 7),
		vec.NewPosition(0, 1, 7),
	}, build(a))
}

func TestMultiMovePartial(t *testing.T) {
	m := newTestMap(t)
	delta := vec.NewPosition(0, 1, 0)
	a := vec.NewPosition(5, 5, 7)
	b := vec.NewPosition(5, 6, 7)
	addItem(t, m, a, grassID, 0)
	addItem(t, m, a, stoneID, 0)
	addItem(t, m, b, grassID, 0)
	addItem(t, m, b, swordID, 0)

	mm := NewMultiMove(delta)
	mm.AddPartial(a, false, []int{0})
	mm.AddPartial(b, false, []int{0})
	assert.Equal(t, 2, mm.Len())

	_, after := checkUndoRedo(t, m, mm)
	assert.Empty(t, after[a].Items)
	require.Len(t, after[b].Items, 1)
	assert.Equal(t, stoneID, after[b].Items[0].ID)
	require.Len(t, after[vec.NewPosition(5, 7, 7)].Items, 1)
	assert.Equal(t, swordID, after[vec.NewPosition(5, 7, 7)].Items[0].ID)
}

func TestChangeKinds(t *testing.T) {
	pos := vec.NewPosition(0, 0, 7)
	cases := []struct {
		change Change
		kind   ChangeKind
	}{
		{NewSetTile(world.NewTile(pos)), KindSetTile},
		{NewRemoveTile(pos), KindRemoveTile},
		{NewEntireMove(pos, pos.Add(vec.NewPosition(1, 0, 0))), KindMove},
		{NewMultiMove(vec.NewPosition(1, 0, 0)), KindMultiMove},
		{NewSelect(pos, true), KindSelect},
		{NewDeselect(pos, true), KindDeselect},
		{NewSelectMultiple(true), KindSelectMultiple},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, tc.change.Kind(), fmt.Sprintf("%T", tc.change))
	}
	assert.Equal(t, "multi_move", KindMultiMove.String())
}

func singleChange(c Change) *ActionGroup {
	g := NewActionGroup(ActionSelection, "")
	g.AddChanges(c)
	return g
}
