package history

import (
	"fmt"
	"sort"

	"github.com/annel0/map-editor/internal/debug"
	"github.com/annel0/map-editor/internal/vec"
	"github.com/annel0/map-editor/internal/world"
	"github.com/annel0/map-editor/internal/world/item"
)

// ChangeKind тег варианта изменения
type ChangeKind uint8

const (
	KindSetTile ChangeKind = iota
	KindRemoveTile
	KindMove
	KindMultiMove
	KindSelect
	KindDeselect
	KindSelectMultiple
)

func (k ChangeKind) String() string {
	switch k {
	case KindSetTile:
		return "set_tile"
	case KindRemoveTile:
		return "remove_tile"
	case KindMove:
		return "move"
	case KindMultiMove:
		return "multi_move"
	case KindSelect:
		return "select"
	case KindDeselect:
		return "deselect"
	case KindSelectMultiple:
		return "select_multiple"
	default:
		return fmt.Sprintf("change(%d)", uint8(k))
	}
}

// Change запись одного обратимого изменения карты. Набор вариантов закрыт:
// *SetTile, *RemoveTile, *Move, *MultiMove, *Select, *Deselect, *SelectMultiple.
// Повтор (redo) выполняется повторным commit.
type Change interface {
	Kind() ChangeKind
	commit(m *world.Map)
	undo(m *world.Map)
}

// SetTile кладёт тайл в слот его позиции. Хранит тот тайл, которого сейчас
// нет на карте: до commit новый, после commit прежний (nil, если слот был пуст).
// commit и undo выполняют один и тот же обмен.
type SetTile struct {
	pos  vec.Position
	tile *world.Tile
}

// NewSetTile создаёт изменение; тайл переходит во владение истории
func NewSetTile(tile *world.Tile) *SetTile {
	debug.Assert(tile != nil, "SetTile без тайла")
	return &SetTile{pos: tile.Position(), tile: tile}
}

func (c *SetTile) Kind() ChangeKind       { return KindSetTile }
func (c *SetTile) Position() vec.Position { return c.pos }

func (c *SetTile) commit(m *world.Map) { c.swap(m) }
func (c *SetTile) undo(m *world.Map)   { c.swap(m) }

func (c *SetTile) swap(m *world.Map) {
	if c.tile == nil {
		c.tile = m.DropTile(c.pos)
		return
	}
	c.tile = m.ReplaceTile(c.tile)
}

// RemoveTile извлекает тайл позиции; undo возвращает его на место
type RemoveTile struct {
	pos  vec.Position
	tile *world.Tile
}

func NewRemoveTile(pos vec.Position) *RemoveTile {
	return &RemoveTile{pos: pos}
}

func (c *RemoveTile) Kind() ChangeKind       { return KindRemoveTile }
func (c *RemoveTile) Position() vec.Position { return c.pos }

func (c *RemoveTile) commit(m *world.Map) {
	c.tile = m.DropTile(c.pos)
}

func (c *RemoveTile) undo(m *world.Map) {
	if c.tile == nil {
		return
	}
	m.InsertTile(c.tile)
	c.tile = nil
}

// MoveKind вариант перемещения
type MoveKind uint8

const (
	// MoveEntire тайл переезжает целиком, назначение заменяется
	MoveEntire MoveKind = iota
	// MovePartial переезжают только указанные предметы (и, возможно, земля)
	MovePartial
)

// UndoData снимки обоих концов перемещения до commit. nil означает пустой слот.
type UndoData struct {
	fromTile *world.Tile
	toTile   *world.Tile
}

// Move перемещение тайла или его части между двумя позициями
type Move struct {
	from, to vec.Position
	kind     MoveKind

	// только для MovePartial
	ground  bool
	indices []int

	undoData *UndoData
}

// NewEntireMove перемещение тайла целиком
func NewEntireMove(from, to vec.Position) *Move {
	debug.Assert(!from.Equals(to), "перемещение %v на ту же позицию", from)
	return &Move{from: from, to: to, kind: MoveEntire}
}

// NewPartialMove перемещение земли (ground) и предметов с индексами indices
func NewPartialMove(from, to vec.Position, ground bool, indices []int) *Move {
	debug.Assert(!from.Equals(to), "перемещение %v на ту же позицию", from)
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)
	return &Move{from: from, to: to, kind: MovePartial, ground: ground, indices: sorted}
}

func (c *Move) Kind() ChangeKind    { return KindMove }
func (c *Move) MoveKind() MoveKind  { return c.kind }
func (c *Move) From() vec.Position  { return c.from }
func (c *Move) To() vec.Position    { return c.to }
func (c *Move) UndoData() *UndoData { return c.undoData }

func (c *Move) commit(m *world.Map) {
	c.undoData = &UndoData{
		fromTile: snapshot(m.Tile(c.from)),
		toTile:   snapshot(m.Tile(c.to)),
	}

	switch c.kind {
	case MoveEntire:
		m.MoveTile(c.from, c.to)
	case MovePartial:
		c.movePartial(m)
	}
}

func (c *Move) movePartial(m *world.Map) {
	source := m.Tile(c.from)
	if source == nil {
		return
	}
	dest := m.GetOrCreateTile(c.to)
	reg := m.Registry()

	if c.ground && source.Ground() != nil {
		reg.Destroy(dest.AddItem(source.DropGround()))
	}

	// извлекаем с конца, чтобы индексы не сдвигались, переносим в исходном порядке
	moved := make([]*item.Item, len(c.indices))
	for i := len(c.indices) - 1; i >= 0; i-- {
		idx := c.indices[i]
		debug.Assert(idx < source.ItemCount(), "индекс %d вне стопки тайла %v", idx, c.from)
		moved[i] = source.DropItem(idx)
	}
	for _, it := range moved {
		reg.Destroy(dest.AddItem(it))
	}
}

func (c *Move) undo(m *world.Map) {
	debug.Assert(c.undoData != nil, "undo перемещения %v -> %v без commit", c.from, c.to)
	restore(m, c.from, c.undoData.fromTile)
	restore(m, c.to, c.undoData.toTile)
}

// MultiMove набор перемещений с общим сдвигом (перетаскивание выделения).
// Перемещения выполняются в порядке убывания скалярного произведения источника
// на сдвиг: источник, лежащий дальше по направлению сдвига, уезжает раньше,
// чем на его место приезжает соседний тайл. Undo идёт в обратном порядке.
type MultiMove struct {
	delta  vec.Position
	moves  []*Move
	sorted bool
}

// NewMultiMove создаёт пустой набор со сдвигом delta
func NewMultiMove(delta vec.Position) *MultiMove {
	debug.Assert(!delta.Equals(vec.Position{}), "MultiMove с нулевым сдвигом")
	return &MultiMove{delta: delta}
}

func (c *MultiMove) Kind() ChangeKind    { return KindMultiMove }
func (c *MultiMove) Delta() vec.Position { return c.delta }
func (c *MultiMove) Len() int            { return len(c.moves) }

// AddEntire добавляет перемещение тайла from целиком
func (c *MultiMove) AddEntire(from vec.Position) {
	c.moves = append(c.moves, NewEntireMove(from, from.Add(c.delta)))
	c.sorted = false
}

// AddPartial добавляет перемещение части тайла from
func (c *MultiMove) AddPartial(from vec.Position, ground bool, indices []int) {
	c.moves = append(c.moves, NewPartialMove(from, from.Add(c.delta), ground, indices))
	c.sorted = false
}

// Moves перемещения в порядке выполнения
func (c *MultiMove) Moves() []*Move {
	c.sort()
	result := make([]*Move, len(c.moves))
	copy(result, c.moves)
	return result
}

func (c *MultiMove) sort() {
	if c.sorted {
		return
	}
	sort.SliceStable(c.moves, func(i, j int) bool {
		a, b := c.moves[i].from, c.moves[j].from
		da, db := a.Dot(c.delta), b.Dot(c.delta)
		if da != db {
			return da > db
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	c.sorted = true
}

func (c *MultiMove) commit(m *world.Map) {
	c.sort()
	for _, mv := range c.moves {
		mv.commit(m)
	}
}

func (c *MultiMove) undo(m *world.Map) {
	for i := len(c.moves) - 1; i >= 0; i-- {
		c.moves[i].undo(m)
	}
}

func snapshot(t *world.Tile) *world.Tile {
	if t == nil || t.IsEmpty() {
		return nil
	}
	return t.Clone()
}

// restore возвращает в позицию копию снимка. Сам снимок остаётся в истории
// и переживает повторные redo/undo.
func restore(m *world.Map, pos vec.Position, snap *world.Tile) {
	if snap == nil {
		m.RemoveTile(pos)
		return
	}
	m.InsertTile(snap.CloneAt(pos))
}
