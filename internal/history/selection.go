package history

import (
	"github.com/annel0/map-editor/internal/vec"
	"github.com/annel0/map-editor/internal/world"
)

// SelectionEntry сущности одного тайла: земля и/или предметы стопки по индексам
type SelectionEntry struct {
	Pos     vec.Position
	Ground  bool
	Indices []int
}

// EntryForTile запись, покрывающая все сущности тайла
func EntryForTile(t *world.Tile) SelectionEntry {
	indices := make([]int, t.ItemCount())
	for i := range indices {
		indices[i] = i
	}
	return SelectionEntry{Pos: t.Position(), Ground: t.Ground() != nil, Indices: indices}
}

// selectionDelta применяет выделение к записи и помнит, что реально изменилось,
// чтобы undo вернул ровно прежнее состояние.
type selectionDelta struct {
	entry SelectionEntry

	groundChanged bool
	changed       []int
}

func (d *selectionDelta) apply(m *world.Map, selected bool) {
	d.groundChanged = false
	d.changed = d.changed[:0]

	t := m.Tile(d.entry.Pos)
	if t == nil {
		return
	}
	if d.entry.Ground && t.Ground() != nil && t.GroundSelected() != selected {
		setGround(t, selected)
		d.groundChanged = true
	}
	for _, idx := range d.entry.Indices {
		if idx < 0 || idx >= t.ItemCount() {
			continue
		}
		if t.ItemAt(idx).Selected() == selected {
			continue
		}
		setItem(t, idx, selected)
		d.changed = append(d.changed, idx)
	}
}

func (d *selectionDelta) revert(m *world.Map, selected bool) {
	t := m.Tile(d.entry.Pos)
	if t == nil {
		return
	}
	if d.groundChanged {
		setGround(t, !selected)
	}
	for _, idx := range d.changed {
		setItem(t, idx, !selected)
	}
}

func setGround(t *world.Tile, selected bool) {
	if selected {
		t.SelectGround()
	} else {
		t.DeselectGround()
	}
}

func setItem(t *world.Tile, index int, selected bool) {
	if selected {
		t.SelectItemAtIndex(index)
	} else {
		t.DeselectItemAtIndex(index)
	}
}

// Select выделяет сущности одного тайла
type Select struct {
	delta selectionDelta
}

func NewSelect(pos vec.Position, ground bool, indices ...int) *Select {
	return &Select{delta: selectionDelta{entry: SelectionEntry{Pos: pos, Ground: ground, Indices: indices}}}
}

func (c *Select) Kind() ChangeKind      { return KindSelect }
func (c *Select) Entry() SelectionEntry { return c.delta.entry }
func (c *Select) commit(m *world.Map)   { c.delta.apply(m, true) }
func (c *Select) undo(m *world.Map)     { c.delta.revert(m, true) }

// Deselect снимает выделение с сущностей одного тайла
type Deselect struct {
	delta selectionDelta
}

func NewDeselect(pos vec.Position, ground bool, indices ...int) *Deselect {
	return &Deselect{delta: selectionDelta{entry: SelectionEntry{Pos: pos, Ground: ground, Indices: indices}}}
}

func (c *Deselect) Kind() ChangeKind      { return KindDeselect }
func (c *Deselect) Entry() SelectionEntry { return c.delta.entry }
func (c *Deselect) commit(m *world.Map)   { c.delta.apply(m, false) }
func (c *Deselect) undo(m *world.Map)     { c.delta.revert(m, false) }

// SelectMultiple выделяет или снимает выделение сразу со многих тайлов
type SelectMultiple struct {
	selecting bool
	deltas    []selectionDelta
}

// NewSelectMultiple создаёт пустой набор; selecting=false означает снятие выделения
func NewSelectMultiple(selecting bool) *SelectMultiple {
	return &SelectMultiple{selecting: selecting}
}

// Add добавляет запись в набор
func (c *SelectMultiple) Add(entry SelectionEntry) {
	c.deltas = append(c.deltas, selectionDelta{entry: entry})
}

func (c *SelectMultiple) Kind() ChangeKind { return KindSelectMultiple }
func (c *SelectMultiple) Selecting() bool  { return c.selecting }
func (c *SelectMultiple) Len() int         { return len(c.deltas) }

func (c *SelectMultiple) commit(m *world.Map) {
	for i := range c.deltas {
		c.deltas[i].apply(m, c.selecting)
	}
}

func (c *SelectMultiple) undo(m *world.Map) {
	for i := len(c.deltas) - 1; i >= 0; i-- {
		c.deltas[i].revert(m, c.selecting)
	}
}
