package world

import (
	"github.com/annel0/map-editor/internal/debug"
	"github.com/annel0/map-editor/internal/vec"
	"github.com/annel0/map-editor/internal/world/item"
)

// TileFlags флаги зоны тайла
type TileFlags uint32

const (
	FlagProtectionZone TileFlags = 1 << iota
	FlagNoPvp
	FlagNoLogout
	FlagPvpZone
	FlagRefresh
)

// Tile содержимое карты в одной позиции: земля, стопка предметов и учёт выделения.
//
// Инварианты:
//   - не больше одного ground;
//   - always-on-top предметы стоят перед обычными, бордюры перед остальными always-on-top;
//   - selectionCount равен числу выделенных сущностей (ground + items).
type Tile struct {
	position       vec.Position
	ground         *item.Item
	items          []*item.Item
	selectionCount uint32
	flags          TileFlags
	houseID        uint32
}

// NewTile создаёт пустой тайл в позиции
func NewTile(pos vec.Position) *Tile {
	return &Tile{position: pos}
}

func (t *Tile) Position() vec.Position { return t.position }
func (t *Tile) Ground() *item.Item     { return t.ground }
func (t *Tile) ItemCount() int         { return len(t.items) }
func (t *Tile) SelectionCount() uint32 { return t.selectionCount }
func (t *Tile) HasSelection() bool     { return t.selectionCount > 0 }
func (t *Tile) Flags() TileFlags       { return t.flags }
func (t *Tile) HouseID() uint32        { return t.houseID }

func (t *Tile) SetFlags(flags TileFlags) { t.flags = flags }
func (t *Tile) SetHouseID(id uint32)     { t.houseID = id }

// HasFlag проверяет наличие флага зоны
func (t *Tile) HasFlag(flag TileFlags) bool {
	return t.flags&flag != 0
}

// Items возвращает копию стопки предметов (порядок снизу вверх по отрисовке)
func (t *Tile) Items() []*item.Item {
	result := make([]*item.Item, len(t.items))
	copy(result, t.items)
	return result
}

// ItemAt возвращает предмет стопки по индексу
func (t *Tile) ItemAt(index int) *item.Item {
	debug.Assert(index >= 0 && index < len(t.items), "индекс %d вне стопки из %d предметов", index, len(t.items))
	return t.items[index]
}

// EntityCount число сущностей: предметы плюс земля
func (t *Tile) EntityCount() int {
	n := len(t.items)
	if t.ground != nil {
		n++
	}
	return n
}

// IsEmpty true, если на тайле нет ни земли, ни предметов
func (t *Tile) IsEmpty() bool {
	return t.ground == nil && len(t.items) == 0
}

// AllSelected true, если выделены все сущности тайла
func (t *Tile) AllSelected() bool {
	return !t.IsEmpty() && int(t.selectionCount) == t.EntityCount()
}

// TopItem верхний предмет стопки, иначе земля, иначе nil
func (t *Tile) TopItem() *item.Item {
	if len(t.items) > 0 {
		return t.items[len(t.items)-1]
	}
	return t.ground
}

func (t *Tile) track(it *item.Item) {
	if it != nil && it.Selected() {
		t.selectionCount++
	}
}

func (t *Tile) untrack(it *item.Item) {
	if it != nil && it.Selected() {
		debug.Assert(t.selectionCount > 0, "счётчик выделения тайла %v ушёл бы в минус", t.position)
		t.selectionCount--
	}
}

// AddItem добавляет предмет с соблюдением правил укладки. Возвращает
// вытесненный предмет (прежнюю землю или заменённый always-on-top) или nil;
// тайл им больше не владеет.
func (t *Tile) AddItem(it *item.Item) *item.Item {
	if it.IsGround() {
		old := t.ground
		t.untrack(old)
		t.ground = it
		t.track(it)
		return old
	}

	if !it.AlwaysOnTop() {
		t.items = append(t.items, it)
		t.track(it)
		return nil
	}

	cursor := 0
	for ; cursor < len(t.items) && t.items[cursor].AlwaysOnTop(); cursor++ {
		current := t.items[cursor]
		if current.IsBorder() {
			continue
		}
		if it.IsBorder() {
			// бордюр встаёт перед первым не-бордюром
			break
		}
		// Второй не-бордюрный always-on-top предмет заменяет первый
		t.untrack(current)
		t.items[cursor] = it
		t.track(it)
		return current
	}

	t.items = append(t.items, nil)
	copy(t.items[cursor+1:], t.items[cursor:])
	t.items[cursor] = it
	t.track(it)
	return nil
}

// RemoveItem удаляет предмет стопки по индексу
func (t *Tile) RemoveItem(index int) {
	t.DropItem(index)
}

// DropItem извлекает предмет стопки по индексу и отдаёт его вызывающему
func (t *Tile) DropItem(index int) *item.Item {
	debug.Assert(index >= 0 && index < len(t.items), "индекс %d вне стопки из %d предметов", index, len(t.items))
	it := t.items[index]
	t.untrack(it)
	t.items = append(t.items[:index], t.items[index+1:]...)
	return it
}

// DropGround извлекает землю
func (t *Tile) DropGround() *item.Item {
	g := t.ground
	t.untrack(g)
	t.ground = nil
	return g
}

// RemoveItemsIf удаляет землю и предметы, удовлетворяющие предикату.
// Возвращает число удалённых сущностей.
func (t *Tile) RemoveItemsIf(pred func(*item.Item) bool) int {
	removed := 0
	if t.ground != nil && pred(t.ground) {
		t.DropGround()
		removed++
	}

	kept := t.items[:0]
	for _, it := range t.items {
		if pred(it) {
			t.untrack(it)
			removed++
			continue
		}
		kept = append(kept, it)
	}
	for i := len(kept); i < len(t.items); i++ {
		t.items[i] = nil
	}
	t.items = kept
	return removed
}

func (t *Tile) setSelected(it *item.Item, selected bool) {
	if it.Selected() == selected {
		return
	}
	if selected {
		it.SetSelected(true)
		t.selectionCount++
	} else {
		t.untrack(it)
		it.SetSelected(false)
	}
}

// SelectItemAtIndex выделяет предмет стопки
func (t *Tile) SelectItemAtIndex(index int) {
	t.setSelected(t.ItemAt(index), true)
}

// DeselectItemAtIndex снимает выделение с предмета стопки
func (t *Tile) DeselectItemAtIndex(index int) {
	t.setSelected(t.ItemAt(index), false)
}

// SelectGround выделяет землю, если она есть
func (t *Tile) SelectGround() {
	if t.ground != nil {
		t.setSelected(t.ground, true)
	}
}

// DeselectGround снимает выделение с земли
func (t *Tile) DeselectGround() {
	if t.ground != nil {
		t.setSelected(t.ground, false)
	}
}

// SelectAll выделяет все сущности тайла
func (t *Tile) SelectAll() {
	t.SelectGround()
	for _, it := range t.items {
		t.setSelected(it, true)
	}
}

// DeselectAll снимает всё выделение
func (t *Tile) DeselectAll() {
	t.DeselectGround()
	for _, it := range t.items {
		t.setSelected(it, false)
	}
}

// SelectedIndices индексы выделенных предметов стопки
func (t *Tile) SelectedIndices() []int {
	var indices []int
	for i, it := range t.items {
		if it.Selected() {
			indices = append(indices, i)
		}
	}
	return indices
}

// GroundSelected true, если земля есть и выделена
func (t *Tile) GroundSelected() bool {
	return t.ground != nil && t.ground.Selected()
}

// MoveSelected переносит выделенные сущности на other, сохраняя порядок.
// Выделенная земля перезаписывает землю other и предварительно очищает его
// стопку: перенос земли забирает тайл целиком.
// Возвращает предметы other, вытесненные переносом.
func (t *Tile) MoveSelected(other *Tile) []*item.Item {
	debug.Assert(t != other, "перенос выделения тайла %v на самого себя", t.position)

	var displaced []*item.Item
	if t.GroundSelected() {
		displaced = other.clearItems()
		if old := other.AddItem(t.DropGround()); old != nil {
			displaced = append(displaced, old)
		}
	}

	kept := t.items[:0]
	var moved []*item.Item
	for _, it := range t.items {
		if it.Selected() {
			t.untrack(it)
			moved = append(moved, it)
			continue
		}
		kept = append(kept, it)
	}
	for i := len(kept); i < len(t.items); i++ {
		t.items[i] = nil
	}
	t.items = kept

	for _, it := range moved {
		if old := other.AddItem(it); old != nil {
			displaced = append(displaced, old)
		}
	}
	return displaced
}

func (t *Tile) clearItems() []*item.Item {
	old := t.items
	for _, it := range old {
		t.untrack(it)
	}
	t.items = nil
	return old
}

// Clone глубокая копия тайла вместе с выделением
func (t *Tile) Clone() *Tile {
	c := &Tile{
		position:       t.position,
		ground:         t.ground.Clone(),
		selectionCount: t.selectionCount,
		flags:          t.flags,
		houseID:        t.houseID,
	}
	if len(t.items) > 0 {
		c.items = make([]*item.Item, len(t.items))
		for i, it := range t.items {
			c.items[i] = it.Clone()
		}
	}
	return c
}

// CloneAt копия тайла, перенесённая в другую позицию
func (t *Tile) CloneAt(pos vec.Position) *Tile {
	c := t.Clone()
	c.position = pos
	return c
}

func (t *Tile) setPosition(pos vec.Position) {
	t.position = pos
}
