package world

import (
	"iter"

	"github.com/annel0/map-editor/internal/debug"
	"github.com/annel0/map-editor/internal/logging"
	"github.com/annel0/map-editor/internal/vec"
	"github.com/annel0/map-editor/internal/world/item"
)

// MapVersion версия формата карты
type MapVersion struct {
	Major    uint32 `json:"major"`
	Minor    uint32 `json:"minor"`
	ItemsOTB uint32 `json:"items_otb"`
}

// Map корневой агрегат документа: квадродерево тайлов и метаданные карты.
// Все методы вызываются из одного потока редактора.
type Map struct {
	root     *Node
	registry *item.Registry
	log      *logging.Logger

	Width       uint16
	Height      uint16
	Name        string
	Description string
	Version     MapVersion

	towns map[uint32]*Town
}

// NewMap создаёт пустую карту. Реестр нужен для проверки типов в AddItem.
func NewMap(registry *item.Registry) *Map {
	if registry == nil {
		registry = item.NewRegistry()
	}
	return &Map{
		root:     newRoot(),
		registry: registry,
		log:      logging.GetWorldLogger(),
		Width:    2048,
		Height:   2048,
		towns:    make(map[uint32]*Town),
	}
}

// Registry возвращает реестр типов предметов карты
func (m *Map) Registry() *item.Registry {
	return m.registry
}

// Location возвращает слот позиции без создания структуры
func (m *Map) Location(pos vec.Position) *TileLocation {
	if pos.Z < 0 || pos.Z >= vec.MapLayers {
		return nil
	}
	leaf := m.root.leaf(pos.X, pos.Y)
	if leaf == nil {
		return nil
	}
	f := leaf.floor(pos.Z)
	if f == nil {
		return nil
	}
	return f.Location(pos.X, pos.Y)
}

// Tile возвращает тайл позиции или nil. Не изменяет структуру карты.
func (m *Map) Tile(pos vec.Position) *Tile {
	loc := m.Location(pos)
	if loc == nil {
		return nil
	}
	return loc.tile
}

// GetOrCreateLocation гарантирует существование слота позиции
func (m *Map) GetOrCreateLocation(pos vec.Position) *TileLocation {
	debug.Assert(pos.InBounds(), "позиция %v вне карты", pos)
	leaf := m.root.leafWithCreate(pos.X, pos.Y)
	return leaf.floorWithCreate(pos.Z).Location(pos.X, pos.Y)
}

// GetOrCreateTile гарантирует существование тайла в позиции.
// Повторный вызов возвращает тот же тайл.
func (m *Map) GetOrCreateTile(pos vec.Position) *Tile {
	loc := m.GetOrCreateLocation(pos)
	if loc.tile == nil {
		loc.setTile(NewTile(pos))
	}
	return loc.tile
}

// AddItem кладёт предмет на тайл позиции. Предмет незарегистрированного типа
// молча пропускается: старые карты содержат удалённые типы.
func (m *Map) AddItem(pos vec.Position, it *item.Item) {
	if it == nil || !m.registry.Valid(it.TypeID()) {
		if it != nil {
			m.log.Debug("AddItem %v: неизвестный тип %d", pos, it.TypeID())
		}
		return
	}
	m.registry.Destroy(m.GetOrCreateTile(pos).AddItem(it))
}

// ReplaceTile кладёт тайл в слот его позиции и возвращает прежний тайл (или nil)
func (m *Map) ReplaceTile(t *Tile) *Tile {
	return m.GetOrCreateLocation(t.Position()).setTile(t)
}

// InsertTile кладёт тайл в слот его позиции, прежний тайл уничтожается
func (m *Map) InsertTile(t *Tile) {
	m.destroyTile(m.ReplaceTile(t))
}

// DropTile извлекает тайл из слота и отдаёт его вызывающему. Слот остаётся.
func (m *Map) DropTile(pos vec.Position) *Tile {
	loc := m.Location(pos)
	if loc == nil {
		return nil
	}
	return loc.setTile(nil)
}

// RemoveTile извлекает и уничтожает тайл
func (m *Map) RemoveTile(pos vec.Position) {
	m.destroyTile(m.DropTile(pos))
}

// MoveTile переносит тайл целиком. Содержимое назначения заменяется и
// уничтожается; если в from тайла нет, назначение просто очищается.
// Перенос на ту же позицию запрещён.
func (m *Map) MoveTile(from, to vec.Position) {
	debug.Assert(!from.Equals(to), "MoveTile на ту же позицию %v", from)

	t := m.DropTile(from)
	if t == nil {
		m.RemoveTile(to)
		return
	}
	t.setPosition(to)
	m.InsertTile(t)
}

// MoveSelectedItems переносит выделение тайла from на to. Полностью выделенный
// тайл переезжает целиком, иначе переносятся только выделенные сущности.
func (m *Map) MoveSelectedItems(from, to vec.Position) {
	source := m.Tile(from)
	if source == nil || !source.HasSelection() {
		return
	}
	if source.AllSelected() {
		m.MoveTile(from, to)
		return
	}
	for _, it := range source.MoveSelected(m.GetOrCreateTile(to)) {
		m.registry.Destroy(it)
	}
}

// Region возвращает обход прямоугольной области по этажам
func (m *Map) Region(from, to vec.Position) *MapRegion {
	return newMapRegion(m, from, to)
}

// Iterator возвращает обход всех непустых тайлов карты
func (m *Map) Iterator() *MapIterator {
	return newMapIterator(m.root)
}

// Tiles последовательность всех непустых слотов карты
func (m *Map) Tiles() iter.Seq[*TileLocation] {
	return func(yield func(*TileLocation) bool) {
		for it := m.Iterator(); it.Next(); {
			if !yield(it.Location()) {
				return
			}
		}
	}
}

// TileCount число непустых тайлов (полный обход)
func (m *Map) TileCount() int {
	n := 0
	for it := m.Iterator(); it.Next(); {
		n++
	}
	return n
}

func (m *Map) destroyTile(t *Tile) {
	if t == nil {
		return
	}
	m.registry.Destroy(t.ground)
	for _, it := range t.items {
		m.registry.Destroy(it)
	}
}
