package world

import (
	"github.com/annel0/map-editor/internal/vec"
)

// TileLocation постоянный слот карты. Слот создаётся вместе с Floor и не
// перемещается, поэтому ссылки на него переживают undo/redo. Тайл внутри
// слота может появляться, заменяться и исчезать.
type TileLocation struct {
	position vec.Position
	tile     *Tile
}

func (l *TileLocation) Position() vec.Position { return l.position }
func (l *TileLocation) Tile() *Tile            { return l.tile }

// HasTile true, если в слоте есть непустой тайл
func (l *TileLocation) HasTile() bool {
	return l.tile != nil && !l.tile.IsEmpty()
}

// setTile кладёт тайл в слот и возвращает прежний
func (l *TileLocation) setTile(t *Tile) *Tile {
	old := l.tile
	if t != nil {
		t.setPosition(l.position)
	}
	l.tile = t
	return old
}

// Floor сетка 4x4 слотов одного этажа внутри чанка
type Floor struct {
	locations [vec.ChunkSize * vec.ChunkSize]TileLocation
}

// newFloor создаёт этаж и заранее вычисляет позиции всех 16 слотов
func newFloor(originX, originY int64, z int32) *Floor {
	f := &Floor{}
	for x := int64(0); x < vec.ChunkSize; x++ {
		for y := int64(0); y < vec.ChunkSize; y++ {
			f.locations[x*vec.ChunkSize+y].position = vec.NewPosition(originX+x, originY+y, z)
		}
	}
	return f
}

// Location возвращает слот по мировым x,y: индекс (x&3)*4+(y&3)
func (f *Floor) Location(x, y int64) *TileLocation {
	return &f.locations[(x&3)*vec.ChunkSize+(y&3)]
}

// LocationAt возвращает слот по локальному индексу 0..15
func (f *Floor) LocationAt(index int) *TileLocation {
	return &f.locations[index]
}

// Empty true, если ни в одном слоте нет тайла
func (f *Floor) Empty() bool {
	for i := range f.locations {
		if f.locations[i].HasTile() {
			return false
		}
	}
	return true
}
