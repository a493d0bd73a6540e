package world

import (
	"iter"

	"github.com/annel0/map-editor/internal/vec"
)

// MapRegion обходит тайлы прямоугольной области по этажам сверху вниз:
// z от max(from.z, to.z) до min(from.z, to.z). Порядок этажей важен для
// отрисовки и выделения, менять его нельзя.
//
// Углы области округляются вниз до границ чанков 4x4, обход идёт чанк за чанком
// (x по возрастанию, внутри y по возрастанию), в чанке по слотам Floor.
// Позиции вне точной области, отсутствующие листья и этажи пропускаются.
// Обход только читает карту и не создаёт узлов.
type MapRegion struct {
	m *Map

	minX, maxX int64
	minY, maxY int64
	minZ, maxZ int32

	chunkStartX, chunkEndX int64
	chunkStartY, chunkEndY int64

	z              int32
	chunkX, chunkY int64
	floor          *Floor
	local          int

	current *TileLocation
	started bool
	done    bool
}

func newMapRegion(m *Map, from, to vec.Position) *MapRegion {
	r := &MapRegion{
		m:    m,
		minX: clampCoord(min(from.X, to.X)),
		maxX: clampCoord(max(from.X, to.X)),
		minY: clampCoord(min(from.Y, to.Y)),
		maxY: clampCoord(max(from.Y, to.Y)),
		minZ: max(min(from.Z, to.Z), 0),
		maxZ: min(max(from.Z, to.Z), vec.MapLayers-1),
	}
	r.chunkStartX = r.minX &^ (vec.ChunkSize - 1)
	r.chunkEndX = r.maxX &^ (vec.ChunkSize - 1)
	r.chunkStartY = r.minY &^ (vec.ChunkSize - 1)
	r.chunkEndY = r.maxY &^ (vec.ChunkSize - 1)

	if r.minZ > r.maxZ || outsideMap(from.X, to.X) || outsideMap(from.Y, to.Y) {
		r.done = true
	}
	return r
}

// outsideMap true, если отрезок [a, b] целиком лежит вне координат карты
func outsideMap(a, b int64) bool {
	return max(a, b) < 0 || min(a, b) >= vec.MaxCoord
}

func clampCoord(v int64) int64 {
	return min(max(v, 0), vec.MaxCoord-1)
}

// Next переходит к следующему тайлу области. Возвращает false в конце.
func (r *MapRegion) Next() bool {
	if r.done {
		return false
	}
	if !r.started {
		r.started = true
		r.z = r.maxZ
		r.chunkX = r.chunkStartX
		r.chunkY = r.chunkStartY
		r.loadFloor()
	}

	for {
		if loc := r.updateValue(); loc != nil {
			r.current = loc
			return true
		}
		if !r.nextChunk() {
			r.done = true
			r.current = nil
			return false
		}
	}
}

// updateValue сканирует текущий чанк с сохранённого слота
func (r *MapRegion) updateValue() *TileLocation {
	if r.floor == nil {
		return nil
	}
	for r.local < len(r.floor.locations) {
		loc := &r.floor.locations[r.local]
		r.local++

		pos := loc.position
		if pos.X < r.minX || pos.X > r.maxX || pos.Y < r.minY || pos.Y > r.maxY {
			continue
		}
		if loc.HasTile() {
			return loc
		}
	}
	return nil
}

// nextChunk переходит к следующему чанку, а после последнего чанка этажа
// к этажу ниже. Возвращает false, когда этажи кончились.
func (r *MapRegion) nextChunk() bool {
	r.chunkY += vec.ChunkSize
	if r.chunkY > r.chunkEndY {
		r.chunkY = r.chunkStartY
		r.chunkX += vec.ChunkSize
		if r.chunkX > r.chunkEndX {
			r.chunkX = r.chunkStartX
			r.z--
			if r.z < r.minZ {
				return false
			}
		}
	}
	r.loadFloor()
	return true
}

func (r *MapRegion) loadFloor() {
	r.local = 0
	r.floor = nil
	if leaf := r.m.root.leaf(r.chunkX, r.chunkY); leaf != nil {
		r.floor = leaf.floor(r.z)
	}
}

// Location текущий слот
func (r *MapRegion) Location() *TileLocation {
	return r.current
}

// All последовательность слотов области
func (r *MapRegion) All() iter.Seq[*TileLocation] {
	return func(yield func(*TileLocation) bool) {
		for r.Next() {
			if !yield(r.current) {
				return
			}
		}
	}
}
