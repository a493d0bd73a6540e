package vec

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

const (
	// MapLayers количество этажей карты (z = 0..15).
	MapLayers = 16

	// GroundLayer уровень моря: этаж по умолчанию для инструментов редактора.
	GroundLayer = 7

	// CoordBits разрядность координат x/y, покрываемая квадродеревом.
	CoordBits = 16

	// MaxCoord первая координата за пределами карты.
	MaxCoord = 1 << CoordBits

	// ChunkSize сторона чанка (Floor) в тайлах.
	ChunkSize = 4
)

// Position представляет координаты тайла: x, y и этаж z.
// Значение сравнимо и может использоваться как ключ map.
type Position struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
	Z int32 `json:"z"`
}

// NewPosition создаёт позицию из трёх компонент
func NewPosition(x, y int64, z int32) Position {
	return Position{X: x, Y: y, Z: z}
}

// Add складывает позиции покомпонентно (z тоже складывается)
func (p Position) Add(other Position) Position {
	return Position{X: p.X + other.X, Y: p.Y + other.Y, Z: p.Z + other.Z}
}

// Sub вычитает позиции покомпонентно
func (p Position) Sub(other Position) Position {
	return Position{X: p.X - other.X, Y: p.Y - other.Y, Z: p.Z - other.Z}
}

// Equals проверяет равенство позиций
func (p Position) Equals(other Position) bool {
	return p.X == other.X && p.Y == other.Y && p.Z == other.Z
}

// Dot скалярное произведение, используется для упорядочивания перемещений
func (p Position) Dot(other Position) int64 {
	return p.X*other.X + p.Y*other.Y + int64(p.Z)*int64(other.Z)
}

// Hash возвращает хеш позиции, учитывающий все три компоненты
func (p Position) Hash() uint64 {
	var buf [20]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(p.X))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(p.Y))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(p.Z))
	return xxhash.Sum64(buf[:])
}

// InBounds проверяет, что позиция лежит в адресуемой области карты
func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < MaxCoord &&
		p.Y >= 0 && p.Y < MaxCoord &&
		p.Z >= 0 && p.Z < MapLayers
}

// ChunkOrigin возвращает позицию левого верхнего тайла чанка 4x4
func (p Position) ChunkOrigin() Position {
	return Position{X: p.X &^ (ChunkSize - 1), Y: p.Y &^ (ChunkSize - 1), Z: p.Z}
}

// LocalIndex индекс тайла внутри чанка: (x&3)*4 + (y&3)
func (p Position) LocalIndex() int {
	return int((p.X&3)*ChunkSize + (p.Y & 3))
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}
