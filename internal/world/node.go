package world

import (
	"github.com/annel0/map-editor/internal/debug"
	"github.com/annel0/map-editor/internal/vec"
)

// nodeKind тег варианта узла квадродерева
type nodeKind uint8

const (
	nodeRoot nodeKind = iota
	nodeInternal
	nodeLeaf
)

const (
	childCount = 16

	// treeDepth число спусков от корня до листа. Каждый уровень съедает по 2 бита
	// x и y, последние 2 бита адресуют слот внутри Floor.
	treeDepth = (vec.CoordBits - 2) / 2
)

// Node узел квадродерева. Корень и внутренние узлы хранят до 16 детей,
// листья хранят до MapLayers этажей. Заполнено ровно одно из полей children/floors,
// какое именно, определяет kind.
type Node struct {
	kind     nodeKind
	children *[childCount]*Node
	floors   *[vec.MapLayers]*Floor

	// левый верхний угол чанка листа
	originX, originY int64
}

func newRoot() *Node {
	return &Node{kind: nodeRoot, children: new([childCount]*Node)}
}

func newInternal() *Node {
	return &Node{kind: nodeInternal, children: new([childCount]*Node)}
}

func newLeaf(originX, originY int64) *Node {
	return &Node{kind: nodeLeaf, floors: new([vec.MapLayers]*Floor), originX: originX, originY: originY}
}

// IsLeaf true для листа
func (n *Node) IsLeaf() bool {
	return n.kind == nodeLeaf
}

// childIndex индекс ребёнка на уровне level по 2-битным срезам x и y
func childIndex(x, y int64, level int) int {
	shift := uint(vec.CoordBits - 2*(level+1))
	return int((x>>shift)&3)*4 + int((y>>shift)&3)
}

func inRange(x, y int64) bool {
	return x >= 0 && x < vec.MaxCoord && y >= 0 && y < vec.MaxCoord
}

// leaf спускается к листу без создания узлов. Возвращает nil на первом
// отсутствующем ребёнке или для координат вне карты.
func (n *Node) leaf(x, y int64) *Node {
	if !inRange(x, y) {
		return nil
	}
	node := n
	for level := 0; level < treeDepth; level++ {
		node = node.children[childIndex(x, y, level)]
		if node == nil {
			return nil
		}
	}
	return node
}

// leafWithCreate спускается к листу, создавая недостающие узлы
func (n *Node) leafWithCreate(x, y int64) *Node {
	debug.Assert(inRange(x, y), "координаты (%d,%d) вне карты", x, y)

	node := n
	for level := 0; level < treeDepth; level++ {
		idx := childIndex(x, y, level)
		child := node.children[idx]
		if child == nil {
			if level == treeDepth-1 {
				child = newLeaf(x&^3, y&^3)
			} else {
				child = newInternal()
			}
			node.children[idx] = child
		}
		node = child
	}
	debug.Assert(node.kind == nodeLeaf, "на глубине %d ожидался лист", treeDepth)
	return node
}

// floor возвращает этаж листа или nil
func (n *Node) floor(z int32) *Floor {
	debug.Assert(n.kind == nodeLeaf, "этажи есть только у листьев")
	if z < 0 || z >= vec.MapLayers {
		return nil
	}
	return n.floors[z]
}

// floorWithCreate возвращает этаж листа, создавая его при необходимости
func (n *Node) floorWithCreate(z int32) *Floor {
	debug.Assert(n.kind == nodeLeaf, "этажи есть только у листьев")
	debug.Assert(z >= 0 && z < vec.MapLayers, "этаж %d вне диапазона", z)
	f := n.floors[z]
	if f == nil {
		f = newFloor(n.originX, n.originY, z)
		n.floors[z] = f
	}
	return f
}

// child возвращает ребёнка по индексу (для обхода)
func (n *Node) child(index int) *Node {
	if n.children == nil {
		return nil
	}
	return n.children[index]
}
