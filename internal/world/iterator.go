package world

import "github.com/annel0/map-editor/internal/vec"

type iterFrame struct {
	node   *Node
	cursor int
}

// MapIterator обходит все непустые тайлы карты в глубину. Стек кадров явный,
// рекурсии нет. Обход однонаправленный и не перезапускается.
//
//	for it := m.Iterator(); it.Next(); {
//		loc := it.Location()
//	}
type MapIterator struct {
	stack []iterFrame

	// состояние внутри текущего листа, с него продолжается следующий Next
	leaf       *Node
	floorIndex int
	tileIndex  int

	current *TileLocation
	done    bool
}

func newMapIterator(root *Node) *MapIterator {
	it := &MapIterator{stack: make([]iterFrame, 0, treeDepth+1)}
	it.stack = append(it.stack, iterFrame{node: root})
	return it
}

// Next переходит к следующему непустому слоту. Возвращает false в конце.
func (it *MapIterator) Next() bool {
	if it.done {
		return false
	}

	for {
		if it.leaf != nil {
			if loc := it.scanLeaf(); loc != nil {
				it.current = loc
				return true
			}
			it.leaf = nil
		}

		if len(it.stack) == 0 {
			it.done = true
			it.current = nil
			return false
		}

		top := &it.stack[len(it.stack)-1]
		if top.cursor >= childCount {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}

		child := top.node.child(top.cursor)
		top.cursor++
		if child == nil {
			continue
		}
		if child.IsLeaf() {
			it.leaf = child
			it.floorIndex = 0
			it.tileIndex = 0
			continue
		}
		it.stack = append(it.stack, iterFrame{node: child})
	}
}

// scanLeaf продолжает сканирование этажей листа с сохранённой позиции
func (it *MapIterator) scanLeaf() *TileLocation {
	for ; it.floorIndex < vec.MapLayers; it.floorIndex++ {
		f := it.leaf.floors[it.floorIndex]
		if f != nil {
			for it.tileIndex < len(f.locations) {
				loc := &f.locations[it.tileIndex]
				it.tileIndex++
				if loc.HasTile() {
					return loc
				}
			}
		}
		it.tileIndex = 0
	}
	return nil
}

// Location текущий слот (nil до первого Next и после конца)
func (it *MapIterator) Location() *TileLocation {
	return it.current
}

// Done true после исчерпания обхода
func (it *MapIterator) Done() bool {
	return it.done
}
