package world

import (
	"sort"

	"github.com/annel0/map-editor/internal/vec"
)

// Town город карты с позицией храма
type Town struct {
	ID        uint32       `json:"id"`
	Name      string       `json:"name"`
	TemplePos vec.Position `json:"temple"`
}

// AddTown добавляет город. Возвращает false, если ID уже занят.
func (m *Map) AddTown(t *Town) bool {
	if _, exists := m.towns[t.ID]; exists {
		return false
	}
	m.towns[t.ID] = t
	return true
}

// Town возвращает город по ID
func (m *Map) Town(id uint32) (*Town, bool) {
	t, ok := m.towns[id]
	return t, ok
}

// RemoveTown удаляет город
func (m *Map) RemoveTown(id uint32) {
	delete(m.towns, id)
}

// Towns возвращает города, упорядоченные по ID
func (m *Map) Towns() []*Town {
	result := make([]*Town, 0, len(m.towns))
	for _, t := range m.towns {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
