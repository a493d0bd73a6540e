package history

import (
	"github.com/annel0/map-editor/internal/debug"
	"github.com/annel0/map-editor/internal/world"
)

// Action упорядоченный набор изменений. Состояния: не применено -> применено,
// переход один раз. Commit и Redo идут в порядке добавления, Undo в обратном.
type Action struct {
	changes   []Change
	committed bool
}

// NewAction создаёт действие из изменений
func NewAction(changes ...Change) *Action {
	return &Action{changes: changes}
}

// Add добавляет изменение в ещё не применённое действие
func (a *Action) Add(c Change) {
	debug.Assert(!a.committed, "добавление изменения в применённое действие")
	a.changes = append(a.changes, c)
}

func (a *Action) Committed() bool { return a.committed }
func (a *Action) Len() int        { return len(a.changes) }
func (a *Action) Empty() bool     { return len(a.changes) == 0 }

// Changes копия списка изменений
func (a *Action) Changes() []Change {
	result := make([]Change, len(a.changes))
	copy(result, a.changes)
	return result
}

// Commit применяет изменения к карте
func (a *Action) Commit(m *world.Map) {
	debug.Assert(!a.committed, "повторный commit действия")
	for _, c := range a.changes {
		c.commit(m)
	}
	a.committed = true
}

// Undo откатывает изменения в обратном порядке
func (a *Action) Undo(m *world.Map) {
	debug.Assert(a.committed, "undo неприменённого действия")
	for i := len(a.changes) - 1; i >= 0; i-- {
		a.changes[i].undo(m)
	}
}

// Redo повторно применяет изменения после Undo
func (a *Action) Redo(m *world.Map) {
	debug.Assert(a.committed, "redo неприменённого действия")
	for _, c := range a.changes {
		c.commit(m)
	}
}
