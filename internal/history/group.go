package history

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/annel0/map-editor/internal/world"
)

// ActionType смысловой тег группы действий
type ActionType uint8

const (
	ActionSelection ActionType = iota
	ActionAddMapItem
	ActionRemoveMapItem
	ActionMoveItems
	ActionSetTile
	ActionOther
)

func (t ActionType) String() string {
	switch t {
	case ActionSelection:
		return "selection"
	case ActionAddMapItem:
		return "add_map_item"
	case ActionRemoveMapItem:
		return "remove_map_item"
	case ActionMoveItems:
		return "move_items"
	case ActionSetTile:
		return "set_tile"
	case ActionOther:
		return "other"
	default:
		return fmt.Sprintf("action(%d)", uint8(t))
	}
}

// ActionGroup действия, которые отменяются и повторяются вместе
type ActionGroup struct {
	ID    uuid.UUID
	Type  ActionType
	Label string

	actions []*Action
}

// NewActionGroup создаёт пустую группу
func NewActionGroup(typ ActionType, label string) *ActionGroup {
	return &ActionGroup{ID: uuid.New(), Type: typ, Label: label}
}

// Add добавляет действие в группу
func (g *ActionGroup) Add(a *Action) {
	g.actions = append(g.actions, a)
}

// AddChanges оборачивает изменения в одно действие и добавляет его
func (g *ActionGroup) AddChanges(changes ...Change) *Action {
	a := NewAction(changes...)
	g.Add(a)
	return a
}

func (g *ActionGroup) Len() int { return len(g.actions) }

// Actions копия списка действий
func (g *ActionGroup) Actions() []*Action {
	result := make([]*Action, len(g.actions))
	copy(result, g.actions)
	return result
}

// ChangeCount общее число изменений во всех действиях
func (g *ActionGroup) ChangeCount() int {
	n := 0
	for _, a := range g.actions {
		n += a.Len()
	}
	return n
}

// Empty true, если в группе нет ни одного изменения
func (g *ActionGroup) Empty() bool {
	return g.ChangeCount() == 0
}

func (g *ActionGroup) String() string {
	if g.Label != "" {
		return fmt.Sprintf("%s %q [%s]", g.Type, g.Label, g.ID)
	}
	return fmt.Sprintf("%s [%s]", g.Type, g.ID)
}

// commit применяет ещё не применённые действия. Действия, применённые
// вызывающим заранее, не трогаются.
func (g *ActionGroup) commit(m *world.Map) {
	for _, a := range g.actions {
		if !a.Committed() {
			a.Commit(m)
		}
	}
}

func (g *ActionGroup) undo(m *world.Map) {
	for i := len(g.actions) - 1; i >= 0; i-- {
		g.actions[i].Undo(m)
	}
}

func (g *ActionGroup) redo(m *world.Map) {
	for _, a := range g.actions {
		a.Redo(m)
	}
}
