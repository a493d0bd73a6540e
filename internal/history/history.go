package history

import (
	"github.com/annel0/map-editor/internal/debug"
	"github.com/annel0/map-editor/internal/logging"
	"github.com/annel0/map-editor/internal/world"
)

// Observer получает уведомления о движении по истории (метрики, UI)
type Observer interface {
	GroupCommitted(g *ActionGroup)
	GroupUndone(g *ActionGroup)
	GroupRedone(g *ActionGroup)
	StackChanged(undoDepth, redoDepth int)
}

// Option настройка History
type Option func(*History)

// WithLimit ограничивает число хранимых групп; самые старые отбрасываются.
// 0 означает без ограничения.
func WithLimit(limit int) Option {
	return func(h *History) {
		if limit > 0 {
			h.limit = limit
		}
	}
}

// WithObserver подключает наблюдателя
func WithObserver(o Observer) Option {
	return func(h *History) {
		h.observer = o
	}
}

// History стек групп действий с курсором: groups[:cursor] применены,
// groups[cursor:] отменены и доступны для redo.
type History struct {
	m        *world.Map
	groups   []*ActionGroup
	cursor   int
	limit    int
	observer Observer
	log      *logging.Logger
}

// New создаёт историю для карты
func New(m *world.Map, opts ...Option) *History {
	h := &History{
		m:   m,
		log: logging.GetHistoryLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Map карта, к которой применяется история
func (h *History) Map() *world.Map { return h.m }

// Commit применяет группу и кладёт её на вершину стека. Отменённые группы
// после курсора теряются. Пустая группа игнорируется.
func (h *History) Commit(g *ActionGroup) {
	debug.Assert(g != nil, "commit пустой ссылки на группу")
	if g.Empty() {
		h.log.Debug("пустая группа %s пропущена", g)
		return
	}

	g.commit(h.m)

	for i := h.cursor; i < len(h.groups); i++ {
		h.groups[i] = nil
	}
	h.groups = append(h.groups[:h.cursor], g)
	h.cursor++
	h.trim()

	h.log.Debug("commit %s: действий %d, изменений %d", g, g.Len(), g.ChangeCount())
	if h.observer != nil {
		h.observer.GroupCommitted(g)
	}
	h.notifyStack()
}

func (h *History) trim() {
	if h.limit == 0 || len(h.groups) <= h.limit {
		return
	}
	drop := len(h.groups) - h.limit
	for i := 0; i < drop; i++ {
		h.log.Trace("группа %s вытеснена из истории", h.groups[i])
		h.groups[i] = nil
	}
	h.groups = append(h.groups[:0], h.groups[drop:]...)
	h.cursor -= drop
}

// Undo отменяет последнюю применённую группу. Возвращает false, если отменять нечего.
func (h *History) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	h.cursor--
	g := h.groups[h.cursor]
	g.undo(h.m)

	h.log.Debug("undo %s", g)
	if h.observer != nil {
		h.observer.GroupUndone(g)
	}
	h.notifyStack()
	return true
}

// Redo повторяет последнюю отменённую группу. Возвращает false, если повторять нечего.
func (h *History) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	g := h.groups[h.cursor]
	g.redo(h.m)
	h.cursor++

	h.log.Debug("redo %s", g)
	if h.observer != nil {
		h.observer.GroupRedone(g)
	}
	h.notifyStack()
	return true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.groups) }

// Len число хранимых групп (применённых и отменённых)
func (h *History) Len() int { return len(h.groups) }

func (h *History) UndoDepth() int { return h.cursor }
func (h *History) RedoDepth() int { return len(h.groups) - h.cursor }

// PeekUndo группа, которую отменит следующий Undo, или nil
func (h *History) PeekUndo() *ActionGroup {
	if !h.CanUndo() {
		return nil
	}
	return h.groups[h.cursor-1]
}

// PeekRedo группа, которую повторит следующий Redo, или nil
func (h *History) PeekRedo() *ActionGroup {
	if !h.CanRedo() {
		return nil
	}
	return h.groups[h.cursor]
}

// Clear забывает всю историю. Карта не меняется.
func (h *History) Clear() {
	h.groups = nil
	h.cursor = 0
	h.log.Debug("история очищена")
	h.notifyStack()
}

func (h *History) notifyStack() {
	if h.observer != nil {
		h.observer.StackChanged(h.UndoDepth(), h.RedoDepth())
	}
}
