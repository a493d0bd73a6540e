package item

import (
	"sort"

	"github.com/annel0/map-editor/internal/logging"
)

// AnimationHook получает уведомления о создании и уничтожении предметов
// с анимированным типом. Реестр передаётся явно, глобального состояния нет.
type AnimationHook interface {
	ItemCreated(it *Item)
	ItemDestroyed(it *Item)
}

// Registry реестр типов предметов
type Registry struct {
	types map[uint32]*ItemType
	hook  AnimationHook
	log   *logging.Logger
}

// NewRegistry создаёт пустой реестр
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[uint32]*ItemType),
		log:   logging.GetComponentLogger("items"),
	}
}

// SetAnimationHook подключает подсистему анимации
func (r *Registry) SetAnimationHook(hook AnimationHook) {
	r.hook = hook
}

// Register добавляет тип в реестр, перезаписывая существующий с тем же ID
func (r *Registry) Register(t *ItemType) {
	r.types[t.ID] = t
}

// Type возвращает тип по ID
func (r *Registry) Type(id uint32) (*ItemType, bool) {
	t, exists := r.types[id]
	return t, exists
}

// Valid проверяет, является ли ID зарегистрированным типом
func (r *Registry) Valid(id uint32) bool {
	_, exists := r.types[id]
	return exists
}

// Len количество зарегистрированных типов
func (r *Registry) Len() int {
	return len(r.types)
}

// IDs возвращает отсортированный список ID
func (r *Registry) IDs() []uint32 {
	ids := make([]uint32, 0, len(r.types))
	for id := range r.types {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Create создаёт предмет зарегистрированного типа. Неизвестный ID не ошибка:
// старые карты часто содержат удалённые типы, такой предмет просто пропускается.
// Subtype вне допустимого диапазона обрезается.
func (r *Registry) Create(id uint32, subtype uint16) (*Item, bool) {
	t, exists := r.types[id]
	if !exists {
		r.log.Debug("неизвестный тип предмета %d пропущен", id)
		return nil, false
	}
	if max := t.MaxSubtype(); subtype > max {
		r.log.Debug("subtype %d вне диапазона для типа %d, обрезан до %d", subtype, id, max)
		subtype = max
	}
	if t.Stackable && subtype == 0 {
		subtype = 1
	}

	it := New(t, subtype)
	if t.Animated && r.hook != nil {
		r.hook.ItemCreated(it)
	}
	return it, true
}

// Destroy уведомляет подсистему анимации об уничтожении предмета и его содержимого
func (r *Registry) Destroy(it *Item) {
	if it == nil || r.hook == nil {
		return
	}
	if c := it.Container(); c != nil {
		for _, child := range c.items {
			r.Destroy(child)
		}
	}
	if t := it.Type(); t != nil && t.Animated {
		r.hook.ItemDestroyed(it)
	}
}
