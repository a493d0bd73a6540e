package item

// Container упорядоченный список вложенных предметов с ограниченной вместимостью
type Container struct {
	capacity uint16
	items    []*Item
}

func NewContainer(capacity uint16) *Container {
	return &Container{capacity: capacity}
}

func (c *Container) Capacity() uint16 { return c.capacity }
func (c *Container) Len() int         { return len(c.items) }

// Full true, если места больше нет
func (c *Container) Full() bool {
	return len(c.items) >= int(c.capacity)
}

// Add кладёт предмет в контейнер. Возвращает false, если контейнер полон.
func (c *Container) Add(it *Item) bool {
	if c.Full() {
		return false
	}
	c.items = append(c.items, it)
	return true
}

// ItemAt возвращает предмет по индексу или nil
func (c *Container) ItemAt(index int) *Item {
	if index < 0 || index >= len(c.items) {
		return nil
	}
	return c.items[index]
}

// Remove извлекает предмет по индексу
func (c *Container) Remove(index int) *Item {
	if index < 0 || index >= len(c.items) {
		return nil
	}
	it := c.items[index]
	c.items = append(c.items[:index], c.items[index+1:]...)
	return it
}

// Items возвращает копию среза вложенных предметов
func (c *Container) Items() []*Item {
	result := make([]*Item, len(c.items))
	copy(result, c.items)
	return result
}

func (c *Container) Clone() *Container {
	clone := &Container{capacity: c.capacity, items: make([]*Item, 0, len(c.items))}
	for _, it := range c.items {
		clone.items = append(clone.items, it.Clone())
	}
	return clone
}
