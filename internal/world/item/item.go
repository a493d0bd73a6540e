package item

// Item экземпляр предмета на тайле или в контейнере
type Item struct {
	itemType   *ItemType
	typeID     uint32
	subtype    uint16
	selected   bool
	attributes map[AttributeKey]AttributeValue
	container  *Container
}

// New создаёт предмет указанного типа. Тип может быть nil для данных,
// не прошедших через реестр: такой предмет считается обычным.
func New(t *ItemType, subtype uint16) *Item {
	it := &Item{itemType: t, subtype: subtype}
	if t != nil {
		it.typeID = t.ID
		if t.IsContainer() {
			it.container = NewContainer(t.Volume)
		}
	}
	return it
}

// NewUnregistered создаёт предмет с известным только id
func NewUnregistered(id uint32, subtype uint16) *Item {
	return &Item{typeID: id, subtype: subtype}
}

func (it *Item) TypeID() uint32   { return it.typeID }
func (it *Item) Type() *ItemType  { return it.itemType }
func (it *Item) Subtype() uint16  { return it.subtype }
func (it *Item) Selected() bool   { return it.selected }
func (it *Item) IsGround() bool   { return it.itemType.IsGround() }
func (it *Item) IsBorder() bool   { return it.itemType.IsBorder() }
func (it *Item) AlwaysOnTop() bool {
	return it.itemType != nil && it.itemType.AlwaysOnTop
}

// SetSubtype устанавливает количество/заряд/тип жидкости
func (it *Item) SetSubtype(subtype uint16) {
	it.subtype = subtype
}

// SetSelected меняет флаг выделения. Тайл должен поддерживать счётчик
// выделения сам, поэтому на предметах тайла используйте методы Tile.
func (it *Item) SetSelected(selected bool) {
	it.selected = selected
}

// Attribute возвращает значение атрибута
func (it *Item) Attribute(key AttributeKey) (AttributeValue, bool) {
	v, ok := it.attributes[key]
	return v, ok
}

// SetAttribute устанавливает атрибут
func (it *Item) SetAttribute(key AttributeKey, value AttributeValue) {
	if it.attributes == nil {
		it.attributes = make(map[AttributeKey]AttributeValue)
	}
	it.attributes[key] = value
}

// RemoveAttribute удаляет атрибут
func (it *Item) RemoveAttribute(key AttributeKey) {
	delete(it.attributes, key)
}

// Attributes возвращает копию атрибутов
func (it *Item) Attributes() map[AttributeKey]AttributeValue {
	if len(it.attributes) == 0 {
		return nil
	}
	result := make(map[AttributeKey]AttributeValue, len(it.attributes))
	for k, v := range it.attributes {
		result[k] = v
	}
	return result
}

// Container возвращает содержимое контейнера или nil
func (it *Item) Container() *Container {
	return it.container
}

// Clone создаёт глубокую копию предмета, включая вложенные предметы
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	c := &Item{
		itemType:   it.itemType,
		typeID:     it.typeID,
		subtype:    it.subtype,
		selected:   it.selected,
		attributes: it.Attributes(),
	}
	if it.container != nil {
		c.container = it.container.Clone()
	}
	return c
}
