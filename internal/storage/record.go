package storage

import (
	"github.com/annel0/map-editor/internal/logging"
	"github.com/annel0/map-editor/internal/vec"
	"github.com/annel0/map-editor/internal/world"
	"github.com/annel0/map-editor/internal/world/item"
)

// ItemRecord сохранённый предмет. Выделение не сохраняется.
type ItemRecord struct {
	TypeID     uint32                                    `json:"id"`
	Subtype    uint16                                    `json:"sub,omitempty"`
	Attributes map[item.AttributeKey]item.AttributeValue `json:"attrs,omitempty"`
	Contents   []ItemRecord                              `json:"contents,omitempty"`
}

// TileRecord сохранённый тайл
type TileRecord struct {
	Position vec.Position `json:"pos"`
	Flags    uint32       `json:"flags,omitempty"`
	HouseID  uint32       `json:"house,omitempty"`
	Ground   *ItemRecord  `json:"ground,omitempty"`
	Items    []ItemRecord `json:"items,omitempty"`
}

// MapMeta метаданные карты
type MapMeta struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Width       uint16           `json:"width"`
	Height      uint16           `json:"height"`
	Version     world.MapVersion `json:"version"`
	Towns       []*world.Town    `json:"towns,omitempty"`
	TileCount   int              `json:"tile_count"`
}

func encodeItem(it *item.Item) ItemRecord {
	rec := ItemRecord{
		TypeID:     it.TypeID(),
		Subtype:    it.Subtype(),
		Attributes: it.Attributes(),
	}
	if c := it.Container(); c != nil {
		for _, child := range c.Items() {
			rec.Contents = append(rec.Contents, encodeItem(child))
		}
	}
	return rec
}

// EncodeTile переводит тайл в запись
func EncodeTile(t *world.Tile) *TileRecord {
	rec := &TileRecord{
		Position: t.Position(),
		Flags:    uint32(t.Flags()),
		HouseID:  t.HouseID(),
	}
	if g := t.Ground(); g != nil {
		gr := encodeItem(g)
		rec.Ground = &gr
	}
	if n := t.ItemCount(); n > 0 {
		rec.Items = make([]ItemRecord, 0, n)
		for _, it := range t.Items() {
			rec.Items = append(rec.Items, encodeItem(it))
		}
	}
	return rec
}

// decodeItem создаёт предмет через реестр. Неизвестный тип пропускается
// вместе с содержимым: старые карты содержат удалённые типы.
func decodeItem(reg *item.Registry, rec *ItemRecord) (*item.Item, bool) {
	it, ok := reg.Create(rec.TypeID, rec.Subtype)
	if !ok {
		return nil, false
	}
	for k, v := range rec.Attributes {
		it.SetAttribute(k, v)
	}
	if c := it.Container(); c != nil {
		for i := range rec.Contents {
			child, ok := decodeItem(reg, &rec.Contents[i])
			if !ok {
				continue
			}
			if !c.Add(child) {
				logging.GetStorageLogger().Debug("контейнер %d переполнен, предмет %d пропущен", rec.TypeID, child.TypeID())
				reg.Destroy(child)
			}
		}
	}
	return it, true
}

// Decode восстанавливает тайл. Предметы неизвестных типов пропускаются,
// число пропущенных возвращается вторым значением.
func (r *TileRecord) Decode(reg *item.Registry) (*world.Tile, int) {
	skipped := 0
	t := world.NewTile(r.Position)
	t.SetFlags(world.TileFlags(r.Flags))
	t.SetHouseID(r.HouseID)

	if r.Ground != nil {
		if g, ok := decodeItem(reg, r.Ground); ok {
			t.AddItem(g)
		} else {
			skipped++
		}
	}
	for i := range r.Items {
		it, ok := decodeItem(reg, &r.Items[i])
		if !ok {
			skipped++
			continue
		}
		t.AddItem(it)
	}
	return t, skipped
}

func metaOf(m *world.Map, tileCount int) *MapMeta {
	return &MapMeta{
		Name:        m.Name,
		Description: m.Description,
		Width:       m.Width,
		Height:      m.Height,
		Version:     m.Version,
		Towns:       m.Towns(),
		TileCount:   tileCount,
	}
}

func (meta *MapMeta) apply(m *world.Map) {
	m.Name = meta.Name
	m.Description = meta.Description
	m.Width = meta.Width
	m.Height = meta.Height
	m.Version = meta.Version
	for _, town := range meta.Towns {
		if !m.AddTown(town) {
			logging.GetStorageLogger().Warn("город %d встречается повторно, пропущен", town.ID)
		}
	}
}
