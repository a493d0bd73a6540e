package item

// Group категория типа предмета
type Group uint8

const (
	GroupNone Group = iota
	GroupGround
	GroupContainer
	GroupFluid
	GroupSplash
	GroupDeprecated
)

// TopOrder порядок отрисовки always-on-top предметов
const (
	TopOrderNone   uint8 = 0
	TopOrderBorder uint8 = 1 // бордюры
	TopOrderBottom uint8 = 2 // стены, двери
	TopOrderTop    uint8 = 3 // арки, верхние части
)

// ItemType описывает тип предмета из каталога
type ItemType struct {
	ID          uint32 `yaml:"id"`
	Name        string `yaml:"name"`
	Group       Group  `yaml:"-"`
	AlwaysOnTop bool   `yaml:"always_on_top"`
	TopOrder    uint8  `yaml:"top_order"`
	Stackable   bool   `yaml:"stackable"`
	Volume      uint16 `yaml:"volume"` // вместимость контейнера
	Animated    bool   `yaml:"animated"`
}

// IsGround true для предметов земли
func (t *ItemType) IsGround() bool {
	return t != nil && t.Group == GroupGround
}

// IsBorder true для бордюров (always-on-top с порядком 1)
func (t *ItemType) IsBorder() bool {
	return t != nil && t.AlwaysOnTop && t.TopOrder == TopOrderBorder
}

// IsContainer true для контейнеров
func (t *ItemType) IsContainer() bool {
	return t != nil && t.Group == GroupContainer
}

// HasSubtype true, если у предмета есть количество/заряд/жидкость
func (t *ItemType) HasSubtype() bool {
	return t != nil && (t.Stackable || t.Group == GroupFluid || t.Group == GroupSplash)
}

// MaxSubtype верхняя граница subtype для типа
func (t *ItemType) MaxSubtype() uint16 {
	switch {
	case t == nil:
		return 0
	case t.Stackable:
		return 100
	case t.Group == GroupFluid || t.Group == GroupSplash:
		return 0xFF
	default:
		return 0
	}
}

func parseGroup(s string) Group {
	switch s {
	case "ground":
		return GroupGround
	case "container":
		return GroupContainer
	case "fluid":
		return GroupFluid
	case "splash":
		return GroupSplash
	case "deprecated":
		return GroupDeprecated
	default:
		return GroupNone
	}
}
