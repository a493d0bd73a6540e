// Package mapgen заполняет области карты ландшафтом из шума Перлина.
// Каждое заполнение проходит через историю и отменяется одним undo.
package mapgen

import (
	"fmt"
	"math/rand"

	"github.com/annel0/map-editor/internal/history"
	"github.com/annel0/map-editor/internal/logging"
	"github.com/annel0/map-editor/internal/vec"
	"github.com/annel0/map-editor/internal/world"
	"github.com/annel0/map-editor/internal/world/item"
)

// Biome тип местности
type Biome int

const (
	BiomePlains Biome = iota
	BiomeDesert
	BiomeForest
	BiomeMountains
	BiomeWater
	BiomeDeepWater
)

func (b Biome) String() string {
	switch b {
	case BiomePlains:
		return "plains"
	case BiomeDesert:
		return "desert"
	case BiomeForest:
		return "forest"
	case BiomeMountains:
		return "mountains"
	case BiomeWater:
		return "water"
	case BiomeDeepWater:
		return "deep_water"
	default:
		return fmt.Sprintf("biome(%d)", int(b))
	}
}

// Пороги высоты
const (
	DeepWaterMax    = 0.20
	ShallowWaterMax = 0.30
	MountainStart   = 0.80
)

// Palette ID типов предметов для каждого вида местности. Нулевой ID
// означает, что предмет не ставится.
type Palette struct {
	DeepWater uint32 `yaml:"deep_water"`
	Water     uint32 `yaml:"water"`
	Sand      uint32 `yaml:"sand"`
	Grass     uint32 `yaml:"grass"`
	Dirt      uint32 `yaml:"dirt"`
	Stone     uint32 `yaml:"stone"`

	Tree   uint32 `yaml:"tree"`
	Cactus uint32 `yaml:"cactus"`
	Rock   uint32 `yaml:"rock"`
}

// Generator генерирует ландшафт
type Generator struct {
	Seed          int64
	ForestDensity float64 // шанс дерева на равнине
	Palette       Palette

	height noiseField
	biome  noiseField
	log    *logging.Logger
}

// New создаёт генератор с масштабами шума по умолчанию
func New(seed int64, palette Palette) *Generator {
	return &Generator{
		Seed:          seed,
		ForestDensity: 0.05,
		Palette:       palette,
		height:        newNoiseField(seed, 0.05),
		biome:         newNoiseField(seed+42, 0.02),
		log:           logging.GetComponentLogger("mapgen"),
	}
}

// BiomeAt определяет местность по значениям шума
func (g *Generator) BiomeAt(x, y int64) Biome {
	return biomeFor(g.height.at(x, y), g.biome.at(x, y))
}

func biomeFor(height, biomeValue float64) Biome {
	switch {
	case height < DeepWaterMax:
		return BiomeDeepWater
	case height < ShallowWaterMax:
		return BiomeWater
	case height > MountainStart:
		return BiomeMountains
	case biomeValue < 0.35:
		return BiomeDesert
	case biomeValue > 0.65:
		return BiomeForest
	default:
		return BiomePlains
	}
}

func (g *Generator) groundFor(b Biome) uint32 {
	switch b {
	case BiomeDeepWater:
		return g.Palette.DeepWater
	case BiomeWater:
		return g.Palette.Water
	case BiomeDesert:
		return g.Palette.Sand
	case BiomeMountains:
		return g.Palette.Stone
	case BiomeForest:
		return g.Palette.Dirt
	default:
		return g.Palette.Grass
	}
}

func (g *Generator) decorationFor(b Biome, rng *rand.Rand) uint32 {
	switch {
	case b == BiomeForest && rng.Float64() < 0.15:
		return g.Palette.Tree
	case b == BiomePlains && rng.Float64() < g.ForestDensity:
		return g.Palette.Tree
	case b == BiomeDesert && rng.Float64() < 0.02:
		return g.Palette.Cactus
	case b == BiomeMountains && rng.Float64() < 0.1:
		return g.Palette.Rock
	}
	return 0
}

// Tile строит тайл для позиции. Один и тот же сид и позиция дают один и тот же тайл.
// Типы, которых нет в реестре, пропускаются; может вернуться пустой тайл.
func (g *Generator) Tile(reg *item.Registry, pos vec.Position) *world.Tile {
	rng := rand.New(rand.NewSource(g.Seed + pos.X*31 + pos.Y*17 + int64(pos.Z)*7))
	b := g.BiomeAt(pos.X, pos.Y)

	t := world.NewTile(pos)
	for _, id := range []uint32{g.groundFor(b), g.decorationFor(b, rng)} {
		if id == 0 {
			continue
		}
		if it, ok := reg.Create(id, 0); ok {
			t.AddItem(it)
		}
	}
	return t
}

// Fill заполняет прямоугольник [from, to] на этаже from.Z и коммитит
// результат в историю одной группой AddMapItem. Возвращает число тайлов.
func (g *Generator) Fill(h *history.History, from, to vec.Position) (int, error) {
	if from.X > to.X || from.Y > to.Y {
		return 0, fmt.Errorf("пустая область %v - %v", from, to)
	}
	to.Z = from.Z
	if !from.InBounds() || !to.InBounds() {
		return 0, fmt.Errorf("область %v - %v выходит за карту", from, to)
	}

	reg := h.Map().Registry()
	group := history.NewActionGroup(history.ActionAddMapItem, fmt.Sprintf("генерация %v - %v", from, to))
	action := history.NewAction()

	for x := from.X; x <= to.X; x++ {
		for y := from.Y; y <= to.Y; y++ {
			t := g.Tile(reg, vec.NewPosition(x, y, from.Z))
			if t.IsEmpty() {
				continue
			}
			action.Add(history.NewSetTile(t))
		}
	}

	if action.Empty() {
		g.log.Warn("генерация %v - %v: палитра не дала ни одного предмета", from, to)
		return 0, nil
	}
	group.Add(action)
	h.Commit(group)

	g.log.Info("сгенерировано тайлов: %d (%v - %v, сид %d)", action.Len(), from, to, g.Seed)
	return action.Len(), nil
}
