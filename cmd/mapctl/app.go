package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/map-editor/internal/config"
	"github.com/annel0/map-editor/internal/history"
	"github.com/annel0/map-editor/internal/logging"
	"github.com/annel0/map-editor/internal/mapgen"
	"github.com/annel0/map-editor/internal/metrics"
	"github.com/annel0/map-editor/internal/storage"
	"github.com/annel0/map-editor/internal/vec"
	"github.com/annel0/map-editor/internal/world"
	"github.com/annel0/map-editor/internal/world/item"
)

// app связывает конфигурацию, реестр предметов, хранилище и метрики
type app struct {
	cfg      *config.Config
	registry *item.Registry
	store    *storage.MapStore

	promReg        *prometheus.Registry
	historyMetrics *metrics.HistoryMetrics
}

func newApp(cfg *config.Config) (*app, error) {
	registry := item.NewRegistry()
	if err := registry.LoadCatalog(cfg.Items.Catalog); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("ошибка загрузки каталога предметов: %w", err)
		}
		logging.Warn("каталог предметов %s не найден, все предметы будут пропущены", cfg.Items.Catalog)
	}

	promReg := prometheus.NewRegistry()
	store, err := storage.Open(cfg.Storage.GetStoragePath(), registry, storage.Options{
		Compression:  cfg.Storage.Compression,
		CacheEntries: cfg.Storage.CacheEntries,
		Metrics:      metrics.NewStorageMetrics(promReg),
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:            cfg,
		registry:       registry,
		store:          store,
		promReg:        promReg,
		historyMetrics: metrics.NewHistoryMetrics(promReg),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// loadOrCreate читает карту из хранилища или создаёт новую по конфигурации
func (a *app) loadOrCreate() (*world.Map, error) {
	m, err := a.store.LoadMap()
	if errors.Is(err, storage.ErrNoMap) {
		m = world.NewMap(a.registry)
		m.Name = a.cfg.Editor.Name
		m.Width = a.cfg.Editor.Width
		m.Height = a.cfg.Editor.Height
		logging.Info("🆕 Создана новая карта %q (%dx%d)", m.Name, m.Width, m.Height)
		return m, nil
	}
	return m, err
}

func (a *app) newHistory(m *world.Map) *history.History {
	return history.New(m,
		history.WithLimit(a.cfg.Editor.GetHistoryLimit()),
		history.WithObserver(a.historyMetrics),
	)
}

// Generate заполняет область ландшафтом и сохраняет карту
func (a *app) Generate(from, to vec.Position) (int, error) {
	m, err := a.loadOrCreate()
	if err != nil {
		return 0, err
	}
	h := a.newHistory(m)
	gen := mapgen.New(a.cfg.Mapgen.Seed, a.cfg.Mapgen.Palette)

	n, err := gen.Fill(h, from, to)
	if err != nil {
		return 0, err
	}
	if err := a.store.SaveMap(m); err != nil {
		return 0, err
	}
	return n, nil
}

// Export выгружает сохранённую карту в поток тайлов
func (a *app) Export(path string) (int, error) {
	m, err := a.store.LoadMap()
	if err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать %s: %w", path, err)
	}
	n, err := storage.WriteStream(f, m)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Import заменяет сохранённую карту содержимым потока тайлов
func (a *app) Import(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("не удалось открыть %s: %w", path, err)
	}
	defer f.Close()

	m, err := storage.ReadStream(f, a.registry)
	if err != nil {
		return 0, err
	}
	if err := a.store.SaveMap(m); err != nil {
		return 0, err
	}
	return m.TileCount(), nil
}

// ServeMetrics отдаёт /metrics до отмены ctx
func (a *app) ServeMetrics(ctx context.Context) error {
	return metrics.Serve(ctx, a.cfg.Metrics.GetMetricsAddr(), a.promReg)
}

// mapStats сводка по карте
type mapStats struct {
	Name      string
	Width     uint16
	Height    uint16
	Tiles     int
	Items     int
	Towns     int
	PerFloor  map[int32]int
	ItemTypes map[uint32]int
}

// Stats собирает сводку сохранённой карты
func (a *app) Stats() (*mapStats, error) {
	m, err := a.store.LoadMap()
	if err != nil {
		return nil, err
	}
	return collectStats(m), nil
}

func collectStats(m *world.Map) *mapStats {
	s := &mapStats{
		Name:      m.Name,
		Width:     m.Width,
		Height:    m.Height,
		Towns:     len(m.Towns()),
		PerFloor:  make(map[int32]int),
		ItemTypes: make(map[uint32]int),
	}
	for loc := range m.Tiles() {
		t := loc.Tile()
		s.Tiles++
		s.PerFloor[loc.Position().Z]++
		if g := t.Ground(); g != nil {
			s.Items++
			s.ItemTypes[g.TypeID()]++
		}
		for _, it := range t.Items() {
			s.Items++
			s.ItemTypes[it.TypeID()]++
		}
	}
	return s
}

func (s *mapStats) Print(w io.Writer) {
	fmt.Fprintf(w, "📊 Map %q (%dx%d)\n", s.Name, s.Width, s.Height)
	fmt.Fprintf(w, "Tiles: %d\n", s.Tiles)
	fmt.Fprintf(w, "Items: %d\n", s.Items)
	fmt.Fprintf(w, "Towns: %d\n", s.Towns)

	fmt.Fprintln(w, "\nBy floor:")
	floors := make([]int32, 0, len(s.PerFloor))
	for z := range s.PerFloor {
		floors = append(floors, z)
	}
	sort.Slice(floors, func(i, j int) bool { return floors[i] < floors[j] })
	for _, z := range floors {
		fmt.Fprintf(w, "  z=%d: %d tiles\n", z, s.PerFloor[z])
	}

	fmt.Fprintln(w, "\nBy item type:")
	ids := make([]uint32, 0, len(s.ItemTypes))
	for id := range s.ItemTypes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fmt.Fprintf(w, "  %d: %d\n", id, s.ItemTypes[id])
	}
}

// parseRegion разбирает углы области вида "x,y,z" и "x,y[,z]"
func parseRegion(from, to string) (vec.Position, vec.Position, error) {
	f, err := parsePosition(from, vec.GroundLayer)
	if err != nil {
		return vec.Position{}, vec.Position{}, fmt.Errorf("invalid -from: %w", err)
	}
	t, err := parsePosition(to, f.Z)
	if err != nil {
		return vec.Position{}, vec.Position{}, fmt.Errorf("invalid -to: %w", err)
	}
	return f, t, nil
}

// parsePosition парсит строку "x,y" или "x,y,z"
func parsePosition(s string, defaultZ int32) (vec.Position, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return vec.Position{}, fmt.Errorf("ожидается x,y[,z]: %q", s)
	}
	values := make([]int64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return vec.Position{}, fmt.Errorf("координата %q: %w", part, err)
		}
		values[i] = v
	}
	z := defaultZ
	if len(values) == 3 {
		z = int32(values[2])
	}
	return vec.NewPosition(values[0], values[1], z), nil
}
