package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/map-editor/internal/logging"
	"github.com/annel0/map-editor/internal/metrics"
	"github.com/annel0/map-editor/internal/vec"
	"github.com/annel0/map-editor/internal/world"
	"github.com/annel0/map-editor/internal/world/item"
)

var (
	// ErrStoreClosed операция над закрытым хранилищем
	ErrStoreClosed = errors.New("хранилище закрыто")
	// ErrNoMap в хранилище нет сохранённой карты
	ErrNoMap = errors.New("карта не найдена в хранилище")
)

const (
	tilePrefix = "tile:"
	metaKey    = "map:meta"

	encodingRaw  byte = 0
	encodingZstd byte = 1
)

// Options параметры хранилища
type Options struct {
	// Compression сжимать записи zstd
	Compression bool
	// CacheEntries размер кэша прочитанных тайлов, 0 отключает кэш
	CacheEntries int64
	Metrics      *metrics.StorageMetrics
	// InMemory база без файлов на диске (тесты)
	InMemory bool
}

// MapStore хранилище тайлов карты в BadgerDB. Ключ тайла: "tile:" + z, x, y
// в big-endian, значение: байт кодировки + JSON записи. Безопасно для
// использования из нескольких горутин: запись исключительная, чтение и
// заполнение кэша идут под разделяемой блокировкой, поэтому кэш не получает
// запись старше последнего SaveTile. К самой карте не обращается.
type MapStore struct {
	db       *badger.DB
	dbPath   string
	mutex    sync.RWMutex
	isReady  bool
	registry *item.Registry

	compress     bool
	compressor   *zstd.Encoder
	decompressor *zstd.Decoder

	cache   *ristretto.Cache[string, *TileRecord]
	metrics *metrics.StorageMetrics
	log     *logging.Logger
}

// Open открывает (или создаёт) хранилище в каталоге path
func Open(path string, registry *item.Registry, opts Options) (*MapStore, error) {
	bopts := badger.DefaultOptions(path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	s := &MapStore{
		db:       db,
		dbPath:   path,
		isReady:  true,
		registry: registry,
		compress: opts.Compression,
		metrics:  opts.Metrics,
		log:      logging.GetStorageLogger(),
	}

	s.compressor, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	s.decompressor, err = zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	if opts.CacheEntries > 0 {
		s.cache, err = ristretto.NewCache(&ristretto.Config[string, *TileRecord]{
			NumCounters: opts.CacheEntries * 10,
			MaxCost:     opts.CacheEntries,
			BufferItems: 64,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("не удалось создать кэш тайлов: %w", err)
		}
	}

	s.log.Info("хранилище карты открыто: %s (сжатие: %t, кэш: %d)", path, opts.Compression, opts.CacheEntries)
	return s, nil
}

// Close закрывает хранилище
func (s *MapStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isReady {
		return nil
	}
	s.isReady = false

	if s.cache != nil {
		s.cache.Close()
	}
	s.compressor.Close()
	s.decompressor.Close()
	return s.db.Close()
}

func tileKey(pos vec.Position) []byte {
	key := make([]byte, len(tilePrefix)+5)
	n := copy(key, tilePrefix)
	key[n] = byte(pos.Z)
	binary.BigEndian.PutUint16(key[n+1:], uint16(pos.X))
	binary.BigEndian.PutUint16(key[n+3:], uint16(pos.Y))
	return key
}

func (s *MapStore) encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации: %w", err)
	}
	if !s.compress {
		return append([]byte{encodingRaw}, data...), nil
	}
	return s.compressor.EncodeAll(data, []byte{encodingZstd}), nil
}

func (s *MapStore) decode(val []byte, v any) error {
	if len(val) == 0 {
		return fmt.Errorf("пустое значение записи")
	}
	data := val[1:]
	switch val[0] {
	case encodingRaw:
	case encodingZstd:
		var err error
		data, err = s.decompressor.DecodeAll(data, nil)
		if err != nil {
			return fmt.Errorf("ошибка распаковки: %w", err)
		}
	default:
		return fmt.Errorf("неизвестная кодировка записи %d", val[0])
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("ошибка десериализации: %w", err)
	}
	return nil
}

// SaveTile сохраняет тайл. Пустой тайл удаляет запись.
func (s *MapStore) SaveTile(t *world.Tile) error {
	if t.IsEmpty() {
		return s.DeleteTile(t.Position())
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.isReady {
		return ErrStoreClosed
	}

	pos := t.Position()
	if !pos.InBounds() {
		return fmt.Errorf("позиция %v вне карты", pos)
	}
	data, err := s.encode(EncodeTile(t))
	if err != nil {
		return fmt.Errorf("тайл %v: %w", pos, err)
	}

	key := tileKey(pos)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	s.invalidate(key)
	s.metrics.TileWritten(len(data))
	return nil
}

// LoadTile читает тайл. Отсутствие записи не ошибка: возвращается nil, nil.
func (s *MapStore) LoadTile(pos vec.Position) (*world.Tile, error) {
	rec, err := s.loadRecord(pos)
	if err != nil || rec == nil {
		return nil, err
	}
	t, skipped := rec.Decode(s.registry)
	if skipped > 0 {
		s.log.Debug("тайл %v: пропущено предметов неизвестных типов: %d", pos, skipped)
	}
	return t, nil
}

func (s *MapStore) loadRecord(pos vec.Position) (*TileRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isReady {
		return nil, ErrStoreClosed
	}
	if !pos.InBounds() {
		return nil, nil
	}

	key := tileKey(pos)
	if s.cache != nil {
		if rec, ok := s.cache.Get(string(key)); ok {
			s.metrics.CacheHit()
			return rec, nil
		}
		s.metrics.CacheMiss()
	}

	var rec TileRecord
	err := s.db.View(func(txn *badger.Txn) error {
		it, err := txn.Get(key)
		if err != nil {
			return err
		}
		return it.Value(func(val []byte) error {
			return s.decode(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения тайла %v из BadgerDB: %w", pos, err)
	}

	s.metrics.TileRead()
	if s.cache != nil {
		s.cache.Set(string(key), &rec, 1)
	}
	return &rec, nil
}

// DeleteTile удаляет запись тайла
func (s *MapStore) DeleteTile(pos vec.Position) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.isReady {
		return ErrStoreClosed
	}
	if !pos.InBounds() {
		return nil
	}

	key := tileKey(pos)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления из BadgerDB: %w", err)
	}
	s.invalidate(key)
	s.metrics.TileDeleted()
	return nil
}

func (s *MapStore) invalidate(key []byte) {
	if s.cache != nil {
		s.cache.Del(string(key))
	}
}

// SaveMap полностью перезаписывает сохранённую карту: метаданные и все непустые тайлы
func (s *MapStore) SaveMap(m *world.Map) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.isReady {
		return ErrStoreClosed
	}

	if err := s.db.DropPrefix([]byte(tilePrefix)); err != nil {
		return fmt.Errorf("ошибка очистки тайлов: %w", err)
	}
	if s.cache != nil {
		s.cache.Clear()
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	count := 0
	for loc := range m.Tiles() {
		data, err := s.encode(EncodeTile(loc.Tile()))
		if err != nil {
			return fmt.Errorf("тайл %v: %w", loc.Position(), err)
		}
		if err := wb.Set(tileKey(loc.Position()), data); err != nil {
			return fmt.Errorf("ошибка записи тайла %v: %w", loc.Position(), err)
		}
		s.metrics.TileWritten(len(data))
		count++
	}

	meta, err := s.encode(metaOf(m, count))
	if err != nil {
		return fmt.Errorf("метаданные карты: %w", err)
	}
	if err := wb.Set([]byte(metaKey), meta); err != nil {
		return fmt.Errorf("ошибка записи метаданных: %w", err)
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	s.log.Info("карта %q сохранена: тайлов %d", m.Name, count)
	return nil
}

// LoadMap читает сохранённую карту целиком. Если карты нет, возвращает ErrNoMap.
func (s *MapStore) LoadMap() (*world.Map, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isReady {
		return nil, ErrStoreClosed
	}

	m := world.NewMap(s.registry)
	skipped := 0
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		metaItem, err := txn.Get([]byte(metaKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoMap
		}
		if err != nil {
			return err
		}
		var meta MapMeta
		if err := metaItem.Value(func(val []byte) error { return s.decode(val, &meta) }); err != nil {
			return fmt.Errorf("метаданные карты: %w", err)
		}
		meta.apply(m)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(tilePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec TileRecord
			if err := it.Item().Value(func(val []byte) error { return s.decode(val, &rec) }); err != nil {
				return fmt.Errorf("тайл %x: %w", it.Item().Key(), err)
			}
			t, n := rec.Decode(s.registry)
			skipped += n
			if t.IsEmpty() {
				continue
			}
			m.InsertTile(t)
			count++
		}
		return nil
	})
	if errors.Is(err, ErrNoMap) {
		return nil, ErrNoMap
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки карты: %w", err)
	}

	if skipped > 0 {
		s.log.Warn("при загрузке пропущено предметов неизвестных типов: %d", skipped)
	}
	s.log.Info("карта %q загружена: тайлов %d", m.Name, count)
	return m, nil
}
