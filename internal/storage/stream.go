package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/annel0/map-editor/internal/logging"
	"github.com/annel0/map-editor/internal/world"
	"github.com/annel0/map-editor/internal/world/item"
)

// streamMagic первая строка потока тайлов
const streamMagic = "mapeditor-tiles/1"

type streamHeader struct {
	Magic string   `json:"magic"`
	Meta  *MapMeta `json:"meta"`
}

// WriteStream пишет карту в w сжатым потоком: заголовок с метаданными,
// затем по одной JSON-записи на непустой тайл в порядке MapIterator.
// Возвращает число записанных тайлов.
func WriteStream(w io.Writer, m *world.Map) (int, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	bw := bufio.NewWriter(zw)
	enc := json.NewEncoder(bw)

	if err := enc.Encode(streamHeader{Magic: streamMagic, Meta: metaOf(m, m.TileCount())}); err != nil {
		zw.Close()
		return 0, fmt.Errorf("ошибка записи заголовка потока: %w", err)
	}

	count := 0
	for loc := range m.Tiles() {
		if err := enc.Encode(EncodeTile(loc.Tile())); err != nil {
			zw.Close()
			return count, fmt.Errorf("ошибка записи тайла %v: %w", loc.Position(), err)
		}
		count++
	}

	if err := bw.Flush(); err != nil {
		zw.Close()
		return count, fmt.Errorf("ошибка записи потока: %w", err)
	}
	if err := zw.Close(); err != nil {
		return count, fmt.Errorf("ошибка сжатия потока: %w", err)
	}
	return count, nil
}

// ReadStream читает поток, записанный WriteStream, в новую карту.
// Предметы неизвестных типов пропускаются.
func ReadStream(r io.Reader, registry *item.Registry) (*world.Map, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer zr.Close()

	dec := json.NewDecoder(bufio.NewReader(zr))

	var header streamHeader
	if err := dec.Decode(&header); err != nil {
		return nil, fmt.Errorf("ошибка чтения заголовка потока: %w", err)
	}
	if header.Magic != streamMagic {
		return nil, fmt.Errorf("неизвестный формат потока %q", header.Magic)
	}

	m := world.NewMap(registry)
	if header.Meta != nil {
		header.Meta.apply(m)
	}

	skipped := 0
	for {
		var rec TileRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения тайла: %w", err)
		}
		if !rec.Position.InBounds() {
			return nil, fmt.Errorf("тайл вне карты: %v", rec.Position)
		}
		t, n := rec.Decode(m.Registry())
		skipped += n
		if !t.IsEmpty() {
			m.InsertTile(t)
		}
	}

	if skipped > 0 {
		logging.GetStorageLogger().Warn("поток: пропущено предметов неизвестных типов: %d", skipped)
	}
	return m, nil
}
