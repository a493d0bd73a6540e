package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/map-editor/internal/history"
	"github.com/annel0/map-editor/internal/logging"
)

const namespace = "mapeditor"

// HistoryMetrics Prometheus-метрики истории правок. Подключается к History
// как наблюдатель: history.New(m, history.WithObserver(hm)).
type HistoryMetrics struct {
	commits   *prometheus.CounterVec
	undos     *prometheus.CounterVec
	redos     *prometheus.CounterVec
	changes   prometheus.Counter
	undoDepth prometheus.Gauge
	redoDepth prometheus.Gauge
}

// NewHistoryMetrics создаёт метрики и регистрирует их в reg
func NewHistoryMetrics(reg prometheus.Registerer) *HistoryMetrics {
	hm := &HistoryMetrics{
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "commits_total",
			Help:      "Число применённых групп действий по типу.",
		}, []string{"type"}),
		undos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "undo_total",
			Help:      "Число отменённых групп действий по типу.",
		}, []string{"type"}),
		redos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "redo_total",
			Help:      "Число повторённых групп действий по типу.",
		}, []string{"type"}),
		changes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "changes_committed_total",
			Help:      "Общее число изменений в применённых группах.",
		}),
		undoDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "undo_depth",
			Help:      "Групп доступно для отмены.",
		}),
		redoDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "redo_depth",
			Help:      "Групп доступно для повтора.",
		}),
	}
	reg.MustRegister(hm.commits, hm.undos, hm.redos, hm.changes, hm.undoDepth, hm.redoDepth)
	return hm
}

func (hm *HistoryMetrics) GroupCommitted(g *history.ActionGroup) {
	hm.commits.WithLabelValues(g.Type.String()).Inc()
	hm.changes.Add(float64(g.ChangeCount()))
}

func (hm *HistoryMetrics) GroupUndone(g *history.ActionGroup) {
	hm.undos.WithLabelValues(g.Type.String()).Inc()
}

func (hm *HistoryMetrics) GroupRedone(g *history.ActionGroup) {
	hm.redos.WithLabelValues(g.Type.String()).Inc()
}

func (hm *HistoryMetrics) StackChanged(undoDepth, redoDepth int) {
	hm.undoDepth.Set(float64(undoDepth))
	hm.redoDepth.Set(float64(redoDepth))
}

var _ history.Observer = (*HistoryMetrics)(nil)

// StorageMetrics счётчики хранилища тайлов. Методы безопасны на nil-получателе,
// чтобы хранилище работало и без метрик.
type StorageMetrics struct {
	tilesWritten prometheus.Counter
	tilesRead    prometheus.Counter
	tilesDeleted prometheus.Counter
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	bytesWritten prometheus.Counter
}

// NewStorageMetrics создаёт метрики хранилища и регистрирует их в reg
func NewStorageMetrics(reg prometheus.Registerer) *StorageMetrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      name,
			Help:      help,
		})
	}
	sm := &StorageMetrics{
		tilesWritten: counter("tiles_written_total", "Записано тайлов."),
		tilesRead:    counter("tiles_read_total", "Прочитано тайлов из базы."),
		tilesDeleted: counter("tiles_deleted_total", "Удалено тайлов."),
		cacheHits:    counter("cache_hits_total", "Попадания в кэш тайлов."),
		cacheMisses:  counter("cache_misses_total", "Промахи кэша тайлов."),
		bytesWritten: counter("bytes_written_total", "Байт записано после сжатия."),
	}
	reg.MustRegister(sm.tilesWritten, sm.tilesRead, sm.tilesDeleted, sm.cacheHits, sm.cacheMisses, sm.bytesWritten)
	return sm
}

func (sm *StorageMetrics) TileWritten(size int) {
	if sm == nil {
		return
	}
	sm.tilesWritten.Inc()
	sm.bytesWritten.Add(float64(size))
}

func (sm *StorageMetrics) TileRead() {
	if sm != nil {
		sm.tilesRead.Inc()
	}
}

func (sm *StorageMetrics) TileDeleted() {
	if sm != nil {
		sm.tilesDeleted.Inc()
	}
}

func (sm *StorageMetrics) CacheHit() {
	if sm != nil {
		sm.cacheHits.Inc()
	}
}

func (sm *StorageMetrics) CacheMiss() {
	if sm != nil {
		sm.cacheMisses.Inc()
	}
}

// Serve отдаёт /metrics на addr до отмены ctx
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error("Ошибка остановки Prometheus HTTP сервера: %v", err)
			return err
		}
		return nil
	}
}
