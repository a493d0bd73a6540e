package logging

import (
	"fmt"
	"sort"
	"sync"
)

// LoggerManager управляет логгерами компонентов поверх общего корневого логгера
type LoggerManager struct {
	mu      sync.RWMutex
	root    *Logger
	loggers map[string]*Logger
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров.
// До вызова Configure все логгеры ничего не пишут.
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{
			root:    NewNopLogger(),
			loggers: make(map[string]*Logger),
		}
	})
	return globalManager
}

// Configure пересоздаёт корневой логгер. Ранее выданные логгеры компонентов
// продолжают писать в старый корень, поэтому вызывать нужно при старте.
func (lm *LoggerManager) Configure(opts Options) error {
	root, err := NewLogger(opts)
	if err != nil {
		return fmt.Errorf("failed to create root logger: %w", err)
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	old := lm.root
	lm.root = root
	lm.loggers = make(map[string]*Logger)
	if old != nil {
		_ = old.Close()
	}
	return nil
}

// SetRoot подменяет корневой логгер (тесты)
func (lm *LoggerManager) SetRoot(root *Logger) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.root = root
	lm.loggers = make(map[string]*Logger)
}

// Root возвращает корневой логгер
func (lm *LoggerManager) Root() *Logger {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	return lm.root
}

// GetLogger возвращает логгер для компонента, создавая его при необходимости
func (lm *LoggerManager) GetLogger(component string) *Logger {
	lm.mu.RLock()
	if logger, exists := lm.loggers[component]; exists {
		lm.mu.RUnlock()
		return logger
	}
	lm.mu.RUnlock()

	lm.mu.Lock()
	defer lm.mu.Unlock()

	// Проверяем еще раз на случай гонки
	if logger, exists := lm.loggers[component]; exists {
		return logger
	}

	logger := lm.root.Named(component)
	lm.loggers[component] = logger
	return logger
}

// CloseAll сбрасывает и закрывает корневой логгер
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	err := lm.root.Close()
	lm.root = NewNopLogger()
	lm.loggers = make(map[string]*Logger)
	return err
}

// ListComponents возвращает отсортированный список компонентов
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// SetLogLevel устанавливает уровень логирования (общий для всех компонентов)
func (lm *LoggerManager) SetLogLevel(level LogLevel) {
	lm.Root().SetLevel(level)
}

// GetComponentLogger удобная обёртка над глобальным менеджером
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().GetLogger(component)
}

func GetWorldLogger() *Logger {
	return GetComponentLogger("world")
}

func GetHistoryLogger() *Logger {
	return GetComponentLogger("history")
}

func GetStorageLogger() *Logger {
	return GetComponentLogger("storage")
}

// InitDefaultLogger настраивает глобальный логгер
func InitDefaultLogger(opts Options) error {
	return GetLoggerManager().Configure(opts)
}

// CloseDefaultLogger закрывает глобальный логгер
func CloseDefaultLogger() {
	_ = GetLoggerManager().CloseAll()
}

func Trace(format string, args ...interface{}) {
	GetLoggerManager().Root().Trace(format, args...)
}

func Debug(format string, args ...interface{}) {
	GetLoggerManager().Root().Debug(format, args...)
}

func Info(format string, args ...interface{}) {
	GetLoggerManager().Root().Info(format, args...)
}

func Warn(format string, args ...interface{}) {
	GetLoggerManager().Root().Warn(format, args...)
}

func Error(format string, args ...interface{}) {
	GetLoggerManager().Root().Error(format, args...)
}
