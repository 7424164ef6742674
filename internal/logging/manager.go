package logging

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Компоненты движка, у каждого свой логгер и свой файл логов
const (
	ComponentWorld    = "world"
	ComponentRegistry = "registry"
	ComponentMesher   = "mesher"
	ComponentWorkers  = "workers"
	ComponentServer   = "server"
)

// LoggerManager хранит логгеры компонентов и их пороги.
// Порог можно задать до создания логгера: он применится при первом запросе.
type LoggerManager struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
	levels  map[string]LogLevel
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{
			loggers: make(map[string]*Logger),
			levels:  make(map[string]LogLevel),
		}
	})
	return globalManager
}

// GetLogger возвращает логгер компонента, создавая его при необходимости
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.RLock()
	if logger, exists := lm.loggers[component]; exists {
		lm.mu.RUnlock()
		return logger, nil
	}
	lm.mu.RUnlock()

	lm.mu.Lock()
	defer lm.mu.Unlock()

	if logger, exists := lm.loggers[component]; exists {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger for %s: %w", component, err)
	}
	if level, ok := lm.levels[component]; ok {
		logger.SetLevels(level, DEBUG)
	}

	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger возвращает логгер компонента. Если файл логов открыть не удалось,
// возвращается консольный логгер.
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err != nil {
		defaultLogger.Warn("Логгер %s работает без файла: %v", component, err)
		return newConsoleLogger(component, defaultLogger.ConsoleLevel())
	}
	return logger
}

// SetComponentLevel задаёт порог консоли для компонента, в том числе ещё не созданного
func (lm *LoggerManager) SetComponentLevel(component string, level LogLevel) {
	lm.mu.Lock()
	lm.levels[component] = level
	logger := lm.loggers[component]
	lm.mu.Unlock()

	if logger != nil {
		logger.SetLevels(level, DEBUG)
	}
}

// ConfigureLevels применяет пороги из конфигурации: имя компонента -> уровень.
// Возвращает ошибку для нераспознанного уровня, остальные записи применяются.
func (lm *LoggerManager) ConfigureLevels(levels map[string]string) error {
	var bad []string
	for component, raw := range levels {
		level, ok := lookupLevel(raw)
		if !ok {
			bad = append(bad, fmt.Sprintf("%s=%q", component, raw))
			continue
		}
		lm.SetComponentLevel(component, level)
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("unknown log levels: %s", strings.Join(bad, ", "))
	}
	return nil
}

// lookupLevel как ParseLevel, но сообщает о нераспознанном значении
func lookupLevel(s string) (LogLevel, bool) {
	level := ParseLevel(s)
	if level == INFO && !strings.EqualFold(strings.TrimSpace(s), "info") {
		return INFO, false
	}
	return level, true
}

// CloseAll закрывает файлы всех логгеров
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var lastErr error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close logger for %s: %w", component, err)
		}
	}

	lm.loggers = make(map[string]*Logger)
	return lastErr
}

// ListComponents возвращает отсортированный список созданных логгеров
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

func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetWorldLogger() *Logger    { return GetComponentLogger(ComponentWorld) }
func GetRegistryLogger() *Logger { return GetComponentLogger(ComponentRegistry) }
func GetMesherLogger() *Logger   { return GetComponentLogger(ComponentMesher) }
func GetWorkerLogger() *Logger   { return GetComponentLogger(ComponentWorkers) }
func GetServerLogger() *Logger   { return GetComponentLogger(ComponentServer) }
