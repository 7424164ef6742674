package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig возвращается Validate при недопустимых значениях
var ErrInvalidConfig = errors.New("invalid config")

// Значения по умолчанию
const (
	DefaultVoxelSize              = 100.0
	DefaultRenderDistance         = 4.0
	DefaultDestroyExtent          = 2.0
	DefaultMaxApplicationsPerTick = 8
	DefaultTickRate               = 60
	DefaultGenerator              = "flat"
	DefaultAPIPort                = 8090
	DefaultServiceName            = "voxel-engine"
	DefaultLogLevel               = "info"
)

// Config корневая структура конфигурации приложения.
// Поддерживаются YAML и TOML, формат выбирается по расширению файла.
type Config struct {
	World     WorldConfig     `yaml:"world" toml:"world"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
}

// WorldConfig содержит параметры мира. Расстояния в чанках.
// Поля-указатели различают "не задано" и допустимый ноль/false.
type WorldConfig struct {
	VoxelSize              float64 `yaml:"voxel_size" toml:"voxel_size"`
	RenderDistance         float64 `yaml:"render_distance" toml:"render_distance"`
	DestroyExtent          float64 `yaml:"destroy_extent" toml:"destroy_extent"`
	MaxApplicationsPerTick *int    `yaml:"max_applications_per_tick" toml:"max_applications_per_tick"`
	WorkerCount            int     `yaml:"worker_count" toml:"worker_count"`
	Async                  *bool   `yaml:"async" toml:"async"`
	OccludeFaceBorder      *bool   `yaml:"occlude_face_border" toml:"occlude_face_border"`
	TickRate               int     `yaml:"tick_rate" toml:"tick_rate"`
	Generator              string  `yaml:"generator" toml:"generator"`
	Seed                   int64   `yaml:"seed" toml:"seed"`
	FlatHeight             int     `yaml:"flat_height" toml:"flat_height"`
}

type ServerConfig struct {
	APIPort        int   `yaml:"api_port" toml:"api_port"`
	MetricsEnabled *bool `yaml:"metrics_enabled" toml:"metrics_enabled"`
}

type LoggingConfig struct {
	Level     string `yaml:"level" toml:"level"`
	Directory string `yaml:"directory" toml:"directory"`

	// Пороги по компонентам: world, registry, mesher, workers, server
	Components map[string]string `yaml:"components" toml:"components"`
}

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled" toml:"enabled"`
	ServiceName string  `yaml:"service_name" toml:"service_name"`
	Endpoint    string  `yaml:"endpoint" toml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio" toml:"sample_ratio"`
}

// Budget возвращает бюджет применений за тик
func (w *WorldConfig) Budget() int {
	if w.MaxApplicationsPerTick == nil {
		return DefaultMaxApplicationsPerTick
	}
	return *w.MaxApplicationsPerTick
}

// IsAsync возвращает true, если задачи выполняются в пуле воркеров
func (w *WorldConfig) IsAsync() bool {
	return w.Async == nil || *w.Async
}

// OccludeBorder возвращает режим окклюзии граней на границе чанка
func (w *WorldConfig) OccludeBorder() bool {
	return w.OccludeFaceBorder == nil || *w.OccludeFaceBorder
}

// GetAPIPort возвращает порт API с поддержкой fallback значений
func (s *ServerConfig) GetAPIPort() int {
	return getPortWithEnvFallback(s.APIPort, "VOXEL_API_PORT", DefaultAPIPort)
}

// IsMetricsEnabled возвращает true, если /metrics включён
func (s *ServerConfig) IsMetricsEnabled() bool {
	return s.MetricsEnabled == nil || *s.MetricsEnabled
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults заполняет незаданные поля
func (c *Config) ApplyDefaults() {
	w := &c.World
	if w.VoxelSize == 0 {
		w.VoxelSize = DefaultVoxelSize
	}
	if w.RenderDistance == 0 {
		w.RenderDistance = DefaultRenderDistance
	}
	if w.DestroyExtent == 0 {
		w.DestroyExtent = DefaultDestroyExtent
	}
	if w.MaxApplicationsPerTick == nil {
		budget := DefaultMaxApplicationsPerTick
		w.MaxApplicationsPerTick = &budget
	}
	if w.WorkerCount == 0 {
		w.WorkerCount = runtime.NumCPU()
	}
	if w.TickRate == 0 {
		w.TickRate = DefaultTickRate
	}
	if w.Generator == "" {
		w.Generator = DefaultGenerator
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = DefaultServiceName
	}
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	w := &c.World
	switch {
	case w.VoxelSize <= 0:
		return fmt.Errorf("%w: world.voxel_size must be positive", ErrInvalidConfig)
	case w.RenderDistance < 0:
		return fmt.Errorf("%w: world.render_distance is negative", ErrInvalidConfig)
	case w.DestroyExtent < 0:
		return fmt.Errorf("%w: world.destroy_extent is negative", ErrInvalidConfig)
	case w.Budget() < 0:
		return fmt.Errorf("%w: world.max_applications_per_tick is negative", ErrInvalidConfig)
	case w.WorkerCount < 0:
		return fmt.Errorf("%w: world.worker_count is negative", ErrInvalidConfig)
	case w.TickRate < 0:
		return fmt.Errorf("%w: world.tick_rate is negative", ErrInvalidConfig)
	}

	switch strings.ToLower(w.Generator) {
	case "", "flat", "noise":
	default:
		return fmt.Errorf("%w: unknown world.generator %q", ErrInvalidConfig, w.Generator)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: telemetry.sample_ratio must be within [0, 1]", ErrInvalidConfig)
	}

	if c.Server.APIPort < 0 || c.Server.APIPort > 65535 {
		return fmt.Errorf("%w: server.api_port out of range", ErrInvalidConfig)
	}
	return nil
}

// Load читает файл конфигурации (YAML или TOML по расширению).
// Если path == "", пытается прочитать путь из ENV VOXEL_CONFIG,
// иначе возвращает конфигурацию по умолчанию.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse разбирает конфигурацию. ext задаёт расширение файла (".toml", ".yaml", ".yml").
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
