package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/middleware"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world"
)

// WorldStatsProvider источник статистики мира
type WorldStatsProvider interface {
	Stats() world.Stats
	ChunkInfo(pos vec.Vec3) (world.ChunkInfo, bool)
}

// HostStatsProvider источник статистики хоста рендера
type HostStatsProvider interface {
	Stats() world.HeadlessHostStats
}

// GenericResponse общий формат ответа API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Config содержит конфигурацию сервера статуса
type Config struct {
	Port           int
	World          WorldStatsProvider
	Host           HostStatsProvider // может быть nil
	MetricsEnabled bool
	ServiceName    string // имя сервиса в спанах otelgin

	// Регистр для HTTP-метрик и источник для /metrics. При nil используется глобальный регистр Prometheus.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// StatusServer обслуживает HTTP API состояния мира
type StatusServer struct {
	router  *gin.Engine
	server  *http.Server
	world   WorldStatsProvider
	host    HostStatsProvider
	metrics *ServerMetrics
	logger  *logging.Logger
}

// NewStatusServer создаёт сервер и настраивает маршруты
func NewStatusServer(cfg Config) (*StatusServer, error) {
	if cfg.World == nil {
		return nil, errors.New("status server: world is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 8090
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "voxel-engine"
	}
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	// Устанавливаем режим релиза для gin
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))

	logger := logging.GetServerLogger()
	router.Use(middleware.NewRequestLogger(logger).Handler())

	if cfg.MetricsEnabled {
		promMw, err := middleware.NewPrometheusMiddleware("status_api", cfg.Registerer, cfg.Gatherer)
		if err != nil {
			return nil, fmt.Errorf("register http metrics: %w", err)
		}
		router.Use(promMw.Handler())
		promMw.RegisterMetricsEndpoint(router)
	}

	s := &StatusServer{
		router:  router,
		world:   cfg.World,
		host:    cfg.Host,
		metrics: NewServerMetrics(),
		logger:  logger,
	}
	s.server = &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.setupRoutes()
	return s, nil
}

// setupRoutes настраивает маршруты API
func (s *StatusServer) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/world/stats", s.handleWorldStats)
		api.GET("/world/chunks/:x/:y/:z", s.handleChunkInfo)
		api.GET("/server", s.handleServerInfo)
	}
}

// Handler возвращает http.Handler сервера
func (s *StatusServer) Handler() http.Handler {
	return s.router
}

// Addr возвращает адрес прослушивания
func (s *StatusServer) Addr() string {
	return s.server.Addr
}

// Start запускает сервер и блокируется до остановки.
// Штатная остановка через Shutdown возвращает nil.
func (s *StatusServer) Start() error {
	s.logger.Info("🌐 API статуса доступен на %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown плавно останавливает сервер
func (s *StatusServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *StatusServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

func (s *StatusServer) handleWorldStats(c *gin.Context) {
	data := map[string]interface{}{
		"world": s.world.Stats(),
	}
	if s.host != nil {
		data["host"] = s.host.Stats()
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика мира получена",
		Data:    data,
	})
}

func (s *StatusServer) handleChunkInfo(c *gin.Context) {
	var coords [3]int
	for i, name := range []string{"x", "y", "z"} {
		v, err := strconv.Atoi(c.Param(name))
		if err != nil {
			c.JSON(http.StatusBadRequest, GenericResponse{
				Success: false,
				Message: fmt.Sprintf("Неверная координата %s: %q", name, c.Param(name)),
			})
			return
		}
		coords[i] = v
	}

	pos := vec.Vec3{X: coords[0], Y: coords[1], Z: coords[2]}
	info, ok := s.world.ChunkInfo(pos)
	if !ok {
		c.JSON(http.StatusNotFound, GenericResponse{
			Success: false,
			Message: "Чанк не загружен",
		})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Состояние чанка получено",
		Data:    info,
	})
}

// handleServerInfo возвращает метрики процесса
func (s *StatusServer) handleServerInfo(c *gin.Context) {
	rss, _ := s.metrics.GetRSS()
	cpuPercent, _ := s.metrics.GetCPUUsage()

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере получена",
		Data: map[string]interface{}{
			"uptime":      s.metrics.GetUptime(),
			"rss_mb":      fmt.Sprintf("%.2f", rss),
			"cpu_percent": fmt.Sprintf("%.2f", cpuPercent),
			"cpu_count":   s.metrics.GetCPUCount(),
			"server_time": time.Now().Unix(),
			"memory":      s.metrics.GetDetailedMemoryStats(),
		},
	})
}
