package main

import (
	"context"
	"flag"
	"log"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/annel0/voxel-engine/internal/api"
	"github.com/annel0/voxel-engine/internal/config"
	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/observability"
	"github.com/annel0/voxel-engine/internal/world"
	"github.com/annel0/voxel-engine/internal/world/block/implementations"
)

// version задаётся при сборке: -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to YAML/TOML config (or VOXEL_CONFIG)")
	orbit := flag.Float64("orbit", 3, "Orbit radius of the demo tracker, in chunks (0 = stand still)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем систему логирования
	logging.SetDefaultConsoleLevel(logging.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.Directory != "" {
		logging.SetLogDirectory(cfg.Logging.Directory)
	}
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	if err := logging.GetLoggerManager().ConfigureLevels(cfg.Logging.Components); err != nil {
		logging.Warn("Пороги логирования применены частично: %v", err)
	}

	logging.Info("🧊 Запуск voxel-engine...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry := observability.ShutdownFunc(observability.NoopShutdown)
	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err = observability.InitTelemetry(ctx, observability.Options{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: version,
			Endpoint:       cfg.Telemetry.Endpoint,
			SampleRatio:    cfg.Telemetry.SampleRatio,
		})
		if err != nil {
			logging.Error("❌ Ошибка инициализации OpenTelemetry: %v", err)
			shutdownTelemetry = observability.NoopShutdown
		}
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logging.Warn("Ошибка остановки OpenTelemetry: %v", err)
		}
	}()

	registry, err := implementations.NewDefaultRegistry()
	if err != nil {
		log.Fatalf("❌ Ошибка создания реестра блоков: %v", err)
	}

	var generator world.Generator
	switch strings.ToLower(cfg.World.Generator) {
	case "noise":
		generator = world.NewNoiseGenerator(registry, cfg.World.Seed)
	default:
		generator = world.NewFlatGenerator(registry, cfg.World.FlatHeight)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := world.Options{
		VoxelSize:              float32(cfg.World.VoxelSize),
		RenderDistance:         cfg.World.RenderDistance,
		DestroyExtent:          cfg.World.DestroyExtent,
		MaxApplicationsPerTick: cfg.World.Budget(),
		WorkerCount:            cfg.World.WorkerCount,
		Async:                  cfg.World.IsAsync(),
		OccludeFaceBorder:      cfg.World.OccludeBorder(),
		Registerer:             promRegistry,
	}

	host := world.NewHeadlessHost()
	w, err := world.NewWorld(registry, generator, host, opts)
	if err != nil {
		log.Fatalf("❌ Ошибка создания мира: %v", err)
	}

	chunkEdge := float64(world.ChunkSize) * float64(opts.VoxelSize)
	tracker := world.NewPointTracker(mgl32.Vec3{0, 0, float32(chunkEdge / 2)})
	w.RegisterTracker(tracker)

	server, err := api.NewStatusServer(api.Config{
		Port:           cfg.Server.GetAPIPort(),
		World:          w,
		Host:           host,
		MetricsEnabled: cfg.Server.IsMetricsEnabled(),
		ServiceName:    cfg.Telemetry.ServiceName,
		Registerer:     promRegistry,
		Gatherer:       promRegistry,
	})
	if err != nil {
		log.Fatalf("❌ Ошибка создания API статуса: %v", err)
	}

	logging.Info("📡 Конфигурация: generator=%s voxel=%.1f render=%.1f extent=%.1f budget=%d async=%v tick=%dHz",
		cfg.World.Generator, cfg.World.VoxelSize, cfg.World.RenderDistance, cfg.World.DestroyExtent,
		cfg.World.Budget(), cfg.World.IsAsync(), cfg.World.TickRate)

	g, gctx := errgroup.WithContext(ctx)

	// Поток тика: единственный владелец World
	g.Go(func() error {
		defer w.Destroy()
		runTickLoop(gctx, w, tracker, cfg.World.TickRate, *orbit*chunkEdge)
		return nil
	})

	g.Go(func() error {
		return server.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logging.Debug("Остановка API статуса...")
		return server.Shutdown(shutdownCtx)
	})

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   ❤️  Health check: http://localhost%s/health", server.Addr())
	logging.Info("   📊 Статистика мира: http://localhost%s/api/world/stats", server.Addr())

	if err := g.Wait(); err != nil {
		logging.Error("❌ Сервер завершился с ошибкой: %v", err)
		os.Exit(1)
	}
	logging.Info("👋 Сервер успешно остановлен")
}

// runTickLoop вызывает Tick с частотой tickRate и двигает трекер по окружности
func runTickLoop(ctx context.Context, w *world.World, tracker *world.PointTracker, tickRate int, radius float64) {
	if tickRate <= 0 {
		tickRate = config.DefaultTickRate
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	center := tracker.Position()
	start := time.Now()
	lastReport := start

	for {
		select {
		case <-ctx.Done():
			logging.Debug("Поток тика остановлен")
			return
		case now := <-ticker.C:
			if radius > 0 {
				// Полный оборот за минуту
				angle := now.Sub(start).Seconds() * 2 * math.Pi / 60
				tracker.SetPosition(center.Add(mgl32.Vec3{
					float32(radius * math.Cos(angle)),
					float32(radius * math.Sin(angle)),
					0,
				}))
			}

			w.Tick()

			if now.Sub(lastReport) >= 10*time.Second {
				s := w.Stats()
				logging.Info("🌍 tick=%d chunks=%d rendered=%d pending_destroy=%d in_flight=%d",
					s.Tick, s.Chunks, s.ChunksByState[world.ChunkStateRendered.String()], s.PendingDestroy, s.InFlightJobs)
				lastReport = now
			}
		}
	}
}
