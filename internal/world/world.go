package world

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/physics"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/block"
)

const tracerName = "github.com/annel0/voxel-engine/internal/world"

var (
	ErrNilRegistry    = errors.New("world: block registry is required")
	ErrNilGenerator   = errors.New("world: generator is required")
	ErrInvalidOptions = errors.New("world: invalid options")
)

// Options содержит параметры мира. Расстояния в чанках.
type Options struct {
	VoxelSize              float32 // длина ребра вокселя в мировых единицах
	RenderDistance         float64
	DestroyExtent          float64 // полоса гистерезиса между созданием и удалением
	MaxApplicationsPerTick int     // 0 допустим: результаты никогда не применяются
	WorkerCount            int
	Async                  bool // false: задачи выполняются прямо в потоке тика
	OccludeFaceBorder      bool

	// Регистр для Prometheus-метрик. При nil метрики не экспортируются.
	Registerer prometheus.Registerer
}

// DefaultOptions возвращает параметры по умолчанию
func DefaultOptions() Options {
	return Options{
		VoxelSize:              100,
		RenderDistance:         4,
		DestroyExtent:          2,
		MaxApplicationsPerTick: 8,
		WorkerCount:            runtime.NumCPU(),
		Async:                  true,
		OccludeFaceBorder:      true,
	}
}

// Validate проверяет параметры
func (o Options) Validate() error {
	switch {
	case o.VoxelSize <= 0:
		return fmt.Errorf("%w: voxel size must be positive, got %v", ErrInvalidOptions, o.VoxelSize)
	case o.RenderDistance < 0:
		return fmt.Errorf("%w: negative render distance %v", ErrInvalidOptions, o.RenderDistance)
	case o.DestroyExtent < 0:
		return fmt.Errorf("%w: negative destroy extent %v", ErrInvalidOptions, o.DestroyExtent)
	case o.MaxApplicationsPerTick < 0:
		return fmt.Errorf("%w: negative apply budget %d", ErrInvalidOptions, o.MaxApplicationsPerTick)
	case o.WorkerCount < 0:
		return fmt.Errorf("%w: negative worker count %d", ErrInvalidOptions, o.WorkerCount)
	}
	return nil
}

// World владеет картой чанков, пулом воркеров и трекерами.
//
// Tick, GetChunk с созданием, Destroy и все обращения к RenderHost
// выполняются только в потоке тика. LookupChunk, SetBlock, GetBlock,
// Stats и ChunkInfo безопасны из любого потока.
type World struct {
	registry  *block.Registry
	generator Generator
	host      RenderHost
	opts      Options
	mesher    *Mesher
	pool      *WorkerPool
	tracer    trace.Tracer

	mu     sync.RWMutex
	chunks map[vec.Vec3]*Chunk

	trackersMu sync.RWMutex
	trackers   map[TrackerID]Tracker

	// Только поток тика
	trackerPositions     []mgl32.Vec3 // в координатах чанков
	pendingDestroy       []*Chunk
	updatesThisTick      int
	applicationsThisTick int
	deferredThisTick     int
	tickCount            uint64

	nextWorkID atomic.Uint64
	inFlight   atomic.Int64
	destroyed  atomic.Bool

	metrics *Metrics
	stats   atomic.Pointer[Stats]
	logger  *logging.Logger
}

// NewWorld создаёт мир. host == nil заменяется HeadlessHost.
func NewWorld(registry *block.Registry, generator Generator, host RenderHost, opts Options) (*World, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.WorkerCount == 0 {
		opts.WorkerCount = runtime.NumCPU()
	}
	if host == nil {
		host = NewHeadlessHost()
	}

	metrics, err := NewMetrics(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("register world metrics: %w", err)
	}

	w := &World{
		registry:  registry,
		generator: generator,
		host:      host,
		opts:      opts,
		tracer:    otel.Tracer(tracerName),
		chunks:    make(map[vec.Vec3]*Chunk),
		trackers:  make(map[TrackerID]Tracker),
		metrics:   metrics,
		logger:    logging.GetWorldLogger(),
	}
	w.mesher = NewMesher(registry, w, MesherParams{
		VoxelSize:         opts.VoxelSize,
		OccludeFaceBorder: opts.OccludeFaceBorder,
	})
	if opts.Async {
		w.pool = NewWorkerPool(opts.WorkerCount)
	}
	w.stats.Store(&Stats{ChunksByState: map[string]int{}})

	w.logger.Info("Мир создан: voxel=%.1f render=%.1f extent=%.1f budget=%d workers=%d async=%v",
		opts.VoxelSize, opts.RenderDistance, opts.DestroyExtent, opts.MaxApplicationsPerTick, opts.WorkerCount, opts.Async)
	return w, nil
}

// Destroy останавливает пул (брошенные задачи уменьшают счётчики),
// освобождает ресурсы рендера и очищает карту чанков.
func (w *World) Destroy() {
	if !w.destroyed.CompareAndSwap(false, true) {
		return
	}

	abandoned := 0
	if w.pool != nil {
		abandoned = w.pool.Shutdown()
	}

	w.mu.Lock()
	for _, c := range w.chunks {
		if c.handle != nil {
			w.host.ReleaseRenderResource(c.handle)
			c.handle = nil
			c.handleAttached.Store(false)
		}
		c.setState(ChunkStateDestroyed)
	}
	count := len(w.chunks)
	w.chunks = make(map[vec.Vec3]*Chunk)
	w.mu.Unlock()

	w.pendingDestroy = nil
	w.metrics.unregister()

	w.logger.Info("Мир уничтожен: чанков %d, брошено задач %d, в работе %d", count, abandoned, w.inFlight.Load())
}

// Registry возвращает реестр блоков
func (w *World) Registry() *block.Registry {
	return w.registry
}

// Mesher возвращает мешер мира
func (w *World) Mesher() *Mesher {
	return w.mesher
}

// Options возвращает параметры мира
func (w *World) Options() Options {
	return w.opts
}

// InFlight возвращает количество задач в очереди или в работе
func (w *World) InFlight() int64 {
	return w.inFlight.Load()
}

// RegisterTracker добавляет трекер и возвращает его идентификатор
func (w *World) RegisterTracker(t Tracker) TrackerID {
	id := uuid.New()
	w.trackersMu.Lock()
	w.trackers[id] = t
	w.trackersMu.Unlock()
	w.logger.Debug("Трекер %s зарегистрирован", id)
	return id
}

// UnregisterTracker удаляет трекер
func (w *World) UnregisterTracker(id TrackerID) bool {
	w.trackersMu.Lock()
	defer w.trackersMu.Unlock()
	if _, ok := w.trackers[id]; !ok {
		return false
	}
	delete(w.trackers, id)
	return true
}

// TrackerCount возвращает количество трекеров
func (w *World) TrackerCount() int {
	w.trackersMu.RLock()
	defer w.trackersMu.RUnlock()
	return len(w.trackers)
}

// GetChunk возвращает чанк. При create == true отсутствующий чанк создаётся.
// Создание допускается только из потока тика.
func (w *World) GetChunk(pos vec.Vec3, create bool) *Chunk {
	w.mu.RLock()
	c := w.chunks[pos]
	w.mu.RUnlock()
	if c != nil || !create || w.destroyed.Load() {
		return c
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// Проверяем еще раз на случай race condition
	if c = w.chunks[pos]; c != nil {
		return c
	}
	c = newChunk(w, pos, w.opts.VoxelSize)
	w.chunks[pos] = c
	w.logger.Trace("Чанк %v создан", pos)
	return c
}

// LookupChunk возвращает живой чанк или nil. Уничтоженные чанки считаются отсутствующими.
func (w *World) LookupChunk(pos vec.Vec3) *Chunk {
	w.mu.RLock()
	c := w.chunks[pos]
	w.mu.RUnlock()
	if c == nil || c.State() == ChunkStateDestroyed {
		return nil
	}
	return c
}

// ChunkInfo возвращает снимок состояния чанка
func (w *World) ChunkInfo(pos vec.Vec3) (ChunkInfo, bool) {
	w.mu.RLock()
	c := w.chunks[pos]
	w.mu.RUnlock()
	if c == nil {
		return ChunkInfo{}, false
	}
	return c.Info(), true
}

// ChunkCount возвращает количество чанков в карте, включая ожидающие удаления
func (w *World) ChunkCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// GetBlock возвращает воксель по глобальным координатам
func (w *World) GetBlock(global vec.Vec3) (Voxel, bool) {
	c := w.LookupChunk(global.ToChunkCoords())
	if c == nil {
		return Voxel{}, false
	}
	local := global.LocalInChunk()
	return c.storage.Read(local.X, local.Y, local.Z), true
}

// SetBlock записывает воксель по глобальным координатам и помечает чанк для перестроения.
// Если воксель лежит на границе, помечается и соседний чанк.
func (w *World) SetBlock(global vec.Vec3, id block.BlockID, c color.RGBA) bool {
	if !w.registry.IsValidID(id) {
		w.logger.Error("SetBlock %v: недопустимый TypeID %d", global, id)
		return false
	}
	chunkPos := global.ToChunkCoords()
	chunk := w.LookupChunk(chunkPos)
	if chunk == nil {
		return false
	}

	local := global.LocalInChunk()
	chunk.storage.Write(local.X, local.Y, local.Z, id, c)
	chunk.MarkDirty()

	for _, f := range AllFaces {
		if !local.Add(f.Direction()).IsLocal() {
			w.markChunkDirty(chunkPos.Add(f.Direction()))
		}
	}
	return true
}

// PlaceBlock записывает блок по ключу реестра с цветом по умолчанию
func (w *World) PlaceBlock(global vec.Vec3, key block.Key) bool {
	def := w.registry.Resolve(key)
	return w.SetBlock(global, def.TypeID(), def.DefaultColor)
}

// Stats возвращает снимок, опубликованный последним тиком
func (w *World) Stats() Stats {
	return *w.stats.Load()
}

// Tick продвигает мир на один кадр. Вызывается хостом каждый кадр.
func (w *World) Tick() {
	if w.destroyed.Load() {
		return
	}
	start := time.Now()

	w.tickCount++
	w.updatesThisTick = 0
	w.applicationsThisTick = 0
	w.deferredThisTick = 0

	w.snapshotTrackers()
	w.streamChunks()

	// Поток тика единственный, кто меняет карту, поэтому обход без блокировки
	for _, c := range w.chunks {
		c.tick()
	}

	w.sweepPendingDestroy()
	w.publishStats(time.Since(start))
}

func (w *World) snapshotTrackers() {
	chunkEdge := float32(ChunkSize) * w.opts.VoxelSize
	w.trackerPositions = w.trackerPositions[:0]

	w.trackersMu.RLock()
	for _, t := range w.trackers {
		w.trackerPositions = append(w.trackerPositions, t.Position().Mul(1/chunkEdge))
	}
	w.trackersMu.RUnlock()
}

// streamChunks создаёт чанки в радиусе renderDistance + destroyExtent от трекеров
func (w *World) streamChunks() {
	radius := w.opts.RenderDistance + w.opts.DestroyExtent
	r := int(math.Ceil(radius))

	for _, tp := range w.trackerPositions {
		center := vec.Vec3{
			X: int(math.Floor(float64(tp[0]))),
			Y: int(math.Floor(float64(tp[1]))),
			Z: int(math.Floor(float64(tp[2]))),
		}
		for dz := -r; dz <= r; dz++ {
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					pos := center.Add(vec.Vec3{X: dx, Y: dy, Z: dz})
					if chunkDistance(tp, pos) > radius {
						continue
					}
					if _, exists := w.chunks[pos]; !exists {
						w.GetChunk(pos, true)
					}
				}
			}
		}
	}
}

// chunkDistance возвращает расстояние от точки (в координатах чанков) до центра чанка
func chunkDistance(p mgl32.Vec3, pos vec.Vec3) float64 {
	dx := float64(p[0]) - (float64(pos.X) + 0.5)
	dy := float64(p[1]) - (float64(pos.Y) + 0.5)
	dz := float64(p[2]) - (float64(pos.Z) + 0.5)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// minTrackerDistance возвращает расстояние до ближайшего трекера, +Inf без трекеров
func (w *World) minTrackerDistance(pos vec.Vec3) float64 {
	best := math.Inf(1)
	for _, tp := range w.trackerPositions {
		if d := chunkDistance(tp, pos); d < best {
			best = d
		}
	}
	return best
}

func (w *World) sweepPendingDestroy() {
	if len(w.pendingDestroy) == 0 {
		return
	}

	kept := w.pendingDestroy[:0]
	for _, c := range w.pendingDestroy {
		if c.remaining.Load() > 0 {
			kept = append(kept, c)
			continue
		}
		w.mu.Lock()
		if w.chunks[c.pos] == c {
			delete(w.chunks, c.pos)
		}
		w.mu.Unlock()
		w.logger.Trace("Чанк %v финализирован", c.pos)
	}
	for i := len(kept); i < len(w.pendingDestroy); i++ {
		w.pendingDestroy[i] = nil
	}
	w.pendingDestroy = kept
}

func (w *World) publishStats(d time.Duration) {
	st := &Stats{
		Tick:                 w.tickCount,
		ChunksByState:        make(map[string]int, 4),
		PendingDestroy:       len(w.pendingDestroy),
		InFlightJobs:         w.inFlight.Load(),
		Trackers:             len(w.trackerPositions),
		ApplicationsThisTick: w.applicationsThisTick,
		DeferredThisTick:     w.deferredThisTick,
		TickDuration:         d,
	}
	for _, s := range []ChunkState{ChunkStateInit, ChunkStateNotRendered, ChunkStateRendered, ChunkStateDestroyed} {
		st.ChunksByState[s.String()] = 0
	}
	for _, c := range w.chunks {
		st.ChunksByState[c.State().String()]++
	}
	st.Chunks = len(w.chunks)
	if w.pool != nil {
		st.QueuedJobs = w.pool.QueueLen()
	}

	w.stats.Store(st)
	w.metrics.observeTick(st)
}

// --- chunkOwner ---

func (w *World) shouldBeRendered(c *Chunk) bool {
	return w.minTrackerDistance(c.pos) < w.opts.RenderDistance
}

func (w *World) shouldBeDestroyed(c *Chunk) bool {
	return w.minTrackerDistance(c.pos) > w.opts.RenderDistance+w.opts.DestroyExtent
}

// tryUpdate расходует единицу бюджета кадра
func (w *World) tryUpdate() bool {
	if w.updatesThisTick >= w.opts.MaxApplicationsPerTick {
		w.deferredThisTick++
		w.metrics.deferred.Inc()
		return false
	}
	w.updatesThisTick++
	return true
}

func (w *World) allocateRenderResource(c *Chunk) interface{} {
	return w.host.AllocateRenderResource(c)
}

func (w *World) releaseRenderResource(handle interface{}) {
	w.host.ReleaseRenderResource(handle)
}

func (w *World) applyMesh(c *Chunk, mesh *MeshData) {
	w.host.ApplyMeshSnapshot(c.handle, mesh)
	w.applicationsThisTick++
	w.metrics.applications.WithLabelValues(WorkMesh.String()).Inc()
}

func (w *World) applyCollision(c *Chunk, mesh *physics.CollisionMesh) {
	w.host.ApplyCollisionSnapshot(c.handle, mesh)
	w.applicationsThisTick++
	w.metrics.applications.WithLabelValues(WorkCollision.String()).Inc()
}

// queueChunkWork ставит задачу вида kind. Если задача уже в работе, ничего не делает.
func (w *World) queueChunkWork(c *Chunk, kind WorkKind) bool {
	work := &c.works[kind]
	if work.online.Load() {
		return false
	}

	c.remaining.Add(1)
	w.inFlight.Add(1)
	id := w.newWorkID()
	work.workID.Store(id)
	work.online.Store(true)

	job := newChunkJob(w, c, kind, id)
	if w.pool == nil {
		job.Run()
		return true
	}
	if !w.pool.Submit(job) {
		job.Abandon()
	}
	return true
}

func (w *World) markChunkDirty(pos vec.Vec3) {
	if c := w.LookupChunk(pos); c != nil {
		c.MarkDirty()
	}
}

func (w *World) newWorkID() uint64 {
	return w.nextWorkID.Add(1)
}

func (w *World) chunkDestroyed(c *Chunk) {
	w.pendingDestroy = append(w.pendingDestroy, c)
	w.logger.Trace("Чанк %v ожидает удаления, задач: %d", c.pos, c.remaining.Load())
}
