package world

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxel-engine/internal/physics"
	"github.com/annel0/voxel-engine/internal/vec"
)

// ChunkState фаза жизненного цикла чанка
type ChunkState int32

const (
	ChunkStateInit ChunkState = iota
	ChunkStateNotRendered
	ChunkStateRendered
	ChunkStateDestroyed // терминальное состояние
)

func (s ChunkState) String() string {
	switch s {
	case ChunkStateInit:
		return "init"
	case ChunkStateNotRendered:
		return "not_rendered"
	case ChunkStateRendered:
		return "rendered"
	case ChunkStateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// WorkKind вид асинхронной работы над чанком
type WorkKind int

const (
	WorkWorldGen WorkKind = iota
	WorkCollision
	WorkMesh

	workKindCount
)

// AllWorkKinds перечисляет виды работ
var AllWorkKinds = [workKindCount]WorkKind{WorkWorldGen, WorkCollision, WorkMesh}

func (k WorkKind) String() string {
	switch k {
	case WorkWorldGen:
		return "worldgen"
	case WorkCollision:
		return "collision"
	case WorkMesh:
		return "mesh"
	default:
		return "unknown"
	}
}

// Фазы генерации
const (
	genNotRequested int32 = iota
	genRequested
	genCompleted // завершилась, соседи ещё не помечены
	genFinished
)

// ChunkWork содержит состояние одного вида работ.
// online: задача в очереди или выполняется. done: результат готов.
// delaying: результат готов, но отложен из-за бюджета кадра.
// workID: токен текущего запроса, устаревшие результаты отбрасываются.
type ChunkWork struct {
	online   atomic.Bool
	done     atomic.Bool
	delaying atomic.Bool
	workID   atomic.Uint64
}

// chunkOwner невладеющая ссылка чанка на мир
type chunkOwner interface {
	shouldBeRendered(c *Chunk) bool
	shouldBeDestroyed(c *Chunk) bool
	tryUpdate() bool
	allocateRenderResource(c *Chunk) interface{}
	releaseRenderResource(handle interface{})
	applyMesh(c *Chunk, mesh *MeshData)
	applyCollision(c *Chunk, mesh *physics.CollisionMesh)
	queueChunkWork(c *Chunk, kind WorkKind) bool
	markChunkDirty(pos vec.Vec3)
	newWorkID() uint64
	chunkDestroyed(c *Chunk)
}

// Chunk представляет кубический участок мира 32x32x32 вокселя.
// Жизненным циклом управляет World, методы tick вызываются только из потока тика.
type Chunk struct {
	pos       vec.Vec3
	voxelSize float32
	owner     chunkOwner
	storage   *BlockStorage

	state           atomic.Int32
	generationPhase atomic.Int32
	dirty           atomic.Bool
	works           [workKindCount]ChunkWork
	remaining       atomic.Int32 // незавершённые задачи

	handle         interface{} // ресурс рендера, только поток тика
	handleAttached atomic.Bool

	pendingMesh      atomic.Pointer[MeshData]
	pendingCollision atomic.Pointer[physics.CollisionMesh]
}

func newChunk(owner chunkOwner, pos vec.Vec3, voxelSize float32) *Chunk {
	return &Chunk{
		pos:       pos,
		voxelSize: voxelSize,
		owner:     owner,
		storage:   NewBlockStorage(),
	}
}

// Pos возвращает координаты чанка
func (c *Chunk) Pos() vec.Vec3 {
	return c.pos
}

// Storage возвращает хранилище вокселей
func (c *Chunk) Storage() *BlockStorage {
	return c.storage
}

// State возвращает текущую фазу жизненного цикла
func (c *Chunk) State() ChunkState {
	return ChunkState(c.state.Load())
}

// GenerationPhase возвращает фазу генерации (0..3)
func (c *Chunk) GenerationPhase() int {
	return int(c.generationPhase.Load())
}

// IsDirty возвращает true, если чанк ждёт перестроения меша
func (c *Chunk) IsDirty() bool {
	return c.dirty.Load()
}

// MarkDirty помечает чанк для перестроения меша и коллизии
func (c *Chunk) MarkDirty() {
	c.dirty.Store(true)
}

// Outstanding возвращает количество незавершённых задач
func (c *Chunk) Outstanding() int32 {
	return c.remaining.Load()
}

// HasRenderResource возвращает true, если к чанку привязан ресурс рендера
func (c *Chunk) HasRenderResource() bool {
	return c.handleAttached.Load()
}

// Origin возвращает мировые координаты минимального угла чанка
func (c *Chunk) Origin() mgl32.Vec3 {
	edge := float32(ChunkSize) * c.voxelSize
	return mgl32.Vec3{float32(c.pos.X) * edge, float32(c.pos.Y) * edge, float32(c.pos.Z) * edge}
}

// Center возвращает центр чанка в координатах чанков
func (c *Chunk) Center() mgl32.Vec3 {
	return mgl32.Vec3{float32(c.pos.X) + 0.5, float32(c.pos.Y) + 0.5, float32(c.pos.Z) + 0.5}
}

// WorkOnline возвращает true, если работа вида kind в очереди или выполняется
func (c *Chunk) WorkOnline(kind WorkKind) bool {
	return c.works[kind].online.Load()
}

func (c *Chunk) setState(s ChunkState) {
	c.state.Store(int32(s))
}

// tick продвигает конечный автомат чанка на один кадр
func (c *Chunk) tick() {
	if c.State() == ChunkStateDestroyed {
		return
	}

	if c.owner.shouldBeDestroyed(c) && c.owner.tryUpdate() {
		c.destroy()
		return
	}

	if s := c.State(); s == ChunkStateInit || s == ChunkStateNotRendered {
		if c.owner.shouldBeRendered(c) {
			c.setState(ChunkStateRendered)
		} else {
			c.setState(ChunkStateNotRendered)
		}
	}
	rendered := c.State() == ChunkStateRendered

	if rendered && c.handle == nil {
		c.handle = c.owner.allocateRenderResource(c)
		c.handleAttached.Store(c.handle != nil)
	}

	if c.generationPhase.Load() == genNotRequested {
		c.generationPhase.Store(genRequested)
		c.owner.queueChunkWork(c, WorkWorldGen)
	}

	if rendered && c.generationPhase.Load() == genCompleted {
		c.dirty.Store(true)
		for _, f := range AllFaces {
			c.owner.markChunkDirty(c.pos.Add(f.Direction()))
		}
		c.generationPhase.Store(genFinished)
	}

	// Меш негенерированного чанка пуст, поэтому dirty ждёт окончания генерации.
	// Пока предыдущие задачи в работе, флаг остаётся и запрос повторится позже.
	if c.dirty.Load() && c.handle != nil && c.generationPhase.Load() >= genCompleted &&
		!c.WorkOnline(WorkCollision) && !c.WorkOnline(WorkMesh) {
		c.owner.queueChunkWork(c, WorkCollision)
		c.owner.queueChunkWork(c, WorkMesh)
		c.dirty.Store(false)
	}

	if c.works[WorkWorldGen].done.CompareAndSwap(true, false) {
		c.generationPhase.Store(genCompleted)
	}
	c.pollResult(WorkCollision)
	c.pollResult(WorkMesh)
}

// pollResult применяет готовый результат в пределах бюджета кадра
func (c *Chunk) pollResult(kind WorkKind) {
	w := &c.works[kind]
	// pending хранит только последний результат, поэтому done сбрасывается и при delaying
	consumed := w.done.CompareAndSwap(true, false)
	if !consumed && !w.delaying.Load() {
		return
	}
	if !c.owner.tryUpdate() {
		w.delaying.Store(true)
		return
	}
	w.delaying.Store(false)

	switch kind {
	case WorkMesh:
		if mesh := c.pendingMesh.Swap(nil); mesh != nil && c.handle != nil {
			c.owner.applyMesh(c, mesh)
		}
	case WorkCollision:
		if mesh := c.pendingCollision.Swap(nil); mesh != nil && c.handle != nil {
			c.owner.applyCollision(c, mesh)
		}
	}
}

// destroy освобождает ресурс рендера и делает все выданные задачи устаревшими.
// Финализация произойдёт, когда счётчик задач дойдёт до нуля.
func (c *Chunk) destroy() {
	c.setState(ChunkStateDestroyed)
	if c.handle != nil {
		c.owner.releaseRenderResource(c.handle)
		c.handle = nil
		c.handleAttached.Store(false)
	}
	for i := range c.works {
		c.works[i].workID.Store(c.owner.newWorkID())
	}
	c.pendingMesh.Store(nil)
	c.pendingCollision.Store(nil)
	c.owner.chunkDestroyed(c)
}

// storeResult публикует результат задачи, если её токен всё ещё актуален.
// Порядок важен: результат, затем online=false, затем done=true.
func (c *Chunk) storeResult(kind WorkKind, workID uint64, mesh *MeshData, collision *physics.CollisionMesh) bool {
	w := &c.works[kind]
	if w.workID.Load() != workID {
		return false
	}
	switch kind {
	case WorkMesh:
		c.pendingMesh.Store(mesh)
	case WorkCollision:
		c.pendingCollision.Store(collision)
	}
	w.online.Store(false)
	w.done.Store(true)
	return true
}

// isCurrent проверяет, что токен задачи не устарел
func (c *Chunk) isCurrent(kind WorkKind, workID uint64) bool {
	return c.works[kind].workID.Load() == workID
}

// WorkInfo содержит снимок состояния одного вида работ
type WorkInfo struct {
	Online   bool   `json:"online"`
	Done     bool   `json:"done"`
	Delaying bool   `json:"delaying"`
	WorkID   uint64 `json:"work_id"`
}

// ChunkInfo содержит снимок состояния чанка для диагностики
type ChunkInfo struct {
	Pos               vec.Vec3            `json:"pos"`
	State             string              `json:"state"`
	GenerationPhase   int                 `json:"generation_phase"`
	Dirty             bool                `json:"dirty"`
	Outstanding       int32               `json:"outstanding"`
	HasRenderResource bool                `json:"has_render_resource"`
	Works             map[string]WorkInfo `json:"works"`
}

// Info возвращает снимок состояния чанка. Безопасен из любого потока.
func (c *Chunk) Info() ChunkInfo {
	info := ChunkInfo{
		Pos:               c.pos,
		State:             c.State().String(),
		GenerationPhase:   c.GenerationPhase(),
		Dirty:             c.IsDirty(),
		Outstanding:       c.Outstanding(),
		HasRenderResource: c.HasRenderResource(),
		Works:             make(map[string]WorkInfo, workKindCount),
	}
	for _, k := range AllWorkKinds {
		w := &c.works[k]
		info.Works[k.String()] = WorkInfo{
			Online:   w.online.Load(),
			Done:     w.done.Load(),
			Delaying: w.delaying.Load(),
			WorkID:   w.workID.Load(),
		}
	}
	return info
}
