package world

import (
	"sync"
	"sync/atomic"

	"github.com/annel0/voxel-engine/internal/physics"
	"github.com/annel0/voxel-engine/internal/vec"
)

// RenderHost описывает адаптер движка отображения. Все методы вызываются из потока тика.
// AllocateRenderResource должен вернуть не-nil дескриптор, nil означает "повторить позже".
type RenderHost interface {
	AllocateRenderResource(c *Chunk) interface{}
	ReleaseRenderResource(handle interface{})
	ApplyMeshSnapshot(handle interface{}, mesh *MeshData)
	ApplyCollisionSnapshot(handle interface{}, mesh *physics.CollisionMesh)
}

// HeadlessChunk ресурс рендера безголового хоста
type HeadlessChunk struct {
	Pos vec.Vec3

	mu             sync.RWMutex
	mesh           *MeshData
	collision      *physics.CollisionMesh
	meshApplied    int
	collideApplied int
}

// Mesh возвращает последний применённый снимок поверхности
func (h *HeadlessChunk) Mesh() *MeshData {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.mesh
}

// Collision возвращает последний применённый снимок коллизии
func (h *HeadlessChunk) Collision() *physics.CollisionMesh {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.collision
}

// Applied возвращает количество применений меша и коллизии
func (h *HeadlessChunk) Applied() (mesh, collision int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.meshApplied, h.collideApplied
}

// HeadlessHost хранит последние снимки в памяти.
// Используется сервером без графики и тестами.
type HeadlessHost struct {
	mu        sync.RWMutex
	resources map[vec.Vec3]*HeadlessChunk

	allocated atomic.Int64
	released  atomic.Int64
	meshes    atomic.Int64
	collision atomic.Int64
}

// NewHeadlessHost создаёт пустой хост
func NewHeadlessHost() *HeadlessHost {
	return &HeadlessHost{resources: make(map[vec.Vec3]*HeadlessChunk)}
}

// AllocateRenderResource реализует RenderHost
func (h *HeadlessHost) AllocateRenderResource(c *Chunk) interface{} {
	res := &HeadlessChunk{Pos: c.Pos()}
	h.mu.Lock()
	h.resources[res.Pos] = res
	h.mu.Unlock()
	h.allocated.Add(1)
	return res
}

// ReleaseRenderResource реализует RenderHost
func (h *HeadlessHost) ReleaseRenderResource(handle interface{}) {
	res, ok := handle.(*HeadlessChunk)
	if !ok {
		return
	}
	h.mu.Lock()
	if h.resources[res.Pos] == res {
		delete(h.resources, res.Pos)
	}
	h.mu.Unlock()
	h.released.Add(1)
}

// ApplyMeshSnapshot реализует RenderHost
func (h *HeadlessHost) ApplyMeshSnapshot(handle interface{}, mesh *MeshData) {
	res, ok := handle.(*HeadlessChunk)
	if !ok {
		return
	}
	res.mu.Lock()
	res.mesh = mesh
	res.meshApplied++
	res.mu.Unlock()
	h.meshes.Add(1)
}

// ApplyCollisionSnapshot реализует RenderHost
func (h *HeadlessHost) ApplyCollisionSnapshot(handle interface{}, mesh *physics.CollisionMesh) {
	res, ok := handle.(*HeadlessChunk)
	if !ok {
		return
	}
	res.mu.Lock()
	res.collision = mesh
	res.collideApplied++
	res.mu.Unlock()
	h.collision.Add(1)
}

// Resource возвращает ресурс чанка или nil
func (h *HeadlessHost) Resource(pos vec.Vec3) *HeadlessChunk {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.resources[pos]
}

// ResourceCount возвращает количество живых ресурсов
func (h *HeadlessHost) ResourceCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.resources)
}

// HeadlessHostStats содержит счётчики хоста
type HeadlessHostStats struct {
	Allocated          int64 `json:"allocated"`
	Released           int64 `json:"released"`
	MeshApplied        int64 `json:"mesh_applied"`
	CollisionApplied   int64 `json:"collision_applied"`
	LiveResources      int   `json:"live_resources"`
	TotalTriangles     int   `json:"total_triangles"`
	TotalCollisionTris int   `json:"total_collision_triangles"`
}

// Stats возвращает счётчики и суммарную геометрию живых ресурсов
func (h *HeadlessHost) Stats() HeadlessHostStats {
	st := HeadlessHostStats{
		Allocated:        h.allocated.Load(),
		Released:         h.released.Load(),
		MeshApplied:      h.meshes.Load(),
		CollisionApplied: h.collision.Load(),
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	st.LiveResources = len(h.resources)
	for _, res := range h.resources {
		st.TotalTriangles += res.Mesh().TriangleCount()
		st.TotalCollisionTris += res.Collision().TriangleCount()
	}
	return st
}
