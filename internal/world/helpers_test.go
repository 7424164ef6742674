package world

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/block"
	"github.com/annel0/voxel-engine/internal/world/block/implementations"
)

func testRegistry(t testing.TB) *block.Registry {
	t.Helper()
	r, err := implementations.NewDefaultRegistry()
	require.NoError(t, err)
	return r
}

func defVoxel(def *block.Def) Voxel {
	return Voxel{ID: def.TypeID(), Color: def.DefaultColor}
}

// mapLookup ищет чанки для мешера без мира
type mapLookup map[vec.Vec3]*Chunk

func (m mapLookup) LookupChunk(pos vec.Vec3) *Chunk {
	return m[pos]
}

// standaloneChunk создаёт чанк без владельца, только для мешера
func standaloneChunk(pos vec.Vec3) *Chunk {
	return newChunk(nil, pos, 1)
}

// fillChunk заполняет весь чанк одним блоком
func fillChunk(c *Chunk, def *block.Def) {
	c.storage.Mu.Lock()
	c.storage.Fill(defVoxel(def))
	c.storage.Mu.Unlock()
}

// blockingGenerator держит задачи генерации до вызова release
type blockingGenerator struct {
	gate    chan struct{}
	once    sync.Once
	started chan vec.Vec3
}

func newBlockingGenerator() *blockingGenerator {
	return &blockingGenerator{
		gate:    make(chan struct{}),
		started: make(chan vec.Vec3, 1024),
	}
}

func (g *blockingGenerator) Generate(pos vec.Vec3, _ *BlockStorage) {
	g.started <- pos
	<-g.gate
}

func (g *blockingGenerator) release() {
	g.once.Do(func() { close(g.gate) })
}

// testOptions возвращает параметры синхронного мира с единичным вокселем и большим бюджетом
func testOptions() Options {
	opts := DefaultOptions()
	opts.VoxelSize = 1
	opts.RenderDistance = 1.5
	opts.DestroyExtent = 0.5
	opts.MaxApplicationsPerTick = 1000
	opts.WorkerCount = 2
	opts.Async = false
	opts.Registerer = prometheus.NewRegistry()
	return opts
}

func newTestWorld(t *testing.T, gen Generator, opts Options) (*World, *HeadlessHost) {
	t.Helper()
	host := NewHeadlessHost()
	w, err := NewWorld(testRegistry(t), gen, host, opts)
	require.NoError(t, err)
	t.Cleanup(w.Destroy)
	return w, host
}

// centerOfChunk возвращает мировую позицию центра чанка (0,0,0) при единичном вокселе
func centerOfChunk() mgl32.Vec3 {
	return mgl32.Vec3{ChunkSize / 2, ChunkSize / 2, ChunkSize / 2}
}
