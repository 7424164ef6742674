package world

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Результаты задач для метрик и трейсинга
const (
	jobPublished = "published"
	jobStale     = "stale"
	jobAbandoned = "abandoned"
)

var jobPool = sync.Pool{
	New: func() interface{} { return new(chunkJob) },
}

// chunkJob описывает задачу. Структуры переиспользуются через jobPool.
type chunkJob struct {
	world  *World
	chunk  *Chunk
	kind   WorkKind
	workID uint64
}

func newChunkJob(w *World, c *Chunk, kind WorkKind, workID uint64) *chunkJob {
	j := jobPool.Get().(*chunkJob)
	j.world = w
	j.chunk = c
	j.kind = kind
	j.workID = workID
	return j
}

// Run реализует Job
func (j *chunkJob) Run() {
	j.world.runJob(j.chunk, j.kind, j.workID)
	j.release()
}

// Abandon реализует Job
func (j *chunkJob) Abandon() {
	j.world.finishJob(j.chunk, j.kind, jobAbandoned, 0)
	j.release()
}

func (j *chunkJob) release() {
	*j = chunkJob{}
	jobPool.Put(j)
}

// runJob выполняет задачу и публикует результат, если токен не устарел.
// Счётчики задач уменьшаются в любом случае.
func (w *World) runJob(c *Chunk, kind WorkKind, workID uint64) {
	_, span := w.tracer.Start(context.Background(), "chunk."+kind.String(),
		trace.WithAttributes(
			attribute.Int("chunk.x", c.pos.X),
			attribute.Int("chunk.y", c.pos.Y),
			attribute.Int("chunk.z", c.pos.Z),
			attribute.Int64("chunk.work_id", int64(workID)),
		))
	defer span.End()

	start := time.Now()
	result := jobStale

	if c.isCurrent(kind, workID) {
		switch kind {
		case WorkWorldGen:
			w.generate(c)
			if c.storeResult(kind, workID, nil, nil) {
				result = jobPublished
			}
		case WorkCollision:
			mesh := w.mesher.BuildCollision(c)
			span.SetAttributes(attribute.Int("collision.triangles", mesh.TriangleCount()))
			if c.storeResult(kind, workID, nil, mesh) {
				result = jobPublished
			}
		case WorkMesh:
			mesh := w.mesher.BuildSurface(c)
			span.SetAttributes(
				attribute.Int("mesh.sections", len(mesh.Sections)),
				attribute.Int("mesh.faces", mesh.FaceCount()),
			)
			if c.storeResult(kind, workID, mesh, nil) {
				result = jobPublished
			}
		default:
			panic("world: unknown work kind " + kind.String())
		}
	}

	span.SetAttributes(attribute.String("job.result", result))
	w.finishJob(c, kind, result, time.Since(start))
}

func (w *World) generate(c *Chunk) {
	c.storage.Mu.Lock()
	defer c.storage.Mu.Unlock()
	w.generator.Generate(c.pos, c.storage)
}

func (w *World) finishJob(c *Chunk, kind WorkKind, result string, d time.Duration) {
	w.metrics.observeJob(kind, result, d)
	c.remaining.Add(-1)
	w.inFlight.Add(-1)
}
