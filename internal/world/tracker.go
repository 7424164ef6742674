package world

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// TrackerID идентификатор зарегистрированного трекера
type TrackerID = uuid.UUID

// Tracker представляет внешний источник позиции (например, камеру наблюдателя).
// Position возвращает мировые координаты и может вызываться из потока тика.
type Tracker interface {
	Position() mgl32.Vec3
}

// PointTracker трекер с позицией, которую можно менять из любого потока
type PointTracker struct {
	mu  sync.RWMutex
	pos mgl32.Vec3
}

// NewPointTracker создаёт трекер в указанной точке
func NewPointTracker(pos mgl32.Vec3) *PointTracker {
	return &PointTracker{pos: pos}
}

// Position реализует Tracker
func (t *PointTracker) Position() mgl32.Vec3 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pos
}

// SetPosition перемещает трекер
func (t *PointTracker) SetPosition(pos mgl32.Vec3) {
	t.mu.Lock()
	t.pos = pos
	t.mu.Unlock()
}

// Move сдвигает трекер на delta
func (t *PointTracker) Move(delta mgl32.Vec3) {
	t.mu.Lock()
	t.pos = t.pos.Add(delta)
	t.mu.Unlock()
}
