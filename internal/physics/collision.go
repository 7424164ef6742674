package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB представляет выровненный по осям ограничивающий параллелепипед
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB возвращает "вывернутый" бокс, который расширяется первой точкой
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty возвращает true, если в бокс не добавлено ни одной точки
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Extend расширяет бокс точкой
func (b AABB) Extend(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

// Contains проверяет, находится ли точка внутри бокса (границы включительно)
func (b AABB) Contains(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Intersects проверяет пересечение двух боксов
func (b AABB) Intersects(other AABB) bool {
	return b.Min[0] <= other.Max[0] && b.Max[0] >= other.Min[0] &&
		b.Min[1] <= other.Max[1] && b.Max[1] >= other.Min[1] &&
		b.Min[2] <= other.Max[2] && b.Max[2] >= other.Min[2]
}

// Translate сдвигает бокс
func (b AABB) Translate(offset mgl32.Vec3) AABB {
	return AABB{Min: b.Min.Add(offset), Max: b.Max.Add(offset)}
}

// CollisionMesh содержит снимок геометрии коллизий одного чанка.
// Вершины в локальных координатах чанка, уже умноженные на размер вокселя.
// После публикации не изменяется.
type CollisionMesh struct {
	Vertices  []mgl32.Vec3
	Triangles []uint32 // по три индекса на треугольник
}

// NewCollisionMesh создаёт пустой снимок с запасом ёмкости на faceHint граней
func NewCollisionMesh(faceHint int) *CollisionMesh {
	return &CollisionMesh{
		Vertices:  make([]mgl32.Vec3, 0, faceHint*4),
		Triangles: make([]uint32, 0, faceHint*6),
	}
}

// AddQuad добавляет четырёхугольник как два треугольника (0,1,3) и (1,2,3)
func (m *CollisionMesh) AddQuad(a, b, c, d mgl32.Vec3) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, a, b, c, d)
	m.Triangles = append(m.Triangles,
		base+0, base+1, base+3,
		base+1, base+2, base+3,
	)
}

// TriangleCount возвращает количество треугольников
func (m *CollisionMesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Triangles) / 3
}

// IsEmpty возвращает true, если коллизии нет
func (m *CollisionMesh) IsEmpty() bool {
	return m == nil || len(m.Vertices) == 0
}

// Bounds вычисляет ограничивающий бокс всех вершин
func (m *CollisionMesh) Bounds() AABB {
	box := EmptyAABB()
	if m == nil {
		return box
	}
	for _, v := range m.Vertices {
		box = box.Extend(v)
	}
	return box
}
