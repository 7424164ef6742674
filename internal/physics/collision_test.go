package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestAABB_ExtendAndContains(t *testing.T) {
	box := EmptyAABB()
	assert.True(t, box.IsEmpty(), "новый бокс должен быть пустым")

	box = box.Extend(mgl32.Vec3{1, 2, 3}).Extend(mgl32.Vec3{-1, 0, 5})
	assert.False(t, box.IsEmpty())
	assert.Equal(t, mgl32.Vec3{-1, 0, 3}, box.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 5}, box.Max)
	assert.True(t, box.Contains(mgl32.Vec3{0, 1, 4}))
	assert.False(t, box.Contains(mgl32.Vec3{0, 3, 4}))
}

func TestAABB_Intersects(t *testing.T) {
	a := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	b := a.Translate(mgl32.Vec3{0.5, 0.5, 0.5})
	c := a.Translate(mgl32.Vec3{2, 0, 0})

	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(c))
}

func TestCollisionMesh_AddQuad(t *testing.T) {
	m := NewCollisionMesh(1)
	assert.True(t, m.IsEmpty())

	m.AddQuad(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{1, 1, 0}, mgl32.Vec3{0, 1, 0})
	m.AddQuad(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 1}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 1, 1})

	assert.Equal(t, 4, m.TriangleCount())
	assert.Equal(t, []uint32{4, 5, 7, 5, 6, 7}, m.Triangles[6:], "индексы второго квада смещены на 4")
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, m.Bounds().Max)

	var nilMesh *CollisionMesh
	assert.Equal(t, 0, nilMesh.TriangleCount())
	assert.True(t, nilMesh.Bounds().IsEmpty())
}
