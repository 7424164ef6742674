package world

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/voxel-engine/internal/vec"
)

func TestFace_CornersLieOnFacePlane(t *testing.T) {
	for _, f := range AllFaces {
		n := f.Normal()
		axis := 0
		for i := 0; i < 3; i++ {
			if n[i] != 0 {
				axis = i
			}
		}
		// Грань с положительной нормалью лежит на плоскости 1, с отрицательной на 0
		expected := float32(0)
		if n[axis] > 0 {
			expected = 1
		}
		for _, c := range faceCorners(f, vec.Vec3{}, 1) {
			assert.Equal(t, expected, c[axis], "вершина грани %s вне плоскости", f)
		}
	}
}

func TestFace_ConsistentWinding(t *testing.T) {
	for _, f := range AllFaces {
		q := faceCorners(f, vec.Vec3{}, 1)
		for _, tri := range [][3]int{{0, 1, 3}, {1, 2, 3}} {
			a, b, c := q[tri[0]], q[tri[1]], q[tri[2]]
			cross := b.Sub(a).Cross(c.Sub(a))
			assert.Less(t, cross.Dot(f.Normal()), float32(0), "обход треугольника грани %s отличается", f)
		}
	}
}

func TestFace_OppositeAndTangent(t *testing.T) {
	for _, f := range AllFaces {
		assert.Equal(t, vec.Vec3{}, f.Direction().Add(f.Opposite().Direction()), "грань %s", f)
		assert.Equal(t, f, f.Opposite().Opposite())
		assert.Equal(t, float32(0), f.Tangent().Dot(f.Normal()), "касательная грани %s не перпендикулярна нормали", f)
	}
}

func TestFaceCorners_ScaledAndTranslated(t *testing.T) {
	q := faceCorners(FaceTop, vec.Vec3{X: 2, Y: 3, Z: 4}, 100)
	for _, c := range q {
		assert.Equal(t, float32(500), c[2], "верхняя грань вокселя z=4 на высоте 5*100")
		assert.True(t, c[0] == 200 || c[0] == 300)
		assert.True(t, c[1] == 300 || c[1] == 400)
	}
}
