package world

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/block"
	"github.com/annel0/voxel-engine/internal/world/block/implementations"
)

func newTestMesher(t *testing.T, lookup ChunkLookup, occludeBorder bool) (*Mesher, *block.Registry) {
	reg := testRegistry(t)
	return NewMesher(reg, lookup, MesherParams{VoxelSize: 1, OccludeFaceBorder: occludeBorder}), reg
}

func setVoxel(c *Chunk, x, y, z int, def *block.Def) {
	c.storage.Write(x, y, z, def.TypeID(), def.DefaultColor)
}

func TestMesher_SingleVoxelSixFaces(t *testing.T) {
	m, reg := newTestMesher(t, mapLookup{}, false)
	c := standaloneChunk(vec.Vec3{})
	setVoxel(c, 0, 0, 0, reg.Get(implementations.SolidDefaultName))

	mesh := m.BuildSurface(c)
	assert.Equal(t, 6, mesh.FaceCount(), "одиночный воксель без окклюзии границы даёт 6 граней")
	assert.Equal(t, 12, mesh.TriangleCount())
	require.Len(t, mesh.Sections, 1)

	s := mesh.Sections[0]
	assert.Len(t, s.Normals, 24)
	assert.Len(t, s.Tangents, 24)
	assert.Len(t, s.UVs, 24)
	assert.Len(t, s.Colors, 24)
}

func TestMesher_TwoAdjacentVoxelsTenFaces(t *testing.T) {
	m, reg := newTestMesher(t, mapLookup{}, false)
	c := standaloneChunk(vec.Vec3{})
	solid := reg.Get(implementations.SolidDefaultName)
	setVoxel(c, 0, 0, 0, solid)
	setVoxel(c, 1, 0, 0, solid)

	mesh := m.BuildSurface(c)
	assert.Equal(t, 10, mesh.FaceCount(), "общая грань закрыта с обеих сторон")
}

func TestMesher_NoMaterialNoFaces(t *testing.T) {
	invisible := block.NewDef("Invisible")
	invisible.VisibilityType = implementations.VisibilityOpaque
	reg := block.MustNewRegistry(append(implementations.Defaults(), invisible)...)
	m := NewMesher(reg, mapLookup{}, MesherParams{VoxelSize: 1})

	c := standaloneChunk(vec.Vec3{})
	fillChunk(c, reg.Get("Invisible"))
	assert.Equal(t, 0, m.BuildSurface(c).FaceCount(), "блок без материала не полигонизируется")

	fillChunk(c, reg.Empty())
	assert.Equal(t, 0, m.BuildSurface(c).FaceCount())
}

func TestMesher_BorderOcclusion(t *testing.T) {
	t.Run("отсутствующие соседи закрывают грани", func(t *testing.T) {
		m, reg := newTestMesher(t, mapLookup{}, true)
		c := standaloneChunk(vec.Vec3{})
		setVoxel(c, 0, 0, 0, reg.Get(implementations.SolidDefaultName))

		// Грани -X, -Y, -Z упираются в незагруженное пространство
		assert.Equal(t, 3, m.BuildSurface(c).FaceCount())
	})

	t.Run("полный чанк без соседей", func(t *testing.T) {
		m, reg := newTestMesher(t, mapLookup{}, true)
		c := standaloneChunk(vec.Vec3{})
		fillChunk(c, reg.Get(implementations.SolidDefaultName))

		assert.Equal(t, 0, m.BuildSurface(c).FaceCount())
	})

	t.Run("полный чанк без окклюзии границы", func(t *testing.T) {
		m, reg := newTestMesher(t, mapLookup{}, false)
		c := standaloneChunk(vec.Vec3{})
		fillChunk(c, reg.Get(implementations.SolidDefaultName))

		assert.Equal(t, 6*ChunkSize*ChunkSize, m.BuildSurface(c).FaceCount())
	})

	t.Run("присутствующий сосед другого типа", func(t *testing.T) {
		lookup := mapLookup{}
		m, reg := newTestMesher(t, lookup, true)
		c := standaloneChunk(vec.Vec3{})
		fillChunk(c, reg.Get(implementations.SolidDefaultName))
		lookup[c.pos] = c

		// Пустой сосед по +X
		lookup[vec.Vec3{X: 1}] = standaloneChunk(vec.Vec3{X: 1})
		assert.Equal(t, ChunkSize*ChunkSize, m.BuildSurface(c).FaceCount(), "грани к пустому соседу рисуются")

		// Вода по -Z: другой тип видимости
		water := standaloneChunk(vec.Vec3{Z: -1})
		fillChunk(water, reg.Get(implementations.WaterName))
		lookup[water.pos] = water
		assert.Equal(t, 2*ChunkSize*ChunkSize, m.BuildSurface(c).FaceCount())
	})

	t.Run("присутствующий сосед того же типа", func(t *testing.T) {
		lookup := mapLookup{}
		m, reg := newTestMesher(t, lookup, true)
		solid := reg.Get(implementations.SolidDefaultName)
		c := standaloneChunk(vec.Vec3{})
		fillChunk(c, solid)

		n := standaloneChunk(vec.Vec3{X: 1})
		fillChunk(n, solid)
		lookup[n.pos] = n

		assert.Equal(t, 0, m.BuildSurface(c).FaceCount())
	})

	t.Run("граница соседа читается по правильной плоскости", func(t *testing.T) {
		lookup := mapLookup{}
		m, reg := newTestMesher(t, lookup, true)
		solid := reg.Get(implementations.SolidDefaultName)
		c := standaloneChunk(vec.Vec3{})
		setVoxel(c, 31, 4, 9, solid)

		n := standaloneChunk(vec.Vec3{X: 1})
		setVoxel(n, 0, 4, 9, solid)
		lookup[n.pos] = n

		// +X закрыта соседом, остальные грани внутри чанка открыты
		assert.Equal(t, 5, m.BuildSurface(c).FaceCount())

		setVoxel(n, 0, 4, 9, reg.Empty())
		setVoxel(n, 31, 4, 9, solid)
		assert.Equal(t, 6, m.BuildSurface(c).FaceCount(), "дальняя плоскость соседа не влияет на грань")
	})
}

func TestMesher_SectionGrouping(t *testing.T) {
	m, reg := newTestMesher(t, mapLookup{}, false)
	c := standaloneChunk(vec.Vec3{})

	stone := reg.Get(implementations.StoneName)
	dirt := reg.Get(implementations.DirtName)
	solid := reg.Get(implementations.SolidDefaultName)
	leaves := reg.Get(implementations.LeavesName)

	setVoxel(c, 0, 0, 0, stone)
	setVoxel(c, 5, 5, 5, dirt)
	setVoxel(c, 10, 10, 10, solid)
	setVoxel(c, 15, 15, 15, leaves)
	setVoxel(c, 20, 20, 20, leaves)

	mesh := m.BuildSurface(c)
	require.Len(t, mesh.Sections, 3, "камень и земля делят материал, листва отдельно")

	byMaterial := map[*block.Material]*MeshSection{}
	for _, s := range mesh.Sections {
		byMaterial[s.Material] = s
	}

	terrain := byMaterial[implementations.TerrainMaterial]
	require.NotNil(t, terrain)
	assert.Nil(t, terrain.BlockType)
	assert.Equal(t, 12, terrain.FaceCount())

	foliage := byMaterial[implementations.FoliageMaterial]
	require.NotNil(t, foliage)
	assert.Same(t, leaves, foliage.BlockType, "листва группируется по типу блока")
	assert.Equal(t, 12, foliage.FaceCount())

	assert.Equal(t, 6, byMaterial[implementations.DefaultSurfaceMaterial].FaceCount())
}

func TestMesher_VertexAttributes(t *testing.T) {
	reg := testRegistry(t)
	m := NewMesher(reg, mapLookup{}, MesherParams{VoxelSize: 100})
	c := standaloneChunk(vec.Vec3{})

	purple := color.RGBA{R: 128, B: 128, A: 255}
	c.storage.Write(2, 0, 0, reg.Get(implementations.SolidDefaultName).TypeID(), purple)

	mesh := m.BuildSurface(c)
	require.Len(t, mesh.Sections, 1)
	s := mesh.Sections[0]

	for i, p := range s.Positions {
		assert.True(t, p[0] == 200 || p[0] == 300, "позиция масштабирована размером вокселя: %v", p)
		assert.Equal(t, purple, s.Colors[i], "цвет берётся из вокселя")
	}
	for i := 0; i < len(s.Positions); i += 4 {
		assert.Equal(t, faceUVs[0], s.UVs[i])
		assert.Equal(t, faceUVs[2], s.UVs[i+2])
	}
	assert.Equal(t, []uint32{0, 1, 3, 1, 2, 3}, s.Triangles[:6])
}

func TestMesher_Collision(t *testing.T) {
	t.Run("одиночный воксель", func(t *testing.T) {
		m, reg := newTestMesher(t, mapLookup{}, true)
		c := standaloneChunk(vec.Vec3{})
		setVoxel(c, 3, 3, 3, reg.Get(implementations.SolidDefaultName))

		mesh := m.BuildCollision(c)
		assert.Equal(t, 12, mesh.TriangleCount())
		assert.Equal(t, float32(3), mesh.Bounds().Min[0])
		assert.Equal(t, float32(4), mesh.Bounds().Max[2])
	})

	t.Run("вода без коллизии", func(t *testing.T) {
		m, reg := newTestMesher(t, mapLookup{}, true)
		c := standaloneChunk(vec.Vec3{})
		setVoxel(c, 3, 3, 3, reg.Get(implementations.WaterName))
		setVoxel(c, 4, 3, 3, reg.Get(implementations.StoneName))

		// Камень рядом с водой: грань к воде остаётся в коллизии
		assert.Equal(t, 12, m.BuildCollision(c).TriangleCount())
	})

	t.Run("граница чанка всегда даёт коллизию", func(t *testing.T) {
		lookup := mapLookup{}
		m, reg := newTestMesher(t, lookup, true)
		solid := reg.Get(implementations.SolidDefaultName)
		c := standaloneChunk(vec.Vec3{})
		fillChunk(c, solid)
		n := standaloneChunk(vec.Vec3{X: 1})
		fillChunk(n, solid)
		lookup[n.pos] = n

		assert.Equal(t, 6*ChunkSize*ChunkSize*2, m.BuildCollision(c).TriangleCount())
	})
}

func TestNewMesher_PanicsWithoutRegistry(t *testing.T) {
	assert.Panics(t, func() { NewMesher(nil, mapLookup{}, MesherParams{}) })
}

func BenchmarkMesher_BuildSurfaceFlat(b *testing.B) {
	reg := testRegistry(b)
	m := NewMesher(reg, mapLookup{}, MesherParams{VoxelSize: 1, OccludeFaceBorder: true})
	c := standaloneChunk(vec.Vec3{})
	c.storage.Mu.Lock()
	NewFlatGenerator(reg, 8).Generate(c.pos, c.storage)
	c.storage.Mu.Unlock()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.BuildSurface(c)
	}
}
