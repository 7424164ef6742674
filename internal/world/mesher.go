package world

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/physics"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/block"
)

// MeshSection содержит группу граней, которая рисуется одним вызовом.
// BlockType заполнен, только если секция выделена под один тип блока.
type MeshSection struct {
	Material  *block.Material
	BlockType *block.Def

	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Tangents  []mgl32.Vec3
	UVs       []mgl32.Vec2
	Colors    []color.RGBA
	Triangles []uint32
}

// FaceCount возвращает количество граней в секции
func (s *MeshSection) FaceCount() int {
	return len(s.Positions) / 4
}

// TriangleCount возвращает количество треугольников в секции
func (s *MeshSection) TriangleCount() int {
	return len(s.Triangles) / 3
}

func (s *MeshSection) addFace(f Face, local vec.Vec3, voxelSize float32, c color.RGBA) {
	base := uint32(len(s.Positions))
	corners := faceCorners(f, local, voxelSize)
	normal := f.Normal()
	tangent := f.Tangent()
	for i := 0; i < 4; i++ {
		s.Positions = append(s.Positions, corners[i])
		s.Normals = append(s.Normals, normal)
		s.Tangents = append(s.Tangents, tangent)
		s.UVs = append(s.UVs, faceUVs[i])
		s.Colors = append(s.Colors, c)
	}
	s.Triangles = append(s.Triangles,
		base+0, base+1, base+3,
		base+1, base+2, base+3,
	)
}

// MeshData содержит готовый снимок поверхности чанка. После публикации не изменяется.
type MeshData struct {
	Sections []*MeshSection
}

// FaceCount возвращает общее количество граней
func (m *MeshData) FaceCount() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, s := range m.Sections {
		n += s.FaceCount()
	}
	return n
}

// TriangleCount возвращает общее количество треугольников
func (m *MeshData) TriangleCount() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, s := range m.Sections {
		n += s.TriangleCount()
	}
	return n
}

// ChunkLookup находит загруженный чанк по координатам. nil означает, что чанка нет.
type ChunkLookup interface {
	LookupChunk(pos vec.Vec3) *Chunk
}

// MesherParams содержит параметры построения мешей
type MesherParams struct {
	VoxelSize float32

	// Если true, грани на границе чанка закрываются отсутствующим соседом
	// и сравниваются с типом видимости соседнего чанка.
	OccludeFaceBorder bool
}

// Mesher строит поверхность и коллизию чанка.
// Каждый вызов возвращает новый объект, общее состояние не изменяется.
type Mesher struct {
	registry *block.Registry
	lookup   ChunkLookup
	params   MesherParams
	logger   *logging.Logger
}

// NewMesher создаёт мешер. Реестр обязателен.
func NewMesher(registry *block.Registry, lookup ChunkLookup, params MesherParams) *Mesher {
	if registry == nil {
		panic("mesher: block registry is not initialized")
	}
	if params.VoxelSize <= 0 {
		params.VoxelSize = 1
	}
	return &Mesher{
		registry: registry,
		lookup:   lookup,
		params:   params,
		logger:   logging.GetMesherLogger(),
	}
}

// Params возвращает параметры мешера
func (m *Mesher) Params() MesherParams {
	return m.params
}

// borderSlab хранит типы видимости граничной плоскости соседнего чанка
type borderSlab [ChunkSize * ChunkSize]int32

// slabIndex возвращает индекс в плоскости по координатам вокселя текущего чанка
func slabIndex(f Face, local vec.Vec3) int {
	switch f {
	case FaceFront, FaceBack:
		return local.Y + local.Z*ChunkSize
	case FaceLeft, FaceRight:
		return local.X + local.Z*ChunkSize
	default:
		return local.X + local.Y*ChunkSize
	}
}

// borderCoords возвращает координаты вокселя соседнего чанка, прилегающего к грани f
func borderCoords(f Face, a, b int) (int, int, int) {
	switch f {
	case FaceFront:
		return 0, a, b
	case FaceBack:
		return ChunkSize - 1, a, b
	case FaceRight:
		return a, 0, b
	case FaceLeft:
		return a, ChunkSize - 1, b
	case FaceTop:
		return a, b, 0
	default:
		return a, b, ChunkSize - 1
	}
}

// snapshotBorders копирует граничные плоскости соседей.
// Каждый сосед блокируется отдельно и до блокировки самого чанка,
// поэтому мешер никогда не держит две блокировки хранилищ сразу.
func (m *Mesher) snapshotBorders(c *Chunk) [FaceCount]*borderSlab {
	var out [FaceCount]*borderSlab
	if m.lookup == nil {
		return out
	}
	for _, f := range AllFaces {
		n := m.lookup.LookupChunk(c.pos.Add(f.Direction()))
		if n == nil {
			continue
		}
		slab := new(borderSlab)
		n.storage.Mu.RLock()
		for b := 0; b < ChunkSize; b++ {
			for a := 0; a < ChunkSize; a++ {
				x, y, z := borderCoords(f, a, b)
				slab[a+b*ChunkSize] = int32(m.registry.Lookup(n.storage.Block(x, y, z).ID).VisibilityType)
			}
		}
		n.storage.Mu.RUnlock()
		out[f] = slab
	}
	return out
}

// BuildSurface строит видимую поверхность чанка
func (m *Mesher) BuildSurface(c *Chunk) *MeshData {
	var borders [FaceCount]*borderSlab
	if m.params.OccludeFaceBorder {
		borders = m.snapshotBorders(c)
	}

	data := &MeshData{}
	cache := make([]*MeshSection, m.registry.TableSize())
	byMaterial := make(map[*block.Material]*MeshSection)

	s := c.storage
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	for z := 0; z < ChunkSize; z++ {
		for y := 0; y < ChunkSize; y++ {
			for x := 0; x < ChunkSize; x++ {
				v := s.voxels[x+y*ChunkSize+z*ChunkSize*ChunkSize]
				def := m.registry.Lookup(v.ID)
				if !def.ShouldBePolygonized() {
					continue
				}

				local := vec.Vec3{X: x, Y: y, Z: z}
				var section *MeshSection
				for _, f := range AllFaces {
					if m.surfaceOccluded(s, &borders, local, f, def) {
						continue
					}
					if section == nil {
						section = m.sectionFor(def, cache, byMaterial, data)
					}
					section.addFace(f, local, m.params.VoxelSize, v.Color)
				}
			}
		}
	}
	return data
}

func (m *Mesher) surfaceOccluded(s *BlockStorage, borders *[FaceCount]*borderSlab, local vec.Vec3, f Face, def *block.Def) bool {
	n := local.Add(f.Direction())
	if n.IsLocal() {
		return m.registry.Lookup(s.Block(n.X, n.Y, n.Z).ID).VisibilityType == def.VisibilityType
	}
	if !m.params.OccludeFaceBorder {
		return false
	}
	slab := borders[f]
	if slab == nil {
		return true
	}
	return int(slab[slabIndex(f, local)]) == def.VisibilityType
}

// sectionFor возвращает секцию для типа блока. Кеш по TypeID живёт один вызов BuildSurface.
func (m *Mesher) sectionFor(def *block.Def, cache []*MeshSection, byMaterial map[*block.Material]*MeshSection, data *MeshData) *MeshSection {
	id := int(def.TypeID())
	if id < len(cache) && cache[id] != nil {
		return cache[id]
	}

	var section *MeshSection
	if def.SeparateMeshSections {
		section = &MeshSection{Material: def.Material, BlockType: def}
		data.Sections = append(data.Sections, section)
	} else if existing, ok := byMaterial[def.Material]; ok {
		section = existing
	} else {
		section = &MeshSection{Material: def.Material}
		byMaterial[def.Material] = section
		data.Sections = append(data.Sections, section)
	}

	if id < len(cache) {
		cache[id] = section
	}
	return section
}

// BuildCollision строит геометрию коллизий. Соседние чанки не проверяются:
// на границе чанка грань коллизии строится всегда.
func (m *Mesher) BuildCollision(c *Chunk) *physics.CollisionMesh {
	mesh := physics.NewCollisionMesh(0)

	s := c.storage
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	for z := 0; z < ChunkSize; z++ {
		for y := 0; y < ChunkSize; y++ {
			for x := 0; x < ChunkSize; x++ {
				def := m.registry.Lookup(s.voxels[x+y*ChunkSize+z*ChunkSize*ChunkSize].ID)
				if !def.DoCollisions {
					continue
				}

				local := vec.Vec3{X: x, Y: y, Z: z}
				for _, f := range AllFaces {
					n := local.Add(f.Direction())
					if n.IsLocal() && m.registry.Lookup(s.Block(n.X, n.Y, n.Z).ID).DoCollisions {
						continue
					}
					q := faceCorners(f, local, m.params.VoxelSize)
					mesh.AddQuad(q[0], q[1], q[2], q[3])
				}
			}
		}
	}
	return mesh
}
