package implementations

import "github.com/annel0/voxel-engine/internal/world/block"

// Материалы встроенных блоков. Блоки с общим материалом батчатся в одну секцию меша.
var (
	DefaultSurfaceMaterial = &block.Material{Name: "default_surface"}
	TerrainMaterial        = &block.Material{Name: "terrain"}
	WaterMaterial          = &block.Material{Name: "water", Translucent: true}
	FoliageMaterial        = &block.Material{Name: "foliage", Translucent: true}
)

// Типы видимости: блоки одного типа закрывают друг другу грани
const (
	VisibilityNone    = 0 // пустое пространство
	VisibilityOpaque  = 1
	VisibilityWater   = 2
	VisibilityFoliage = 3
)
