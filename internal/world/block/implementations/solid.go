package implementations

import "github.com/annel0/voxel-engine/internal/world/block"

// SolidDefaultName имя твёрдого блока по умолчанию, используется плоским генератором
const SolidDefaultName = "SolidDefault"

// SolidDefault возвращает непрозрачный блок с материалом по умолчанию (TypeID 1)
func SolidDefault() *block.Def {
	d := block.NewDef(SolidDefaultName)
	d.DoCollisions = true
	d.VisibilityType = VisibilityOpaque
	d.OverrideTypeID = 1
	d.Material = DefaultSurfaceMaterial
	return d
}
