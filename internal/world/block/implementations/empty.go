package implementations

import "github.com/annel0/voxel-engine/internal/world/block"

// EmptyName имя пустого блока
const EmptyName = "Empty"

// Empty возвращает определение пустого блока. Всегда занимает TypeID 0.
func Empty() *block.Def {
	d := block.NewDef(EmptyName)
	d.IsEmpty = true
	d.DoCollisions = false
	d.VisibilityType = VisibilityNone
	d.OverrideTypeID = 0
	d.Material = nil
	return d
}
