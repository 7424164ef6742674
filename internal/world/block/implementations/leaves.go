package implementations

import (
	"image/color"

	"github.com/annel0/voxel-engine/internal/world/block"
)

// LeavesName имя блока листвы
const LeavesName = "Leaves"

// Leaves создаёт листву. Всегда в отдельной секции меша, даже при общем материале.
func Leaves() *block.Def {
	d := block.NewDef(LeavesName)
	d.DoCollisions = true
	d.VisibilityType = VisibilityFoliage
	d.Material = FoliageMaterial
	d.SeparateMeshSections = true
	d.DefaultColor = color.RGBA{R: 60, G: 140, B: 50, A: 220}
	return d
}
