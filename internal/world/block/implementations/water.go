package implementations

import (
	"image/color"

	"github.com/annel0/voxel-engine/internal/world/block"
)

// WaterName имя блока воды
const WaterName = "Water"

// Water создаёт воду: без коллизий, собственный тип видимости,
// поэтому грани между водой и сушей рисуются с обеих сторон.
func Water() *block.Def {
	d := block.NewDef(WaterName)
	d.DoCollisions = false
	d.VisibilityType = VisibilityWater
	d.Material = WaterMaterial
	d.DefaultColor = color.RGBA{R: 48, G: 96, B: 200, A: 160}
	return d
}
