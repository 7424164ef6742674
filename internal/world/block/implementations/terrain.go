package implementations

import (
	"image/color"

	"github.com/annel0/voxel-engine/internal/world/block"
)

// Имена блоков ландшафта
const (
	StoneName = "Stone"
	DirtName  = "Dirt"
	GrassName = "Grass"
)

func terrainDef(name string, c color.RGBA) *block.Def {
	d := block.NewDef(name)
	d.DoCollisions = true
	d.VisibilityType = VisibilityOpaque
	d.Material = TerrainMaterial
	d.DefaultColor = c
	return d
}

// Stone создаёт камень
func Stone() *block.Def {
	return terrainDef(StoneName, color.RGBA{R: 128, G: 128, B: 128, A: 255})
}

// Dirt создаёт землю
func Dirt() *block.Def {
	return terrainDef(DirtName, color.RGBA{R: 121, G: 85, B: 58, A: 255})
}

// Grass создаёт траву, верхний слой ландшафта
func Grass() *block.Def {
	return terrainDef(GrassName, color.RGBA{R: 96, G: 160, B: 64, A: 255})
}
