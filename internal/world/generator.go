package world

import (
	"image/color"

	"github.com/annel0/voxel-engine/internal/util"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/block"
	"github.com/annel0/voxel-engine/internal/world/block/implementations"
)

// Generator заполняет хранилище нового чанка.
// Вызывается из воркера, блокировка хранилища на запись уже взята.
type Generator interface {
	Generate(pos vec.Vec3, storage *BlockStorage)
}

// GeneratorFunc позволяет использовать функцию как Generator
type GeneratorFunc func(pos vec.Vec3, storage *BlockStorage)

// Generate вызывает f
func (f GeneratorFunc) Generate(pos vec.Vec3, storage *BlockStorage) {
	f(pos, storage)
}

// DefaultFlatHeight высота плоского мира по умолчанию
const DefaultFlatHeight = 2

// FlatGenerator заполняет все воксели с глобальным Z < Height одним блоком
type FlatGenerator struct {
	Height int
	Block  *block.Def
}

// NewFlatGenerator создаёт плоский генератор из блока SolidDefault
func NewFlatGenerator(registry *block.Registry, height int) *FlatGenerator {
	if height <= 0 {
		height = DefaultFlatHeight
	}
	return &FlatGenerator{
		Height: height,
		Block:  registry.Get(implementations.SolidDefaultName),
	}
}

// Generate реализует Generator
func (g *FlatGenerator) Generate(pos vec.Vec3, storage *BlockStorage) {
	baseZ := pos.Z * ChunkSize
	if baseZ >= g.Height {
		return
	}
	v := Voxel{ID: g.Block.TypeID(), Color: g.Block.DefaultColor}
	for z := 0; z < ChunkSize && baseZ+z < g.Height; z++ {
		for y := 0; y < ChunkSize; y++ {
			for x := 0; x < ChunkSize; x++ {
				storage.SetBlock(x, y, z, v)
			}
		}
	}
}

// NoiseGenerator строит ландшафт по карте высот из шума Перлина:
// камень, слой земли, трава сверху и вода ниже уровня моря.
type NoiseGenerator struct {
	BaseHeight int     // минимальная высота поверхности
	Amplitude  int     // разброс высоты
	Scale      float64 // частота шума на воксель
	SeaLevel   int
	DirtDepth  int

	seed  int64
	noise *util.Noise
	stone *block.Def
	dirt  *block.Def
	grass *block.Def
	water *block.Def
}

// NewNoiseGenerator создаёт генератор с параметрами по умолчанию
func NewNoiseGenerator(registry *block.Registry, seed int64) *NoiseGenerator {
	return &NoiseGenerator{
		BaseHeight: 4,
		Amplitude:  24,
		Scale:      0.02,
		SeaLevel:   10,
		DirtDepth:  3,
		seed:       seed,
		noise:      util.NewNoise(seed),
		stone:      registry.Get(implementations.StoneName),
		dirt:       registry.Get(implementations.DirtName),
		grass:      registry.Get(implementations.GrassName),
		water:      registry.Get(implementations.WaterName),
	}
}

// SurfaceHeight возвращает высоту поверхности в глобальной колонке (x, y)
func (g *NoiseGenerator) SurfaceHeight(x, y int) int {
	n := g.noise.Octave2D(float64(x)*g.Scale, float64(y)*g.Scale, 4, 0.5)
	return g.BaseHeight + int(n*float64(g.Amplitude))
}

// Generate реализует Generator
func (g *NoiseGenerator) Generate(pos vec.Vec3, storage *BlockStorage) {
	minPos := pos.ChunkMinPos()
	top := g.BaseHeight + g.Amplitude
	if g.SeaLevel > top {
		top = g.SeaLevel
	}
	if minPos.Z > top {
		return
	}

	for y := 0; y < ChunkSize; y++ {
		for x := 0; x < ChunkSize; x++ {
			gx, gy := minPos.X+x, minPos.Y+y
			height := g.SurfaceHeight(gx, gy)
			hash := util.HashCoords(g.seed, gx, gy, 0)

			for z := 0; z < ChunkSize; z++ {
				gz := minPos.Z + z
				var def *block.Def
				switch {
				case gz < height-g.DirtDepth:
					def = g.stone
				case gz < height-1:
					def = g.dirt
				case gz == height-1:
					def = g.grass
				case gz < g.SeaLevel:
					def = g.water
				default:
					continue
				}
				storage.SetBlock(x, y, z, Voxel{ID: def.TypeID(), Color: tint(def.DefaultColor, hash)})
			}
		}
	}
}

// tint слегка меняет яркость цвета по хешу колонки (±8%)
func tint(c color.RGBA, hash uint64) color.RGBA {
	factor := 0.92 + float64(hash%161)/1000.0
	scale := func(v uint8) uint8 {
		f := float64(v) * factor
		if f > 255 {
			return 255
		}
		return uint8(f)
	}
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}
