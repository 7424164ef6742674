package util

import (
	"github.com/aquilax/go-perlin"
)

// Параметры шума по умолчанию
const (
	DefaultNoiseAlpha   = 2.0 // Сглаживание шума
	DefaultNoiseBeta    = 2.0 // Частота шума
	DefaultNoiseOctaves = 3
)

// Noise генерирует шум Перлина с фиксированным сидом.
// perlin.Perlin после создания только читается, поэтому Noise можно
// использовать из нескольких воркеров одновременно.
type Noise struct {
	seed   int64
	perlin *perlin.Perlin
}

// NewNoise создаёт генератор с параметрами по умолчанию
func NewNoise(seed int64) *Noise {
	return NewNoiseWithParams(seed, DefaultNoiseAlpha, DefaultNoiseBeta, DefaultNoiseOctaves)
}

// NewNoiseWithParams создаёт генератор с заданными параметрами
func NewNoiseWithParams(seed int64, alpha, beta float64, octaves int32) *Noise {
	return &Noise{
		seed:   seed,
		perlin: perlin.NewPerlin(alpha, beta, octaves, seed),
	}
}

// Seed возвращает сид генератора
func (n *Noise) Seed() int64 {
	return n.seed
}

// Noise2D возвращает значение шума в диапазоне от 0 до 1
func (n *Noise) Noise2D(x, y float64) float64 {
	return clamp01((n.perlin.Noise2D(x, y) + 1.0) / 2.0)
}

// Noise3D возвращает значение объёмного шума в диапазоне от 0 до 1
func (n *Noise) Noise3D(x, y, z float64) float64 {
	return clamp01((n.perlin.Noise3D(x, y, z) + 1.0) / 2.0)
}

// Octave2D суммирует несколько слоёв шума с убывающей амплитудой.
// Результат нормирован в диапазон от 0 до 1.
func (n *Noise) Octave2D(x, y float64, layers int, persistence float64) float64 {
	if layers <= 0 {
		return 0
	}
	total, amplitude, frequency, norm := 0.0, 1.0, 1.0, 0.0
	for i := 0; i < layers; i++ {
		total += n.Noise2D(x*frequency, y*frequency) * amplitude
		norm += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / norm
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
