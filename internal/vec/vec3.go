package vec

import "math"

// ChunkSize длина ребра чанка в вокселях
const ChunkSize = 32

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Используется и для координат чанков, и для глобальных координат вокселей.
type Vec3 struct {
	X int
	Y int
	Z int
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Mul умножает вектор на скаляр
func (v Vec3) Mul(s int) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// DistanceTo возвращает евклидово расстояние до другого вектора
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	dz := float64(v.Z - other.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// ToChunkCoords преобразует глобальные координаты вокселя в координаты чанка.
// Деление с округлением вниз, поэтому -1 попадает в чанк -1.
func (v Vec3) ToChunkCoords() Vec3 {
	return Vec3{X: floorDiv(v.X, ChunkSize), Y: floorDiv(v.Y, ChunkSize), Z: floorDiv(v.Z, ChunkSize)}
}

// LocalInChunk возвращает локальные координаты внутри чанка (0..ChunkSize-1)
func (v Vec3) LocalInChunk() Vec3 {
	return Vec3{X: floorMod(v.X, ChunkSize), Y: floorMod(v.Y, ChunkSize), Z: floorMod(v.Z, ChunkSize)}
}

// ChunkMinPos возвращает глобальные координаты минимального вокселя чанка
func (v Vec3) ChunkMinPos() Vec3 {
	return v.Mul(ChunkSize)
}

// IsLocal проверяет, лежат ли координаты внутри одного чанка
func (v Vec3) IsLocal() bool {
	return v.X >= 0 && v.X < ChunkSize &&
		v.Y >= 0 && v.Y < ChunkSize &&
		v.Z >= 0 && v.Z < ChunkSize
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
