package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxel-engine/internal/vec"
)

// Face грань вокселя
type Face int

const (
	FaceFront  Face = iota // +X
	FaceBack               // -X
	FaceLeft               // -Y
	FaceRight              // +Y
	FaceTop                // +Z
	FaceBottom             // -Z

	FaceCount = 6
)

// AllFaces перечисляет грани в порядке обхода мешера
var AllFaces = [FaceCount]Face{FaceFront, FaceBack, FaceLeft, FaceRight, FaceTop, FaceBottom}

var faceDirections = [FaceCount]vec.Vec3{
	FaceFront:  {X: 1},
	FaceBack:   {X: -1},
	FaceLeft:   {Y: -1},
	FaceRight:  {Y: 1},
	FaceTop:    {Z: 1},
	FaceBottom: {Z: -1},
}

// Вершины единичного куба
var boxVertices = [8]mgl32.Vec3{
	{0, 1, 1},
	{1, 1, 1},
	{1, 0, 1},
	{0, 0, 1},
	{0, 1, 0},
	{1, 1, 0},
	{1, 0, 0},
	{0, 0, 0},
}

// Индексы вершин куба для каждой грани. Обход одинаковый для всех граней.
var faceVertexIndices = [FaceCount][4]int{
	FaceFront:  {6, 2, 1, 5},
	FaceBack:   {4, 0, 3, 7},
	FaceLeft:   {7, 3, 2, 6},
	FaceRight:  {5, 1, 0, 4},
	FaceTop:    {0, 1, 2, 3},
	FaceBottom: {7, 6, 5, 4},
}

var faceNormals = [FaceCount]mgl32.Vec3{
	FaceFront:  {1, 0, 0},
	FaceBack:   {-1, 0, 0},
	FaceLeft:   {0, -1, 0},
	FaceRight:  {0, 1, 0},
	FaceTop:    {0, 0, 1},
	FaceBottom: {0, 0, -1},
}

var faceTangents = [FaceCount]mgl32.Vec3{
	FaceFront:  {0, 1, 0},
	FaceBack:   {0, -1, 0},
	FaceLeft:   {1, 0, 0},
	FaceRight:  {-1, 0, 0},
	FaceTop:    {0, -1, 0},
	FaceBottom: {0, 1, 0},
}

var faceUVs = [4]mgl32.Vec2{{0, 0}, {0, 1}, {1, 1}, {1, 0}}

// Direction возвращает единичный шаг в сторону грани
func (f Face) Direction() vec.Vec3 {
	return faceDirections[f]
}

// Normal возвращает нормаль грани
func (f Face) Normal() mgl32.Vec3 {
	return faceNormals[f]
}

// Tangent возвращает касательную грани
func (f Face) Tangent() mgl32.Vec3 {
	return faceTangents[f]
}

// Opposite возвращает противоположную грань
func (f Face) Opposite() Face {
	switch f {
	case FaceFront:
		return FaceBack
	case FaceBack:
		return FaceFront
	case FaceLeft:
		return FaceRight
	case FaceRight:
		return FaceLeft
	case FaceTop:
		return FaceBottom
	default:
		return FaceTop
	}
}

func (f Face) String() string {
	switch f {
	case FaceFront:
		return "front"
	case FaceBack:
		return "back"
	case FaceLeft:
		return "left"
	case FaceRight:
		return "right"
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// faceCorners возвращает 4 вершины грани вокселя local, масштабированные на voxelSize
func faceCorners(f Face, local vec.Vec3, voxelSize float32) [4]mgl32.Vec3 {
	offset := mgl32.Vec3{float32(local.X), float32(local.Y), float32(local.Z)}
	var out [4]mgl32.Vec3
	for i, vi := range faceVertexIndices[f] {
		out[i] = boxVertices[vi].Add(offset).Mul(voxelSize)
	}
	return out
}
