package world

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/block"
)

const (
	// ChunkSize длина ребра чанка в вокселях
	ChunkSize = vec.ChunkSize
	// ChunkVolume количество вокселей в чанке
	ChunkVolume = ChunkSize * ChunkSize * ChunkSize
)

// DefaultVoxelColor цвет вокселя в только что созданном хранилище
var DefaultVoxelColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Voxel содержит тип блока и цвет одного вокселя
type Voxel struct {
	ID    block.BlockID
	Color color.RGBA
}

// BlockStorage хранит воксели одного чанка.
// Порядок: X меняется быстрее всего, затем Y, затем Z.
//
// Block и SetBlock не блокируют, вызывающий обязан держать Mu
// (RLock для чтения, Lock для записи). Read и Write берут блокировку сами.
type BlockStorage struct {
	Mu     sync.RWMutex
	voxels [ChunkVolume]Voxel
}

// NewBlockStorage создаёт хранилище, заполненное пустыми блоками белого цвета
func NewBlockStorage() *BlockStorage {
	s := &BlockStorage{}
	s.fill(Voxel{ID: block.EmptyBlockID, Color: DefaultVoxelColor})
	return s
}

// VoxelIndex возвращает индекс вокселя в массиве хранилища.
// Координаты вне чанка считаются ошибкой программиста, поэтому паника.
func VoxelIndex(x, y, z int) int {
	if x < 0 || x >= ChunkSize || y < 0 || y >= ChunkSize || z < 0 || z >= ChunkSize {
		panic(fmt.Sprintf("voxel coordinates out of range: (%d, %d, %d)", x, y, z))
	}
	return x + y*ChunkSize + z*ChunkSize*ChunkSize
}

// Block возвращает воксель. Требует удержания Mu.
func (s *BlockStorage) Block(x, y, z int) Voxel {
	return s.voxels[VoxelIndex(x, y, z)]
}

// SetBlock записывает воксель. Требует удержания Mu на запись.
func (s *BlockStorage) SetBlock(x, y, z int, v Voxel) {
	s.voxels[VoxelIndex(x, y, z)] = v
}

// Read читает воксель под блокировкой на чтение
func (s *BlockStorage) Read(x, y, z int) Voxel {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	return s.Block(x, y, z)
}

// Write записывает воксель под блокировкой на запись
func (s *BlockStorage) Write(x, y, z int, id block.BlockID, c color.RGBA) {
	idx := VoxelIndex(x, y, z)
	s.Mu.Lock()
	s.voxels[idx] = Voxel{ID: id, Color: c}
	s.Mu.Unlock()
}

// Fill заполняет весь чанк одним вокселем. Требует удержания Mu на запись.
func (s *BlockStorage) Fill(v Voxel) {
	s.fill(v)
}

// Reset возвращает хранилище к пустому состоянию. Требует удержания Mu на запись.
func (s *BlockStorage) Reset() {
	s.fill(Voxel{ID: block.EmptyBlockID, Color: DefaultVoxelColor})
}

// CountNonEmpty возвращает количество непустых вокселей. Требует удержания Mu.
func (s *BlockStorage) CountNonEmpty() int {
	n := 0
	for i := range s.voxels {
		if s.voxels[i].ID != block.EmptyBlockID {
			n++
		}
	}
	return n
}

func (s *BlockStorage) fill(v Voxel) {
	for i := range s.voxels {
		s.voxels[i] = v
	}
}
