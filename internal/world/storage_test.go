package world

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/voxel-engine/internal/world/block"
)

func TestBlockStorage_NewIsEmpty(t *testing.T) {
	s := NewBlockStorage()

	v := s.Read(7, 8, 9)
	assert.Equal(t, block.EmptyBlockID, v.ID, "новое хранилище должно быть пустым")
	assert.Equal(t, DefaultVoxelColor, v.Color, "цвет по умолчанию белый")

	s.Mu.RLock()
	assert.Equal(t, 0, s.CountNonEmpty())
	s.Mu.RUnlock()
}

func TestBlockStorage_RoundTrip(t *testing.T) {
	s := NewBlockStorage()
	red := color.RGBA{R: 255, A: 255}

	cases := [][3]int{{0, 0, 0}, {31, 31, 31}, {1, 2, 3}, {31, 0, 17}}
	for i, p := range cases {
		s.Write(p[0], p[1], p[2], block.BlockID(i+1), red)
	}
	for i, p := range cases {
		v := s.Read(p[0], p[1], p[2])
		assert.Equal(t, block.BlockID(i+1), v.ID, "TypeID после записи должен совпадать: %v", p)
		assert.Equal(t, red, v.Color, "цвет после записи должен совпадать: %v", p)
	}
}

func TestBlockStorage_OutOfRangePanics(t *testing.T) {
	s := NewBlockStorage()

	assert.Panics(t, func() { s.Read(ChunkSize, 0, 0) })
	assert.Panics(t, func() { s.Read(0, -1, 0) })
	assert.Panics(t, func() { s.Write(0, 0, ChunkSize, 1, DefaultVoxelColor) })
}

func TestVoxelIndex_Layout(t *testing.T) {
	assert.Equal(t, 0, VoxelIndex(0, 0, 0))
	assert.Equal(t, 1, VoxelIndex(1, 0, 0), "X меняется быстрее всего")
	assert.Equal(t, ChunkSize, VoxelIndex(0, 1, 0))
	assert.Equal(t, ChunkSize*ChunkSize, VoxelIndex(0, 0, 1))
	assert.Equal(t, ChunkVolume-1, VoxelIndex(31, 31, 31))
}

func TestBlockStorage_FillAndReset(t *testing.T) {
	s := NewBlockStorage()

	s.Mu.Lock()
	s.Fill(Voxel{ID: 3, Color: DefaultVoxelColor})
	assert.Equal(t, ChunkVolume, s.CountNonEmpty())
	s.Reset()
	assert.Equal(t, 0, s.CountNonEmpty())
	s.Mu.Unlock()
}

func BenchmarkBlockStorage_Read(b *testing.B) {
	s := NewBlockStorage()
	for i := 0; i < b.N; i++ {
		_ = s.Read(i%ChunkSize, (i/ChunkSize)%ChunkSize, (i/(ChunkSize*ChunkSize))%ChunkSize)
	}
}
