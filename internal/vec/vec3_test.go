package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3_ChunkConversion(t *testing.T) {
	cases := []struct {
		global Vec3
		chunk  Vec3
		local  Vec3
	}{
		{Vec3{0, 0, 0}, Vec3{0, 0, 0}, Vec3{0, 0, 0}},
		{Vec3{31, 32, 33}, Vec3{0, 1, 1}, Vec3{31, 0, 1}},
		{Vec3{-1, -32, -33}, Vec3{-1, -1, -2}, Vec3{31, 0, 31}},
	}

	for _, c := range cases {
		assert.Equal(t, c.chunk, c.global.ToChunkCoords(), "чанк для %v", c.global)
		assert.Equal(t, c.local, c.global.LocalInChunk(), "локальные координаты для %v", c.global)
		assert.Equal(t, c.global, c.chunk.ChunkMinPos().Add(c.local), "обратное преобразование для %v", c.global)
	}
}

func TestVec3_IsLocal(t *testing.T) {
	assert.True(t, Vec3{0, 0, 0}.IsLocal())
	assert.True(t, Vec3{31, 31, 31}.IsLocal())
	assert.False(t, Vec3{32, 0, 0}.IsLocal())
	assert.False(t, Vec3{0, -1, 0}.IsLocal())
}

func TestVec3_DistanceTo(t *testing.T) {
	assert.InDelta(t, 5.0, Vec3{0, 0, 0}.DistanceTo(Vec3{3, 4, 0}), 1e-9)
}
