package util

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// HashCoords возвращает детерминированный хеш целочисленных координат и сида
func HashCoords(seed int64, x, y, z int) uint64 {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(seed))
	binary.LittleEndian.PutUint64(buf[8:], uint64(int64(x)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(int64(y)))
	binary.LittleEndian.PutUint64(buf[24:], uint64(int64(z)))
	return xxhash.Sum64(buf[:])
}

// HashUnit отображает хеш координат в [0, 1)
func HashUnit(seed int64, x, y, z int) float64 {
	return float64(HashCoords(seed, x, y, z)>>11) / float64(uint64(1)<<53)
}

// HashString возвращает хеш строки
func HashString(s string) uint64 {
	return xxhash.Sum64String(s)
}
