package implementations

import "github.com/annel0/voxel-engine/internal/world/block"

// Defaults возвращает список встроенных определений блоков
func Defaults() []*block.Def {
	return []*block.Def{
		Empty(),
		SolidDefault(),
		Stone(),
		Dirt(),
		Grass(),
		Water(),
		Leaves(),
	}
}

// RegisterDefaults добавляет встроенные блоки в каталог
func RegisterDefaults(c *block.Catalog) {
	for _, def := range Defaults() {
		c.Register(def)
	}
}

// NewDefaultRegistry строит реестр только из встроенных блоков
func NewDefaultRegistry() (*block.Registry, error) {
	c := block.NewCatalog()
	RegisterDefaults(c)
	return c.Build()
}
