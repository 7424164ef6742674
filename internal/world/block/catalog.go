package block

import "sync"

// Catalog содержит явный список регистрации определений блоков.
// Собирается при загрузке, затем один раз превращается в Registry.
type Catalog struct {
	mu   sync.Mutex
	defs []*Def
}

// NewCatalog создаёт пустой каталог
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Register добавляет определение в каталог. Проверки выполняются в Build.
func (c *Catalog) Register(def *Def) {
	c.mu.Lock()
	c.defs = append(c.defs, def)
	c.mu.Unlock()
}

// Len возвращает количество добавленных определений
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.defs)
}

// Build строит реестр из всех добавленных определений
func (c *Catalog) Build() (*Registry, error) {
	c.mu.Lock()
	defs := make([]*Def, len(c.defs))
	copy(defs, c.defs)
	c.mu.Unlock()

	return NewRegistry(defs...)
}
