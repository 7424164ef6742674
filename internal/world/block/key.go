package block

import "fmt"

type keyKind uint8

const (
	keyByName keyKind = iota
	keyByIndex
)

// Key задаёт поиск в реестре по имени либо по индексу
type Key struct {
	kind  keyKind
	name  string
	index int
}

// ByName создаёт ключ поиска по RegistryName
func ByName(name string) Key {
	return Key{kind: keyByName, name: name}
}

// ByID создаёт ключ поиска по TypeID
func ByID(id BlockID) Key {
	return Key{kind: keyByIndex, index: int(id)}
}

// ByIndex создаёт ключ поиска по знаковому индексу (отрицательный индекс допустим и даёт пустой блок)
func ByIndex(index int) Key {
	return Key{kind: keyByIndex, index: index}
}

// String возвращает представление ключа для логов
func (k Key) String() string {
	if k.kind == keyByName {
		return fmt.Sprintf("name=%q", k.name)
	}
	return fmt.Sprintf("index=%d", k.index)
}
