package block

import (
	"errors"
	"fmt"

	"github.com/annel0/voxel-engine/internal/logging"
)

// ErrNoEmptyBlock возвращается, если слот 0 не занят пустым блоком
var ErrNoEmptyBlock = errors.New("block registry: index 0 must be the empty block")

// Registry хранит зарегистрированные типы блоков и таблицу TypeID -> Def.
// После создания только читается, поэтому безопасен для конкурентного доступа.
type Registry struct {
	byName  map[string]*Def
	indices []*Def
	logger  *logging.Logger
}

// NewRegistry регистрирует определения и назначает им TypeID.
//
// Некорректные имена, дубликаты и конфликты OverrideTypeID логируются и исправляются.
// Фатально только одно: слот 0 не занят пустым блоком.
// Определения копируются: переданные указатели не изменяются.
func NewRegistry(defs ...*Def) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*Def, len(defs)),
		logger: logging.GetRegistryLogger(),
	}

	// Порядок принятых определений важен для детерминированной индексации
	accepted := make([]*Def, 0, len(defs))
	for _, src := range defs {
		if src == nil || src.DontRegister {
			continue
		}
		if src.RegistryName == "" {
			r.logger.Error("Определение блока без RegistryName пропущено")
			continue
		}
		if _, exists := r.byName[src.RegistryName]; exists {
			r.logger.Error("Дубликат RegistryName %q пропущен", src.RegistryName)
			continue
		}

		def := *src
		def.typeID = 0
		def.registered = false
		r.byName[def.RegistryName] = &def
		accepted = append(accepted, &def)
	}

	r.indices = make([]*Def, len(accepted))

	// Первый проход: ручные TypeID
	for _, def := range accepted {
		if !def.HasOverride() {
			continue
		}
		id := def.OverrideTypeID
		if id >= len(r.indices) {
			r.logger.Warn("OverrideTypeID %d (%s) больше размера таблицы %d, расширяем", id, def.RegistryName, len(r.indices))
			r.indices = append(r.indices, make([]*Def, id-len(r.indices)+1)...)
		}
		if r.indices[id] != nil {
			r.logger.Error("Конфликт OverrideTypeID %d: %s и %s, %s будет проиндексирован автоматически",
				id, r.indices[id].RegistryName, def.RegistryName, def.RegistryName)
			def.OverrideTypeID = AutoTypeID
			continue
		}
		r.indices[id] = def
	}

	// Второй проход: остальные блоки занимают первый свободный слот.
	// Курсор никогда не возвращается назад.
	cursor := 0
	for _, def := range accepted {
		if def.HasOverride() {
			continue
		}
		for cursor < len(r.indices) && r.indices[cursor] != nil {
			cursor++
		}
		if cursor == len(r.indices) {
			r.indices = append(r.indices, nil)
		}
		r.indices[cursor] = def
		cursor++
	}

	// Назначаем TypeID по всей таблице, включая слоты за пределами исходного размера
	holes := 0
	for index, def := range r.indices {
		if def == nil {
			holes++
			continue
		}
		def.typeID = BlockID(index)
		def.registered = true
	}
	if holes > 0 {
		r.logger.Warn("В таблице типов блоков %d пустых слотов из-за OverrideTypeID", holes)
	}

	if len(r.indices) == 0 || r.indices[0] == nil || !r.indices[0].IsEmpty {
		return nil, ErrNoEmptyBlock
	}

	r.logger.Info("Зарегистрировано %d типов блоков", len(r.byName))
	return r, nil
}

// MustNewRegistry как NewRegistry, но паникует при нарушении инварианта слота 0
func MustNewRegistry(defs ...*Def) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(fmt.Sprintf("block registry: %v", err))
	}
	return r
}

// Resolve находит определение по ключу. При промахе логирует ошибку
// и возвращает пустой блок, вызывающий всегда получает валидное значение.
func (r *Registry) Resolve(key Key) *Def {
	if key.kind == keyByName {
		return r.Get(key.name)
	}
	if key.index < 0 {
		r.logger.Error("Запрос блока с отрицательным индексом %d", key.index)
		return r.Empty()
	}
	if key.index >= r.TableSize() {
		r.logger.Error("Запрос блока с индексом %d вне таблицы (%d)", key.index, r.TableSize())
		return r.Empty()
	}
	return r.ByID(BlockID(key.index))
}

// Get возвращает определение по имени
func (r *Registry) Get(name string) *Def {
	if def, ok := r.byName[name]; ok {
		return def
	}
	r.logger.Error("Неизвестное имя блока: %s", name)
	return r.Empty()
}

// ByID возвращает определение по TypeID
func (r *Registry) ByID(id BlockID) *Def {
	if !r.IsValidID(id) {
		r.logger.Error("Недопустимый TypeID в ByID: %d", id)
		return r.Empty()
	}
	return r.indices[id]
}

// Lookup возвращает определение по TypeID без логирования промахов.
// Используется в горячих циклах мешера.
func (r *Registry) Lookup(id BlockID) *Def {
	if int(id) < len(r.indices) {
		if def := r.indices[id]; def != nil {
			return def
		}
	}
	return r.indices[0]
}

// IsValidID проверяет, занят ли слот TypeID
func (r *Registry) IsValidID(id BlockID) bool {
	return int(id) < len(r.indices) && r.indices[id] != nil
}

// Empty возвращает пустой блок (TypeID 0)
func (r *Registry) Empty() *Def {
	return r.indices[0]
}

// BlockCount возвращает количество зарегистрированных типов
func (r *Registry) BlockCount() int {
	return len(r.byName)
}

// TableSize возвращает размер таблицы индексов (может превышать BlockCount из-за пропусков)
func (r *Registry) TableSize() int {
	return len(r.indices)
}

// Defs возвращает зарегистрированные определения в порядке TypeID
func (r *Registry) Defs() []*Def {
	out := make([]*Def, 0, len(r.byName))
	for _, def := range r.indices {
		if def != nil {
			out = append(out, def)
		}
	}
	return out
}
