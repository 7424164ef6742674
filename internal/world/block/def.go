package block

import "image/color"

// BlockID плотный числовой идентификатор типа блока. 0 всегда пустой блок.
type BlockID uint32

// EmptyBlockID идентификатор пустого блока
const EmptyBlockID BlockID = 0

// AutoTypeID означает, что TypeID будет назначен автоматически
const AutoTypeID = -1

// Material описывает поверхностный материал. Сравнивается по указателю:
// блоки с одним и тем же *Material собираются в одну секцию меша.
type Material struct {
	Name        string
	Translucent bool
}

// Def описывает тип блока. После регистрации не изменяется.
type Def struct {
	RegistryName string // Уникальный ключ в реестре

	// OverrideTypeID фиксирует TypeID (>= 0). AutoTypeID включает автоматическую индексацию.
	OverrideTypeID int

	DoCollisions bool // Если false, коллизия не строится
	IsEmpty      bool // Блок считается пустым пространством

	// Блоки с одинаковым VisibilityType закрывают друг другу грани
	VisibilityType int

	// При Material == nil блок не полигонизируется
	Material *Material

	// Если false, блоки с тем же материалом попадают в одну секцию меша
	SeparateMeshSections bool

	// DontRegister исключает определение из каталога
	DontRegister bool

	DefaultColor color.RGBA

	typeID     BlockID
	registered bool
}

// NewDef создаёт определение с настройками по умолчанию:
// автоматический TypeID, коллизии включены, белый цвет.
func NewDef(name string) *Def {
	return &Def{
		RegistryName:   name,
		OverrideTypeID: AutoTypeID,
		DoCollisions:   true,
		DefaultColor:   color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// TypeID возвращает назначенный реестром идентификатор.
// Не сохраняйте его на диск, сохраняйте RegistryName.
func (d *Def) TypeID() BlockID {
	return d.typeID
}

// IsRegistered возвращает true, если определению назначен TypeID
func (d *Def) IsRegistered() bool {
	return d.registered
}

// ShouldBePolygonized возвращает true, если у блока есть материал поверхности
func (d *Def) ShouldBePolygonized() bool {
	return d.Material != nil
}

// HasOverride возвращает true, если TypeID задан вручную
func (d *Def) HasOverride() bool {
	return d.OverrideTypeID >= 0
}
