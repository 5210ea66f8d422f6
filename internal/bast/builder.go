package bast

// Builder owns every arena for one module and is the construction-side
// counterpart a binder (out of scope here) would populate. Tests build
// fixtures directly against it; the pipeline only ever reads the finished
// Module.
type Builder struct {
	Functions  *Arena[Function]
	Classes    *Arena[Class]
	Fields     *Arena[Field]
	Interfaces *Arena[Interface]
	Enums      *Arena[Enum]
	Delegates  *Arena[Delegate]
	Stmts      *Stmts
	Exprs      *Exprs
}

// NewBuilder creates an empty Builder with default capacity hints.
func NewBuilder() *Builder {
	return &Builder{
		Functions:  NewArena[Function](32),
		Classes:    NewArena[Class](16),
		Fields:     NewArena[Field](32),
		Interfaces: NewArena[Interface](8),
		Enums:      NewArena[Enum](8),
		Delegates:  NewArena[Delegate](8),
		Stmts:      newStmts(),
		Exprs:      newExprs(),
	}
}

func (b *Builder) NewFunction(fn Function) FunctionID {
	return FunctionID(b.Functions.Put(fn))
}

func (b *Builder) Function(id FunctionID) *Function {
	return b.Functions.At(uint32(id))
}

func (b *Builder) NewClass(c Class) ClassID {
	return ClassID(b.Classes.Put(c))
}

func (b *Builder) Class(id ClassID) *Class {
	return b.Classes.At(uint32(id))
}

func (b *Builder) NewField(f Field) FieldID {
	return FieldID(b.Fields.Put(f))
}

func (b *Builder) Field(id FieldID) *Field {
	return b.Fields.At(uint32(id))
}

func (b *Builder) NewInterface(i Interface) InterfaceID {
	return InterfaceID(b.Interfaces.Put(i))
}

func (b *Builder) NewEnum(e Enum) EnumID {
	return EnumID(b.Enums.Put(e))
}

func (b *Builder) NewDelegate(d Delegate) DelegateID {
	return DelegateID(b.Delegates.Put(d))
}

// BuildModule assembles a Module value from ids previously registered on
// this Builder. The pipeline addresses functions/classes/etc by id through
// the Builder; Module is the ordered manifest of "what belongs to this
// compilation unit" used to seed diagnostic ordering (spec §5: "diagnostics
// are reported in the order of the bound AST's function list").
func (b *Builder) BuildModule(name string, functions []FunctionID, classes []ClassID, interfaces []InterfaceID, enums []EnumID, delegates []DelegateID) *Module {
	return &Module{
		Name:       name,
		Functions:  functions,
		Classes:    classes,
		Interfaces: interfaces,
		Enums:      enums,
		Delegates:  delegates,
	}
}
