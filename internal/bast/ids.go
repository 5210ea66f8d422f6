package bast

// Id types are 1-based arena handles; the zero value means "absent".
type (
	ModuleID      uint32
	FunctionID    uint32
	ParamID       uint32
	ClassID       uint32
	FieldID       uint32
	MethodID      uint32
	PropertyID    uint32
	ConstructorID uint32
	InterfaceID   uint32
	EnumID        uint32
	DelegateID    uint32
	StmtID        uint32
	ExprID        uint32
)

const (
	NoModuleID      ModuleID      = 0
	NoFunctionID    FunctionID    = 0
	NoParamID       ParamID       = 0
	NoClassID       ClassID       = 0
	NoFieldID       FieldID       = 0
	NoMethodID      MethodID      = 0
	NoPropertyID    PropertyID    = 0
	NoConstructorID ConstructorID = 0
	NoInterfaceID   InterfaceID   = 0
	NoEnumID        EnumID        = 0
	NoDelegateID    DelegateID    = 0
	NoStmtID        StmtID        = 0
	NoExprID        ExprID        = 0
)

func (id FunctionID) IsValid() bool { return id != NoFunctionID }
func (id StmtID) IsValid() bool     { return id != NoStmtID }
func (id ExprID) IsValid() bool     { return id != NoExprID }
func (id ParamID) IsValid() bool    { return id != NoParamID }
