package bast

import "github.com/calor-lang/effects/internal/source"

// Visibility mirrors the small set of access modifiers the binder already
// resolved. The analysis core carries it through but does not branch on it.
type Visibility uint8

const (
	VisibilityPrivate Visibility = iota
	VisibilityInternal
	VisibilityProtected
	VisibilityPublic
)

// TypeRef is a resolved type reference as handed down by the binder. The
// analysis core treats types opaquely except for the handful of predicates
// below, which the binder is expected to have already settled.
type TypeRef struct {
	Name       string
	IsOptional bool // Option<T> / T? — relevant to null-dereference checking
	IsArray    bool // T[] / array-like — relevant to bounds checking
	IsSigned   bool // signed integer — relevant to overflow checking
	BitWidth   int  // 0 when not a fixed-width integer type
}

// Param is a single function or method parameter.
type Param struct {
	Name    string
	Type    TypeRef
	Default ExprID // NoExprID when absent
	Span    source.Span
}

// PrePost is one precondition/postcondition clause attached to a function
// signature. The analysis core never proves these (out of scope); it only
// surfaces them to the LSP-shared diagnostic codes (stronger-precondition /
// weaker-postcondition) when an override narrows or widens them, which is
// handled alongside contract matching rather than in this package.
type PrePost struct {
	Expr ExprID
	Span source.Span
}

// Function is a bound top-level or member function.
type Function struct {
	Name            string
	Visibility      Visibility
	Params          []Param
	ReturnType      TypeRef
	DeclaredEffects string // raw surface syntax, e.g. "fs:rw,throw"; "" = none declared, enforced as pure
	Pre             []PrePost
	Post            []PrePost
	Body            StmtID
	OwnerClass      ClassID // NoClassID for free functions
	IsConstructor   bool
	IsGetter        bool
	IsSetter        bool
	Span            source.Span
}

// Field is a class field declaration.
type Field struct {
	Name       string
	Type       TypeRef
	Visibility Visibility
	Span       source.Span
}

// Class is a bound class/record declaration.
type Class struct {
	Name         string
	Fields       []FieldID
	Methods      []FunctionID
	Properties   []FunctionID // getters/setters, identified via Function.IsGetter/IsSetter
	Constructors []FunctionID
	BaseClass    ClassID // NoClassID when none
	Interfaces   []InterfaceID
	Span         source.Span
}

// Interface is a bound interface declaration (method signatures only; no
// bodies to analyze). No analysis in this core reads it.
type Interface struct {
	Name    string
	Methods []FunctionID
	Span    source.Span
}

// EnumVariant is one member of an enum declaration.
type EnumVariant struct {
	Name string
	Span source.Span
}

// Enum is a bound enum declaration.
type Enum struct {
	Name     string
	Variants []EnumVariant
	Span     source.Span
}

// Delegate is a bound function-type declaration. Effect inference does not
// consult it: a call through a delegate-typed value is treated like any
// other call that resolves to no internal function or known signature.
type Delegate struct {
	Name       string
	Params     []Param
	ReturnType TypeRef
	Span       source.Span
}

// Module is the top-level unit handed to the pipeline: the set of
// functions, classes, interfaces, enums and delegates bound from one
// source file or logical module.
type Module struct {
	Name        string
	Functions   []FunctionID
	Classes     []ClassID
	Interfaces  []InterfaceID
	Enums       []EnumID
	Delegates   []DelegateID
	Span        source.Span
}
