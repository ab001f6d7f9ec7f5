package checker

import (
	"strings"
	"sync/atomic"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// TypeFlags classifies a Type. A type has exactly one primary flag.
type TypeFlags uint32

const (
	FlagAny TypeFlags = 1 << iota
	FlagUnknown
	FlagString
	FlagNumber
	FlagBoolean
	FlagBigInt
	FlagESSymbol
	FlagUndefined
	FlagNull
	FlagVoid
	FlagNever
	FlagStringLiteral
	FlagNumberLiteral
	FlagBooleanLiteral
	FlagUnion
	// FlagObject marks object, interface, array, function and class instance types.
	FlagObject
	// FlagNonPrimitive is the `object` keyword.
	FlagNonPrimitive
	FlagTypeParameter

	FlagLiteral = FlagStringLiteral | FlagNumberLiteral | FlagBooleanLiteral
)

// TypeID identifies a type within one Program.
type TypeID int

// Type is a resolved TypeScript type.
//
// Object types resolve their members lazily so self-referential declarations
// can be represented: a reference to an interface from inside its own body
// returns the same *Type that is still being built.
type Type struct {
	id    TypeID
	Flags TypeFlags

	// Name is the qualified name of a named type: "Props", "React.ReactNode", "HTMLElement".
	Name string
	// Value is the source form of a literal: `"small"`, `-1`, `true`.
	Value string
	// Doc is the JSDoc of the enum member a literal came from.
	Doc string

	// Types holds union members.
	Types []*Type
	// Constraint is the base constraint of a type parameter, nil if unconstrained.
	Constraint *Type

	elem *Type

	// origin identifies the generic declaration an object type instantiates.
	origin string
	depth  int

	members    func() ([]*Symbol, []*Signature)
	resolved   bool
	resolving  bool
	props      []*Symbol
	propIndex  map[string]*Symbol
	signatures []*Signature
}

// ID returns the type identity.
func (t *Type) ID() TypeID { return t.id }

// Origin identifies the declaration an interface, class or object alias type
// was instantiated from. Instantiations of one generic share it.
func (t *Type) Origin() string { return t.origin }

// Is reports whether t has any of flags.
func (t *Type) Is(flags TypeFlags) bool { return t.Flags&flags != 0 }

// BaseConstraint follows the constraint chain of a type parameter to the
// first type that is not one. It returns nil when the chain ends unconstrained
// or loops back on itself. Other types return themselves.
func (t *Type) BaseConstraint() *Type {
	var seen map[TypeID]bool
	for t != nil && t.Is(FlagTypeParameter) {
		if seen[t.id] {
			return nil
		}
		if seen == nil {
			seen = make(map[TypeID]bool)
		}
		seen[t.id] = true
		t = t.Constraint
	}
	return t
}

// IsUnion reports whether t is a union.
func (t *Type) IsUnion() bool { return t.Flags&FlagUnion != 0 }

// IsArray reports whether t is an array or tuple type.
func (t *Type) IsArray() bool { return t.elem != nil }

// ElementType returns the element type of an array, nil otherwise.
func (t *Type) ElementType() *Type { return t.elem }

// Properties returns the named members of an object type in declaration order.
func (t *Type) Properties() []*Symbol {
	t.resolve()
	return t.props
}

// Property returns the member called name, or nil.
func (t *Type) Property(name string) *Symbol {
	t.resolve()
	return t.propIndex[name]
}

// CallSignatures returns the call signatures of a function-like type.
func (t *Type) CallSignatures() []*Signature {
	t.resolve()
	return t.signatures
}

func (t *Type) resolve() {
	if t.resolved || t.members == nil {
		return
	}
	// A member referring back to t while it resolves sees no members yet.
	if t.resolving {
		return
	}
	t.resolving = true
	props, sigs := t.members()
	t.props = props
	t.signatures = sigs
	t.propIndex = make(map[string]*Symbol, len(props))
	for _, p := range props {
		t.propIndex[p.Name] = p
	}
	t.resolved = true
	t.resolving = false
}

// String renders t for diagnostics.
func (t *Type) String() string {
	switch {
	case t.Name != "":
		return t.Name
	case t.Is(FlagLiteral):
		return t.Value
	case t.IsUnion():
		parts := make([]string, len(t.Types))
		for i, m := range t.Types {
			parts[i] = m.String()
		}
		return strings.Join(parts, " | ")
	case t.IsArray():
		return t.elem.String() + "[]"
	}
	for flag, name := range primitiveNames {
		if t.Flags&flag != 0 {
			return name
		}
	}
	if t.Is(FlagObject) {
		if len(t.CallSignatures()) > 0 {
			return "Function"
		}
		return "{...}"
	}
	return "?"
}

var primitiveNames = map[TypeFlags]string{
	FlagAny:          "any",
	FlagUnknown:      "unknown",
	FlagString:       "string",
	FlagNumber:       "number",
	FlagBoolean:      "boolean",
	FlagBigInt:       "bigint",
	FlagESSymbol:     "symbol",
	FlagUndefined:    "undefined",
	FlagNull:         "null",
	FlagVoid:         "void",
	FlagNever:        "never",
	FlagNonPrimitive: "object",
}

// Symbol is a named member of an object type, or a function parameter.
type Symbol struct {
	id       int
	Name     string
	Optional bool
	Doc      string
	// FileNames are the files the symbol is declared in.
	FileNames []string

	declared func() *Type
	typ      *Type
	decl     *Type
	done     bool
	busy     bool
	prog     *Program
}

var symbolIDs atomic.Int64

func newSymbol(p *Program, name string, optional bool, declared func() *Type) *Symbol {
	return &Symbol{
		id:       int(symbolIDs.Add(1)),
		Name:     name,
		Optional: optional,
		declared: declared,
		prog:     p,
	}
}

// ID returns the symbol identity. Two members share an ID only when they come
// from the same declaration in the same instantiation.
func (s *Symbol) ID() int { return s.id }

// DeclaredType is the type written in the declaration, before optionality adds undefined.
// nil means the declaration has no resolvable type.
func (s *Symbol) DeclaredType() *Type {
	s.compute()
	return s.decl
}

// Type is the type of the symbol as seen by readers: optional members include undefined.
func (s *Symbol) Type() *Type {
	s.compute()
	return s.typ
}

func (s *Symbol) compute() {
	if s.done || s.busy {
		return
	}
	s.busy = true
	if s.declared != nil {
		s.decl = s.declared()
	}
	s.typ = s.decl
	if s.typ != nil && s.Optional {
		s.typ = s.prog.getUnion([]*Type{s.typ, s.prog.undefinedType})
	}
	s.done = true
	s.busy = false
}

// Signature is a call signature.
type Signature struct {
	Params []*Symbol
	// Decl is the declaring node: function, arrow, method or signature.
	Decl *ts.Node

	ret  func() *Type
	rt   *Type
	done bool
}

// ReturnType returns the annotated or inferred return type.
func (s *Signature) ReturnType() *Type {
	if !s.done {
		s.done = true
		if s.ret != nil {
			s.rt = s.ret()
		}
	}
	return s.rt
}
