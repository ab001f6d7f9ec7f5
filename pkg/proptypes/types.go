// Package proptypes defines the PropType AST: a closed set of descriptors for the
// values a component prop accepts, independent of any runtime validation library.
package proptypes

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Kind tags a PropType node.
type Kind string

const (
	KindString     Kind = "string"
	KindNumber     Kind = "number"
	KindBoolean    Kind = "boolean"
	KindAny        Kind = "any"
	KindUndefined  Kind = "undefined"
	KindDOMElement Kind = "DOMElement"
	KindElement    Kind = "element"
	KindArray      Kind = "array"
	KindUnion      Kind = "union"
	KindLiteral    Kind = "literal"
	KindObject     Kind = "object"
	KindInterface  Kind = "interface"
	KindFunction   Kind = "function"
	KindInstanceOf Kind = "instanceOf"
)

// PropType is a node of the PropType AST.
type PropType interface {
	Kind() Kind
	// String renders the node in a compact TypeScript-like form.
	String() string
	json.Marshaler
}

// ElementKind says what kind of React value an ElementType accepts.
type ElementKind string

const (
	// ElementKindElement is a rendered element (JSX.Element, ReactElement).
	ElementKindElement ElementKind = "element"
	// ElementKindNode is anything renderable (ReactNode).
	ElementKindNode ElementKind = "node"
	// ElementKindElementType is a component or tag name (ElementType, ComponentType).
	ElementKindElementType ElementKind = "elementType"
)

type (
	StringType     struct{}
	NumberType     struct{}
	BooleanType    struct{}
	AnyType        struct{}
	UndefinedType  struct{}
	DOMElementType struct{}
	// ObjectType is an object whose shape was not resolved, either by choice or
	// because it refers back to one of its ancestors.
	ObjectType   struct{}
	FunctionType struct{}
)

// ElementType is a React element, node or element type.
type ElementType struct {
	ElementType ElementKind
}

// ArrayType is an array of Elem.
type ArrayType struct {
	Elem PropType
}

// UnionType is one of Types. Build it with NewUnion.
type UnionType struct {
	Types []PropType
}

// LiteralType is a literal value. Value is the source representation, so string
// literals keep their quotes: `"small"`, `42`, `true`, `null`.
type LiteralType struct {
	Value string
	Doc   string
}

// Member is a named member of an InterfaceType.
type Member struct {
	Name string
	Type PropType
}

// InterfaceType is a fully resolved object shape.
type InterfaceType struct {
	Members []Member
}

// InstanceOfType is an instance of the named class.
type InstanceOfType struct {
	Instance string
}

func (StringType) Kind() Kind     { return KindString }
func (NumberType) Kind() Kind     { return KindNumber }
func (BooleanType) Kind() Kind    { return KindBoolean }
func (AnyType) Kind() Kind        { return KindAny }
func (UndefinedType) Kind() Kind  { return KindUndefined }
func (DOMElementType) Kind() Kind { return KindDOMElement }
func (ObjectType) Kind() Kind     { return KindObject }
func (FunctionType) Kind() Kind   { return KindFunction }
func (ElementType) Kind() Kind    { return KindElement }
func (ArrayType) Kind() Kind      { return KindArray }
func (UnionType) Kind() Kind      { return KindUnion }
func (LiteralType) Kind() Kind    { return KindLiteral }
func (InterfaceType) Kind() Kind  { return KindInterface }
func (InstanceOfType) Kind() Kind { return KindInstanceOf }

func (StringType) String() string     { return "string" }
func (NumberType) String() string     { return "number" }
func (BooleanType) String() string    { return "boolean" }
func (AnyType) String() string        { return "any" }
func (UndefinedType) String() string  { return "undefined" }
func (DOMElementType) String() string { return "HTMLElement" }
func (ObjectType) String() string     { return "object" }
func (FunctionType) String() string   { return "Function" }

func (t ElementType) String() string {
	switch t.ElementType {
	case ElementKindNode:
		return "ReactNode"
	case ElementKindElementType:
		return "ElementType"
	default:
		return "ReactElement"
	}
}

func (t ArrayType) String() string {
	if t.Elem == nil {
		return "unknown[]"
	}
	if t.Elem.Kind() == KindUnion {
		return "(" + t.Elem.String() + ")[]"
	}
	return t.Elem.String() + "[]"
}

func (t UnionType) String() string {
	if len(t.Types) == 0 {
		return "never"
	}
	parts := make([]string, len(t.Types))
	for i, member := range t.Types {
		parts[i] = member.String()
	}
	return strings.Join(parts, " | ")
}

func (t InterfaceType) String() string {
	if len(t.Members) == 0 {
		return "{}"
	}
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.Name + ": " + m.Type.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func (t LiteralType) String() string    { return t.Value }
func (t InstanceOfType) String() string { return t.Instance }

// kindOnly is the JSON form of nodes without payload.
type kindOnly struct {
	Type string `json:"type"`
}

func nodeName(k Kind) string {
	switch k {
	case KindDOMElement:
		return "DOMElementNode"
	case KindInstanceOf:
		return "InstanceOfNode"
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:]) + "Node"
}

func marshalKind(k Kind) ([]byte, error) {
	return json.Marshal(kindOnly{Type: nodeName(k)})
}

func (t StringType) MarshalJSON() ([]byte, error)     { return marshalKind(t.Kind()) }
func (t NumberType) MarshalJSON() ([]byte, error)     { return marshalKind(t.Kind()) }
func (t BooleanType) MarshalJSON() ([]byte, error)    { return marshalKind(t.Kind()) }
func (t AnyType) MarshalJSON() ([]byte, error)        { return marshalKind(t.Kind()) }
func (t UndefinedType) MarshalJSON() ([]byte, error)  { return marshalKind(t.Kind()) }
func (t DOMElementType) MarshalJSON() ([]byte, error) { return marshalKind(t.Kind()) }
func (t ObjectType) MarshalJSON() ([]byte, error)     { return marshalKind(t.Kind()) }
func (t FunctionType) MarshalJSON() ([]byte, error)   { return marshalKind(t.Kind()) }

func (t ElementType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        string      `json:"type"`
		ElementType ElementKind `json:"elementType"`
	}{nodeName(t.Kind()), t.ElementType})
}

func (t ArrayType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string   `json:"type"`
		ArrayOf PropType `json:"arrayType"`
	}{nodeName(t.Kind()), t.Elem})
}

func (t UnionType) MarshalJSON() ([]byte, error) {
	types := t.Types
	if types == nil {
		types = []PropType{}
	}
	return json.Marshal(struct {
		Type  string     `json:"type"`
		Types []PropType `json:"types"`
	}{nodeName(t.Kind()), types})
}

func (t LiteralType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Value string `json:"value"`
		Doc   string `json:"jsDoc,omitempty"`
	}{nodeName(t.Kind()), t.Value, t.Doc})
}

func (t InterfaceType) MarshalJSON() ([]byte, error) {
	// Members are emitted as [name, type] pairs to keep declaration order.
	pairs := make([][2]any, len(t.Members))
	for i, m := range t.Members {
		pairs[i] = [2]any{m.Name, m.Type}
	}
	return json.Marshal(struct {
		Type  string   `json:"type"`
		Types [][2]any `json:"types"`
	}{nodeName(t.Kind()), pairs})
}

func (t InstanceOfType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		Instance string `json:"instance"`
	}{nodeName(t.Kind()), t.Instance})
}

// StringLiteral returns the literal node for a string value.
func StringLiteral(value string) LiteralType {
	return LiteralType{Value: strconv.Quote(value)}
}
