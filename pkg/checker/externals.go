package checker

import (
	"strings"
)

// Canonical names of the well-known React types.
const (
	NameJSXElement      = "JSX.Element"
	NameReactJSXElement = "React.JSX.Element"
	NameReactElement    = "React.ReactElement"
	NameReactNode       = "React.ReactNode"
	NameElementType     = "React.ElementType"
	NameComponentType   = "React.ComponentType"
	NameReactComponent  = "React.Component"
)

var componentTypes = setOf(
	"ElementType", "ComponentType", "FC", "FunctionComponent", "VFC",
	"VoidFunctionComponent", "ComponentClass", "ExoticComponent", "NamedExoticComponent",
	"ForwardRefExoticComponent", "LazyExoticComponent", "JSXElementConstructor",
)

var domGlobals = setOf(
	"Element", "HTMLElement", "SVGElement", "Node", "EventTarget", "Event", "Document",
	"Window", "ShadowRoot", "DocumentFragment",
)

var objectGlobals = setOf(
	"Date", "RegExp", "Error", "Map", "Set", "WeakMap", "WeakSet", "Promise", "File",
	"Blob", "FormData", "Intl.DateTimeFormatOptions",
)

func setOf(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// isReactModule reports whether imports from source denote React.
func isReactModule(source string) bool {
	return source == "react" || source == "@types/react"
}

// external resolves a type imported from a module that is not part of the program.
func (p *Program) external(source, name string, args []*Type) *Type {
	if isReactModule(source) {
		return p.reactType(name, args)
	}
	return p.namedOpaque(name)
}

// namedOpaque is an object type with no visible structure.
func (p *Program) namedOpaque(name string) *Type {
	if t, ok := p.externals[name]; ok {
		return t
	}
	t := p.newObject(name, nil)
	p.externals[name] = t
	return t
}

func (p *Program) globalType(name string, args []*Type) *Type {
	arg := func(i int) *Type {
		if i < len(args) {
			return args[i]
		}
		return p.anyType
	}

	switch name {
	case "Array", "ReadonlyArray", "Iterable", "ArrayLike":
		return p.arrayOf(arg(0))
	case "String":
		return p.stringType
	case "Number":
		return p.numberType
	case "Boolean":
		return p.booleanType
	case "Object":
		return p.emptyObject
	case "Function", "CallableFunction":
		return p.functionType(&Signature{ret: func() *Type { return p.anyType }})
	case "JSX.Element":
		return p.namedOpaque(NameJSXElement)
	case "Awaited", "Readonly", "NoInfer":
		return arg(0)
	}
	if t := p.utilityType(name, args); t != nil {
		return t
	}
	if rest, ok := strings.CutPrefix(name, "React."); ok {
		return p.reactType(rest, args)
	}
	if domGlobals[name] || objectGlobals[name] || isDOMElementName(name) || strings.HasPrefix(name, "JSX.") {
		return p.namedOpaque(name)
	}

	p.logger.Debug("unresolved type reference", "name", name)
	return p.anyType
}

func isDOMElementName(name string) bool {
	return (strings.HasPrefix(name, "HTML") || strings.HasPrefix(name, "SVG")) && strings.HasSuffix(name, "Element")
}

// reactType resolves a member of the React namespace.
func (p *Program) reactType(name string, args []*Type) *Type {
	arg := func(i int) *Type {
		if i < len(args) {
			return args[i]
		}
		return p.emptyObject
	}

	switch {
	case name == "ReactNode":
		return p.namedOpaque(NameReactNode)
	case name == "ReactElement":
		return p.namedOpaque(NameReactElement)
	case name == "JSX.Element":
		return p.namedOpaque(NameReactJSXElement)
	case name == "Key", name == "ReactText":
		return p.getUnion([]*Type{p.stringType, p.numberType})
	case name == "Component", name == "PureComponent":
		return p.namedOpaque(NameReactComponent)
	case name == "PropsWithChildren":
		return p.getIntersection([]*Type{arg(0), p.childrenProps()})
	case name == "PropsWithRef":
		return arg(0)
	case name == "PropsWithoutRef":
		return p.omit(arg(0), []string{"ref"})
	case name == "ComponentProps", name == "ComponentPropsWithRef", name == "ComponentPropsWithoutRef":
		return p.propsOf(arg(0))
	case name == "MemoExoticComponent":
		return p.componentType("MemoExoticComponent", p.propsOf(arg(0)))
	case name == "ForwardRefRenderFunction":
		return p.componentType("ForwardRefRenderFunction", arg(1))
	case componentTypes[name]:
		return p.componentType(name, arg(0))
	case strings.HasSuffix(name, "EventHandler"):
		return p.functionType(&Signature{ret: func() *Type { return p.voidType }})
	}
	return p.namedOpaque("React." + name)
}

// componentType is a React component type: callable with props and rendering an element.
func (p *Program) componentType(name string, props *Type) *Type {
	key := "React." + name + "<" + typeIDs([]*Type{props}) + ">"
	if t, ok := p.externals[key]; ok {
		return t
	}
	t := p.newObject("React."+name, func() ([]*Symbol, []*Signature) {
		param := newSymbol(p, "props", false, func() *Type { return props })
		sig := &Signature{
			Params: []*Symbol{param},
			ret: func() *Type {
				return p.getUnion([]*Type{p.namedOpaque(NameReactElement), p.nullType})
			},
		}
		return nil, []*Signature{sig}
	})
	p.externals[key] = t
	return t
}

func (p *Program) childrenProps() *Type {
	if t, ok := p.externals["#children"]; ok {
		return t
	}
	t := p.newObject("", func() ([]*Symbol, []*Signature) {
		children := newSymbol(p, "children", true, func() *Type { return p.namedOpaque(NameReactNode) })
		return []*Symbol{children}, nil
	})
	p.externals["#children"] = t
	return t
}

// propsOf returns the props accepted by a component type.
func (p *Program) propsOf(component *Type) *Type {
	for _, sig := range component.CallSignatures() {
		if len(sig.Params) > 0 && sig.Params[0].Type() != nil {
			return sig.Params[0].Type()
		}
	}
	return p.emptyObject
}

// utilityType implements the built-in generic helpers, nil for other names.
func (p *Program) utilityType(name string, args []*Type) *Type {
	if len(args) == 0 {
		return nil
	}
	switch name {
	case "Partial":
		return p.mapOptional(args[0], true)
	case "Required":
		return p.mapOptional(args[0], false)
	case "Pick":
		if len(args) < 2 {
			return nil
		}
		return p.pick(args[0], literalKeys(args[1]))
	case "Omit":
		if len(args) < 2 {
			return nil
		}
		return p.omit(args[0], literalKeys(args[1]))
	case "Record":
		if len(args) < 2 {
			return nil
		}
		return p.record(literalKeys(args[0]), args[1])
	case "NonNullable":
		return p.filterUnion(args[0], func(t *Type) bool { return !t.Is(FlagNull | FlagUndefined) })
	case "Exclude", "Extract":
		if len(args) < 2 {
			return nil
		}
		exclude := name == "Exclude"
		return p.filterUnion(args[0], func(t *Type) bool {
			for _, u := range members(args[1]) {
				if isAssignableLiteral(t, u) {
					return !exclude
				}
			}
			return exclude
		})
	case "ReturnType":
		for _, sig := range args[0].CallSignatures() {
			return sig.ReturnType()
		}
		return p.anyType
	case "InstanceType", "Parameters", "ConstructorParameters":
		return p.anyType
	}
	return nil
}

func (p *Program) mapOptional(t *Type, optional bool) *Type {
	source := t
	return p.newObject("", func() ([]*Symbol, []*Signature) {
		var props []*Symbol
		for _, prop := range p.PropertiesOf(source) {
			orig := prop
			sym := newSymbol(p, orig.Name, optional, orig.DeclaredType)
			sym.Doc = orig.Doc
			sym.FileNames = orig.FileNames
			props = append(props, sym)
		}
		return props, source.CallSignatures()
	})
}

// pick keeps the original symbols so picked members keep their identity.
func (p *Program) pick(t *Type, keys []string) *Type {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	source := t
	return p.newObject("", func() ([]*Symbol, []*Signature) {
		var props []*Symbol
		for _, prop := range p.PropertiesOf(source) {
			if want[prop.Name] {
				props = append(props, prop)
			}
		}
		return props, nil
	})
}

func (p *Program) omit(t *Type, keys []string) *Type {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	source := t
	return p.newObject("", func() ([]*Symbol, []*Signature) {
		var props []*Symbol
		for _, prop := range p.PropertiesOf(source) {
			if !drop[prop.Name] {
				props = append(props, prop)
			}
		}
		return props, source.CallSignatures()
	})
}

func (p *Program) record(keys []string, value *Type) *Type {
	return p.newObject("", func() ([]*Symbol, []*Signature) {
		props := make([]*Symbol, 0, len(keys))
		for _, k := range keys {
			props = append(props, newSymbol(p, k, false, func() *Type { return value }))
		}
		return props, nil
	})
}
