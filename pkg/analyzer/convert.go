package analyzer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gnana997/tsproptypes/pkg/checker"
	"github.com/gnana997/tsproptypes/pkg/proptypes"
)

// converter turns checker types into PropType nodes for one Parse call.
type converter struct {
	prog *checker.Program
	opts Options

	// ids maps symbol identities to small per-call tokens.
	ids map[int]int
}

func newConverter(prog *checker.Program, opts Options) *converter {
	return &converter{prog: prog, opts: opts, ids: map[int]int{}}
}

func (c *converter) identity(sym *checker.Symbol) int {
	if id, ok := c.ids[sym.ID()]; ok {
		return id
	}
	id := len(c.ids) + 1
	c.ids[sym.ID()] = id
	return id
}

// component converts the props type of one candidate. It returns nil when no
// property survives the include filter.
func (c *converter) component(name, fileName string, props *checker.Type) (*proptypes.Component, error) {
	stack := []*checker.Type{props}

	var defs []*proptypes.PropDefinition
	for _, sym := range c.prog.PropertiesOf(props) {
		if !c.opts.include(IncludeContext{Name: sym.Name, Depth: len(stack)}) {
			continue
		}
		t, err := c.checkSymbol(sym, stack)
		if err != nil {
			return nil, fmt.Errorf("failed to convert prop %s of %s: %w", sym.Name, name, err)
		}
		defs = append(defs, &proptypes.PropDefinition{
			Name:      sym.Name,
			Doc:       sym.Doc,
			Type:      t,
			FileNames: proptypes.MergeFileNames(sym.FileNames),
			ID:        c.identity(sym),
		})
	}
	if len(defs) == 0 {
		return nil, nil
	}
	return &proptypes.Component{Name: name, Props: defs, FileName: fileName}, nil
}

func (c *converter) checkSymbol(sym *checker.Symbol, stack []*checker.Type) (proptypes.PropType, error) {
	declared := sym.DeclaredType()
	if declared == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoType, sym.Name)
	}

	// Declared React element types keep their meaning even when the
	// written type would otherwise be widened.
	var special proptypes.PropType
	switch declared.Name {
	case checker.NameElementType, checker.NameComponentType:
		special = proptypes.ElementType{ElementType: proptypes.ElementKindElementType}
	case checker.NameReactElement:
		special = proptypes.ElementType{ElementType: proptypes.ElementKindElement}
	}
	if special != nil {
		if sym.Optional {
			return proptypes.NewUnion(proptypes.UndefinedType{}, special), nil
		}
		return special, nil
	}

	t, err := c.checkType(sym.Type(), stack, sym.Name)
	if err != nil {
		return nil, err
	}
	if sym.Optional && !proptypes.Contains(t, proptypes.KindUndefined) {
		t = proptypes.Optional(t)
	}
	return t, nil
}

func (c *converter) checkType(t *checker.Type, stack []*checker.Type, name string) (proptypes.PropType, error) {
	if t.Is(checker.FlagTypeParameter) {
		if t = t.BaseConstraint(); t == nil {
			return proptypes.AnyType{}, nil
		}
	}

	switch t.Name {
	case checker.NameJSXElement, checker.NameReactJSXElement, checker.NameReactElement:
		return proptypes.ElementType{ElementType: proptypes.ElementKindElement}, nil
	case checker.NameElementType:
		return proptypes.ElementType{ElementType: proptypes.ElementKindElementType}, nil
	case checker.NameReactNode:
		return proptypes.NewUnion(
			proptypes.ElementType{ElementType: proptypes.ElementKindNode},
			proptypes.UndefinedType{},
		), nil
	case checker.NameReactComponent:
		return proptypes.InstanceOfType{Instance: checker.NameReactComponent}, nil
	}
	if isDOMElement(t.Name) {
		return proptypes.DOMElementType{}, nil
	}

	if t.IsArray() {
		elem, err := c.checkType(t.ElementType(), stack, name)
		if err != nil {
			return nil, err
		}
		return proptypes.ArrayType{Elem: elem}, nil
	}

	if t.IsUnion() {
		members := make([]proptypes.PropType, 0, len(t.Types))
		for _, m := range t.Types {
			pt, err := c.checkType(m, stack, name)
			if err != nil {
				return nil, err
			}
			members = append(members, pt)
		}
		return proptypes.NewUnion(members...), nil
	}

	switch {
	case t.Is(checker.FlagString):
		return proptypes.StringType{}, nil
	case t.Is(checker.FlagNumber):
		return proptypes.NumberType{}, nil
	case t.Is(checker.FlagBoolean):
		return proptypes.BooleanType{}, nil
	case t.Is(checker.FlagUndefined):
		return proptypes.UndefinedType{}, nil
	case t.Is(checker.FlagAny | checker.FlagUnknown):
		return proptypes.AnyType{}, nil
	case t.Is(checker.FlagLiteral):
		return proptypes.LiteralType{Value: t.Value, Doc: t.Doc}, nil
	case t.Is(checker.FlagNull):
		return proptypes.LiteralType{Value: "null"}, nil
	}

	if len(t.CallSignatures()) > 0 {
		return proptypes.FunctionType{}, nil
	}

	if props := c.prog.PropertiesOf(t); len(props) > 0 {
		return c.objectType(t, props, stack, name)
	}
	if t.Is(checker.FlagObject | checker.FlagNonPrimitive) {
		return proptypes.ObjectType{}, nil
	}

	c.opts.Logger.Warn("unsupported type, falling back to any", "prop", name, "type", t.String())
	return proptypes.AnyType{}, nil
}

func (c *converter) objectType(t *checker.Type, props []*checker.Symbol, stack []*checker.Type, name string) (proptypes.PropType, error) {
	if onStack(stack, t) || deeplyNested(stack, t) {
		return proptypes.ObjectType{}, nil
	}
	if !c.opts.resolveObject(ResolveContext{Name: name, PropertyCount: len(props), Depth: len(stack)}) {
		return proptypes.ObjectType{}, nil
	}

	nested := append(slices.Clip(stack), t)
	members := make([]proptypes.Member, 0, len(props))
	for _, sym := range props {
		if !c.opts.include(IncludeContext{Name: sym.Name, Depth: len(nested)}) {
			continue
		}
		pt, err := c.checkSymbol(sym, nested)
		if err != nil {
			return nil, err
		}
		members = append(members, proptypes.Member{Name: sym.Name, Type: pt})
	}
	if len(members) == 0 {
		return proptypes.ObjectType{}, nil
	}
	return proptypes.InterfaceType{Members: members}, nil
}

// maxGenericNesting is how many instantiations of one generic may enclose an
// object before it is no longer expanded.
const maxGenericNesting = 3

func onStack(stack []*checker.Type, t *checker.Type) bool {
	return slices.ContainsFunc(stack, func(a *checker.Type) bool { return a.ID() == t.ID() })
}

// deeplyNested reports whether t instantiates a generic that already encloses
// it maxGenericNesting times. Each level of Wrap<Wrap<T>> is a new type.
func deeplyNested(stack []*checker.Type, t *checker.Type) bool {
	origin := t.Origin()
	if origin == "" {
		return false
	}
	n := 0
	for _, a := range stack {
		if a.Origin() == origin {
			n++
		}
	}
	return n >= maxGenericNesting
}

func isDOMElement(name string) bool {
	switch name {
	case "Element", "HTMLElement":
		return true
	}
	return strings.HasPrefix(name, "HTML") && strings.HasSuffix(name, "Element")
}
