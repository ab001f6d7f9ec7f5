package analyzer

import (
	"unicode"
	"unicode/utf8"

	"github.com/gnana997/tsproptypes/pkg/checker"
	ts "github.com/tree-sitter/go-tree-sitter"
)

// candidate is one props type found for a component. A component with
// several call signatures yields one candidate per signature.
type candidate struct {
	name  string
	props *checker.Type
}

type discoverer struct {
	prog  *checker.Program
	sf    *checker.SourceFile
	names *ReactNames
	opts  Options
}

func (d *discoverer) discover() []candidate {
	var found []candidate
	seenFunctions := map[string]bool{}

	for _, decl := range d.sf.Declarations() {
		if !isComponentName(decl.Name) {
			continue
		}
		switch decl.Kind {
		case checker.DeclFunction, checker.DeclFunctionSignature:
			if seenFunctions[decl.Name] {
				continue
			}
			seenFunctions[decl.Name] = true
			found = append(found, d.fromSignatures(decl.Name, d.prog.Signatures(decl), true)...)
		case checker.DeclVariable:
			found = append(found, d.fromVariable(decl)...)
		case checker.DeclClass:
			if c, ok := d.fromClass(decl); ok {
				found = append(found, c)
			}
		}
	}
	return found
}

// fromSignatures keeps the single-parameter signatures of a function. When
// checkReturn is set, at least one of them must render an element.
func (d *discoverer) fromSignatures(name string, sigs []*checker.Signature, checkReturn bool) []candidate {
	var unary []*checker.Signature
	for _, sig := range sigs {
		if len(sig.Params) == 1 {
			unary = append(unary, sig)
		}
	}
	if len(unary) == 0 {
		return nil
	}
	if checkReturn && !rendersElement(unary) {
		d.opts.Logger.Debug("function does not return an element", "name", name, "file", d.sf.Name)
		return nil
	}

	out := make([]candidate, 0, len(unary))
	for _, sig := range unary {
		props := sig.Params[0].Type()
		if props == nil {
			props = d.prog.AnyType()
		}
		out = append(out, candidate{name: name, props: props})
	}
	return out
}

func (d *discoverer) fromVariable(decl *checker.Declaration) []candidate {
	if decl.Ambient {
		if !d.opts.CheckDeclarations {
			return nil
		}
		t := d.prog.ValueType(d.sf, decl.Name)
		return d.fromSignatures(decl.Name, t.CallSignatures(), true)
	}

	value := unwrapExpression(decl.Node.ChildByFieldName("value"))
	if value == nil {
		return nil
	}
	switch value.Kind() {
	case "arrow_function", "function_expression", "function":
		if decl.Node.ChildByFieldName("type") != nil {
			t := d.prog.ValueType(d.sf, decl.Name)
			return d.fromSignatures(decl.Name, t.CallSignatures(), true)
		}
		return d.fromSignatures(decl.Name, []*checker.Signature{d.prog.SignatureOf(d.sf, value)}, true)
	case "call_expression":
		if props := d.wrappedProps(value); props != nil {
			return []candidate{{name: decl.Name, props: props}}
		}
	}
	return nil
}

// wrappedProps returns the props of a memo or forwardRef call, unwrapping
// nested wrappers. nil means call is not a recognized wrapper.
func (d *discoverer) wrappedProps(call *ts.Node) *checker.Type {
	callee := d.sf.Text(call.ChildByFieldName("function"))
	isMemo := d.names.IsMemo(callee)
	if !isMemo && !d.names.IsForwardRef(callee) {
		return nil
	}

	// memo<P>(...) and forwardRef<R, P>(...)
	var explicit *checker.Type
	if typeArgs := call.ChildByFieldName("type_arguments"); typeArgs != nil {
		args := d.prog.TypeArguments(d.sf, typeArgs)
		switch {
		case isMemo && len(args) > 0:
			explicit = args[0]
		case !isMemo && len(args) > 1:
			explicit = args[1]
		}
	}

	inner := firstArgument(call)
	if inner == nil {
		return explicit
	}
	var props *checker.Type
	switch inner.Kind() {
	case "call_expression":
		props = d.wrappedProps(inner)
	case "arrow_function", "function_expression", "function":
		sig := d.prog.SignatureOf(d.sf, inner)
		if len(sig.Params) > 0 {
			props = sig.Params[0].DeclaredType()
		}
	case "identifier":
		for _, sig := range d.prog.ValueType(d.sf, d.sf.Text(inner)).CallSignatures() {
			if len(sig.Params) > 0 && sig.Params[0].Type() != nil {
				props = sig.Params[0].Type()
				break
			}
		}
	}
	if props == nil || (explicit != nil && props.Is(checker.FlagAny)) {
		props = explicit
	}
	if props == nil {
		props = d.prog.AnyType()
	}
	return props
}

func (d *discoverer) fromClass(decl *checker.Declaration) (candidate, bool) {
	for _, heritage := range namedChildren(decl.Node) {
		if heritage.Kind() != "class_heritage" {
			continue
		}
		for _, clause := range namedChildren(heritage) {
			if clause.Kind() != "extends_clause" {
				continue
			}
			base := d.sf.Text(clause.ChildByFieldName("value"))
			if !d.names.IsComponentBase(base) {
				return candidate{}, false
			}
			args := d.prog.TypeArguments(d.sf, clause.ChildByFieldName("type_arguments"))
			if len(args) == 0 {
				return candidate{}, false
			}
			return candidate{name: decl.Name, props: args[0]}, true
		}
	}
	return candidate{}, false
}

// rendersElement reports whether any signature returns an element-like type.
func rendersElement(sigs []*checker.Signature) bool {
	for _, sig := range sigs {
		if isElementLike(sig.ReturnType()) {
			return true
		}
	}
	return false
}

var elementNames = map[string]bool{
	checker.NameJSXElement:      true,
	checker.NameReactJSXElement: true,
	checker.NameReactElement:    true,
}

// isElementLike accepts JSX.Element, React.ReactElement and unions of those with null.
func isElementLike(t *checker.Type) bool {
	if t == nil {
		return false
	}
	if !t.IsUnion() {
		return elementNames[t.Name]
	}
	element := false
	for _, m := range t.Types {
		switch {
		case elementNames[m.Name]:
			element = true
		case m.Is(checker.FlagNull):
		default:
			return false
		}
	}
	return element
}

func isComponentName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func unwrapExpression(n *ts.Node) *ts.Node {
	for n != nil {
		switch n.Kind() {
		case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
			n = n.NamedChild(0)
		default:
			return n
		}
	}
	return nil
}

func firstArgument(call *ts.Node) *ts.Node {
	for _, arg := range namedChildren(call.ChildByFieldName("arguments")) {
		if arg.Kind() != "comment" {
			return unwrapExpression(arg)
		}
	}
	return nil
}

func namedChildren(n *ts.Node) []*ts.Node {
	if n == nil {
		return nil
	}
	count := n.NamedChildCount()
	out := make([]*ts.Node, 0, count)
	for i := uint(0); i < count; i++ {
		if child := n.NamedChild(i); child != nil {
			out = append(out, child)
		}
	}
	return out
}
