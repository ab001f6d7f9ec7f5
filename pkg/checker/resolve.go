package checker

import (
	"fmt"
	"strconv"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsproptypes/pkg/parser/queries"
)

// scope binds type parameter names while resolving a generic declaration.
type scope struct {
	parent *scope
	params map[string]*Type
}

func (s *scope) lookup(name string) (*Type, bool) {
	for ; s != nil; s = s.parent {
		if t, ok := s.params[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// TypeFromNode resolves a type node (or a type annotation) written in sf.
func (p *Program) TypeFromNode(sf *SourceFile, node *ts.Node) *Type {
	return p.typeFromNode(sf, nil, node)
}

func annotationType(n *ts.Node) *ts.Node {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "type_annotation", "opting_type_annotation", "omitting_type_annotation", "adding_type_annotation":
		children := namedChildren(n)
		if len(children) == 0 {
			return nil
		}
		return children[0]
	}
	return n
}

func (p *Program) typeFromNode(sf *SourceFile, sc *scope, node *ts.Node) *Type {
	node = annotationType(node)
	if node == nil {
		return p.anyType
	}

	switch node.Kind() {
	case "predefined_type":
		return p.predefined(sf.Text(node))
	case "literal_type":
		return p.literalTypeNode(sf, node)
	case "template_literal_type":
		return p.stringType
	case "type_identifier", "nested_type_identifier", "generic_type":
		return p.typeReference(sf, sc, node)
	case "parenthesized_type", "readonly_type":
		return p.firstChildType(sf, sc, node)
	case "union_type":
		var members []*Type
		for _, child := range namedChildren(node) {
			members = append(members, p.typeFromNode(sf, sc, child))
		}
		return p.getUnion(members)
	case "intersection_type":
		var members []*Type
		for _, child := range namedChildren(node) {
			members = append(members, p.typeFromNode(sf, sc, child))
		}
		return p.getIntersection(members)
	case "array_type":
		return p.arrayOf(p.firstChildType(sf, sc, node))
	case "tuple_type":
		return p.tupleType(sf, sc, node)
	case "function_type", "constructor_type":
		sig := p.signatureFrom(sf, sc, node)
		return p.functionType(sig)
	case "object_type":
		return p.objectLiteralType(sf, sc, node)
	case "type_query":
		return p.typeQuery(sf, node)
	case "index_type_query":
		return p.keyOf(p.firstChildType(sf, sc, node))
	case "lookup_type":
		return p.lookupType(sf, sc, node)
	case "conditional_type":
		return p.getUnion([]*Type{
			p.typeFromNode(sf, sc, node.ChildByFieldName("consequence")),
			p.typeFromNode(sf, sc, node.ChildByFieldName("alternative")),
		})
	case "type_predicate", "type_predicate_annotation", "asserts", "asserts_annotation":
		return p.booleanType
	case "infer_type":
		return p.unknownType
	case "this_type", "existential_type":
		return p.anyType
	}

	// The caller sees a type with no flags and reports it.
	t := p.newType(0)
	t.Name = sf.Text(node)
	p.logger.Debug("unsupported type syntax", "kind", node.Kind(), "file", sf.Name)
	return t
}

func (p *Program) firstChildType(sf *SourceFile, sc *scope, node *ts.Node) *Type {
	children := namedChildren(node)
	if len(children) == 0 {
		return p.anyType
	}
	return p.typeFromNode(sf, sc, children[0])
}

func (p *Program) predefined(name string) *Type {
	switch name {
	case "any":
		return p.anyType
	case "unknown":
		return p.unknownType
	case "string":
		return p.stringType
	case "number":
		return p.numberType
	case "boolean":
		return p.booleanType
	case "bigint":
		return p.bigintType
	case "symbol", "unique symbol":
		return p.esSymbolType
	case "void":
		return p.voidType
	case "never":
		return p.neverType
	case "object":
		return p.nonPrimitiveType
	case "undefined":
		return p.undefinedType
	case "null":
		return p.nullType
	}
	return p.anyType
}

func (p *Program) literalTypeNode(sf *SourceFile, node *ts.Node) *Type {
	children := namedChildren(node)
	if len(children) == 0 {
		return p.predefined(sf.Text(node))
	}
	child := children[0]
	switch child.Kind() {
	case "string":
		return p.stringLiteral(unquote(sf.Text(child)))
	case "number", "unary_expression":
		return p.literal(FlagNumberLiteral, strings.ReplaceAll(sf.Text(child), " ", ""))
	case "true":
		return p.trueType
	case "false":
		return p.falseType
	case "null":
		return p.nullType
	case "undefined":
		return p.undefinedType
	}
	return p.predefined(sf.Text(child))
}

func (p *Program) literal(flag TypeFlags, value string) *Type {
	key := fmt.Sprintf("%d:%s", flag, value)
	if t, ok := p.literals[key]; ok {
		return t
	}
	t := p.newType(flag)
	t.Value = value
	p.literals[key] = t
	return t
}

func (p *Program) stringLiteral(value string) *Type {
	return p.literal(FlagStringLiteral, strconv.Quote(value))
}

// StringLiteralValue returns the unquoted value of a string literal type.
func StringLiteralValue(t *Type) (string, bool) {
	if !t.Is(FlagStringLiteral) {
		return "", false
	}
	v, err := strconv.Unquote(t.Value)
	if err != nil {
		return unquote(t.Value), true
	}
	return v, true
}

func (p *Program) tupleType(sf *SourceFile, sc *scope, node *ts.Node) *Type {
	var members []*Type
	for _, child := range namedChildren(node) {
		switch child.Kind() {
		case "optional_type":
			members = append(members, p.firstChildType(sf, sc, child))
		case "rest_type":
			rest := p.firstChildType(sf, sc, child)
			if rest.IsArray() {
				rest = rest.elem
			}
			members = append(members, rest)
		case "required_parameter", "optional_parameter", "tuple_parameter", "optional_tuple_parameter":
			members = append(members, p.typeFromNode(sf, sc, child.ChildByFieldName("type")))
		case "comment":
		default:
			members = append(members, p.typeFromNode(sf, sc, child))
		}
	}
	if len(members) == 0 {
		return p.arrayOf(p.neverType)
	}
	return p.arrayOf(p.getUnion(members))
}

func (p *Program) arrayOf(elem *Type) *Type {
	if t, ok := p.arrays[elem.id]; ok {
		return t
	}
	t := p.newType(FlagObject)
	t.elem = elem
	p.arrays[elem.id] = t
	return t
}

func (p *Program) newObject(name string, members func() ([]*Symbol, []*Signature)) *Type {
	t := p.newType(FlagObject)
	t.Name = name
	t.members = members
	if members == nil {
		t.resolved = true
		t.propIndex = map[string]*Symbol{}
	}
	return t
}

func (p *Program) functionType(sigs ...*Signature) *Type {
	return p.newObject("", func() ([]*Symbol, []*Signature) { return nil, sigs })
}

func (p *Program) objectLiteralType(sf *SourceFile, sc *scope, body *ts.Node) *Type {
	return p.newObject("", func() ([]*Symbol, []*Signature) {
		return p.objectMembers(sf, sc, body)
	})
}

// objectMembers reads the members of an object type or interface body.
func (p *Program) objectMembers(sf *SourceFile, sc *scope, body *ts.Node) ([]*Symbol, []*Signature) {
	var (
		props []*Symbol
		sigs  []*Signature
	)
	for _, member := range namedChildren(body) {
		switch member.Kind() {
		case "property_signature", "public_field_definition":
			if hasToken(member, "static") || isPrivate(sf, member) {
				continue
			}
			name, ok := propertyName(sf, member.ChildByFieldName("name"))
			if !ok {
				continue
			}
			typeNode := member.ChildByFieldName("type")
			sym := newSymbol(p, name, hasToken(member, "?"), func() *Type {
				if typeNode == nil {
					return p.anyType
				}
				return p.typeFromNode(sf, sc, typeNode)
			})
			sym.Doc = jsDoc(sf, member)
			sym.FileNames = []string{sf.Name}
			props = append(props, sym)
		case "method_signature":
			name, ok := propertyName(sf, member.ChildByFieldName("name"))
			if !ok {
				continue
			}
			sig := p.signatureFrom(sf, sc, member)
			sym := newSymbol(p, name, hasToken(member, "?"), func() *Type { return p.functionType(sig) })
			sym.Doc = jsDoc(sf, member)
			sym.FileNames = []string{sf.Name}
			props = append(props, sym)
		case "call_signature":
			sigs = append(sigs, p.signatureFrom(sf, sc, member))
		case "index_signature":
			props = append(props, p.mappedMembers(sf, sc, member)...)
		}
	}
	return props, sigs
}

func isPrivate(sf *SourceFile, member *ts.Node) bool {
	for _, child := range namedChildren(member) {
		if child.Kind() == "accessibility_modifier" && sf.Text(child) != "public" {
			return true
		}
	}
	name := member.ChildByFieldName("name")
	return name != nil && name.Kind() == "private_property_identifier"
}

func propertyName(sf *SourceFile, n *ts.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind() {
	case "property_identifier", "identifier", "number", "private_property_identifier":
		return sf.Text(n), true
	case "string":
		return unquote(sf.Text(n)), true
	case "computed_property_name":
		children := namedChildren(n)
		if len(children) == 1 && children[0].Kind() == "string" {
			return unquote(sf.Text(children[0])), true
		}
	}
	return "", false
}

// mappedMembers expands `{ [K in Keys]: V }` over literal keys. Plain index
// signatures (`[key: string]: V`) contribute no named members.
func (p *Program) mappedMembers(sf *SourceFile, sc *scope, member *ts.Node) []*Symbol {
	var clause, valueNode *ts.Node
	optional := false
	for _, child := range namedChildren(member) {
		switch child.Kind() {
		case "mapped_type_clause":
			clause = child
		case "type_annotation", "adding_type_annotation":
			valueNode = child
		case "opting_type_annotation":
			valueNode = child
			optional = true
		case "omitting_type_annotation":
			valueNode = child
		}
	}
	if clause == nil {
		return nil
	}
	keyName := sf.Text(clause.ChildByFieldName("name"))
	keys := p.typeFromNode(sf, sc, clause.ChildByFieldName("type"))

	var props []*Symbol
	for _, key := range literalKeys(keys) {
		keyType := p.stringLiteral(key)
		inner := &scope{parent: sc, params: map[string]*Type{keyName: keyType}}
		value := valueNode
		sym := newSymbol(p, key, optional, func() *Type { return p.typeFromNode(sf, inner, value) })
		sym.FileNames = []string{sf.Name}
		props = append(props, sym)
	}
	return props
}

// literalKeys returns the string values of a string literal or union of them.
func literalKeys(t *Type) []string {
	var keys []string
	members := []*Type{t}
	if t.IsUnion() {
		members = t.Types
	}
	for _, m := range members {
		if v, ok := StringLiteralValue(m); ok {
			keys = append(keys, v)
		} else if m.Is(FlagNumberLiteral) {
			keys = append(keys, m.Value)
		}
	}
	return keys
}

func (p *Program) keyOf(t *Type) *Type {
	props := t.Properties()
	if len(props) == 0 {
		return p.stringType
	}
	keys := make([]*Type, len(props))
	for i, prop := range props {
		keys[i] = p.stringLiteral(prop.Name)
	}
	return p.getUnion(keys)
}

func (p *Program) lookupType(sf *SourceFile, sc *scope, node *ts.Node) *Type {
	children := namedChildren(node)
	if len(children) < 2 {
		return p.anyType
	}
	object := p.typeFromNode(sf, sc, children[0])
	index := p.typeFromNode(sf, sc, children[1])

	if object.IsArray() && (index.Is(FlagNumber | FlagNumberLiteral)) {
		return object.elem
	}
	var result []*Type
	for _, key := range literalKeys(index) {
		if prop := object.Property(key); prop != nil && prop.Type() != nil {
			result = append(result, prop.Type())
		}
	}
	if len(result) == 0 {
		return p.anyType
	}
	return p.getUnion(result)
}

func (p *Program) typeQuery(sf *SourceFile, node *ts.Node) *Type {
	children := namedChildren(node)
	if len(children) == 0 {
		return p.anyType
	}
	parts := strings.Split(sf.Text(children[0]), ".")
	t := p.ValueType(sf, parts[0])
	for _, part := range parts[1:] {
		prop := t.Property(part)
		if prop == nil || prop.Type() == nil {
			return p.anyType
		}
		t = prop.Type()
	}
	return t
}

// signatureFrom builds the signature of a function-like node.
func (p *Program) signatureFrom(sf *SourceFile, sc *scope, node *ts.Node) *Signature {
	if tps := node.ChildByFieldName("type_parameters"); tps != nil {
		sc = p.bindTypeParams(sf, sc, tps, nil)
	}
	sig := &Signature{Decl: node}

	if single := node.ChildByFieldName("parameter"); single != nil {
		// `props => ...`
		sig.Params = append(sig.Params, p.parameter(sf, sc, single.Kind(), sf.Text(single), false, nil))
	}
	for _, param := range namedChildren(node.ChildByFieldName("parameters")) {
		kind := param.Kind()
		if kind != "required_parameter" && kind != "optional_parameter" {
			continue
		}
		pattern := param.ChildByFieldName("pattern")
		if pattern == nil || pattern.Kind() == "this" {
			continue
		}
		optional := kind == "optional_parameter" || param.ChildByFieldName("value") != nil
		sig.Params = append(sig.Params, p.parameter(sf, sc, pattern.Kind(), sf.Text(pattern), optional, param.ChildByFieldName("type")))
	}

	returnNode := node.ChildByFieldName("return_type")
	body := node.ChildByFieldName("body")
	sig.ret = func() *Type {
		if returnNode != nil {
			return p.typeFromNode(sf, sc, returnNode)
		}
		if body != nil {
			return p.inferReturnType(sf, sc, node, body)
		}
		return p.anyType
	}
	return sig
}

func (p *Program) parameter(sf *SourceFile, sc *scope, patternKind, text string, optional bool, typeNode *ts.Node) *Symbol {
	name := text
	if patternKind != "identifier" {
		name = "props"
	}
	sym := newSymbol(p, name, optional, func() *Type {
		if typeNode == nil {
			return nil
		}
		return p.typeFromNode(sf, sc, typeNode)
	})
	sym.FileNames = []string{sf.Name}
	return sym
}

// bindTypeParams binds each type parameter to its argument, its default, or a
// type parameter type carrying its constraint.
func (p *Program) bindTypeParams(sf *SourceFile, parent *scope, tps *ts.Node, args []*Type) *scope {
	sc := &scope{parent: parent, params: map[string]*Type{}}
	constrained := map[*Type]*ts.Node{}
	var order []*Type
	i := 0
	for _, tp := range namedChildren(tps) {
		if tp.Kind() != "type_parameter" {
			continue
		}
		name := sf.Text(tp.ChildByFieldName("name"))
		switch {
		case i < len(args):
			sc.params[name] = args[i]
		case tp.ChildByFieldName("value") != nil:
			sc.params[name] = p.firstChildType(sf, sc, tp.ChildByFieldName("value"))
		default:
			param := p.newType(FlagTypeParameter)
			param.Name = name
			sc.params[name] = param
			if constraint := tp.ChildByFieldName("constraint"); constraint != nil {
				constrained[param] = constraint
				order = append(order, param)
			}
		}
		i++
	}

	// Constraints may name any parameter of the list, including later ones.
	for _, param := range order {
		param.Constraint = p.firstChildType(sf, sc, constrained[param])
		if circularConstraint(param) {
			p.logger.Debug("circular type parameter constraint", "param", param.Name, "file", sf.Name)
			param.Constraint = nil
		}
	}
	return sc
}

func circularConstraint(param *Type) bool {
	seen := map[TypeID]bool{}
	for c := param.Constraint; c != nil && c.Is(FlagTypeParameter); c = c.Constraint {
		if c == param || seen[c.id] {
			return true
		}
		seen[c.id] = true
	}
	return false
}

func (p *Program) typeArgs(sf *SourceFile, sc *scope, node *ts.Node) []*Type {
	var args []*Type
	for _, child := range namedChildren(node) {
		if child.Kind() == "comment" {
			continue
		}
		args = append(args, p.typeFromNode(sf, sc, child))
	}
	return args
}

func (p *Program) typeReference(sf *SourceFile, sc *scope, node *ts.Node) *Type {
	nameNode := node
	var args []*Type
	if node.Kind() == "generic_type" {
		nameNode = node.ChildByFieldName("name")
		argsNode := node.ChildByFieldName("type_arguments")
		if argsNode == nil {
			for _, child := range namedChildren(node) {
				if child.Kind() == "type_arguments" {
					argsNode = child
				}
			}
		}
		args = p.typeArgs(sf, sc, argsNode)
	}
	parts := strings.Split(strings.ReplaceAll(sf.Text(nameNode), " ", ""), ".")
	return p.resolveName(sf, sc, parts, args)
}

// TypeArguments resolves the type arguments node of a call or heritage clause.
func (p *Program) TypeArguments(sf *SourceFile, node *ts.Node) []*Type {
	return p.typeArgs(sf, nil, node)
}

func (p *Program) resolveName(sf *SourceFile, sc *scope, parts []string, args []*Type) *Type {
	if len(parts) == 1 {
		name := parts[0]
		if t, ok := sc.lookup(name); ok {
			return t
		}
		if decls := sf.types[name]; len(decls) > 0 {
			return p.instantiate(decls, args)
		}
		if imp, ok := sf.byLocal[name]; ok {
			return p.resolveImportedType(sf, imp.Source, importedName(imp), args)
		}
		return p.globalType(name, args)
	}

	head, rest := parts[0], parts[1:]
	if decls := sf.types[head]; len(decls) > 0 && decls[0].Kind == DeclEnum && len(rest) == 1 {
		if member := p.enumMember(decls, rest[0]); member != nil {
			return member
		}
	}
	if imp, ok := sf.byLocal[head]; ok && imp.Kind != queries.ImportNamed {
		if target, ok := p.ResolveModule(sf, imp.Source); ok {
			if t := p.exportedType(target, rest[0], args, map[string]bool{}); t != nil {
				return t
			}
			return p.anyType
		}
		return p.external(imp.Source, strings.Join(rest, "."), args)
	}
	return p.globalType(strings.Join(parts, "."), args)
}

// importedName is the name an import binding refers to in its module.
func importedName(imp queries.Import) string {
	if imp.Kind == queries.ImportNamed {
		return imp.Imported
	}
	return "default"
}

func (p *Program) resolveImportedType(sf *SourceFile, source, name string, args []*Type) *Type {
	if target, ok := p.ResolveModule(sf, source); ok {
		if t := p.exportedType(target, name, args, map[string]bool{}); t != nil {
			return t
		}
		p.logger.Debug("unresolved imported type", "name", name, "module", source, "file", sf.Name)
		return p.anyType
	}
	return p.external(source, name, args)
}

// exportedType finds the type exported as name by sf, following re-exports.
func (p *Program) exportedType(sf *SourceFile, name string, args []*Type, seen map[string]bool) *Type {
	key := sf.Name + "#" + name
	if seen[key] {
		return nil
	}
	seen[key] = true

	if target, ok := sf.exports[name]; ok {
		if target.local != "" {
			if decls := sf.types[target.local]; len(decls) > 0 {
				return p.instantiate(decls, args)
			}
			if imp, ok := sf.byLocal[target.local]; ok {
				return p.resolveImportedType(sf, imp.Source, importedName(imp), args)
			}
			return nil
		}
		if next, ok := p.ResolveModule(sf, target.source); ok {
			return p.exportedType(next, target.name, args, seen)
		}
		return p.external(target.source, target.name, args)
	}
	if sf.IsDeclaration {
		if decls := sf.types[name]; len(decls) > 0 {
			return p.instantiate(decls, args)
		}
	}
	for _, source := range sf.stars {
		if next, ok := p.ResolveModule(sf, source); ok {
			if t := p.exportedType(next, name, args, seen); t != nil {
				return t
			}
		}
	}
	return nil
}

func typeIDs(args []*Type) string {
	var b strings.Builder
	for _, a := range args {
		fmt.Fprintf(&b, "%d,", a.id)
	}
	return b.String()
}

// maxInstantiationDepth bounds instantiations nested in their own type
// arguments, as in Wrap<Wrap<Wrap<T>>>. Deeper ones resolve to any.
const maxInstantiationDepth = 50

// instantiationDepth is one more than the deepest instantiation among args.
func instantiationDepth(args []*Type) int {
	depth := 0
	for _, a := range args {
		depth = max(depth, a.depth)
		if a.elem != nil {
			depth = max(depth, a.elem.depth)
		}
		for _, m := range a.Types {
			depth = max(depth, m.depth)
		}
	}
	return depth + 1
}

// tooDeep reports whether an instantiation of d at depth exceeds maxInstantiationDepth.
func (p *Program) tooDeep(d *Declaration, depth int) bool {
	if depth <= maxInstantiationDepth {
		return false
	}
	p.logger.Debug("instantiation excessively deep", "name", d.Name, "file", d.File.Name)
	return true
}

func declKey(d *Declaration, args []*Type) string {
	return fmt.Sprintf("%s@%d<%s>", d.File.Name, d.Node.StartByte(), typeIDs(args))
}

// instantiate returns the type declared by decls, applying args to its type parameters.
func (p *Program) instantiate(decls []*Declaration, args []*Type) *Type {
	first := decls[0]
	switch first.Kind {
	case DeclInterface:
		var ifaces []*Declaration
		for _, d := range decls {
			if d.Kind == DeclInterface {
				ifaces = append(ifaces, d)
			}
		}
		return p.interfaceType(ifaces, args)
	case DeclTypeAlias:
		return p.aliasType(first, args)
	case DeclEnum:
		return p.enumType(decls)
	case DeclClass:
		return p.classInstanceType(first, args)
	}
	return p.anyType
}

func (p *Program) interfaceType(decls []*Declaration, args []*Type) *Type {
	first := decls[0]
	key := declKey(first, args)
	if t, ok := p.instances[key]; ok {
		return t
	}
	depth := instantiationDepth(args)
	if p.tooDeep(first, depth) {
		return p.anyType
	}

	t := p.newObject(first.Name, nil)
	t.origin, t.depth = declKey(first, nil), depth
	t.resolved = false
	t.members = func() ([]*Symbol, []*Signature) {
		sc := p.bindTypeParams(first.File, nil, first.Node.ChildByFieldName("type_parameters"), args)

		var (
			props []*Symbol
			sigs  []*Signature
		)
		seen := map[string]bool{}
		for _, d := range decls {
			own, ownSigs := p.objectMembers(d.File, sc, d.Node.ChildByFieldName("body"))
			for _, prop := range own {
				if !seen[prop.Name] {
					seen[prop.Name] = true
					props = append(props, prop)
				}
			}
			sigs = append(sigs, ownSigs...)
		}
		for _, d := range decls {
			for _, child := range namedChildren(d.Node) {
				if child.Kind() != "extends_type_clause" {
					continue
				}
				for _, baseNode := range namedChildren(child) {
					base := p.typeFromNode(d.File, sc, baseNode)
					for _, prop := range base.Properties() {
						if !seen[prop.Name] {
							seen[prop.Name] = true
							props = append(props, prop)
						}
					}
					sigs = append(sigs, base.CallSignatures()...)
				}
			}
		}
		return props, sigs
	}
	p.instances[key] = t
	return t
}

func (p *Program) aliasType(decl *Declaration, args []*Type) *Type {
	key := declKey(decl, args)
	if t, ok := p.instances[key]; ok {
		return t
	}
	if p.aliasBusy[key] {
		p.logger.Debug("circular type alias", "name", decl.Name, "file", decl.File.Name)
		return p.anyType
	}
	depth := instantiationDepth(args)
	if p.tooDeep(decl, depth) {
		return p.anyType
	}
	p.aliasBusy[key] = true
	defer delete(p.aliasBusy, key)

	sc := p.bindTypeParams(decl.File, nil, decl.Node.ChildByFieldName("type_parameters"), args)
	value := decl.Node.ChildByFieldName("value")

	var t *Type
	if value != nil && value.Kind() == "object_type" {
		// Registered before members resolve so the body can refer to the alias.
		t = p.newObject(decl.Name, func() ([]*Symbol, []*Signature) {
			return p.objectMembers(decl.File, sc, value)
		})
		t.origin, t.depth = declKey(decl, nil), depth
		p.instances[key] = t
		return t
	}
	t = p.typeFromNode(decl.File, sc, value)
	p.instances[key] = t
	return t
}

func (p *Program) enumType(decls []*Declaration) *Type {
	key := declKey(decls[0], nil)
	if t, ok := p.instances[key]; ok {
		return t
	}
	members := p.enumMembers(decls)
	types := make([]*Type, 0, len(members))
	for _, m := range members {
		types = append(types, m.typ)
	}
	t := p.newType(FlagUnion)
	t.Name = decls[0].Name
	t.Types = types
	if len(types) == 1 {
		t = types[0]
	}
	p.instances[key] = t
	return t
}

type enumMember struct {
	name string
	typ  *Type
}

func (p *Program) enumMembers(decls []*Declaration) []enumMember {
	var members []enumMember
	next := 0
	for _, d := range decls {
		for _, child := range namedChildren(d.Node.ChildByFieldName("body")) {
			var name, value string
			flag := FlagNumberLiteral
			switch child.Kind() {
			case "property_identifier", "string":
				name = unquote(d.File.Text(child))
				value = strconv.Itoa(next)
				next++
			case "enum_assignment":
				name = unquote(d.File.Text(child.ChildByFieldName("name")))
				v := child.ChildByFieldName("value")
				if v == nil {
					continue
				}
				switch v.Kind() {
				case "string":
					flag = FlagStringLiteral
					value = strconv.Quote(unquote(d.File.Text(v)))
				default:
					value = d.File.Text(v)
					if n, err := strconv.Atoi(value); err == nil {
						next = n + 1
					}
				}
			default:
				continue
			}
			// Enum members are distinct types so each keeps its own doc.
			lit := p.newType(flag)
			lit.Value = value
			lit.Doc = jsDoc(d.File, child)
			members = append(members, enumMember{name: name, typ: lit})
		}
	}
	return members
}

func (p *Program) enumMember(decls []*Declaration, name string) *Type {
	union := p.enumType(decls)
	members := p.enumMembers(decls)
	for i, m := range members {
		if m.name != name {
			continue
		}
		if union.IsUnion() && i < len(union.Types) {
			return union.Types[i]
		}
		return union
	}
	return nil
}

func (p *Program) classInstanceType(decl *Declaration, args []*Type) *Type {
	key := declKey(decl, args)
	if t, ok := p.instances[key]; ok {
		return t
	}
	depth := instantiationDepth(args)
	if p.tooDeep(decl, depth) {
		return p.anyType
	}
	t := p.newObject(decl.Name, nil)
	t.origin, t.depth = declKey(decl, nil), depth
	t.resolved = false
	t.members = func() ([]*Symbol, []*Signature) {
		sc := p.bindTypeParams(decl.File, nil, decl.Node.ChildByFieldName("type_parameters"), args)
		props, _ := p.objectMembers(decl.File, sc, decl.Node.ChildByFieldName("body"))
		return props, nil
	}
	p.instances[key] = t
	return t
}
