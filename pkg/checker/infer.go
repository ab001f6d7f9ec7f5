package checker

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// inferReturnType infers the return type of a function without an annotation
// from its return statements or expression body.
func (p *Program) inferReturnType(sf *SourceFile, sc *scope, fn, body *ts.Node) *Type {
	if body.Kind() != "statement_block" {
		return p.expressionType(sf, sc, body)
	}

	var returns []*Type
	sawReturn := false
	var walk func(n *ts.Node)
	walk = func(n *ts.Node) {
		for _, child := range namedChildren(n) {
			switch child.Kind() {
			case "function_declaration", "function_expression", "function", "arrow_function",
				"generator_function_declaration", "class_declaration", "class", "method_definition":
				// Returns of nested functions belong to them.
				continue
			case "return_statement":
				sawReturn = true
				values := namedChildren(child)
				if len(values) == 0 {
					returns = append(returns, p.undefinedType)
					continue
				}
				returns = append(returns, p.expressionType(sf, sc, values[0]))
				continue
			}
			walk(child)
		}
	}
	walk(body)

	if !sawReturn {
		return p.voidType
	}
	return p.getUnion(returns)
}

func (p *Program) expressionType(sf *SourceFile, sc *scope, expr *ts.Node) *Type {
	if expr == nil {
		return p.anyType
	}
	switch expr.Kind() {
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return p.namedOpaque(NameJSXElement)
	case "null":
		return p.nullType
	case "undefined":
		return p.undefinedType
	case "true":
		return p.trueType
	case "false":
		return p.falseType
	case "string":
		return p.stringLiteral(unquote(sf.Text(expr)))
	case "template_string":
		return p.stringType
	case "number":
		return p.literal(FlagNumberLiteral, sf.Text(expr))
	case "parenthesized_expression", "non_null_expression", "await_expression":
		children := namedChildren(expr)
		if len(children) == 0 {
			return p.anyType
		}
		return p.expressionType(sf, sc, children[len(children)-1])
	case "as_expression", "satisfies_expression":
		children := namedChildren(expr)
		if len(children) < 2 {
			return p.anyType
		}
		if expr.Kind() == "as_expression" && sf.Text(children[1]) == "const" {
			return p.expressionType(sf, sc, children[0])
		}
		return p.typeFromNode(sf, sc, children[1])
	case "ternary_expression":
		return p.getUnion([]*Type{
			p.expressionType(sf, sc, expr.ChildByFieldName("consequence")),
			p.expressionType(sf, sc, expr.ChildByFieldName("alternative")),
		})
	case "binary_expression":
		return p.binaryType(sf, sc, expr)
	case "unary_expression":
		if hasToken(expr, "!") {
			return p.booleanType
		}
		if hasToken(expr, "typeof") {
			return p.stringType
		}
		return p.numberType
	case "arrow_function", "function_expression", "function":
		return p.functionType(p.signatureFrom(sf, sc, expr))
	case "array":
		var elems []*Type
		for _, child := range namedChildren(expr) {
			elems = append(elems, p.widen(p.expressionType(sf, sc, child)))
		}
		if len(elems) == 0 {
			return p.arrayOf(p.anyType)
		}
		return p.arrayOf(p.getUnion(elems))
	case "object":
		return p.emptyObject
	case "identifier":
		if sf.Text(expr) == "undefined" {
			return p.undefinedType
		}
		return p.ValueType(sf, sf.Text(expr))
	case "call_expression":
		return p.callType(sf, sc, expr)
	}
	return p.anyType
}

func (p *Program) binaryType(sf *SourceFile, sc *scope, expr *ts.Node) *Type {
	left := expr.ChildByFieldName("left")
	right := expr.ChildByFieldName("right")
	op := expr.ChildByFieldName("operator")
	switch sf.Text(op) {
	case "&&":
		// The falsy left operand is approximated by false.
		return p.getUnion([]*Type{p.falseType, p.expressionType(sf, sc, right)})
	case "||", "??":
		return p.getUnion([]*Type{p.expressionType(sf, sc, left), p.expressionType(sf, sc, right)})
	case "==", "===", "!=", "!==", "<", ">", "<=", ">=", "instanceof", "in":
		return p.booleanType
	case "+":
		l, r := p.expressionType(sf, sc, left), p.expressionType(sf, sc, right)
		if l.Is(FlagString|FlagStringLiteral) || r.Is(FlagString|FlagStringLiteral) {
			return p.stringType
		}
		return p.numberType
	}
	return p.numberType
}

func (p *Program) callType(sf *SourceFile, sc *scope, call *ts.Node) *Type {
	callee := call.ChildByFieldName("function")
	if callee == nil {
		return p.anyType
	}
	name := sf.Text(callee)
	switch name {
	case "React.createElement", "createElement", "React.cloneElement", "cloneElement":
		return p.namedOpaque(NameReactElement)
	}
	if callee.Kind() != "identifier" {
		return p.anyType
	}
	for _, sig := range p.ValueType(sf, name).CallSignatures() {
		if rt := sig.ReturnType(); rt != nil {
			return rt
		}
	}
	return p.anyType
}
