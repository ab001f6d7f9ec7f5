package checker

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsproptypes/pkg/parser"
	"github.com/gnana997/tsproptypes/pkg/parser/queries"
)

// DeclKind classifies a top-level declaration.
type DeclKind int

const (
	DeclInterface DeclKind = iota
	DeclTypeAlias
	DeclEnum
	DeclClass
	// DeclFunction is a function declaration with a body.
	DeclFunction
	// DeclFunctionSignature is an overload or ambient function declaration.
	DeclFunctionSignature
	// DeclVariable is one variable declarator.
	DeclVariable
)

func (k DeclKind) String() string {
	switch k {
	case DeclInterface:
		return "interface"
	case DeclTypeAlias:
		return "type"
	case DeclEnum:
		return "enum"
	case DeclClass:
		return "class"
	case DeclFunction:
		return "function"
	case DeclFunctionSignature:
		return "function signature"
	case DeclVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// Declaration is a top-level binding of a source file.
type Declaration struct {
	Name string
	Kind DeclKind
	// Node is the declaring node: the interface, alias, enum, class, function,
	// function signature or variable declarator.
	Node *ts.Node
	// Ambient is set for `declare` bindings and everything in a .d.ts file.
	Ambient  bool
	Exported bool
	File     *SourceFile
}

type exportTarget struct {
	// local is set for exports of local bindings.
	local string
	// source and name are set for re-exports.
	source string
	name   string
}

// SourceFile is a parsed and bound file.
type SourceFile struct {
	Name          string
	Source        []byte
	Lang          parser.Language
	IsTSX         bool
	IsDeclaration bool

	tree    *ts.Tree
	decls   []*Declaration
	types   map[string][]*Declaration
	values  map[string][]*Declaration
	exports map[string]exportTarget
	stars   []string
	imports []queries.Import
	byLocal map[string]queries.Import
}

func bindFile(name string, content []byte, pm *parser.ParserManager, qm *queries.QueryManager) (*SourceFile, error) {
	lang := parser.DetectLanguage(name)
	if lang == parser.LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", name)
	}
	sf := &SourceFile{
		Name:          name,
		Source:        content,
		Lang:          lang,
		IsTSX:         parser.IsTSXFile(name),
		IsDeclaration: parser.IsDeclarationFile(name),
		types:         make(map[string][]*Declaration),
		values:        make(map[string][]*Declaration),
		exports:       make(map[string]exportTarget),
		byLocal:       make(map[string]queries.Import),
	}

	tree, err := pm.Parse(content, lang, sf.IsTSX)
	if err != nil {
		return nil, err
	}
	sf.tree = tree

	imports, err := qm.Imports(tree, content, lang, sf.IsTSX)
	if err != nil {
		tree.Close()
		return nil, err
	}
	sf.imports = imports
	for _, imp := range imports {
		sf.byLocal[imp.Local] = imp
	}

	reexports, err := qm.ReExports(tree, content, lang, sf.IsTSX)
	if err != nil {
		tree.Close()
		return nil, err
	}
	for _, re := range reexports {
		if re.Star {
			sf.stars = append(sf.stars, re.Source)
			continue
		}
		sf.exports[re.Exported] = exportTarget{source: re.Source, name: re.Name}
	}

	root := tree.RootNode()
	for _, stmt := range namedChildren(root) {
		sf.bindStatement(stmt, false, sf.IsDeclaration)
	}
	return sf, nil
}

// Declarations returns the top-level declarations in source order.
func (sf *SourceFile) Declarations() []*Declaration { return sf.decls }

// Imports returns the file's import bindings in source order.
func (sf *SourceFile) Imports() []queries.Import { return sf.imports }

// Root returns the root node of the file's syntax tree.
func (sf *SourceFile) Root() *ts.Node { return sf.tree.RootNode() }

// Text returns the source text of n.
func (sf *SourceFile) Text(n *ts.Node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(sf.Source)
}

func (sf *SourceFile) bindStatement(node *ts.Node, exported, ambient bool) []string {
	switch node.Kind() {
	case "export_statement":
		return sf.bindExport(node, ambient)
	case "ambient_declaration":
		var names []string
		for _, child := range namedChildren(node) {
			names = append(names, sf.bindStatement(child, exported, true)...)
		}
		return names
	case "interface_declaration":
		return sf.declare(node, DeclInterface, exported, ambient, true, false)
	case "type_alias_declaration":
		return sf.declare(node, DeclTypeAlias, exported, ambient, true, false)
	case "enum_declaration":
		return sf.declare(node, DeclEnum, exported, ambient, true, true)
	case "class_declaration", "abstract_class_declaration", "class":
		return sf.declare(node, DeclClass, exported, ambient, true, true)
	case "function_declaration", "generator_function_declaration":
		kind := DeclFunction
		if ambient {
			kind = DeclFunctionSignature
		}
		return sf.declare(node, kind, exported, ambient, false, true)
	case "function_signature":
		return sf.declare(node, DeclFunctionSignature, exported, ambient, false, true)
	case "lexical_declaration", "variable_declaration":
		var names []string
		for _, child := range namedChildren(node) {
			if child.Kind() != "variable_declarator" {
				continue
			}
			names = append(names, sf.declare(child, DeclVariable, exported, ambient, false, true)...)
		}
		return names
	}
	return nil
}

func (sf *SourceFile) bindExport(node *ts.Node, ambient bool) []string {
	isDefault := hasToken(node, "default")

	if decl := node.ChildByFieldName("declaration"); decl != nil {
		names := sf.bindStatement(decl, true, ambient)
		if isDefault && len(names) > 0 {
			sf.exports["default"] = exportTarget{local: names[0]}
		}
		return names
	}
	if isDefault {
		if value := node.ChildByFieldName("value"); value != nil && value.Kind() == "identifier" {
			sf.exports["default"] = exportTarget{local: sf.Text(value)}
		}
		return nil
	}
	// Re-exports are bound from the re-export query.
	if node.ChildByFieldName("source") != nil {
		return nil
	}
	for _, child := range namedChildren(node) {
		if child.Kind() != "export_clause" {
			continue
		}
		for _, spec := range namedChildren(child) {
			if spec.Kind() != "export_specifier" {
				continue
			}
			local := unquote(sf.Text(spec.ChildByFieldName("name")))
			public := local
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				public = unquote(sf.Text(alias))
			}
			sf.exports[public] = exportTarget{local: local}
		}
	}
	return nil
}

func (sf *SourceFile) declare(node *ts.Node, kind DeclKind, exported, ambient, typeSpace, valueSpace bool) []string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil || (nameNode.Kind() != "identifier" && nameNode.Kind() != "type_identifier") {
		return nil
	}
	decl := &Declaration{
		Name:     sf.Text(nameNode),
		Kind:     kind,
		Node:     node,
		Ambient:  ambient,
		Exported: exported,
		File:     sf,
	}
	sf.decls = append(sf.decls, decl)
	if typeSpace {
		sf.types[decl.Name] = append(sf.types[decl.Name], decl)
	}
	if valueSpace {
		sf.values[decl.Name] = append(sf.values[decl.Name], decl)
	}
	if exported {
		if _, ok := sf.exports[decl.Name]; !ok {
			sf.exports[decl.Name] = exportTarget{local: decl.Name}
		}
	}
	return []string{decl.Name}
}

func namedChildren(n *ts.Node) []*ts.Node {
	if n == nil {
		return nil
	}
	count := n.NamedChildCount()
	children := make([]*ts.Node, 0, count)
	for i := uint(0); i < count; i++ {
		if child := n.NamedChild(i); child != nil {
			children = append(children, child)
		}
	}
	return children
}

// hasToken reports whether n has a direct anonymous child of kind tok.
func hasToken(n *ts.Node, tok string) bool {
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child != nil && !child.IsNamed() && child.Kind() == tok {
			return true
		}
	}
	return false
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'' || s[0] == '`') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
