package checker

import (
	"path"
	"path/filepath"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsproptypes/pkg/parser"
	"github.com/gnana997/tsproptypes/pkg/parser/queries"
)

// ResolveModule resolves a relative module specifier against from. Bare
// specifiers (packages) never resolve to program files.
func (p *Program) ResolveModule(from *SourceFile, specifier string) (*SourceFile, bool) {
	if !strings.HasPrefix(specifier, ".") && !strings.HasPrefix(specifier, "/") {
		return nil, false
	}
	base := specifier
	if !filepath.IsAbs(specifier) {
		base = filepath.Join(filepath.Dir(from.Name), specifier)
	}

	candidates := []string{base}
	// ESM style specifiers name the emitted file: './Button.js' is Button.ts.
	if ext := path.Ext(base); ext == ".js" || ext == ".jsx" || ext == ".mjs" {
		stem := strings.TrimSuffix(base, ext)
		candidates = append(candidates, stem+".ts", stem+".tsx", stem+".d.ts")
	}
	for _, ext := range parser.SourceExtensions() {
		candidates = append(candidates, base+ext)
	}
	for _, ext := range parser.SourceExtensions() {
		candidates = append(candidates, filepath.Join(base, "index"+ext))
	}

	for _, c := range candidates {
		if sf, ok := p.files[filepath.Clean(c)]; ok {
			return sf, true
		}
	}
	return nil, false
}

// Signatures returns the externally visible call signatures of a function
// declaration: its overloads when it has any, otherwise itself.
func (p *Program) Signatures(decl *Declaration) []*Signature {
	sf := decl.File
	var overloads, impls []*Declaration
	for _, d := range sf.values[decl.Name] {
		switch d.Kind {
		case DeclFunctionSignature:
			overloads = append(overloads, d)
		case DeclFunction:
			impls = append(impls, d)
		}
	}
	chosen := impls
	if len(overloads) > 0 {
		chosen = overloads
	}
	sigs := make([]*Signature, 0, len(chosen))
	for _, d := range chosen {
		sigs = append(sigs, p.signatureFrom(sf, nil, d.Node))
	}
	return sigs
}

// SignatureOf returns the signature of a function-like node in sf.
func (p *Program) SignatureOf(sf *SourceFile, fn *ts.Node) *Signature {
	return p.signatureFrom(sf, nil, fn)
}

// ValueType returns the type of the value bound to name in sf.
func (p *Program) ValueType(sf *SourceFile, name string) *Type {
	key := sf.Name + "#" + name
	if t, ok := p.valueTypes[key]; ok {
		return t
	}
	if p.valueBusy[key] {
		return p.anyType
	}
	p.valueBusy[key] = true
	defer delete(p.valueBusy, key)

	t := p.computeValueType(sf, name)
	p.valueTypes[key] = t
	return t
}

func (p *Program) computeValueType(sf *SourceFile, name string) *Type {
	if decls := sf.values[name]; len(decls) > 0 {
		d := decls[0]
		switch d.Kind {
		case DeclFunction, DeclFunctionSignature:
			return p.functionType(p.Signatures(d)...)
		case DeclVariable:
			return p.variableType(sf, d.Node)
		case DeclClass, DeclEnum:
			return p.namedOpaque("typeof " + d.Name)
		}
	}
	if imp, ok := sf.byLocal[name]; ok {
		if target, ok := p.ResolveModule(sf, imp.Source); ok {
			if imp.Kind == queries.ImportNamespace {
				return p.namedOpaque("typeof " + name)
			}
			if t := p.exportedValue(target, importedName(imp), map[string]bool{}); t != nil {
				return t
			}
		}
		if isReactModule(imp.Source) && imp.Kind == queries.ImportNamed {
			return p.reactType(imp.Imported, nil)
		}
		return p.anyType
	}
	return p.anyType
}

func (p *Program) exportedValue(sf *SourceFile, name string, seen map[string]bool) *Type {
	key := sf.Name + "#" + name
	if seen[key] {
		return nil
	}
	seen[key] = true

	if target, ok := sf.exports[name]; ok {
		if target.local != "" {
			return p.ValueType(sf, target.local)
		}
		if next, ok := p.ResolveModule(sf, target.source); ok {
			return p.exportedValue(next, target.name, seen)
		}
		return nil
	}
	for _, source := range sf.stars {
		if next, ok := p.ResolveModule(sf, source); ok {
			if t := p.exportedValue(next, name, seen); t != nil {
				return t
			}
		}
	}
	return nil
}

// variableType returns the annotated type of a declarator, or the type of its initializer.
func (p *Program) variableType(sf *SourceFile, declarator *ts.Node) *Type {
	if annotation := declarator.ChildByFieldName("type"); annotation != nil {
		return p.typeFromNode(sf, nil, annotation)
	}
	if value := declarator.ChildByFieldName("value"); value != nil {
		t := p.expressionType(sf, nil, value)
		if parent := declarator.Parent(); parent != nil && hasToken(parent, "const") {
			return t
		}
		return p.widen(t)
	}
	return p.anyType
}

// widen turns a mutable binding's literal type into its primitive.
func (p *Program) widen(t *Type) *Type {
	switch {
	case t.Is(FlagStringLiteral):
		return p.stringType
	case t.Is(FlagNumberLiteral):
		return p.numberType
	case t.Is(FlagBooleanLiteral):
		return p.booleanType
	}
	return t
}
