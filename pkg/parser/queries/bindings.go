package queries

import (
	"fmt"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsproptypes/pkg/parser"
)

// ImportKind distinguishes the three import binding forms.
type ImportKind int

const (
	ImportDefault ImportKind = iota
	ImportNamespace
	ImportNamed
)

// Import is one local binding introduced by an import statement.
type Import struct {
	Kind ImportKind
	// Local is the name visible in the importing file.
	Local string
	// Imported is the exported name for named imports, empty otherwise.
	Imported string
	Source   string
}

// ReExport is one binding forwarded by "export ... from".
type ReExport struct {
	// Name is the name in the source module, empty for "export *".
	Name string
	// Exported is the public name. Equals Name unless aliased.
	Exported string
	Star     bool
	Source   string
}

// Imports returns every import binding in tree, in source order.
func (qm *QueryManager) Imports(tree *ts.Tree, source []byte, lang parser.Language, isTSX bool) ([]Import, error) {
	query, err := qm.GetQuery(lang, isTSX, QueryTypeImports)
	if err != nil {
		return nil, err
	}
	matches, err := qm.ExecuteQuery(tree, query, source)
	if err != nil {
		return nil, fmt.Errorf("failed to execute imports query: %w", err)
	}

	result := make([]Import, 0, len(matches))
	for _, m := range matches {
		src, _ := m.Capture("import.source")
		if local, ok := m.Capture("import.default"); ok {
			result = append(result, Import{Kind: ImportDefault, Local: local, Source: src})
			continue
		}
		if local, ok := m.Capture("import.namespace"); ok {
			result = append(result, Import{Kind: ImportNamespace, Local: local, Source: src})
			continue
		}
		if name, ok := m.Capture("import.named"); ok {
			name = unquote(name)
			local := name
			if alias, ok := m.Capture("import.alias"); ok {
				local = alias
			}
			result = append(result, Import{Kind: ImportNamed, Local: local, Imported: name, Source: src})
		}
	}
	return result, nil
}

// ReExports returns every "export ... from" binding in tree, in source order.
func (qm *QueryManager) ReExports(tree *ts.Tree, source []byte, lang parser.Language, isTSX bool) ([]ReExport, error) {
	query, err := qm.GetQuery(lang, isTSX, QueryTypeReExports)
	if err != nil {
		return nil, err
	}
	matches, err := qm.ExecuteQuery(tree, query, source)
	if err != nil {
		return nil, fmt.Errorf("failed to execute re-exports query: %w", err)
	}

	result := make([]ReExport, 0, len(matches))
	for _, m := range matches {
		src, _ := m.Capture("reexport.source")
		if _, ok := m.Capture("reexport.star"); ok {
			result = append(result, ReExport{Star: true, Source: src})
			continue
		}
		name, ok := m.Capture("reexport.name")
		if !ok {
			continue
		}
		name = unquote(name)
		exported := name
		if alias, ok := m.Capture("reexport.alias"); ok {
			exported = unquote(alias)
		}
		result = append(result, ReExport{Name: name, Exported: exported, Source: src})
	}
	return result, nil
}

// unquote strips the quotes of string module export names (export { "a-b" as c }).
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') {
		return strings.Trim(s, `"'`)
	}
	return s
}
