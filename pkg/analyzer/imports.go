package analyzer

import (
	"slices"

	"github.com/gnana997/tsproptypes/pkg/checker"
	"github.com/gnana997/tsproptypes/pkg/parser/queries"
)

// ReactNames holds the qualified local names that denote React component
// bases and wrappers in one file.
type ReactNames struct {
	bases      map[string]bool
	memo       map[string]bool
	forwardRef map[string]bool
}

// ResolveImports collects the React names visible in sf. The global `React`
// namespace is always recognized. Names the resolver misses only cause
// components to go undiscovered.
func ResolveImports(sf *checker.SourceFile, reactModules []string) *ReactNames {
	names := &ReactNames{
		bases:      map[string]bool{},
		memo:       map[string]bool{},
		forwardRef: map[string]bool{},
	}
	names.addNamespace("React")

	for _, imp := range sf.Imports() {
		if !slices.Contains(reactModules, imp.Source) {
			continue
		}
		switch imp.Kind {
		case queries.ImportDefault, queries.ImportNamespace:
			names.addNamespace(imp.Local)
		case queries.ImportNamed:
			switch imp.Imported {
			case "Component", "PureComponent":
				names.bases[imp.Local] = true
			case "memo":
				names.memo[imp.Local] = true
			case "forwardRef":
				names.forwardRef[imp.Local] = true
			}
		}
	}
	return names
}

func (n *ReactNames) addNamespace(ns string) {
	n.bases[ns+".Component"] = true
	n.bases[ns+".PureComponent"] = true
	n.memo[ns+".memo"] = true
	n.forwardRef[ns+".forwardRef"] = true
}

// IsComponentBase reports whether name is a React component base class.
func (n *ReactNames) IsComponentBase(name string) bool { return n.bases[name] }

// IsMemo reports whether name is React.memo.
func (n *ReactNames) IsMemo(name string) bool { return n.memo[name] }

// IsForwardRef reports whether name is React.forwardRef.
func (n *ReactNames) IsForwardRef(name string) bool { return n.forwardRef[name] }
