// Package analyzer finds React components in a TypeScript program and converts
// their props types into PropType trees.
package analyzer

import (
	"errors"
	"fmt"

	"github.com/gnana997/tsproptypes/pkg/checker"
	"github.com/gnana997/tsproptypes/pkg/proptypes"
)

var (
	// ErrFileNotFound is returned when the requested file is not part of the program.
	ErrFileNotFound = errors.New("file not found in program")

	// ErrNoType is returned when a prop has no resolvable type at all.
	ErrNoType = errors.New("symbol has no type")
)

// Parse analyzes one file of prog and returns its components in discovery
// order. Components declared with several signatures are merged.
//
// A Program is not safe for concurrent use, so neither is Parse on a shared Program.
func Parse(prog *checker.Program, fileName string, opts Options) (*proptypes.Program, error) {
	opts = opts.withDefaults()

	sf, ok := prog.SourceFile(fileName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, fileName)
	}

	d := &discoverer{
		prog:  prog,
		sf:    sf,
		names: ResolveImports(sf, opts.ReactModules),
		opts:  opts,
	}
	conv := newConverter(prog, opts)

	var components []*proptypes.Component
	for _, cand := range d.discover() {
		c, err := conv.component(cand.name, sf.Name, cand.props)
		if err != nil {
			return nil, err
		}
		if c == nil {
			opts.Logger.Debug("component has no props", "name", cand.name, "file", sf.Name)
			continue
		}
		components = append(components, c)
	}

	opts.Logger.Debug("parsed file", "file", sf.Name, "components", len(components))
	return &proptypes.Program{Components: mergeComponents(components)}, nil
}
