// Package checker is a TypeScript type-checker front-end built on tree-sitter.
//
// It binds the top-level declarations of a set of source files and resolves the
// subset of the type system needed to describe React component props:
// primitives, literals, unions, intersections, arrays, object and interface
// types with generics, enums, common utility types and the well-known React
// and DOM types.
//
// A Program is not safe for concurrent use. Run one Program per goroutine.
package checker

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gnana997/tsproptypes/pkg/parser"
	"github.com/gnana997/tsproptypes/pkg/parser/queries"
)

// Source provides file contents to a Program.
type Source interface {
	ReadFile(path string) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(path string) ([]byte, error)

// ReadFile implements Source.
func (f SourceFunc) ReadFile(path string) ([]byte, error) { return f(path) }

// MapSource serves files from memory, keyed by path.
type MapSource map[string]string

// ReadFile implements Source.
func (m MapSource) ReadFile(path string) ([]byte, error) {
	content, ok := m[filepath.Clean(path)]
	if !ok {
		content, ok = m[path]
	}
	if !ok {
		return nil, fmt.Errorf("file %q: %w", path, os.ErrNotExist)
	}
	return []byte(content), nil
}

// ProgramOptions configures NewProgram.
type ProgramOptions struct {
	// Parser is required.
	Parser *parser.ParserManager
	// Queries is required.
	Queries *queries.QueryManager
	// Source defaults to reading from disk.
	Source Source
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Program is a set of bound source files sharing one type universe.
type Program struct {
	files  map[string]*SourceFile
	order  []string
	logger *slog.Logger

	nextTypeID TypeID

	anyType, unknownType, stringType, numberType, booleanType     *Type
	bigintType, esSymbolType, undefinedType, nullType, voidType   *Type
	neverType, nonPrimitiveType, trueType, falseType, emptyObject *Type

	literals   map[string]*Type
	unions     map[string]*Type
	arrays     map[TypeID]*Type
	instances  map[string]*Type
	aliasBusy  map[string]bool
	externals  map[string]*Type
	valueTypes map[string]*Type
	valueBusy  map[string]bool
}

// NewProgram parses and binds files. Files that cannot be read or parsed fail
// the whole program.
func NewProgram(files []string, opts ProgramOptions) (*Program, error) {
	if opts.Parser == nil || opts.Queries == nil {
		return nil, fmt.Errorf("program requires a parser and query manager")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Source == nil {
		opts.Source = SourceFunc(os.ReadFile)
	}

	p := &Program{
		files:      make(map[string]*SourceFile, len(files)),
		logger:     opts.Logger,
		literals:   make(map[string]*Type),
		unions:     make(map[string]*Type),
		arrays:     make(map[TypeID]*Type),
		instances:  make(map[string]*Type),
		aliasBusy:  make(map[string]bool),
		externals:  make(map[string]*Type),
		valueTypes: make(map[string]*Type),
		valueBusy:  make(map[string]bool),
	}
	p.initIntrinsics()

	for _, name := range files {
		name = filepath.Clean(name)
		if _, dup := p.files[name]; dup {
			continue
		}
		content, err := opts.Source.ReadFile(name)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		sf, err := bindFile(name, content, opts.Parser, opts.Queries)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to bind %s: %w", name, err)
		}
		p.files[name] = sf
		p.order = append(p.order, name)
	}

	p.logger.Debug("program created", "files", len(p.order))
	return p, nil
}

// SourceFile returns the bound file called name.
func (p *Program) SourceFile(name string) (*SourceFile, bool) {
	sf, ok := p.files[filepath.Clean(name)]
	return sf, ok
}

// FileNames returns the program's files in the order they were given.
func (p *Program) FileNames() []string {
	return append([]string(nil), p.order...)
}

// Close releases all parse trees. Types and symbols must not be used afterwards.
func (p *Program) Close() {
	for _, sf := range p.files {
		sf.tree.Close()
	}
	p.files = map[string]*SourceFile{}
	p.order = nil
}

// Logger returns the program logger.
func (p *Program) Logger() *slog.Logger { return p.logger }

func (p *Program) newType(flags TypeFlags) *Type {
	p.nextTypeID++
	return &Type{id: p.nextTypeID, Flags: flags}
}

func (p *Program) initIntrinsics() {
	p.anyType = p.newType(FlagAny)
	p.unknownType = p.newType(FlagUnknown)
	p.stringType = p.newType(FlagString)
	p.numberType = p.newType(FlagNumber)
	p.booleanType = p.newType(FlagBoolean)
	p.bigintType = p.newType(FlagBigInt)
	p.esSymbolType = p.newType(FlagESSymbol)
	p.undefinedType = p.newType(FlagUndefined)
	p.nullType = p.newType(FlagNull)
	p.voidType = p.newType(FlagVoid)
	p.neverType = p.newType(FlagNever)
	p.nonPrimitiveType = p.newType(FlagNonPrimitive)
	p.trueType = p.literal(FlagBooleanLiteral, "true")
	p.falseType = p.literal(FlagBooleanLiteral, "false")
	p.emptyObject = p.newObject("", nil)
}

// Intrinsic types, exposed for callers building expectations.

func (p *Program) AnyType() *Type       { return p.anyType }
func (p *Program) StringType() *Type    { return p.stringType }
func (p *Program) NumberType() *Type    { return p.numberType }
func (p *Program) BooleanType() *Type   { return p.booleanType }
func (p *Program) UndefinedType() *Type { return p.undefinedType }
func (p *Program) NullType() *Type      { return p.nullType }
