package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tsproptypes/pkg/parser"
	"github.com/gnana997/tsproptypes/pkg/parser/queries"
	"github.com/gnana997/tsproptypes/pkg/util"
)

func newTestProgram(t *testing.T, files map[string]string) *Program {
	t.Helper()
	logger := util.Discard()
	pm := parser.NewParserManager(logger)
	qm := queries.NewQueryManager(pm, logger)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	prog, err := NewProgram(names, ProgramOptions{
		Parser:  pm,
		Queries: qm,
		Source:  MapSource(files),
		Logger:  logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		prog.Close()
		_ = qm.Close()
		_ = pm.Close()
	})
	return prog
}

// declaredType resolves the type declared as name in file.
func declaredType(t *testing.T, p *Program, file, name string) *Type {
	t.Helper()
	sf, ok := p.SourceFile(file)
	require.True(t, ok)
	decls := sf.types[name]
	require.NotEmpty(t, decls, "no type %s in %s", name, file)
	return p.instantiate(decls, nil)
}

func propNames(props []*Symbol) []string {
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Name
	}
	return names
}

func TestInterfaceMembers(t *testing.T) {
	p := newTestProgram(t, map[string]string{"Dialog.tsx": `
export interface DialogProps {
  /**
   * If true, the dialog is open.
   * @default false
   */
  open?: boolean;
  title: string;
  onClose(event: Event): void;
}
`})

	props := declaredType(t, p, "Dialog.tsx", "DialogProps")
	assert.Equal(t, "DialogProps", props.Name)
	require.Equal(t, []string{"open", "title", "onClose"}, propNames(props.Properties()))

	open := props.Property("open")
	assert.True(t, open.Optional)
	assert.Equal(t, "If true, the dialog is open.", open.Doc)
	assert.Equal(t, []string{"Dialog.tsx"}, open.FileNames)
	assert.Same(t, p.BooleanType(), open.DeclaredType())
	require.True(t, open.Type().IsUnion())
	assert.Equal(t, "boolean | undefined", open.Type().String())

	title := props.Property("title")
	assert.False(t, title.Optional)
	assert.Same(t, p.StringType(), title.Type())

	onClose := props.Property("onClose")
	assert.Len(t, onClose.Type().CallSignatures(), 1)
}

func TestInterfaceMergingAndExtends(t *testing.T) {
	p := newTestProgram(t, map[string]string{"Button.ts": `
interface Base { disabled?: boolean; color: string }
interface ButtonProps extends Base { color: 'primary' | 'secondary' }
interface ButtonProps { size: number }
`})

	props := declaredType(t, p, "Button.ts", "ButtonProps")
	assert.Equal(t, []string{"color", "size", "disabled"}, propNames(props.Properties()))
	assert.Equal(t, `"primary" | "secondary"`, props.Property("color").Type().String())
}

func TestGenericInstantiation(t *testing.T) {
	p := newTestProgram(t, map[string]string{"Select.ts": `
interface SelectProps<T extends string, Multiple = false> {
  value: T;
  multiple: Multiple;
}
type Props = SelectProps<'a' | 'b'>;
function pick<T extends number>(props: SelectProps<'x', T>) {}
`})

	props := declaredType(t, p, "Select.ts", "Props")
	assert.Equal(t, `"a" | "b"`, props.Property("value").Type().String())
	assert.Equal(t, "false", props.Property("multiple").Type().String())

	sf, _ := p.SourceFile("Select.ts")
	sigs := p.Signatures(sf.values["pick"][0])
	require.Len(t, sigs, 1)
	multiple := sigs[0].Params[0].Type().Property("multiple").Type()
	require.True(t, multiple.Is(FlagTypeParameter))
	assert.Same(t, p.NumberType(), multiple.Constraint)

	// Same arguments give the same instantiation.
	again := declaredType(t, p, "Select.ts", "Props")
	assert.Equal(t, props.ID(), again.ID())
}

func TestUnionNormalization(t *testing.T) {
	p := newTestProgram(t, map[string]string{"u.ts": `
type A = 'a' | string;
type B = true | false | undefined;
type C = never | number;
type D = any | string;
type E = 1 | 2 | 1;
`})

	assert.Same(t, p.StringType(), declaredType(t, p, "u.ts", "A"))
	assert.Equal(t, "boolean | undefined", declaredType(t, p, "u.ts", "B").String())
	assert.Same(t, p.NumberType(), declaredType(t, p, "u.ts", "C"))
	assert.Same(t, p.AnyType(), declaredType(t, p, "u.ts", "D"))
	assert.Equal(t, "1 | 2", declaredType(t, p, "u.ts", "E").String())
}

func TestSelfReferentialTypes(t *testing.T) {
	p := newTestProgram(t, map[string]string{"tree.ts": `
interface TreeNode { label: string; children?: TreeNode[]; parent?: TreeNode }
type Linked = { value: number; next: Linked | null };
`})

	node := declaredType(t, p, "tree.ts", "TreeNode")
	children := node.Property("children").DeclaredType()
	require.True(t, children.IsArray())
	assert.Equal(t, node.ID(), children.ElementType().ID())
	assert.Equal(t, node.ID(), node.Property("parent").DeclaredType().ID())

	linked := declaredType(t, p, "tree.ts", "Linked")
	next := linked.Property("next").Type()
	require.True(t, next.IsUnion())
	assert.Equal(t, linked.ID(), next.Types[0].ID())
}

func TestDeeplyNestedInstantiation(t *testing.T) {
	p := newTestProgram(t, map[string]string{"wrap.ts": `
interface Wrap<T> { inner: Wrap<Wrap<T>>; value: T }
type Root = Wrap<number>;
`})

	cur := declaredType(t, p, "wrap.ts", "Root")
	levels := 0
	for cur.Is(FlagObject) {
		require.Equal(t, "Wrap", cur.Name)
		require.Less(t, levels, 2*maxInstantiationDepth)
		cur = cur.Property("inner").Type()
		levels++
	}
	assert.Same(t, p.AnyType(), cur)
	assert.Equal(t, maxInstantiationDepth, levels)
}

func TestCircularConstraints(t *testing.T) {
	p := newTestProgram(t, map[string]string{"c.ts": `
function self<T extends T>(props: T) {}
function pair<A extends B, B extends A>(props: { a: A; b: B }) {}
function later<A extends B, B extends { id: number }>(props: A) {}
`})
	sf, _ := p.SourceFile("c.ts")
	param := func(fn string) *Type {
		sigs := p.Signatures(sf.values[fn][0])
		require.Len(t, sigs, 1)
		return sigs[0].Params[0].Type()
	}

	self := param("self")
	require.True(t, self.Is(FlagTypeParameter))
	assert.Nil(t, self.Constraint)
	assert.Empty(t, p.PropertiesOf(self))

	pair := param("pair")
	assert.Nil(t, pair.Property("a").Type().BaseConstraint())
	assert.Nil(t, pair.Property("b").Type().BaseConstraint())

	assert.Equal(t, []string{"id"}, propNames(p.PropertiesOf(param("later"))))
}

func TestEnums(t *testing.T) {
	p := newTestProgram(t, map[string]string{"enum.ts": `
enum Size {
  /** Compact */
  Small = 'small',
  Large = 'large',
}
enum Level { Low, High = 5, Higher }
type Only = Size.Large;
`})

	size := declaredType(t, p, "enum.ts", "Size")
	require.True(t, size.IsUnion())
	require.Len(t, size.Types, 2)
	assert.Equal(t, `"small"`, size.Types[0].Value)
	assert.Equal(t, "Compact", size.Types[0].Doc)

	level := declaredType(t, p, "enum.ts", "Level")
	assert.Equal(t, "0 | 5 | 6", unionValues(level))

	assert.Equal(t, `"large"`, declaredType(t, p, "enum.ts", "Only").Value)
}

func unionValues(t *Type) string {
	out := ""
	for i, m := range t.Types {
		if i > 0 {
			out += " | "
		}
		out += m.Value
	}
	return out
}

func TestCrossFileReferences(t *testing.T) {
	p := newTestProgram(t, map[string]string{
		"src/types.ts":        `export interface Shared { id: string }`,
		"src/index.ts":        `export * from './types'; export { Shared as Renamed } from './types';`,
		"src/Button/Button.ts": `
import { Shared } from '../types';
import { Renamed } from '..';
import * as T from '../types';
type A = Shared;
type B = Renamed;
type C = T.Shared;
`,
	})

	a := declaredType(t, p, "src/Button/Button.ts", "A")
	b := declaredType(t, p, "src/Button/Button.ts", "B")
	c := declaredType(t, p, "src/Button/Button.ts", "C")
	assert.Equal(t, "Shared", a.Name)
	assert.Equal(t, a.ID(), b.ID())
	assert.Equal(t, a.ID(), c.ID())
	assert.Equal(t, []string{"src/types.ts"}, a.Property("id").FileNames)
}

func TestUtilityTypes(t *testing.T) {
	p := newTestProgram(t, map[string]string{"util.ts": `
interface Props { a: string; b?: number; c: boolean }
type P = Partial<Props>;
type R = Required<Props>;
type K = Pick<Props, 'a' | 'c'>;
type O = Omit<Props, 'a'>;
type Rec = Record<'x' | 'y', number>;
type N = NonNullable<string | null | undefined>;
type X = Exclude<'a' | 'b' | 'c', 'a'>;
type I = Props & { d: string };
type Keys = keyof Props;
type Lookup = Props['a'];
`})

	partial := declaredType(t, p, "util.ts", "P")
	for _, prop := range partial.Properties() {
		assert.True(t, prop.Optional, prop.Name)
	}
	assert.False(t, declaredType(t, p, "util.ts", "R").Property("b").Optional)

	pick := declaredType(t, p, "util.ts", "K")
	assert.Equal(t, []string{"a", "c"}, propNames(pick.Properties()))
	original := declaredType(t, p, "util.ts", "Props")
	assert.Equal(t, original.Property("a").ID(), pick.Property("a").ID())

	assert.Equal(t, []string{"b", "c"}, propNames(declaredType(t, p, "util.ts", "O").Properties()))
	assert.Equal(t, []string{"x", "y"}, propNames(declaredType(t, p, "util.ts", "Rec").Properties()))
	assert.Same(t, p.StringType(), declaredType(t, p, "util.ts", "N"))
	assert.Equal(t, `"b" | "c"`, declaredType(t, p, "util.ts", "X").String())
	assert.Equal(t, []string{"a", "b", "c", "d"}, propNames(declaredType(t, p, "util.ts", "I").Properties()))
	assert.Equal(t, `"a" | "b" | "c"`, declaredType(t, p, "util.ts", "Keys").String())
	assert.Same(t, p.StringType(), declaredType(t, p, "util.ts", "Lookup"))
}

func TestReactExternals(t *testing.T) {
	p := newTestProgram(t, map[string]string{"r.tsx": `
import * as React from 'react';
import { ReactNode, FC } from 'react';
interface Props { label: string }
type Children = ReactNode | undefined;
type Comp = FC<Props>;
type Key = React.Key;
type Elem = React.ElementType;
type WithChildren = React.PropsWithChildren<Props>;
type FromComponent = React.ComponentProps<Comp>;
`})

	children := declaredType(t, p, "r.tsx", "Children")
	assert.Equal(t, NameReactNode, children.Name)

	comp := declaredType(t, p, "r.tsx", "Comp")
	assert.Equal(t, "React.FC", comp.Name)
	sigs := comp.CallSignatures()
	require.Len(t, sigs, 1)
	assert.Equal(t, "Props", sigs[0].Params[0].Type().Name)

	assert.Equal(t, "string | number", declaredType(t, p, "r.tsx", "Key").String())
	assert.Equal(t, NameElementType, declaredType(t, p, "r.tsx", "Elem").Name)
	assert.Equal(t, []string{"label", "children"}, propNames(declaredType(t, p, "r.tsx", "WithChildren").Properties()))
	assert.Equal(t, "Props", declaredType(t, p, "r.tsx", "FromComponent").Name)
}

func TestReturnTypeInference(t *testing.T) {
	p := newTestProgram(t, map[string]string{"c.tsx": `
import * as React from 'react';
function A(props: {}) { return <div />; }
function B(props: {}) { if (props) { return null; } return <span>x</span>; }
function C(props: {}) { return props ? <a /> : null; }
function D(props: {}) { return React.createElement('div'); }
function E(props: {}) { const inner = () => 1; return 'text'; }
function F(props: {}): JSX.Element { return null as any; }
`})

	sf, _ := p.SourceFile("c.tsx")
	ret := func(name string) *Type {
		sigs := p.Signatures(sf.values[name][0])
		require.Len(t, sigs, 1)
		return sigs[0].ReturnType()
	}

	assert.Equal(t, NameJSXElement, ret("A").Name)
	assert.Equal(t, "null | JSX.Element", ret("B").String())
	assert.Equal(t, "JSX.Element | null", ret("C").String())
	assert.Equal(t, NameReactElement, ret("D").Name)
	assert.Equal(t, `"text"`, ret("E").String())
	assert.Equal(t, NameJSXElement, ret("F").Name)
}

func TestOverloadSignatures(t *testing.T) {
	p := newTestProgram(t, map[string]string{"o.tsx": `
export function Tabs(props: { a: string }): JSX.Element;
export function Tabs(props: { a: string; b: number }): JSX.Element;
export function Tabs(props: any) { return <div />; }
`})

	sf, _ := p.SourceFile("o.tsx")
	decls := sf.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, DeclFunctionSignature, decls[0].Kind)
	assert.Equal(t, DeclFunction, decls[2].Kind)
	assert.True(t, decls[0].Exported)

	sigs := p.Signatures(decls[2])
	require.Len(t, sigs, 2)
	assert.Equal(t, []string{"a", "b"}, propNames(sigs[1].Params[0].Type().Properties()))
}

func TestDeclarationFile(t *testing.T) {
	p := newTestProgram(t, map[string]string{"Chip.d.ts": `
import * as React from 'react';
export interface ChipProps { label?: string }
declare const Chip: React.ComponentType<ChipProps>;
export default Chip;
export declare function Badge(props: ChipProps): JSX.Element;
`})

	sf, _ := p.SourceFile("Chip.d.ts")
	assert.True(t, sf.IsDeclaration)
	decls := sf.Declarations()
	require.Len(t, decls, 3)
	for _, d := range decls {
		assert.True(t, d.Ambient, d.Name)
	}
	assert.Equal(t, DeclVariable, decls[1].Kind)

	chip := p.ValueType(sf, "Chip")
	assert.Equal(t, NameComponentType, chip.Name)
	assert.Equal(t, "ChipProps", chip.CallSignatures()[0].Params[0].Type().Name)
}

func TestMissingFile(t *testing.T) {
	logger := util.Discard()
	pm := parser.NewParserManager(logger)
	defer pm.Close()
	qm := queries.NewQueryManager(pm, logger)
	defer qm.Close()

	_, err := NewProgram([]string{"missing.ts"}, ProgramOptions{Parser: pm, Queries: qm, Source: MapSource{}, Logger: logger})
	assert.ErrorContains(t, err, "missing.ts")

	p := newTestProgram(t, map[string]string{"a.ts": "export const a = 1;"})
	_, ok := p.SourceFile("b.ts")
	assert.False(t, ok)
	assert.Equal(t, []string{"a.ts"}, p.FileNames())
}

func TestParseJSDoc(t *testing.T) {
	assert.Equal(t, "Line one.\nLine two.", parseJSDoc("/**\n * Line one.\n * Line two.\n * @default 1\n */"))
	assert.Equal(t, "Short", parseJSDoc("/** Short */"))
	assert.Empty(t, parseJSDoc("// not a doc"))
	assert.Empty(t, parseJSDoc("/* plain block */"))
}
