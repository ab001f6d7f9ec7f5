package parser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tsproptypes/pkg/util"
)

const sampleTS = `
import * as React from 'react';

export interface ButtonProps {
  variant?: 'text' | 'outlined' | 'contained';
  disabled?: boolean;
}

export type Size = 'small' | 'medium' | 'large';
`

const sampleTSX = `
import * as React from 'react';

export default function Button(props: { label: string }) {
  return <button>{props.label}</button>;
}
`

const sampleJS = `
export function Chip(props) {
  return null;
}
`

func newTestManager(t *testing.T) *ParserManager {
	t.Helper()
	manager := NewParserManager(util.Discard())
	t.Cleanup(func() { _ = manager.Close() })
	return manager
}

func TestParseTypeScript(t *testing.T) {
	manager := newTestManager(t)

	tree, err := manager.Parse([]byte(sampleTS), LanguageTypeScript, false)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.False(t, root.HasError())
	assert.Contains(t, root.ToSexp(), "interface_declaration")
	assert.Contains(t, root.ToSexp(), "type_alias_declaration")
}

func TestParseTSX(t *testing.T) {
	manager := newTestManager(t)

	tree, err := manager.Parse([]byte(sampleTSX), LanguageTypeScript, true)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.Contains(t, root.ToSexp(), "jsx_element")
}

func TestParseJavaScript(t *testing.T) {
	manager := newTestManager(t)

	tree, err := manager.Parse([]byte(sampleJS), LanguageJavaScript, false)
	require.NoError(t, err)
	defer tree.Close()

	assert.Equal(t, "program", tree.RootNode().Kind())
}

func TestParseFile(t *testing.T) {
	manager := newTestManager(t)

	testCases := []struct {
		fileName string
		source   string
	}{
		{"Button.ts", sampleTS},
		{"Button.tsx", sampleTSX},
		{"Chip.js", sampleJS},
		{"Button.d.ts", "export declare const Button: any;"},
	}

	for _, tc := range testCases {
		t.Run(tc.fileName, func(t *testing.T) {
			tree, err := manager.ParseFile([]byte(tc.source), tc.fileName)
			require.NoError(t, err)
			defer tree.Close()
			assert.Equal(t, "program", tree.RootNode().Kind())
		})
	}

	_, err := manager.ParseFile([]byte("body {}"), "styles.css")
	assert.ErrorContains(t, err, "unsupported file extension")
}

func TestLazyPoolCreation(t *testing.T) {
	manager := newTestManager(t)
	assert.Equal(t, 0, manager.GetStats().ParsersCreated)

	tree, err := manager.Parse([]byte(sampleTS), LanguageTypeScript, false)
	require.NoError(t, err)
	tree.Close()

	stats := manager.GetStats()
	assert.Equal(t, 1, stats.ParsersCreated)
	assert.Equal(t, 1, stats.ParsesCalled)

	// A second parse reuses the idle parser.
	tree, err = manager.Parse([]byte(sampleTS), LanguageTypeScript, false)
	require.NoError(t, err)
	tree.Close()
	assert.Equal(t, 1, manager.GetStats().ParsersCreated)
}

func TestParseUnknownLanguage(t *testing.T) {
	manager := newTestManager(t)

	_, err := manager.Parse([]byte("x"), LanguageUnknown, false)
	assert.Error(t, err)
}

func TestParseInvalidSyntaxStillReturnsTree(t *testing.T) {
	manager := newTestManager(t)

	tree, err := manager.Parse([]byte("interface Props { open?: }"), LanguageTypeScript, false)
	require.NoError(t, err)
	defer tree.Close()

	assert.True(t, tree.RootNode().HasError())
	assert.Equal(t, 1, manager.GetStats().ParseErrors)
}

func TestConcurrentParsing(t *testing.T) {
	manager := newTestManager(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			source, tsx := sampleTS, false
			if i%2 == 0 {
				source, tsx = sampleTSX, true
			}
			tree, err := manager.Parse([]byte(source), LanguageTypeScript, tsx)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, "program", tree.RootNode().Kind())
			tree.Close()
		}(i)
	}
	wg.Wait()

	stats := manager.GetStats()
	assert.Equal(t, 20, stats.ParsesCalled)
	assert.LessOrEqual(t, stats.ParsersCreated, 2*getDefaultPoolSize())
}

func TestDetectLanguage(t *testing.T) {
	testCases := map[string]Language{
		"Button.ts":      LanguageTypeScript,
		"Button.tsx":     LanguageTypeScript,
		"index.d.ts":     LanguageTypeScript,
		"mod.mts":        LanguageTypeScript,
		"Chip.js":        LanguageJavaScript,
		"Chip.jsx":       LanguageJavaScript,
		"legacy.cjs":     LanguageJavaScript,
		"styles.css":     LanguageUnknown,
		"README":         LanguageUnknown,
		"Component.TSX":  LanguageTypeScript,
	}
	for path, want := range testCases {
		assert.Equal(t, want, DetectLanguage(path), path)
	}
}

func TestIsTSXFile(t *testing.T) {
	assert.True(t, IsTSXFile("src/Button.tsx"))
	assert.False(t, IsTSXFile("src/Button.ts"))
	assert.False(t, IsTSXFile("src/Button.jsx"))
}

func TestIsDeclarationFile(t *testing.T) {
	assert.True(t, IsDeclarationFile("types/index.d.ts"))
	assert.True(t, IsDeclarationFile("Button.D.TS"))
	assert.False(t, IsDeclarationFile("Button.ts"))
	assert.False(t, IsDeclarationFile("d.tsx"))
}

func TestLanguageString(t *testing.T) {
	assert.Equal(t, "typescript", LanguageTypeScript.String())
	assert.Equal(t, "javascript", LanguageJavaScript.String())
	assert.Equal(t, "unknown", LanguageUnknown.String())
}
