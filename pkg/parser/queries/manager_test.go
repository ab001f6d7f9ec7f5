package queries

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tsproptypes/pkg/parser"
	"github.com/gnana997/tsproptypes/pkg/util"
)

const importSource = `
import React from 'react';
import * as Mui from '@mui/material';
import { memo, forwardRef as fr } from 'react';
import Default, { Component } from 'react';
import './styles.css';

export function Button() { return null }
`

const reExportSource = `
export { Button } from './Button';
export { default as Chip, ChipProps as Props } from './Chip';
export * from './Dialog';
export const local = 1;
`

func setupTest(t *testing.T) (*parser.ParserManager, *QueryManager) {
	t.Helper()
	logger := util.Discard()
	pm := parser.NewParserManager(logger)
	qm := NewQueryManager(pm, logger)
	t.Cleanup(func() {
		_ = qm.Close()
		_ = pm.Close()
	})
	return pm, qm
}

func TestQueryCompilation(t *testing.T) {
	_, qm := setupTest(t)

	for _, lang := range []parser.Language{parser.LanguageTypeScript, parser.LanguageJavaScript} {
		for _, tsx := range []bool{false, true} {
			for _, qt := range []QueryType{QueryTypeImports, QueryTypeReExports} {
				query, err := qm.GetQuery(lang, tsx, qt)
				require.NoError(t, err, "%s tsx=%v %s", lang, tsx, qt)
				assert.NotNil(t, query)
			}
		}
	}
}

func TestQueryCache(t *testing.T) {
	_, qm := setupTest(t)

	first, err := qm.GetQuery(parser.LanguageTypeScript, true, QueryTypeImports)
	require.NoError(t, err)
	second, err := qm.GetQuery(parser.LanguageTypeScript, true, QueryTypeImports)
	require.NoError(t, err)
	assert.Same(t, first, second)

	plain, err := qm.GetQuery(parser.LanguageTypeScript, false, QueryTypeImports)
	require.NoError(t, err)
	assert.NotSame(t, first, plain)
}

func TestImports(t *testing.T) {
	for _, tsx := range []bool{false, true} {
		pm, qm := setupTest(t)

		tree, err := pm.Parse([]byte(importSource), parser.LanguageTypeScript, tsx)
		require.NoError(t, err)
		defer tree.Close()

		got, err := qm.Imports(tree, []byte(importSource), parser.LanguageTypeScript, tsx)
		require.NoError(t, err)

		assert.ElementsMatch(t, []Import{
			{Kind: ImportDefault, Local: "React", Source: "react"},
			{Kind: ImportNamespace, Local: "Mui", Source: "@mui/material"},
			{Kind: ImportNamed, Local: "memo", Imported: "memo", Source: "react"},
			{Kind: ImportNamed, Local: "fr", Imported: "forwardRef", Source: "react"},
			{Kind: ImportDefault, Local: "Default", Source: "react"},
			{Kind: ImportNamed, Local: "Component", Imported: "Component", Source: "react"},
		}, got)
	}
}

func TestImports_JavaScript(t *testing.T) {
	pm, qm := setupTest(t)
	source := []byte("import { memo as m } from 'react';\n")

	tree, err := pm.Parse(source, parser.LanguageJavaScript, false)
	require.NoError(t, err)
	defer tree.Close()

	got, err := qm.Imports(tree, source, parser.LanguageJavaScript, false)
	require.NoError(t, err)
	assert.Equal(t, []Import{{Kind: ImportNamed, Local: "m", Imported: "memo", Source: "react"}}, got)
}

func TestReExports(t *testing.T) {
	pm, qm := setupTest(t)

	tree, err := pm.Parse([]byte(reExportSource), parser.LanguageTypeScript, false)
	require.NoError(t, err)
	defer tree.Close()

	got, err := qm.ReExports(tree, []byte(reExportSource), parser.LanguageTypeScript, false)
	require.NoError(t, err)

	assert.ElementsMatch(t, []ReExport{
		{Name: "Button", Exported: "Button", Source: "./Button"},
		{Name: "default", Exported: "Chip", Source: "./Chip"},
		{Name: "ChipProps", Exported: "Props", Source: "./Chip"},
		{Star: true, Source: "./Dialog"},
	}, got)
}

func TestParseCaptureName(t *testing.T) {
	category, field := parseCaptureName("import.named")
	assert.Equal(t, "import", category)
	assert.Equal(t, "named", field)

	category, field = parseCaptureName("source")
	assert.Equal(t, "source", category)
	assert.Empty(t, field)
}

func TestNodeLocation(t *testing.T) {
	pm, qm := setupTest(t)
	source := []byte("\nimport React from 'react';")

	tree, err := pm.Parse(source, parser.LanguageTypeScript, false)
	require.NoError(t, err)
	defer tree.Close()

	query, err := qm.GetQuery(parser.LanguageTypeScript, false, QueryTypeImports)
	require.NoError(t, err)
	matches, err := qm.ExecuteQuery(tree, query, source)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	for _, c := range matches[0].Captures {
		if c.Name == "import.default" {
			assert.Equal(t, uint32(2), c.Location.StartLine)
			assert.Equal(t, uint32(8), c.Location.StartColumn)
			assert.Equal(t, "React", c.Text)
		}
	}
}

func TestConcurrentQueryExecution(t *testing.T) {
	pm, qm := setupTest(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := pm.Parse([]byte(importSource), parser.LanguageTypeScript, true)
			if !assert.NoError(t, err) {
				return
			}
			defer tree.Close()
			got, err := qm.Imports(tree, []byte(importSource), parser.LanguageTypeScript, true)
			assert.NoError(t, err)
			assert.Len(t, got, 6)
		}()
	}
	wg.Wait()
}

func TestExecuteQuery_NilArguments(t *testing.T) {
	pm, qm := setupTest(t)

	query, err := qm.GetQuery(parser.LanguageTypeScript, false, QueryTypeImports)
	require.NoError(t, err)
	_, err = qm.ExecuteQuery(nil, query, nil)
	assert.ErrorContains(t, err, "tree is nil")

	tree, err := pm.Parse([]byte("let a = 1"), parser.LanguageTypeScript, false)
	require.NoError(t, err)
	defer tree.Close()
	_, err = qm.ExecuteQuery(tree, nil, nil)
	assert.ErrorContains(t, err, "query is nil")
}

func TestGetQuery_Errors(t *testing.T) {
	_, qm := setupTest(t)

	_, err := qm.GetQuery(parser.LanguageUnknown, false, QueryTypeImports)
	assert.Error(t, err)

	_, err = qm.GetQuery(parser.LanguageTypeScript, false, QueryType(99))
	assert.ErrorContains(t, err, "unknown query type")
}
