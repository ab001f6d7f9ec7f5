// Package queries compiles, caches and runs the tree-sitter queries used to
// bind module imports and re-exports.
package queries

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tsproptypes/pkg/parser"
	"github.com/gnana997/tsproptypes/pkg/parser/queries/imports"
)

// QueryType identifies which query to run.
type QueryType int

const (
	// QueryTypeImports matches import bindings.
	QueryTypeImports QueryType = iota
	// QueryTypeReExports matches "export ... from" bindings.
	QueryTypeReExports
)

// String returns the string representation of a QueryType.
func (qt QueryType) String() string {
	switch qt {
	case QueryTypeImports:
		return "imports"
	case QueryTypeReExports:
		return "reexports"
	default:
		return "unknown"
	}
}

// queryKey identifies a compiled query. Queries compiled against the
// TypeScript grammar cannot run on TSX trees, so isTSX is part of the key.
type queryKey struct {
	lang  parser.Language
	isTSX bool
	qtype QueryType
}

// QueryManager compiles queries lazily and caches them. Safe for concurrent use.
type QueryManager struct {
	parserManager *parser.ParserManager
	cache         map[queryKey]*ts.Query
	mutex         sync.RWMutex
	logger        *slog.Logger
}

// NewQueryManager creates a query manager bound to pm's grammars.
func NewQueryManager(pm *parser.ParserManager, logger *slog.Logger) *QueryManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryManager{
		parserManager: pm,
		cache:         make(map[queryKey]*ts.Query),
		logger:        logger,
	}
}

// GetQuery returns the compiled query for the grammar and query type.
func (qm *QueryManager) GetQuery(lang parser.Language, isTSX bool, qtype QueryType) (*ts.Query, error) {
	if lang != parser.LanguageTypeScript {
		isTSX = false
	}
	key := queryKey{lang: lang, isTSX: isTSX, qtype: qtype}

	qm.mutex.RLock()
	query, exists := qm.cache[key]
	qm.mutex.RUnlock()
	if exists {
		return query, nil
	}

	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	if query, exists = qm.cache[key]; exists {
		return query, nil
	}

	queryString, err := getQueryString(qtype)
	if err != nil {
		return nil, err
	}

	langPtr, err := qm.parserManager.GetLanguagePointer(lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to get language pointer for %s: %w", lang, err)
	}

	query, qerr := ts.NewQuery(ts.NewLanguage(langPtr), queryString)
	if qerr != nil {
		return nil, fmt.Errorf("failed to compile %s query for %s: %s", qtype, lang, qerr.Message)
	}
	qm.cache[key] = query

	qm.logger.Debug("compiled query",
		"language", lang.String(),
		"isTSX", isTSX,
		"type", qtype.String())

	return query, nil
}

func getQueryString(qtype QueryType) (string, error) {
	switch qtype {
	case QueryTypeImports:
		return imports.Queries, nil
	case QueryTypeReExports:
		return imports.ReExportQueries, nil
	default:
		return "", fmt.Errorf("unknown query type: %d", qtype)
	}
}

// ExecuteQuery runs query over tree and returns its matches in document order.
func (qm *QueryManager) ExecuteQuery(tree *ts.Tree, query *ts.Query, source []byte) ([]QueryMatch, error) {
	if tree == nil {
		return nil, fmt.Errorf("tree is nil")
	}
	if query == nil {
		return nil, fmt.Errorf("query is nil")
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	iter := cursor.Matches(query, tree.RootNode(), source)
	captureNames := query.CaptureNames()

	var matches []QueryMatch
	for {
		match := iter.Next()
		if match == nil {
			break
		}

		captures := make([]QueryCapture, 0, len(match.Captures))
		for _, capture := range match.Captures {
			var name string
			if int(capture.Index) < len(captureNames) {
				name = captureNames[capture.Index]
			}
			category, field := parseCaptureName(name)
			node := capture.Node
			captures = append(captures, QueryCapture{
				Name:     name,
				Category: category,
				Field:    field,
				Node:     &node,
				Text:     node.Utf8Text(source),
				Location: nodeLocation(&node),
			})
		}

		matches = append(matches, QueryMatch{
			PatternIndex: uint32(match.PatternIndex),
			Captures:     captures,
		})
	}

	return matches, nil
}

// Close releases all compiled queries.
func (qm *QueryManager) Close() error {
	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	qm.logger.Debug("closing QueryManager", "queries_compiled", len(qm.cache))

	for key, query := range qm.cache {
		query.Close()
		delete(qm.cache, key)
	}
	return nil
}

// QueryMatch is a single pattern match.
type QueryMatch struct {
	PatternIndex uint32
	Captures     []QueryCapture
}

// Capture returns the text of the first capture called name.
func (m QueryMatch) Capture(name string) (string, bool) {
	for _, c := range m.Captures {
		if c.Name == name {
			return c.Text, true
		}
	}
	return "", false
}

// QueryCapture is a single captured node.
type QueryCapture struct {
	// Name is the full capture name, e.g. "import.named".
	Name     string
	Category string
	// Field is empty when the capture name has no dot.
	Field    string
	Node     *ts.Node
	Text     string
	Location Location
}

// Location is a position in source. Lines and columns are 1-based, bytes 0-based.
type Location struct {
	StartLine   uint32
	StartColumn uint32
	EndLine     uint32
	EndColumn   uint32
	StartByte   uint32
	EndByte     uint32
}

func parseCaptureName(name string) (category, field string) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return name, ""
}

func nodeLocation(node *ts.Node) Location {
	start := node.StartPosition()
	end := node.EndPosition()
	return Location{
		StartLine:   uint32(start.Row + 1),
		StartColumn: uint32(start.Column + 1),
		EndLine:     uint32(end.Row + 1),
		EndColumn:   uint32(end.Column + 1),
		StartByte:   uint32(node.StartByte()),
		EndByte:     uint32(node.EndByte()),
	}
}
