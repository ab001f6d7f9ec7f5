package parser

import (
	"path/filepath"
	"strings"
)

// Language represents a supported source language.
type Language int

const (
	// LanguageTypeScript covers .ts, .tsx, .mts, .cts and .d.ts files.
	LanguageTypeScript Language = iota
	// LanguageJavaScript covers .js, .jsx, .mjs and .cjs files.
	LanguageJavaScript
	// LanguageUnknown represents an unsupported language.
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// DetectLanguage detects the language from a file path.
func DetectLanguage(filePath string) Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".tsx", ".mts", ".cts":
		return LanguageTypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}

// IsTSXFile reports whether the TSX grammar must be used for filePath.
func IsTSXFile(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) == ".tsx"
}

// IsDeclarationFile reports whether filePath is an ambient declaration file (.d.ts).
// Declaration files only contain signatures; every binding in them is ambient.
func IsDeclarationFile(filePath string) bool {
	lower := strings.ToLower(filePath)
	return strings.HasSuffix(lower, ".d.ts") ||
		strings.HasSuffix(lower, ".d.mts") ||
		strings.HasSuffix(lower, ".d.cts")
}

// SourceExtensions lists the extensions tried, in order, when resolving an
// extension-less module specifier.
func SourceExtensions() []string {
	return []string{".ts", ".tsx", ".d.ts", ".js", ".jsx"}
}
