// Package imports holds the tree-sitter query patterns for module imports and
// re-exports. The patterns only use nodes shared by the TypeScript, TSX and
// JavaScript grammars, so one source compiles against all three.
package imports

// Queries yields one match per imported binding.
//
// Captures:
//   - @import.default, @import.namespace - local names of default / namespace imports
//   - @import.named, @import.alias - imported name and its optional local alias
//   - @import.source - module specifier
const Queries = `
; import React from 'react'
(import_statement
  (import_clause
    (identifier) @import.default)
  source: (string (string_fragment) @import.source))

; import * as React from 'react'
(import_statement
  (import_clause
    (namespace_import
      (identifier) @import.namespace))
  source: (string (string_fragment) @import.source))

; import { memo } from 'react'
(import_statement
  (import_clause
    (named_imports
      (import_specifier
        name: (_) @import.named
        !alias)))
  source: (string (string_fragment) @import.source))

; import { forwardRef as fr } from 'react'
(import_statement
  (import_clause
    (named_imports
      (import_specifier
        name: (_) @import.named
        alias: (_) @import.alias)))
  source: (string (string_fragment) @import.source))
`

// ReExportQueries yields one match per re-exported binding.
//
// Captures:
//   - @reexport.name, @reexport.alias - exported name and its optional public alias
//   - @reexport.star - present for "export * from"
//   - @reexport.source - module specifier
const ReExportQueries = `
; export { Button } from './Button'
(export_statement
  (export_clause
    (export_specifier
      name: (_) @reexport.name
      !alias))
  source: (string (string_fragment) @reexport.source))

; export { default as Button } from './Button'
(export_statement
  (export_clause
    (export_specifier
      name: (_) @reexport.name
      alias: (_) @reexport.alias))
  source: (string (string_fragment) @reexport.source))

; export * from './Button'
(export_statement
  "*" @reexport.star
  source: (string (string_fragment) @reexport.source))
`
