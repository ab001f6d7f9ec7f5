package checker

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// jsDoc returns the description of the /** */ comment directly preceding n.
// Block tags (@default, @deprecated, ...) are not part of the description.
func jsDoc(sf *SourceFile, n *ts.Node) string {
	prev := n.PrevSibling()
	for prev != nil && !prev.IsNamed() {
		// Separators such as ',' or ';' between members.
		prev = prev.PrevSibling()
	}
	if prev == nil || prev.Kind() != "comment" {
		return ""
	}
	return parseJSDoc(sf.Text(prev))
}

func parseJSDoc(comment string) string {
	if !strings.HasPrefix(comment, "/**") || !strings.HasSuffix(comment, "*/") || len(comment) < 5 {
		return ""
	}
	body := comment[3 : len(comment)-2]

	var lines []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimPrefix(line, " ")
		if strings.HasPrefix(strings.TrimSpace(line), "@") {
			break
		}
		lines = append(lines, strings.TrimRight(line, " \t\r"))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
