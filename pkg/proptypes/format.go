package proptypes

import (
	"encoding/json"
	"fmt"
	"io"
)

// Format selects an output rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatText:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json or text)", s)
	}
}

// Write renders programs to w.
//
// JSON output is an array of ProgramNode objects, indented. Text output lists
// each component followed by one line per prop.
func Write(w io.Writer, format Format, programs ...*Program) error {
	switch format {
	case FormatText:
		for _, p := range programs {
			if err := writeText(w, p); err != nil {
				return err
			}
		}
		return nil
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if programs == nil {
			programs = []*Program{}
		}
		if err := enc.Encode(programs); err != nil {
			return fmt.Errorf("failed to encode programs: %w", err)
		}
		return nil
	}
}

func writeText(w io.Writer, p *Program) error {
	for _, c := range p.Components {
		if _, err := fmt.Fprintf(w, "%s (%s)\n", c.Name, c.FileName); err != nil {
			return err
		}
		for _, prop := range c.Props {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", prop.Name, prop.Type); err != nil {
				return err
			}
		}
	}
	return nil
}
