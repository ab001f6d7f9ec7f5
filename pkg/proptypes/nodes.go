package proptypes

import (
	"encoding/json"
	"sort"
)

// PropDefinition is one prop of a component.
type PropDefinition struct {
	Name string
	Doc  string
	Type PropType
	// FileNames is the sorted set of files the prop is declared in.
	FileNames []string
	// ID identifies the declaring symbol within one parse. Two props with the
	// same ID share a declaration, not merely the same shape.
	ID int
}

// MarshalJSON implements json.Marshaler.
func (p *PropDefinition) MarshalJSON() ([]byte, error) {
	fileNames := p.FileNames
	if fileNames == nil {
		fileNames = []string{}
	}
	return json.Marshal(struct {
		Type      string   `json:"type"`
		Name      string   `json:"name"`
		Doc       string   `json:"jsDoc,omitempty"`
		PropType  PropType `json:"propType"`
		FileNames []string `json:"filenames"`
		ID        int      `json:"$$id"`
	}{"PropTypeNode", p.Name, p.Doc, p.Type, fileNames, p.ID})
}

// Component is a discovered component and its props, in declaration order.
type Component struct {
	Name     string
	Props    []*PropDefinition
	FileName string
}

// Prop returns the prop called name, or nil.
func (c *Component) Prop(name string) *PropDefinition {
	for _, p := range c.Props {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c *Component) MarshalJSON() ([]byte, error) {
	props := c.Props
	if props == nil {
		props = []*PropDefinition{}
	}
	return json.Marshal(struct {
		Type          string            `json:"type"`
		Name          string            `json:"name"`
		Types         []*PropDefinition `json:"types"`
		PropsFilename string            `json:"propsFilename,omitempty"`
	}{"ComponentNode", c.Name, props, c.FileName})
}

// Program is the result of parsing one file.
type Program struct {
	Components []*Component
}

// Component returns the component called name, or nil.
func (p *Program) Component(name string) *Component {
	for _, c := range p.Components {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *Program) MarshalJSON() ([]byte, error) {
	body := p.Components
	if body == nil {
		body = []*Component{}
	}
	return json.Marshal(struct {
		Type string       `json:"type"`
		Body []*Component `json:"body"`
	}{"ProgramNode", body})
}

// MergeFileNames returns the sorted union of the given file name sets.
func MergeFileNames(sets ...[]string) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, set := range sets {
		for _, name := range set {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			merged = append(merged, name)
		}
	}
	sort.Strings(merged)
	return merged
}
