package analyzer

import (
	"github.com/gnana997/tsproptypes/pkg/proptypes"
)

// mergeComponents folds components that share a name into one. A prop present
// in only some signatures becomes optional. Props with the same identity are
// kept as is; differing ones are unioned.
func mergeComponents(components []*proptypes.Component) []*proptypes.Component {
	groups := map[string][]*proptypes.Component{}
	var order []string
	for _, c := range components {
		if _, ok := groups[c.Name]; !ok {
			order = append(order, c.Name)
		}
		groups[c.Name] = append(groups[c.Name], c)
	}

	merged := make([]*proptypes.Component, 0, len(order))
	for _, name := range order {
		group := groups[name]
		if len(group) == 1 {
			merged = append(merged, group[0])
			continue
		}
		merged = append(merged, mergeGroup(group))
	}
	return merged
}

func mergeGroup(group []*proptypes.Component) *proptypes.Component {
	var names []string
	seen := map[string]bool{}
	for _, c := range group {
		for _, p := range c.Props {
			if !seen[p.Name] {
				seen[p.Name] = true
				names = append(names, p.Name)
			}
		}
	}

	out := &proptypes.Component{Name: group[0].Name, FileName: group[0].FileName}
	for _, name := range names {
		var prop *proptypes.PropDefinition
		missing := false
		for _, c := range group {
			p := c.Prop(name)
			if p == nil {
				missing = true
				continue
			}
			if prop == nil {
				clone := *p
				prop = &clone
				continue
			}
			if p.ID != prop.ID {
				prop.Type = proptypes.NewUnion(prop.Type, p.Type)
			}
			if prop.Doc == "" {
				prop.Doc = p.Doc
			}
			prop.FileNames = proptypes.MergeFileNames(prop.FileNames, p.FileNames)
		}
		if missing {
			prop.Type = proptypes.Optional(prop.Type)
		}
		out.Props = append(out.Props, prop)
	}
	return out
}
