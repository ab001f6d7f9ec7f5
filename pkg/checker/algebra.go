package checker

// getUnion builds a union the way TypeScript normalizes one: members are
// flattened, any and unknown absorb everything, never disappears, literals
// collapse into their primitive when it is present and true|false becomes
// boolean. React.ReactNode already includes null and undefined.
func (p *Program) getUnion(types []*Type) *Type {
	var flat []*Type
	var add func(t *Type)
	add = func(t *Type) {
		if t == nil {
			return
		}
		if t.IsUnion() {
			for _, m := range t.Types {
				add(m)
			}
			return
		}
		flat = append(flat, t)
	}
	for _, t := range types {
		add(t)
	}

	var has TypeFlags
	reactNode := false
	for _, t := range flat {
		has |= t.Flags
		if t.Name == "React.ReactNode" {
			reactNode = true
		}
	}
	switch {
	case has&FlagAny != 0:
		return p.anyType
	case has&FlagUnknown != 0:
		return p.unknownType
	}

	seen := make(map[TypeID]bool, len(flat))
	hasTrue, hasFalse := false, false
	for _, t := range flat {
		if t == p.trueType {
			hasTrue = true
		}
		if t == p.falseType {
			hasFalse = true
		}
	}
	bothBooleans := hasTrue && hasFalse

	members := make([]*Type, 0, len(flat))
	for _, t := range flat {
		switch {
		case t.Is(FlagNever):
			continue
		case reactNode && t.Is(FlagUndefined|FlagNull):
			continue
		case t.Is(FlagStringLiteral) && has&FlagString != 0:
			continue
		case t.Is(FlagNumberLiteral) && has&FlagNumber != 0:
			continue
		case t.Is(FlagBooleanLiteral) && (has&FlagBoolean != 0 || bothBooleans):
			if bothBooleans && !seen[p.booleanType.id] && has&FlagBoolean == 0 {
				seen[p.booleanType.id] = true
				members = append(members, p.booleanType)
			}
			continue
		}
		if seen[t.id] {
			continue
		}
		seen[t.id] = true
		members = append(members, t)
	}

	switch len(members) {
	case 0:
		return p.neverType
	case 1:
		return members[0]
	}

	key := typeIDs(members)
	if u, ok := p.unions[key]; ok {
		return u
	}
	u := p.newType(FlagUnion)
	u.Types = members
	p.unions[key] = u
	return u
}

// Union exposes union construction to callers.
func (p *Program) Union(types ...*Type) *Type { return p.getUnion(types) }

// getIntersection merges object members and distributes over unions.
// A primitive intersected with an object (a branded primitive) is the primitive.
func (p *Program) getIntersection(types []*Type) *Type {
	var flat []*Type
	for _, t := range types {
		if t == nil || t.Is(FlagUnknown) {
			continue
		}
		if t.Is(FlagAny) {
			return p.anyType
		}
		if t.Is(FlagNever) {
			return p.neverType
		}
		flat = append(flat, t)
	}
	switch len(flat) {
	case 0:
		return p.unknownType
	case 1:
		return flat[0]
	}

	for i, t := range flat {
		if !t.IsUnion() {
			continue
		}
		if len(t.Types) > 32 {
			break
		}
		var distributed []*Type
		for _, m := range t.Types {
			parts := append(append(append([]*Type(nil), flat[:i]...), m), flat[i+1:]...)
			distributed = append(distributed, p.getIntersection(parts))
		}
		return p.getUnion(distributed)
	}

	for _, t := range flat {
		if !t.Is(FlagObject|FlagNonPrimitive|FlagTypeParameter) {
			return t
		}
	}

	key := "&" + typeIDs(flat)
	if t, ok := p.instances[key]; ok {
		return t
	}
	parts := flat
	t := p.newObject("", func() ([]*Symbol, []*Signature) {
		var (
			props []*Symbol
			sigs  []*Signature
		)
		index := map[string]int{}
		for _, part := range parts {
			for _, prop := range part.Properties() {
				i, dup := index[prop.Name]
				if !dup {
					index[prop.Name] = len(props)
					props = append(props, prop)
					continue
				}
				props[i] = p.mergeProperty(props[i], prop)
			}
			sigs = append(sigs, part.CallSignatures()...)
		}
		return props, sigs
	})
	p.instances[key] = t
	return t
}

func (p *Program) mergeProperty(a, b *Symbol) *Symbol {
	merged := newSymbol(p, a.Name, a.Optional && b.Optional, func() *Type {
		return p.getIntersection([]*Type{a.DeclaredType(), b.DeclaredType()})
	})
	merged.Doc = a.Doc
	if merged.Doc == "" {
		merged.Doc = b.Doc
	}
	merged.FileNames = mergeNames(a.FileNames, b.FileNames)
	return merged
}

func mergeNames(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, name := range b {
		found := false
		for _, existing := range out {
			if existing == name {
				found = true
				break
			}
		}
		if !found {
			out = append(out, name)
		}
	}
	return out
}

// unionProperties returns the members common to every union constituent.
func (p *Program) unionProperties(u *Type) []*Symbol {
	if len(u.Types) == 0 {
		return nil
	}
	var props []*Symbol
	for _, first := range u.Types[0].Properties() {
		all := []*Symbol{first}
		for _, other := range u.Types[1:] {
			prop := other.Property(first.Name)
			if prop == nil {
				all = nil
				break
			}
			all = append(all, prop)
		}
		if all == nil {
			continue
		}
		optional := false
		var files []string
		for _, s := range all {
			optional = optional || s.Optional
			files = mergeNames(files, s.FileNames)
		}
		members := all
		sym := newSymbol(p, first.Name, optional, func() *Type {
			types := make([]*Type, 0, len(members))
			for _, s := range members {
				types = append(types, s.DeclaredType())
			}
			return p.getUnion(types)
		})
		sym.Doc = first.Doc
		sym.FileNames = files
		props = append(props, sym)
	}
	return props
}

// PropertiesOf returns the properties of t. Unions expose their common members.
func (p *Program) PropertiesOf(t *Type) []*Symbol {
	if t.Is(FlagTypeParameter) {
		if t = t.BaseConstraint(); t == nil {
			return nil
		}
	}
	if t.IsUnion() {
		return p.unionProperties(t)
	}
	return t.Properties()
}

// isAssignableLiteral is the loose relation used by Exclude and Extract.
func isAssignableLiteral(t, to *Type) bool {
	if t.id == to.id {
		return true
	}
	switch {
	case to.Is(FlagString):
		return t.Is(FlagString | FlagStringLiteral)
	case to.Is(FlagNumber):
		return t.Is(FlagNumber | FlagNumberLiteral)
	case to.Is(FlagBoolean):
		return t.Is(FlagBoolean | FlagBooleanLiteral)
	case to.Is(FlagLiteral):
		return t.Flags == to.Flags && t.Value == to.Value
	case to.Is(FlagNonPrimitive):
		return t.Is(FlagObject)
	}
	return t.Name != "" && t.Name == to.Name
}

func members(t *Type) []*Type {
	if t.IsUnion() {
		return t.Types
	}
	return []*Type{t}
}

func (p *Program) filterUnion(t *Type, keep func(*Type) bool) *Type {
	var out []*Type
	for _, m := range members(t) {
		if keep(m) {
			out = append(out, m)
		}
	}
	return p.getUnion(out)
}
