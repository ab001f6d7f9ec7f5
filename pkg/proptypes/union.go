package proptypes

// NewUnion builds a union of types.
//
// Nested unions are flattened and duplicates removed: literals compare by value,
// instance-of nodes by instance, element nodes by element kind, arrays and
// interfaces by structure, and every other node by kind. The first occurrence
// wins, so a literal keeps the doc it was first seen with. A union left with a
// single member is that member.
func NewUnion(types ...PropType) PropType {
	seen := make(map[string]struct{}, len(types))
	members := make([]PropType, 0, len(types))

	var add func(t PropType)
	add = func(t PropType) {
		if t == nil {
			return
		}
		if u, ok := t.(UnionType); ok {
			for _, member := range u.Types {
				add(member)
			}
			return
		}
		key := dedupeKey(t)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		members = append(members, t)
	}
	for _, t := range types {
		add(t)
	}

	if len(members) == 1 {
		return members[0]
	}
	return UnionType{Types: members}
}

func dedupeKey(t PropType) string {
	switch v := t.(type) {
	case LiteralType:
		return "literal:" + v.Value
	case InstanceOfType:
		return "instanceOf:" + v.Instance
	case ElementType:
		return "element:" + string(v.ElementType)
	case ArrayType, InterfaceType:
		return string(t.Kind()) + ":" + t.String()
	default:
		return string(t.Kind())
	}
}

// Contains reports whether t is, or is a union containing, a node of kind k.
func Contains(t PropType, k Kind) bool {
	if u, ok := t.(UnionType); ok {
		for _, member := range u.Types {
			if Contains(member, k) {
				return true
			}
		}
		return false
	}
	return t != nil && t.Kind() == k
}

// Optional returns t unioned with undefined.
func Optional(t PropType) PropType {
	return NewUnion(t, UndefinedType{})
}
