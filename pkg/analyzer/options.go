package analyzer

import (
	"log/slog"
)

// Decision is a predicate answer that may defer to the default.
type Decision int

const (
	// Undecided falls back to the default behavior.
	Undecided Decision = iota
	Accept
	Reject
)

// IncludeContext describes a property about to be added to a component or object.
type IncludeContext struct {
	Name string
	// Depth is 1 for component props and grows by one per nested object.
	Depth int
}

// ResolveContext describes an object type about to be resolved member by member.
type ResolveContext struct {
	Name          string
	PropertyCount int
	Depth         int
}

// Default limits for structural object resolution.
const (
	DefaultMaxProperties = 50
	DefaultMaxDepth      = 3
)

// Options configures Parse. The zero value is usable.
type Options struct {
	// ShouldInclude vetoes or forces a property. By default every property
	// except `ref` is included.
	ShouldInclude func(IncludeContext) Decision

	// ShouldResolveObject vetoes or forces structural resolution of an object.
	// By default objects with at most DefaultMaxProperties members are resolved
	// up to DefaultMaxDepth levels deep.
	ShouldResolveObject func(ResolveContext) Decision

	// CheckDeclarations makes ambient `declare const X: ComponentType<P>`
	// bindings count as components.
	CheckDeclarations bool

	// ReactModules are the module specifiers whose imports denote React.
	// Defaults to "react".
	ReactModules []string

	Logger *slog.Logger
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{ReactModules: []string{"react"}}
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if len(o.ReactModules) == 0 {
		o.ReactModules = []string{"react"}
	}
	return o
}

func (o Options) include(ctx IncludeContext) bool {
	if o.ShouldInclude != nil {
		switch o.ShouldInclude(ctx) {
		case Accept:
			return true
		case Reject:
			return false
		}
	}
	return ctx.Name != "ref"
}

func (o Options) resolveObject(ctx ResolveContext) bool {
	if o.ShouldResolveObject != nil {
		switch o.ShouldResolveObject(ctx) {
		case Accept:
			return true
		case Reject:
			return false
		}
	}
	return ctx.PropertyCount <= DefaultMaxProperties && ctx.Depth <= DefaultMaxDepth
}

// ExcludeProps rejects properties with any of the given names and leaves the
// rest to the default.
func ExcludeProps(names ...string) func(IncludeContext) Decision {
	excluded := make(map[string]bool, len(names))
	for _, n := range names {
		excluded[n] = true
	}
	return func(ctx IncludeContext) Decision {
		if excluded[ctx.Name] {
			return Reject
		}
		return Undecided
	}
}

// ResolveLimits resolves objects within the given limits. A non-positive limit
// keeps the default for that dimension.
func ResolveLimits(maxProperties, maxDepth int) func(ResolveContext) Decision {
	if maxProperties <= 0 {
		maxProperties = DefaultMaxProperties
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return func(ctx ResolveContext) Decision {
		if ctx.PropertyCount <= maxProperties && ctx.Depth <= maxDepth {
			return Accept
		}
		return Reject
	}
}
