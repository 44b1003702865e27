package foreach

// An Operator is applied to one work item at a time, in the scope of one
// speculative iteration. Returning ErrConflict (or an error wrapping it)
// aborts the iteration: it is rolled back and the item is requeued for
// retry. Any other non-nil error is an unrecoverable operator failure and
// unwinds the loop.
type Operator[T any] interface {
	Apply(item T, ctx *Context[T]) error
}

// OperatorFunc adapts a plain function to the Operator interface, the way
// http.HandlerFunc adapts a function to http.Handler. Operators that also
// need to declare capabilities (see below) should be defined as a named
// type instead, since capabilities are derived by type-asserting the
// operator value itself.
type OperatorFunc[T any] func(item T, ctx *Context[T]) error

// Apply calls f.
func (f OperatorFunc[T]) Apply(item T, ctx *Context[T]) error { return f(item, ctx) }

// Capability marker interfaces. An operator implements the relevant
// marker to opt out of (for stats/push) or opt into (for
// break/per-iteration-allocation) the corresponding engine behavior.
// CollectStats and NeedsPush default to true; NeedsBreak and NeedsPIA
// default to false and are only set by their markers.
type (
	// StatsExempt operators do not need iteration/conflict counters
	// collected on their behalf.
	StatsExempt interface{ NoStats() }

	// BreakCapable operators may call Context.BreakLoop.
	BreakCapable interface{ NeedsBreak() }

	// PushExempt operators never call Context.Push.
	PushExempt interface{ NoPush() }

	// PerIterAllocUser operators use Context.Scratch.
	PerIterAllocUser interface{ NeedsPerIterAlloc() }
)

// Capabilities are the four configuration-time flags derived from an
// operator's type. The engine reads them once, before the first
// iteration, and uses them to skip work an operator has declared it does
// not need. Every operator receives a *Context regardless of these flags:
// Apply's signature requires one, and its break/push bookkeeping runs on
// every iteration including aborted ones, so there is no per-operator
// context overhead left to gate.
type Capabilities struct {
	CollectStats bool
	NeedsBreak   bool
	NeedsPush    bool
	NeedsPIA     bool
}

// Configure derives op's Capabilities by type-asserting it against the
// marker interfaces above.
func Configure[T any](op Operator[T]) Capabilities {
	caps := Capabilities{
		CollectStats: true,
		NeedsPush:    true,
	}
	if _, ok := op.(StatsExempt); ok {
		caps.CollectStats = false
	}
	if _, ok := op.(BreakCapable); ok {
		caps.NeedsBreak = true
	}
	if _, ok := op.(PushExempt); ok {
		caps.NeedsPush = false
	}
	if _, ok := op.(PerIterAllocUser); ok {
		caps.NeedsPIA = true
	}
	return caps
}
