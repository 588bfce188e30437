package domain

// InteractionKind names the user action that requested the handoff.
type InteractionKind string

const (
	InteractionEdit      InteractionKind = "edit"
	InteractionDefer     InteractionKind = "defer"
	InteractionOpen      InteractionKind = "open"
	InteractionBreakdown InteractionKind = "breakdown"
)

// Interaction is a deferred external invocation that must run outside the
// live display. The engine holds at most one; staging a second before the
// first is consumed overwrites it, and the driver drains it exactly once per
// loop iteration.
type Interaction struct {
	Kind    InteractionKind
	Command string
	Args    []string
}
