package expansion

// AnimationOrchestrator decides whether a mutation is animated and sequences
// it: before, exactly one batched host update, then after once the host
// reports completion.
type AnimationOrchestrator struct {
	host      HostSurface
	threshold int
	animation RowAnimation
}

// NewAnimationOrchestrator builds an orchestrator for host.
func NewAnimationOrchestrator(host HostSurface, threshold int, animation RowAnimation) *AnimationOrchestrator {
	return &AnimationOrchestrator{host: host, threshold: threshold, animation: animation}
}

// ShouldAnimate applies the row-count policy: large mutations are never
// animated, whatever the caller asked for.
func (o *AnimationOrchestrator) ShouldAnimate(requested bool, rows int) bool {
	return requested && rows <= o.threshold && o.animation != RowAnimationNone
}

// Mutation describes one expand or collapse step.
type Mutation struct {
	Section   int
	Kind      MutationKind
	Requested bool // Caller asked for animation
}

// Run issues the mutation. before runs first: it emits the "will" callback,
// moves the section into its animating state and returns the physical rows to
// insert or delete. after runs from the host's completion callback. The batch
// handed to the host is returned.
func (o *AnimationOrchestrator) Run(m Mutation, before func() []int, after func(b Batch)) Batch {
	rows := before()
	b := Batch{
		Section:   m.Section,
		Kind:      m.Kind,
		Rows:      rows,
		Animation: RowAnimationNone,
	}
	if o.ShouldAnimate(m.Requested, len(rows)) {
		b.Animation = o.animation
	}

	o.host.PerformBatch(b, func() {
		if after != nil {
			after(b)
		}
	})
	return b
}
