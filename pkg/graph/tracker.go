package graph

// PropagationPolicy is the table deciding, per field flag set, whether an
// event arriving through a field reaches the field's owner at all and
// whether a TargetChanged is re-raised past it. Keeping this a value on the
// Graph makes the suppression rules explicit and testable instead of being
// hard-wired per call site.
type PropagationPolicy struct {
	// SuppressDeliver lists flags that stop events from being delivered to
	// the owner of the referencing field.
	SuppressDeliver FieldFlags

	// SuppressPropagate lists flags that still deliver the event but stop
	// TargetChanged from propagating upward past the owner.
	SuppressPropagate FieldFlags
}

// DefaultPolicy: no-notify fields are invisible to event routing entirely;
// weak observation edges see events but do not re-broadcast them.
func DefaultPolicy() PropagationPolicy {
	return PropagationPolicy{
		SuppressDeliver:   FlagNoChangeNotify,
		SuppressPropagate: FlagNoChangeNotify | FlagWeak,
	}
}

func (p PropagationPolicy) delivers(f FieldFlags) bool { return f&p.SuppressDeliver == 0 }

func (p PropagationPolicy) propagates(f FieldFlags) bool { return f&p.SuppressPropagate == 0 }

// wave tracks the nodes already visited during one propagation wave so that
// diamond-shaped dependency graphs deliver exactly once per dependent.
type wave struct {
	seen map[*BaseNode]struct{}
}

func (w *wave) mark(b *BaseNode) { w.seen[b] = struct{}{} }

func (w *wave) visited(b *BaseNode) bool {
	_, ok := w.seen[b]
	return ok
}

// notifyDependents delivers event to every dependent of source, then
// recursively propagates TargetChanged upward for dependents that re-raise
// it. Delivery is synchronous and depth-first on the model thread: when the
// mutating call returns, every affected cache has already been invalidated.
func (g *Graph) notifyDependents(source Node, event Event) {
	g.assertModelThread()

	top := g.wave == nil
	if top {
		g.wave = &wave{seen: make(map[*BaseNode]struct{})}
		g.wave.mark(source.base())

		defer g.endWave()
	}

	deleted := event.GetType() == EventTargetDeleted

	// The dependents list can change while we broadcast (weak fields clear
	// themselves, caches drop references), so walk a snapshot.
	for _, dep := range source.base().Dependents() {
		db := dep.base()
		if !db.alive {
			continue
		}

		deliver, propagate := db.edgePolicy(source, g.policy)

		if deleted {
			db.clearRefsTo(source)
		}

		if !deliver || g.wave.visited(db) {
			continue
		}

		g.wave.mark(db)

		reRaise := dep.HandleReferenceEvent(source, event)

		if event.GetType() == EventTargetChanged && reRaise && propagate {
			db.revision++
			g.notifyDependents(dep, TargetChanged{BaseEvent{dep}})
		}
	}
}

func (g *Graph) endWave() {
	g.wave = nil

	if g.journal != nil {
		g.journal.Flush()
	}
}
