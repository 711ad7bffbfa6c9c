package graph

import "fmt"

// FieldFlags is the per-type policy attached to a field declaration.
type FieldFlags uint8

const (
	// FlagNeverCloneTarget always shares the referenced target when the
	// owner is cloned, even on deep clones. Used for back-pointers where
	// duplicating the target would be semantically wrong.
	FlagNeverCloneTarget FieldFlags = 1 << 0

	// FlagWeak marks an observation edge that does not keep its target
	// alive. The field clears itself when the target is disposed.
	FlagWeak FieldFlags = 1 << 1

	// FlagNoUndo excludes the field's mutations from the undo journal.
	FlagNoUndo FieldFlags = 1 << 2

	// FlagNoChangeNotify suppresses all change events for the field.
	FlagNoChangeNotify FieldFlags = 1 << 3
)

// Has reports whether all bits of flag are set.
func (f FieldFlags) Has(flag FieldFlags) bool { return f&flag == flag }

// FieldSpec declares a field: its name, the node type its targets must have
// and the policy flags. Specs are declared once per node type, next to the
// type definition, never per instance.
type FieldSpec struct {
	Name   string
	Target TypeID
	Flags  FieldFlags

	// Accepts, when set, replaces the Target type-id comparison with an
	// arbitrary compatibility predicate (used for fields that accept any
	// node implementing an interface, e.g. controllers or stages).
	Accepts func(Node) bool
}

func (spec FieldSpec) check(target Node) error {
	if target == nil {
		return nil
	}

	if spec.Accepts != nil {
		if !spec.Accepts(target) {
			return &TypeMismatchError{Field: spec.Name, Want: spec.Target, Got: target.TypeID()}
		}

		return nil
	}

	if spec.Target != "" && target.TypeID() != spec.Target {
		return &TypeMismatchError{Field: spec.Name, Want: spec.Target, Got: target.TypeID()}
	}

	return nil
}

// Field is the common interface of value, reference and reference-list
// fields.
type Field interface {
	Name() string
	Flags() FieldFlags

	// references reports whether the field currently points at target.
	references(target Node) bool

	// dropTarget removes target from the field without raising events.
	// Called while target is being disposed.
	dropTarget(target Node)

	// clearForDispose releases the field's own references while its owner
	// is being disposed.
	clearForDispose()

	// cloneFrom copies the contents of src (the corresponding field of the
	// node being cloned) into this field.
	cloneFrom(ch *CloneHelper, src Field, deep bool) error
}

// Value is a field holding a plain value, optionally overridden per time
// point by an animation controller referenced through a companion Ref.
type Value struct {
	owner *BaseNode
	spec  FieldSpec
	value any
	ctrl  *Ref
}

// NewValue declares a value field on the node with the given initial value.
func (b *BaseNode) NewValue(spec FieldSpec, initial any) *Value {
	v := &Value{owner: b, spec: spec, value: initial}
	b.fields = append(b.fields, v)

	ctrlSpec := FieldSpec{
		Name:    spec.Name + ".controller",
		Flags:   spec.Flags,
		Accepts: acceptAny,
	}
	v.ctrl = b.NewRef(ctrlSpec)

	return v
}

func acceptAny(Node) bool { return true }

func (v *Value) Name() string { return v.spec.Name }

func (v *Value) Flags() FieldFlags { return v.spec.Flags }

// Get returns the static value of the field.
func (v *Value) Get() any { return v.value }

// Float returns the static value as a float64, converting integer kinds.
func (v *Value) Float() float64 {
	switch x := v.value.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return 0
	}
}

// Bool returns the static value as a bool.
func (v *Value) Bool() bool {
	x, _ := v.value.(bool)
	return x
}

// String returns the static value as a string.
func (v *Value) String() string {
	x, _ := v.value.(string)
	return x
}

// Set stores a new static value and raises the owner's TargetChanged.
func (v *Value) Set(value any) {
	v.owner.graph.assertModelThread()
	v.value = value

	if !v.spec.Flags.Has(FlagNoChangeNotify) {
		v.owner.NotifyChanged()
	}
}

// Controller returns the animation controller bound to this field, or nil.
func (v *Value) Controller() Node { return v.ctrl.Get() }

// BindController attaches an animation controller that overrides the static
// value per time point.
func (v *Value) BindController(c Node) error { return v.ctrl.Set(c) }

func (v *Value) references(Node) bool { return false }

func (v *Value) dropTarget(Node) {}

func (v *Value) clearForDispose() {}

func (v *Value) cloneFrom(ch *CloneHelper, src Field, deep bool) error {
	sv, ok := src.(*Value)
	if !ok {
		return fmt.Errorf("field %q: clone source is not a value field", v.spec.Name)
	}

	v.value = sv.value

	return nil
}

// Ref is a field holding zero or one reference to another node.
type Ref struct {
	owner  *BaseNode
	spec   FieldSpec
	target Node
}

// NewRef declares a single-reference field on the node.
func (b *BaseNode) NewRef(spec FieldSpec) *Ref {
	r := &Ref{owner: b, spec: spec}
	b.fields = append(b.fields, r)

	return r
}

func (r *Ref) Name() string { return r.spec.Name }

func (r *Ref) Flags() FieldFlags { return r.spec.Flags }

// Get returns the referenced node, or nil.
func (r *Ref) Get() Node { return r.target }

// Set replaces the reference held in the field. The dependents sets of the
// old and new targets are updated transactionally, then ReferenceChanged and
// the owner's TargetChanged are raised unless the field suppresses them.
func (r *Ref) Set(target Node) error {
	g := r.owner.graph
	g.assertModelThread()

	if err := r.spec.check(target); err != nil {
		return err
	}

	old := r.target
	if old == target {
		return nil
	}

	r.attach(target)
	r.target = target
	r.detach(old)

	if !r.spec.Flags.Has(FlagNoChangeNotify) {
		ev := ReferenceChanged{BaseEvent{r.owner.self}, r.spec.Name, old, target}
		g.journalRecord(r.spec.Flags, ev)
		g.notifyDependents(r.owner.self, ev)
		r.owner.NotifyChanged()
	}

	return nil
}

// setForClone stores a reference without raising events. Refcounts and
// dependents bookkeeping still apply.
func (r *Ref) setForClone(target Node) {
	r.attach(target)
	r.target = target
}

func (r *Ref) attach(target Node) {
	if target == nil {
		return
	}

	tb := target.base()
	tb.addDependent(r.owner.self)

	if !r.spec.Flags.Has(FlagWeak) {
		tb.retain()
	}
}

func (r *Ref) detach(old Node) {
	if old == nil {
		return
	}

	ob := old.base()
	ob.removeDependent(r.owner.self)

	if !r.spec.Flags.Has(FlagWeak) {
		ob.release()
	}
}

func (r *Ref) references(target Node) bool { return r.target == target }

func (r *Ref) dropTarget(target Node) {
	if r.target == target {
		target.base().removeDependent(r.owner.self)
		r.target = nil
	}
}

func (r *Ref) clearForDispose() {
	old := r.target
	r.target = nil
	r.detach(old)
}

func (r *Ref) cloneFrom(ch *CloneHelper, src Field, deep bool) error {
	sr, ok := src.(*Ref)
	if !ok {
		return fmt.Errorf("field %q: clone source is not a reference field", r.spec.Name)
	}

	target, err := ch.cloneTarget(sr.target, sr.spec.Flags, deep)
	if err != nil {
		return err
	}

	r.setForClone(target)

	return nil
}

// RefList is a field holding an ordered list of references.
type RefList struct {
	owner   *BaseNode
	spec    FieldSpec
	targets []Node
}

// NewRefList declares a vector reference field on the node.
func (b *BaseNode) NewRefList(spec FieldSpec) *RefList {
	l := &RefList{owner: b, spec: spec}
	b.fields = append(b.fields, l)

	return l
}

func (l *RefList) Name() string { return l.spec.Name }

func (l *RefList) Flags() FieldFlags { return l.spec.Flags }

// Len returns the number of references in the list.
func (l *RefList) Len() int { return len(l.targets) }

// Get returns the reference at index i.
func (l *RefList) Get(i int) Node { return l.targets[i] }

// All returns a snapshot of the list.
func (l *RefList) All() []Node {
	out := make([]Node, len(l.targets))
	copy(out, l.targets)

	return out
}

// Index returns the position of target in the list, or -1.
func (l *RefList) Index(target Node) int {
	for i, t := range l.targets {
		if t == target {
			return i
		}
	}

	return -1
}

// Insert adds a reference at index i, shifting later entries. Raises
// ReferenceAdded carrying the index, then the owner's TargetChanged.
func (l *RefList) Insert(i int, target Node) error {
	g := l.owner.graph
	g.assertModelThread()

	if target == nil {
		return fmt.Errorf("field %q: cannot insert nil reference", l.spec.Name)
	}

	if i < 0 || i > len(l.targets) {
		return fmt.Errorf("field %q: insert index %d out of range", l.spec.Name, i)
	}

	if err := l.spec.check(target); err != nil {
		return err
	}

	tb := target.base()
	tb.addDependent(l.owner.self)

	if !l.spec.Flags.Has(FlagWeak) {
		tb.retain()
	}

	l.targets = append(l.targets, nil)
	copy(l.targets[i+1:], l.targets[i:])
	l.targets[i] = target

	if !l.spec.Flags.Has(FlagNoChangeNotify) {
		ev := ReferenceAdded{BaseEvent{l.owner.self}, l.spec.Name, target, i}
		g.journalRecord(l.spec.Flags, ev)
		g.notifyDependents(l.owner.self, ev)
		l.owner.NotifyChanged()
	}

	return nil
}

// Append adds a reference at the end of the list.
func (l *RefList) Append(target Node) error {
	return l.Insert(len(l.targets), target)
}

// RemoveAt removes the reference at index i. Raises ReferenceRemoved
// carrying the index, then the owner's TargetChanged.
func (l *RefList) RemoveAt(i int) error {
	g := l.owner.graph
	g.assertModelThread()

	if i < 0 || i >= len(l.targets) {
		return fmt.Errorf("field %q: remove index %d out of range", l.spec.Name, i)
	}

	target := l.targets[i]
	l.targets = append(l.targets[:i], l.targets[i+1:]...)

	tb := target.base()
	tb.removeDependent(l.owner.self)

	if !l.spec.Flags.Has(FlagWeak) {
		tb.release()
	}

	if !l.spec.Flags.Has(FlagNoChangeNotify) {
		ev := ReferenceRemoved{BaseEvent{l.owner.self}, l.spec.Name, target, i}
		g.journalRecord(l.spec.Flags, ev)
		g.notifyDependents(l.owner.self, ev)
		l.owner.NotifyChanged()
	}

	return nil
}

func (l *RefList) references(target Node) bool {
	return l.Index(target) >= 0
}

func (l *RefList) dropTarget(target Node) {
	for i := len(l.targets) - 1; i >= 0; i-- {
		if l.targets[i] == target {
			l.targets = append(l.targets[:i], l.targets[i+1:]...)
			target.base().removeDependent(l.owner.self)
		}
	}
}

func (l *RefList) clearForDispose() {
	targets := l.targets
	l.targets = nil

	for _, t := range targets {
		tb := t.base()
		tb.removeDependent(l.owner.self)

		if !l.spec.Flags.Has(FlagWeak) {
			tb.release()
		}
	}
}

func (l *RefList) cloneFrom(ch *CloneHelper, src Field, deep bool) error {
	sl, ok := src.(*RefList)
	if !ok {
		return fmt.Errorf("field %q: clone source is not a reference list field", l.spec.Name)
	}

	for _, t := range sl.targets {
		target, err := ch.cloneTarget(t, sl.spec.Flags, deep)
		if err != nil {
			return err
		}

		tb := target.base()
		tb.addDependent(l.owner.self)

		if !l.spec.Flags.Has(FlagWeak) {
			tb.retain()
		}

		l.targets = append(l.targets, target)
	}

	return nil
}
