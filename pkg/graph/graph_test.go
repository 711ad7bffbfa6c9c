package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	typeRecorder TypeID = "test.recorder"
	typePair     TypeID = "test.pair"
)

var (
	recorderChildSpec  = FieldSpec{Name: "child"}
	recorderWeakSpec   = FieldSpec{Name: "observed", Flags: FlagWeak}
	recorderSilentSpec = FieldSpec{Name: "silent", Flags: FlagNoChangeNotify}
	recorderListSpec   = FieldSpec{Name: "items"}
)

// recorderNode captures every delivered event for assertions.
type recorderNode struct {
	BaseNode

	events  []Event
	reRaise bool

	child  *Ref
	weak   *Ref
	silent *Ref
	items  *RefList
}

func newRecorderNode(g *Graph) *recorderNode {
	n := &recorderNode{reRaise: true}
	n.Init(n, g, typeRecorder)
	n.child = n.NewRef(recorderChildSpec)
	n.weak = n.NewRef(recorderWeakSpec)
	n.silent = n.NewRef(recorderSilentSpec)
	n.items = n.NewRefList(recorderListSpec)

	return n
}

func (n *recorderNode) HandleReferenceEvent(source Node, event Event) bool {
	n.events = append(n.events, event)
	return n.reRaise
}

func (n *recorderNode) eventTypes() []EventType {
	out := make([]EventType, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.GetType())
	}

	return out
}

func TestRefSetMaintainsDependents(t *testing.T) {
	g := New(nil)
	a := newRecorderNode(g)
	b := newRecorderNode(g)

	keep := g.Retain(b)
	defer keep.Release()

	require.NoError(t, a.child.Set(b))
	assert.True(t, b.HasDependent(a))
	assert.Equal(t, b, a.child.Get())

	require.NoError(t, a.child.Set(nil))
	assert.False(t, b.HasDependent(a))
	assert.Nil(t, a.child.Get())
	assert.True(t, b.Alive())
}

func TestRefSetSameTargetIsNoop(t *testing.T) {
	g := New(nil)
	a := newRecorderNode(g)
	b := newRecorderNode(g)

	require.NoError(t, a.child.Set(b))
	rev := a.Revision()

	require.NoError(t, a.child.Set(b))
	assert.Equal(t, rev, a.Revision())
}

func TestRefSetTypeMismatch(t *testing.T) {
	g := New(nil)
	a := newRecorderNode(g)
	b := newRecorderNode(g)

	pickyRef := a.NewRef(FieldSpec{Name: "picky", Accepts: func(Node) bool { return false }})

	err := pickyRef.Set(b)
	require.Error(t, err)

	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "picky", mismatch.Field)
}

func TestStrongRefKeepsTargetAlive(t *testing.T) {
	g := New(nil)
	a := newRecorderNode(g)
	b := newRecorderNode(g)

	require.NoError(t, a.child.Set(b))
	assert.True(t, b.Alive())

	// Dropping the only strong reference disposes the target.
	require.NoError(t, a.child.Set(nil))
	assert.False(t, b.Alive())
}

func TestRevisionBumpsOncePerChange(t *testing.T) {
	g := New(nil)
	a := newRecorderNode(g)

	rev := a.Revision()
	a.NotifyChanged()
	assert.Equal(t, rev+1, a.Revision())

	a.NotifyChanged()
	assert.Equal(t, rev+2, a.Revision())
}

func TestChangePropagatesThroughChain(t *testing.T) {
	g := New(nil)
	a := newRecorderNode(g)
	b := newRecorderNode(g)
	c := newRecorderNode(g)

	require.NoError(t, a.child.Set(b))
	require.NoError(t, b.child.Set(c))

	aRev, bRev := a.Revision(), b.Revision()

	c.NotifyChanged()

	assert.Equal(t, []EventType{EventTargetChanged}, b.eventTypes())
	assert.Equal(t, []EventType{EventTargetChanged}, a.eventTypes())
	assert.Equal(t, bRev+1, b.Revision())
	assert.Equal(t, aRev+1, a.Revision())
}

func TestChainStopsWhenHandlerAbsorbs(t *testing.T) {
	g := New(nil)
	a := newRecorderNode(g)
	b := newRecorderNode(g)
	c := newRecorderNode(g)

	require.NoError(t, a.child.Set(b))
	require.NoError(t, b.child.Set(c))

	b.reRaise = false
	bRev := b.Revision()

	c.NotifyChanged()

	assert.Len(t, b.events, 1)
	assert.Empty(t, a.events)
	assert.Equal(t, bRev, b.Revision())
}

func TestDiamondDeliversOnce(t *testing.T) {
	g := New(nil)
	a := newRecorderNode(g)
	b := newRecorderNode(g)
	c := newRecorderNode(g)
	d := newRecorderNode(g)

	// a -> b -> d and a -> c -> d.
	require.NoError(t, a.child.Set(b))
	require.NoError(t, a.items.Append(c))
	require.NoError(t, b.child.Set(d))
	require.NoError(t, c.child.Set(d))

	a.events = nil
	aRev := a.Revision()

	d.NotifyChanged()

	assert.Len(t, a.events, 1)
	assert.Equal(t, aRev+1, a.Revision())
	assert.Len(t, b.events, 1)
	assert.Len(t, c.events, 1)
}

func TestWeakRefDoesNotRetain(t *testing.T) {
	g := New(nil)
	observer := newRecorderNode(g)
	target := newRecorderNode(g)

	keep := g.Retain(target)
	require.NoError(t, observer.weak.Set(target))

	// Dropping the strong handle disposes the target despite the weak ref.
	keep.Release()

	assert.False(t, target.Alive())
	assert.Nil(t, observer.weak.Get())
	assert.Contains(t, observer.eventTypes(), EventTargetDeleted)
}

func TestWeakRefDeliversButDoesNotPropagate(t *testing.T) {
	g := New(nil)
	parent := newRecorderNode(g)
	observer := newRecorderNode(g)
	target := newRecorderNode(g)

	keep := g.Retain(target)
	defer keep.Release()

	require.NoError(t, parent.child.Set(observer))
	require.NoError(t, observer.weak.Set(target))

	parent.events = nil
	observer.events = nil
	obsRev := observer.Revision()

	target.NotifyChanged()

	assert.Len(t, observer.events, 1)
	assert.Equal(t, obsRev, observer.Revision())
	assert.Empty(t, parent.events)
}

func TestNoChangeNotifySuppressesDelivery(t *testing.T) {
	g := New(nil)
	a := newRecorderNode(g)
	b := newRecorderNode(g)

	keep := g.Retain(b)
	defer keep.Release()

	require.NoError(t, a.silent.Set(b))
	assert.Empty(t, a.events)
	assert.Zero(t, a.Revision())

	b.NotifyChanged()
	assert.Empty(t, a.events)
}

func TestValueSetNotifies(t *testing.T) {
	g := New(nil)
	a := newRecorderNode(g)
	b := newRecorderNode(g)
	field := b.NewValue(FieldSpec{Name: "param"}, 1.0)

	require.NoError(t, a.child.Set(b))
	a.events = nil

	field.Set(2.0)

	assert.Equal(t, 2.0, field.Float())
	assert.Equal(t, []EventType{EventTargetChanged}, a.eventTypes())
}

func TestValueSetNoChangeNotify(t *testing.T) {
	g := New(nil)
	b := newRecorderNode(g)
	field := b.NewValue(FieldSpec{Name: "scratch", Flags: FlagNoChangeNotify}, 1.0)

	rev := b.Revision()
	field.Set(2.0)

	assert.Equal(t, 2.0, field.Float())
	assert.Equal(t, rev, b.Revision())
}

func TestRefListEventsCarryIndex(t *testing.T) {
	g := New(nil)
	parent := newRecorderNode(g)
	owner := newRecorderNode(g)
	first := newRecorderNode(g)
	second := newRecorderNode(g)

	require.NoError(t, parent.child.Set(owner))
	parent.events = nil

	require.NoError(t, owner.items.Append(first))
	require.NoError(t, owner.items.Insert(0, second))

	require.NoError(t, owner.items.RemoveAt(1))

	var added []int

	var removed []int

	for _, ev := range parent.events {
		switch e := ev.(type) {
		case ReferenceAdded:
			added = append(added, e.Index)
		case ReferenceRemoved:
			removed = append(removed, e.Index)
		}
	}

	assert.Equal(t, []int{0, 0}, added)
	assert.Equal(t, []int{1}, removed)

	assert.Equal(t, 1, owner.items.Len())
	assert.Equal(t, second, owner.items.Get(0))
	assert.Equal(t, -1, owner.items.Index(first))
}

func TestRefListRejectsBadIndex(t *testing.T) {
	g := New(nil)
	owner := newRecorderNode(g)
	target := newRecorderNode(g)

	assert.Error(t, owner.items.Insert(1, target))
	assert.Error(t, owner.items.RemoveAt(0))
	assert.Error(t, owner.items.Insert(0, nil))
}

func TestHandleDoubleReleaseIsNoop(t *testing.T) {
	g := New(nil)
	b := newRecorderNode(g)

	keep := g.Retain(b)
	keep.Release()
	keep.Release()

	assert.False(t, b.Alive())
}

func TestNewNodeUnknownType(t *testing.T) {
	g := New(nil)

	_, err := g.NewNode("test.unknown")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestMutationOffModelThreadPanics(t *testing.T) {
	g := New(nil)
	a := newRecorderNode(g)

	panicked := make(chan bool, 1)

	go func() {
		defer func() { panicked <- recover() != nil }()

		a.NotifyChanged()
	}()

	assert.True(t, <-panicked)
}

// captureJournal records mutation events and flush boundaries.
type captureJournal struct {
	records []Event
	flushes int
}

func (j *captureJournal) Record(ev Event) { j.records = append(j.records, ev) }

func (j *captureJournal) Flush() { j.flushes++ }

func TestJournalRecordsReferenceMutations(t *testing.T) {
	g := New(nil)
	journal := &captureJournal{}
	g.SetJournal(journal)

	a := newRecorderNode(g)
	b := newRecorderNode(g)

	require.NoError(t, a.child.Set(b))

	require.Len(t, journal.records, 1)
	changed, ok := journal.records[0].(ReferenceChanged)
	require.True(t, ok)
	assert.Equal(t, "child", changed.Field)
	assert.Nil(t, changed.Old)
	assert.Equal(t, Node(b), changed.New)
	assert.Positive(t, journal.flushes)
}

func TestJournalSkipsNoUndoFields(t *testing.T) {
	g := New(nil)
	journal := &captureJournal{}
	g.SetJournal(journal)

	a := newRecorderNode(g)
	b := newRecorderNode(g)
	noUndo := a.NewRef(FieldSpec{Name: "transient", Flags: FlagNoUndo})

	require.NoError(t, noUndo.Set(b))

	assert.Empty(t, journal.records)
}
