package pipeline

import (
	"github.com/chilammps/vizflow/pkg/anim"
	"github.com/chilammps/vizflow/pkg/data"
)

// FlowState is the payload travelling through a stage chain: a list of
// result objects, the time interval over which they are valid, the
// aggregated status and free-form attributes. It is cheap to clone: the
// object references are shared, stages copy an object before modifying it.
type FlowState struct {
	objects    []data.Object
	validity   anim.Interval
	status     Status
	attributes map[string]any
}

// NewFlowState creates a state holding the given objects, valid over the
// given interval.
func NewFlowState(objects []data.Object, validity anim.Interval) *FlowState {
	return &FlowState{objects: objects, validity: validity}
}

// EmptyState returns a state with no objects and empty validity.
func EmptyState() *FlowState {
	return &FlowState{validity: anim.Never()}
}

// Objects returns the result objects. The slice is owned by the state.
func (s *FlowState) Objects() []data.Object { return s.objects }

// IsEmpty reports whether the state carries no result objects.
func (s *FlowState) IsEmpty() bool { return len(s.objects) == 0 }

// Validity returns the interval over which the state's objects are correct.
func (s *FlowState) Validity() anim.Interval { return s.validity }

// IntersectValidity narrows the validity interval to the overlap with iv.
func (s *FlowState) IntersectValidity(iv anim.Interval) {
	s.validity = s.validity.Intersect(iv)
}

// Status returns the worst status seen among the stages that produced this
// state.
func (s *FlowState) Status() Status { return s.status }

// MergeStatus folds another status into the aggregate, keeping the worst.
func (s *FlowState) MergeStatus(status Status) {
	s.status = s.status.Worse(status)
}

// Attribute returns a named auxiliary value attached to the state.
func (s *FlowState) Attribute(name string) (any, bool) {
	v, ok := s.attributes[name]
	return v, ok
}

// SetAttribute attaches a named auxiliary value to the state.
func (s *FlowState) SetAttribute(name string, value any) {
	if s.attributes == nil {
		s.attributes = make(map[string]any)
	}

	s.attributes[name] = value
}

// AddObject appends a result object.
func (s *FlowState) AddObject(o data.Object) {
	s.objects = append(s.objects, o)
}

// ReplaceObject swaps old for new in place, preserving order. Returns false
// when old is not part of the state.
func (s *FlowState) ReplaceObject(old, new data.Object) bool {
	for i, o := range s.objects {
		if o == old {
			s.objects[i] = new
			return true
		}
	}

	return false
}

// PointSet returns the first point container in the state, or nil.
func (s *FlowState) PointSet() *data.PointSet {
	for _, o := range s.objects {
		if p, ok := o.(*data.PointSet); ok {
			return p
		}
	}

	return nil
}

// Clone returns a shallow copy: object references and attribute values are
// shared, the containers are not.
func (s *FlowState) Clone() *FlowState {
	c := &FlowState{
		objects:  make([]data.Object, len(s.objects)),
		validity: s.validity,
		status:   s.status,
	}
	copy(c.objects, s.objects)

	if s.attributes != nil {
		c.attributes = make(map[string]any, len(s.attributes))
		for k, v := range s.attributes {
			c.attributes[k] = v
		}
	}

	return c
}
