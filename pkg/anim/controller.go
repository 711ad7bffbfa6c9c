package anim

import (
	"sort"

	"github.com/chilammps/vizflow/pkg/graph"
)

const (
	TypeConstantController  graph.TypeID = "anim.controller.constant"
	TypeKeyframeController  graph.TypeID = "anim.controller.keyframe"
	TypeTransformController graph.TypeID = "anim.controller.transform"
)

// Controller is a node that produces a time-dependent scalar value. The
// returned interval is the range around t over which the value is guaranteed
// constant; callers intersect it into their own validity.
type Controller interface {
	graph.Node

	ValueAt(t Time) (float64, Interval)
}

// IsController is the field target constraint for controller references.
func IsController(n graph.Node) bool {
	_, ok := n.(Controller)
	return ok
}

// RegisterTypes registers the controller factories with a graph so that
// nodes referencing controllers can be cloned.
func RegisterTypes(g *graph.Graph) {
	g.RegisterType(TypeConstantController, func(g *graph.Graph) graph.Node {
		return NewConstantController(g, 0)
	})
	g.RegisterType(TypeKeyframeController, func(g *graph.Graph) graph.Node {
		return NewKeyframeController(g, InterpolationLinear)
	})
	g.RegisterType(TypeTransformController, func(g *graph.Graph) graph.Node {
		return NewTransformController(g)
	})
}

// AnimatedFloat resolves a value field at a point in time: the bound
// controller's value when one is attached, the static value (valid forever)
// otherwise.
func AnimatedFloat(v *graph.Value, t Time) (float64, Interval) {
	if c, ok := v.Controller().(Controller); ok {
		return c.ValueAt(t)
	}

	return v.Float(), Forever()
}

var constantValueSpec = graph.FieldSpec{Name: "value"}

// ConstantController yields the same value at every time point.
type ConstantController struct {
	graph.BaseNode

	value *graph.Value
}

func NewConstantController(g *graph.Graph, value float64) *ConstantController {
	c := &ConstantController{}
	c.Init(c, g, TypeConstantController)
	c.value = c.NewValue(constantValueSpec, value)

	return c
}

func (c *ConstantController) Value() float64 { return c.value.Float() }

func (c *ConstantController) SetValue(v float64) { c.value.Set(v) }

func (c *ConstantController) ValueAt(t Time) (float64, Interval) {
	return c.value.Float(), Forever()
}

// Interpolation selects how a keyframe controller evaluates between keys.
type Interpolation string

const (
	// InterpolationStep holds each key's value until the next key.
	InterpolationStep Interpolation = "step"

	// InterpolationLinear interpolates linearly between adjacent keys.
	InterpolationLinear Interpolation = "linear"
)

// Key is a single keyframe.
type Key struct {
	Time  Time
	Value float64
}

var (
	keyframeKeysSpec   = graph.FieldSpec{Name: "keys"}
	keyframeInterpSpec = graph.FieldSpec{Name: "interpolation"}
)

// KeyframeController yields a value interpolated from a sorted key list.
//
// While the controller is being interactively edited it reports an empty
// validity interval, so evaluation engines place a cache boundary right
// upstream of it instead of caching values that change on every UI tick.
type KeyframeController struct {
	graph.BaseNode

	interp  *graph.Value
	keys    *graph.Value
	editing bool
}

func NewKeyframeController(g *graph.Graph, interp Interpolation) *KeyframeController {
	c := &KeyframeController{}
	c.Init(c, g, TypeKeyframeController)
	c.keys = c.NewValue(keyframeKeysSpec, []Key(nil))
	c.interp = c.NewValue(keyframeInterpSpec, string(interp))

	return c
}

// Interpolation returns the controller's interpolation mode.
func (c *KeyframeController) Interpolation() Interpolation {
	return Interpolation(c.interp.String())
}

// Keys returns the sorted key list. The returned slice must not be mutated.
func (c *KeyframeController) Keys() []Key {
	keys, _ := c.keys.Get().([]Key)
	return keys
}

// SetKeys replaces the key list. The keys are copied and sorted by time.
func (c *KeyframeController) SetKeys(keys []Key) {
	sorted := make([]Key, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	c.keys.Set(sorted)
}

// InsertKey adds a key, replacing an existing key at the same time.
func (c *KeyframeController) InsertKey(t Time, value float64) {
	keys := c.Keys()
	out := make([]Key, 0, len(keys)+1)

	for _, k := range keys {
		if k.Time != t {
			out = append(out, k)
		}
	}

	out = append(out, Key{Time: t, Value: value})
	c.SetKeys(out)
}

// Editing reports whether the controller is being interactively edited.
func (c *KeyframeController) Editing() bool { return c.editing }

// SetEditing toggles interactive-edit mode and invalidates dependents.
func (c *KeyframeController) SetEditing(editing bool) {
	if c.editing == editing {
		return
	}

	c.editing = editing
	c.NotifyChanged()
}

func (c *KeyframeController) ValueAt(t Time) (float64, Interval) {
	value, validity := c.valueAt(t)

	if c.editing {
		return value, Never()
	}

	return value, validity
}

func (c *KeyframeController) valueAt(t Time) (float64, Interval) {
	keys := c.Keys()

	switch {
	case len(keys) == 0:
		return 0, Forever()
	case t <= keys[0].Time:
		return keys[0].Value, Interval{TimeNegativeInfinity, keys[0].Time}
	case t >= keys[len(keys)-1].Time:
		last := keys[len(keys)-1]
		return last.Value, Interval{last.Time, TimePositiveInfinity}
	}

	// Find the key pair surrounding t.
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t }) - 1
	lo, hi := keys[i], keys[i+1]

	if c.Interpolation() == InterpolationStep {
		return lo.Value, Interval{lo.Time, hi.Time - 1}
	}

	if t == lo.Time {
		return lo.Value, At(t)
	}

	frac := float64(t-lo.Time) / float64(hi.Time-lo.Time)

	return lo.Value + frac*(hi.Value-lo.Value), At(t)
}

// Transform is the composed result of a transform controller: a uniform
// translation, rotation angle and scale factor.
type Transform struct {
	Translate float64
	Rotate    float64
	Scale     float64
}

var (
	transformTranslateSpec = graph.FieldSpec{Name: "translate", Accepts: IsController}
	transformRotateSpec    = graph.FieldSpec{Name: "rotate", Accepts: IsController}
	transformScaleSpec     = graph.FieldSpec{Name: "scale", Accepts: IsController}
)

// TransformController composes three scalar sub-controllers. Its validity at
// a time point is the intersection of the children's validity intervals.
type TransformController struct {
	graph.BaseNode

	translate *graph.Ref
	rotate    *graph.Ref
	scale     *graph.Ref
}

func NewTransformController(g *graph.Graph) *TransformController {
	c := &TransformController{}
	c.Init(c, g, TypeTransformController)
	c.translate = c.NewRef(transformTranslateSpec)
	c.rotate = c.NewRef(transformRotateSpec)
	c.scale = c.NewRef(transformScaleSpec)

	return c
}

func (c *TransformController) SetTranslate(sub Controller) error { return c.translate.Set(sub) }

func (c *TransformController) SetRotate(sub Controller) error { return c.rotate.Set(sub) }

func (c *TransformController) SetScale(sub Controller) error { return c.scale.Set(sub) }

// TransformAt evaluates all sub-controllers at t. Missing sub-controllers
// contribute identity components and do not narrow the validity.
func (c *TransformController) TransformAt(t Time) (Transform, Interval) {
	tr := Transform{Scale: 1}
	validity := Forever()

	if sub, ok := c.translate.Get().(Controller); ok {
		v, iv := sub.ValueAt(t)
		tr.Translate = v
		validity = validity.Intersect(iv)
	}

	if sub, ok := c.rotate.Get().(Controller); ok {
		v, iv := sub.ValueAt(t)
		tr.Rotate = v
		validity = validity.Intersect(iv)
	}

	if sub, ok := c.scale.Get().(Controller); ok {
		v, iv := sub.ValueAt(t)
		tr.Scale = v
		validity = validity.Intersect(iv)
	}

	return tr, validity
}
