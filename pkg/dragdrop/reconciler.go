package dragdrop

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/controls"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// NewGroupLabel is the label given to groups created by a field-on-field drop.
const NewGroupLabel = "New Group"

// State of the reconciler.
type State uint8

const (
	StateIdle State = iota
	StateDragging
)

func (s State) String() string {
	if s == StateDragging {
		return "dragging"
	}
	return "idle"
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithBuilder sets the builder used for controls that are missing from a
// scope.
func WithBuilder(builder *controls.Builder) Option {
	return func(r *Reconciler) {
		if builder != nil {
			r.builder = builder
		}
	}
}

// WithLogger sets the logger used for rejected gestures.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Reconciler turns drag gestures into paired mutations of a definition and
// its control tree. It holds at most one in-flight drag.
type Reconciler struct {
	dragged model.Element
	builder *controls.Builder
	logger  *zap.Logger
}

// New constructs an idle Reconciler.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.builder == nil {
		r.builder = controls.NewBuilder(controls.WithLogger(r.logger))
	}
	return r
}

// StartDrag remembers el, replacing any drag already in flight. Groups can be
// picked up; they are rejected at drop time.
func (r *Reconciler) StartDrag(el model.Element) {
	r.dragged = el
}

// Cancel returns to Idle.
func (r *Reconciler) Cancel() {
	r.dragged = nil
}

// State reports Idle or Dragging.
func (r *Reconciler) State() State {
	if r.dragged == nil {
		return StateIdle
	}
	return StateDragging
}

// Dragged returns the element in flight.
func (r *Reconciler) Dragged() (model.Element, bool) {
	return r.dragged, r.dragged != nil
}

// DropOnElement drops the dragged field onto the element at targetIndex of
// its container: the top level when parent is nil, otherwise parent. A group
// target absorbs the field; a sibling field target is merged with the dragged
// field into a new group placed where the target was. The drag is cleared
// whatever the outcome.
func (r *Reconciler) DropOnElement(def *model.Definition, form *controls.GroupControl, targetIndex int, parent *model.Group) bool {
	dragged := r.dragged
	r.dragged = nil
	if dragged == nil || def == nil || form == nil {
		return false
	}
	if dragged.Kind() == model.KindGroup {
		r.reject("groups cannot be dropped", dragged.ID())
		return false
	}

	container := containerFor(def, parent)
	source := container.IndexOf(dragged.ID())
	if source < 0 || source == targetIndex {
		return false
	}
	srcEl, _ := container.ChildAt(source)
	field, ok := srcEl.AsField()
	if !ok {
		return false
	}
	target, ok := container.ChildAt(targetIndex)
	if !ok {
		return false
	}

	switch target.Kind() {
	case model.KindGroup:
		group, _ := target.AsGroup()
		return r.dropIntoGroup(def, form, field, group)
	case model.KindField:
		if parent != nil {
			r.reject("grouping inside a group would nest groups", field.ID())
			return false
		}
		targetField, _ := target.AsField()
		return r.mergeIntoGroup(def, form, field, targetField, source)
	}
	return false
}

func (r *Reconciler) dropIntoGroup(def *model.Definition, form *controls.GroupControl, field *model.Field, group *model.Group) bool {
	scope, ok := form.Group(group.ID())
	if !ok {
		scope = r.builder.CreateGroupControl(group)
		form.AddControl(group.ID(), scope)
	}
	if _, ok := def.RemoveChildByID(field.ID()); !ok {
		return false
	}
	if err := def.AddToGroup(group, field); err != nil {
		_ = def.AddChild(field)
		r.reject(err.Error(), field.ID())
		return false
	}
	r.moveControl(form, scope, field)
	return true
}

func (r *Reconciler) mergeIntoGroup(def *model.Definition, form *controls.GroupControl, dragged, target *model.Field, source int) bool {
	group := model.NewGroup(NewGroupLabel)
	if err := group.AddChild(target); err != nil {
		return false
	}
	if err := group.AddChild(dragged); err != nil {
		return false
	}

	if _, ok := def.RemoveChildByID(dragged.ID()); !ok {
		return false
	}
	if !def.ReplaceChild(target.ID(), group) {
		_ = def.InsertAt(source, dragged)
		return false
	}

	scope := controls.NewGroupControl()
	for _, child := range group.Children() {
		r.moveControl(form, scope, child)
	}
	form.AddControl(group.ID(), scope)
	return true
}

// DropAsReorder moves the dragged element to targetIndex within its
// container. The drag is cleared whatever the outcome.
func (r *Reconciler) DropAsReorder(def *model.Definition, targetIndex int, parent *model.Group) bool {
	dragged := r.dragged
	r.dragged = nil
	if dragged == nil || def == nil {
		return false
	}
	container := containerFor(def, parent)
	source := container.IndexOf(dragged.ID())
	if source < 0 || source == targetIndex {
		return false
	}
	return container.MoveChild(source, targetIndex)
}

// Ungroup dissolves a top-level group: its fields take its place in their
// original order, their controls return to the root scope, and the group and
// its scope are removed.
func (r *Reconciler) Ungroup(def *model.Definition, form *controls.GroupControl, group *model.Group) bool {
	if def == nil || form == nil || group == nil || def.IndexOf(group.ID()) < 0 {
		return false
	}
	scope, _ := form.Group(group.ID())
	children := group.Children()

	// Inserting after the group in reverse keeps the fields in order.
	for i := len(children) - 1; i >= 0; i-- {
		group.RemoveChild(children[i].ID())
		def.InsertAfter(group.ID(), children[i])
	}
	for _, child := range children {
		r.moveControl(scope, form, child)
	}

	def.RemoveChildByID(group.ID())
	form.RemoveControl(group.ID())
	return true
}

// FieldUngroup moves one field out of parent to the top level right after
// the group. The group is removed once it is empty.
func (r *Reconciler) FieldUngroup(def *model.Definition, form *controls.GroupControl, field *model.Field, parent *model.Group) bool {
	if def == nil || form == nil || field == nil || parent == nil || def.IndexOf(parent.ID()) < 0 {
		return false
	}
	if _, ok := parent.RemoveChild(field.ID()); !ok {
		return false
	}
	scope, _ := form.Group(parent.ID())
	r.moveControl(scope, form, field)

	if !def.InsertAfter(parent.ID(), field) {
		// Put it back so the field is not lost.
		_ = parent.AddChild(field)
		r.moveControl(form, scope, field)
		return false
	}

	if parent.IsEmpty() {
		def.RemoveChildByID(parent.ID())
		form.RemoveControl(parent.ID())
	}
	return true
}

// moveControl relocates the field's control from one scope to another,
// creating it when the source scope has none. A nil destination discards it.
func (r *Reconciler) moveControl(from, to *controls.GroupControl, field *model.Field) {
	ctrl, ok := from.RemoveControl(field.ID())
	if !ok {
		ctrl = r.builder.CreateControl(field)
	}
	if to == nil || to.Contains(field.ID()) {
		return
	}
	to.AddControl(field.ID(), ctrl)
}

func (r *Reconciler) reject(reason, id string) {
	r.logger.Debug("drop rejected", zap.String("reason", reason), zap.String("element", id))
}

func containerFor(def *model.Definition, parent *model.Group) model.Container {
	if parent != nil {
		return parent
	}
	return def
}
