package dragdrop

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/controls"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

type fixture struct {
	def  *model.Definition
	form *controls.GroupControl
}

func newFixture(t *testing.T, raw string) fixture {
	t.Helper()
	def, err := model.FromJSON([]byte(raw))
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	return fixture{def: def, form: controls.NewBuilder().BuildForm(def)}
}

func (f fixture) element(t *testing.T, id string) model.Element {
	t.Helper()
	el, ok := f.def.FindChildByID(id)
	if !ok {
		t.Fatalf("element %s not found", id)
	}
	return el
}

func (f fixture) group(t *testing.T, id string) *model.Group {
	t.Helper()
	g, ok := f.element(t, id).AsGroup()
	if !ok {
		t.Fatalf("element %s is not a group", id)
	}
	return g
}

// layout renders the definition the same way GroupControl.String renders
// scopes, so both trees can be compared.
func layout(def *model.Definition) string {
	s := "{"
	for i, el := range def.Children() {
		if i > 0 {
			s += ", "
		}
		s += el.ID()
		if g, ok := el.AsGroup(); ok {
			s += "{"
			for j, child := range g.Children() {
				if j > 0 {
					s += ", "
				}
				s += child.ID()
			}
			s += "}"
		}
	}
	return s + "}"
}

const flat = `{"fields":[
	{"id":"a","type":"text","label":"A","validators":[]},
	{"id":"b","type":"number","label":"B","validators":[],"value":3},
	{"id":"c","type":"email","label":"C","validators":[]}
]}`

func TestStateMachine(t *testing.T) {
	fx := newFixture(t, flat)
	r := New()

	if r.State() != StateIdle {
		t.Fatalf("expected idle")
	}
	r.StartDrag(fx.element(t, "a"))
	r.StartDrag(fx.element(t, "b"))
	if el, ok := r.Dragged(); !ok || el.ID() != "b" || r.State() != StateDragging {
		t.Fatalf("second StartDrag should replace the first")
	}
	r.Cancel()
	if r.State() != StateIdle {
		t.Fatalf("Cancel should return to idle")
	}
	if r.DropAsReorder(fx.def, 0, nil) {
		t.Fatalf("drop without drag must fail")
	}
}

func TestDropOnField_CreatesGroup(t *testing.T) {
	fx := newFixture(t, flat)
	r := New()
	bControl, _ := fx.form.Field("b")

	r.StartDrag(fx.element(t, "a"))
	if !r.DropOnElement(fx.def, fx.form, 1, nil) {
		t.Fatalf("drop failed")
	}
	if r.State() != StateIdle {
		t.Fatalf("drop must clear the drag")
	}

	if fx.def.Len() != 2 {
		t.Fatalf("expected group and c at top level, got %s", layout(fx.def))
	}
	first, _ := fx.def.ChildAt(0)
	g, ok := first.AsGroup()
	if !ok || g.Label() != NewGroupLabel {
		t.Fatalf("expected new group first, got %s", layout(fx.def))
	}
	if diff := cmp.Diff("{"+g.ID()+"{b, a}, c}", layout(fx.def)); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}

	if fx.form.Contains("a") || fx.form.Contains("b") {
		t.Fatalf("root scope still holds grouped controls: %s", fx.form)
	}
	scope, ok := fx.form.Group(g.ID())
	if !ok {
		t.Fatalf("group scope missing: %s", fx.form)
	}
	if diff := cmp.Diff([]string{"b", "a"}, scope.Keys()); diff != "" {
		t.Fatalf("scope keys mismatch (-want +got):\n%s", diff)
	}
	if moved, _ := scope.Field("b"); moved != bControl {
		t.Fatalf("control for b was rebuilt instead of moved")
	}
	if err := fx.def.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestDropOnGroup_MovesFieldAndControl(t *testing.T) {
	fx := newFixture(t, `{"fields":[
		{"id":"g","type":"group","label":"G","children":[{"id":"x","type":"text","label":"X","validators":[]}]},
		{"id":"a","type":"text","label":"A","validators":[]}
	]}`)
	r := New()

	r.StartDrag(fx.element(t, "a"))
	if !r.DropOnElement(fx.def, fx.form, 0, nil) {
		t.Fatalf("drop failed")
	}
	if got := layout(fx.def); got != "{g{x, a}}" {
		t.Fatalf("unexpected tree %s", got)
	}
	if got := fx.form.String(); got != "{g{x, a}}" {
		t.Fatalf("unexpected controls %s", got)
	}
}

func TestDropOnElement_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		drag   string
		target int
		parent string
	}{
		{name: "group payload", drag: "g", target: 0},
		{name: "same index", drag: "a", target: 0},
		{name: "target out of range", drag: "a", target: 9},
		{name: "field on field inside group", drag: "y", target: 0, parent: "g"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t, `{"fields":[
				{"id":"a","type":"text","label":"A","validators":[]},
				{"id":"g","type":"group","label":"G","children":[
					{"id":"x","type":"text","label":"X","validators":[]},
					{"id":"y","type":"text","label":"Y","validators":[]}
				]}
			]}`)
			before := layout(fx.def)
			beforeControls := fx.form.String()

			var parent *model.Group
			if tc.parent != "" {
				parent = fx.group(t, tc.parent)
			}
			r := New()
			r.StartDrag(fx.element(t, tc.drag))
			if r.DropOnElement(fx.def, fx.form, tc.target, parent) {
				t.Fatalf("drop should fail")
			}
			if r.State() != StateIdle {
				t.Fatalf("failed drop must clear the drag")
			}
			if layout(fx.def) != before || fx.form.String() != beforeControls {
				t.Fatalf("failed drop mutated state: %s / %s", layout(fx.def), fx.form)
			}
		})
	}
}

func TestDropOnElement_VanishedElement(t *testing.T) {
	fx := newFixture(t, flat)
	r := New()
	el := fx.element(t, "a")
	r.StartDrag(el)
	fx.def.RemoveChildByID("a")

	if r.DropOnElement(fx.def, fx.form, 0, nil) {
		t.Fatalf("drop of a removed element should fail")
	}
}

func TestDropAsReorder(t *testing.T) {
	fx := newFixture(t, flat)
	r := New()

	r.StartDrag(fx.element(t, "c"))
	if !r.DropAsReorder(fx.def, 0, nil) {
		t.Fatalf("reorder failed")
	}
	if got := layout(fx.def); got != "{c, a, b}" {
		t.Fatalf("unexpected order %s", got)
	}

	grouped := newFixture(t, `{"fields":[{"id":"g","type":"group","label":"G","children":[
		{"id":"x","type":"text","label":"X","validators":[]},
		{"id":"y","type":"text","label":"Y","validators":[]}
	]}]}`)
	r.StartDrag(grouped.element(t, "x"))
	if !r.DropAsReorder(grouped.def, 2, grouped.group(t, "g")) {
		t.Fatalf("reorder inside group failed")
	}
	if got := layout(grouped.def); got != "{g{y, x}}" {
		t.Fatalf("unexpected order %s", got)
	}
}

func TestUngroup_RestoresControls(t *testing.T) {
	fx := newFixture(t, `{"fields":[
		{"id":"a","type":"text","label":"A","validators":[]},
		{"id":"g","type":"group","label":"G","children":[
			{"id":"x","type":"text","label":"X","validators":[]},
			{"id":"y","type":"text","label":"Y","validators":[]}
		]},
		{"id":"z","type":"text","label":"Z","validators":[]}
	]}`)
	r := New()
	scope, _ := fx.form.Group("g")
	xControl, _ := scope.Field("x")

	if !r.Ungroup(fx.def, fx.form, fx.group(t, "g")) {
		t.Fatalf("ungroup failed")
	}
	if got := layout(fx.def); got != "{a, x, y, z}" {
		t.Fatalf("unexpected tree %s", got)
	}
	if fx.form.Contains("g") {
		t.Fatalf("group scope not removed")
	}
	if got, _ := fx.form.Field("x"); got != xControl {
		t.Fatalf("control for x was not moved back")
	}
	if !fx.form.Contains("y") {
		t.Fatalf("control for y missing")
	}
}

func TestGroupThenUngroupRoundTrip(t *testing.T) {
	fx := newFixture(t, flat)
	r := New()

	r.StartDrag(fx.element(t, "c"))
	if !r.DropOnElement(fx.def, fx.form, 1, nil) {
		t.Fatalf("drop failed")
	}
	first, _ := fx.def.ChildAt(0)
	second, _ := fx.def.ChildAt(1)
	g, _ := second.AsGroup()
	if first.ID() != "a" || g == nil {
		t.Fatalf("unexpected tree %s", layout(fx.def))
	}

	if !r.Ungroup(fx.def, fx.form, g) {
		t.Fatalf("ungroup failed")
	}
	if got := layout(fx.def); got != "{a, b, c}" {
		t.Fatalf("unexpected tree %s", got)
	}
	for _, key := range []string{"a", "b", "c"} {
		if _, ok := fx.form.Field(key); !ok {
			t.Fatalf("control %s missing from root scope: %s", key, fx.form)
		}
	}
	if fx.form.Len() != 3 {
		t.Fatalf("stray scopes left: %s", fx.form)
	}
}

func TestFieldUngroup(t *testing.T) {
	fx := newFixture(t, `{"fields":[
		{"id":"g","type":"group","label":"G","children":[
			{"id":"x","type":"text","label":"X","validators":[]},
			{"id":"y","type":"text","label":"Y","validators":[]}
		]},
		{"id":"z","type":"text","label":"Z","validators":[]}
	]}`)
	r := New()
	g := fx.group(t, "g")
	x, _ := fx.element(t, "x").AsField()
	y, _ := fx.element(t, "y").AsField()

	if !r.FieldUngroup(fx.def, fx.form, x, g) {
		t.Fatalf("field ungroup failed")
	}
	if got := layout(fx.def); got != "{g{y}, x, z}" {
		t.Fatalf("unexpected tree %s", got)
	}
	if got := fx.form.String(); got != "{g{y}, z, x}" {
		t.Fatalf("unexpected controls %s", got)
	}

	if !r.FieldUngroup(fx.def, fx.form, y, g) {
		t.Fatalf("second field ungroup failed")
	}
	if got := layout(fx.def); got != "{y, x, z}" {
		t.Fatalf("empty group should be removed, got %s", got)
	}
	if fx.form.Contains("g") {
		t.Fatalf("empty group scope should be removed")
	}
	if r.FieldUngroup(fx.def, fx.form, x, g) {
		t.Fatalf("ungrouping from a removed group should fail")
	}
}

// Two fields, the first moved to the end, then dropped onto the second.
func TestScenario_MoveThenGroup(t *testing.T) {
	def := model.NewDefinition()
	f1, _ := model.NewField(model.FieldConfig{ID: "f1", Type: model.InputTypeText})
	f2, _ := model.NewField(model.FieldConfig{ID: "f2", Type: model.InputTypeNumber})
	_ = def.AddChild(f1)
	_ = def.AddChild(f2)
	form := controls.NewBuilder().BuildForm(def)

	if !def.MoveChild(0, 2) {
		t.Fatalf("move failed")
	}
	r := New()
	r.StartDrag(f1)
	if !r.DropOnElement(def, form, 0, nil) {
		t.Fatalf("drop failed")
	}

	data, err := def.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	restored, err := model.FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	only, _ := restored.ChildAt(0)
	g, ok := only.AsGroup()
	if restored.Len() != 1 || !ok {
		t.Fatalf("expected a single group, got %s", layout(restored))
	}
	var members []string
	for _, child := range g.Children() {
		members = append(members, child.ID())
	}
	if diff := cmp.Diff([]string{"f2", "f1"}, members); diff != "" {
		t.Fatalf("members mismatch (-want +got):\n%s", diff)
	}
}

func TestUngroup_ControlsFollowTreeOrder(t *testing.T) {
	fx := newFixture(t, `{"fields":[
		{"id":"g","type":"group","label":"G","children":[
			{"id":"b","type":"text","label":"B","validators":[]},
			{"id":"a","type":"text","label":"A","validators":[]},
			{"id":"c","type":"text","label":"C","validators":[]}
		]}
	]}`)
	r := New()

	if !r.Ungroup(fx.def, fx.form, fx.group(t, "g")) {
		t.Fatalf("ungroup failed")
	}
	if got := layout(fx.def); got != "{b, a, c}" {
		t.Fatalf("unexpected tree %s", got)
	}
	if got := fx.form.String(); got != "{b, a, c}" {
		t.Fatalf("controls out of tree order: %s", got)
	}
}
