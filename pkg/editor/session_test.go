package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/dragdrop"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

func addField(t *testing.T, s *Session, id string, kind model.InputType, parentID string) {
	t.Helper()
	if _, err := s.AddField(context.Background(), model.FieldConfig{ID: id, Type: kind}, parentID); err != nil {
		t.Fatalf("AddField(%s): %v", id, err)
	}
}

func topLevel(def *model.Definition) []string {
	var ids []string
	for _, el := range def.Children() {
		ids = append(ids, el.ID())
	}
	return ids
}

func TestSession_GroupOnDropScenario(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := New(st)

	addField(t, s, "f1", model.InputTypeText, "")
	addField(t, s, "f2", model.InputTypeNumber, "")

	if err := s.Move(ctx, 0, 2, ""); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if diff := cmp.Diff([]string{"f2", "f1"}, topLevel(s.Definition())); diff != "" {
		t.Fatalf("order after move (-want +got):\n%s", diff)
	}

	if err := s.StartDrag("f1"); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	if id, ok := s.Dragging(); !ok || id != "f1" {
		t.Fatalf("expected f1 in flight, got %q", id)
	}
	if err := s.DropOnElement(ctx, 0, ""); err != nil {
		t.Fatalf("DropOnElement: %v", err)
	}
	if _, ok := s.Dragging(); ok {
		t.Fatalf("drag should be cleared after drop")
	}

	snap := s.Snapshot()
	first, _ := snap.Definition.ChildAt(0)
	group, ok := first.AsGroup()
	if !ok || snap.Definition.Len() != 1 {
		t.Fatalf("expected a single group, got %v", topLevel(snap.Definition))
	}
	if group.Label() != dragdrop.NewGroupLabel {
		t.Fatalf("unexpected group label %q", group.Label())
	}
	if want := "{" + group.ID() + "{f2, f1}}"; snap.Layout != want {
		t.Fatalf("control layout = %s, want %s", snap.Layout, want)
	}

	reloaded := New(st)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	want, _ := snap.Definition.ToJSON()
	got, _ := reloaded.Definition().ToJSON()
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Fatalf("persisted definition mismatch (-want +got):\n%s", diff)
	}
	if reloaded.Snapshot().Layout != snap.Layout {
		t.Fatalf("reloaded control tree differs: %s", reloaded.Snapshot().Layout)
	}
}

func TestSession_SubscribeReceivesCommittedSnapshots(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	var revisions []uint64
	var lastCode string
	cancel := s.Subscribe(func(snap Snapshot) {
		revisions = append(revisions, snap.Revision)
		lastCode = snap.Output.BuilderCode
	})

	addField(t, s, "name", model.InputTypeText, "")
	if err := s.Move(ctx, 0, 0, ""); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejected move, got %v", err)
	}
	addField(t, s, "age", model.InputTypeNumber, "")

	if diff := cmp.Diff([]uint64{1, 2}, revisions); diff != "" {
		t.Fatalf("revisions mismatch (-want +got):\n%s", diff)
	}
	if lastCode != "this.form = this.fb.group({\n  name: [null, []],\n  age: [null, []],\n});" {
		t.Fatalf("unexpected builder code %q", lastCode)
	}

	cancel()
	cancel()
	addField(t, s, "extra", model.InputTypeText, "")
	if len(revisions) != 2 {
		t.Fatalf("listener called after cancel: %v", revisions)
	}
}

func TestSession_LoadCorruptFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := New(st, WithKey("custom"))
	addField(t, s, "stale", model.InputTypeText, "")

	if err := st.Set(ctx, "custom", `{"fields":[{"id":"a","type":"text"`); err != nil {
		t.Fatalf("Set: %v", err)
	}

	err := s.Load(ctx)
	if !errors.Is(err, ErrCorruptDefinition) || !errors.Is(err, model.ErrInvalidDefinition) {
		t.Fatalf("expected corrupt definition error, got %v", err)
	}
	if s.Definition().Len() != 0 || s.Snapshot().Layout != "{}" {
		t.Fatalf("expected empty state after corrupt load")
	}
}

func TestSession_UpdateField(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	addField(t, s, "name", model.InputTypeText, "")

	label := "Full name"
	validators := []model.ValidatorDefinition{model.Required(), model.MinLength(3)}
	value := any("Al")
	f, err := s.UpdateField(ctx, "name", FieldPatch{Label: &label, Validators: &validators, Value: &value})
	if err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	if f.Label() != label || len(f.Validators()) != 2 || f.Value() != "Al" {
		t.Fatalf("patch not applied: %+v", f)
	}

	snap := s.Snapshot()
	if snap.Valid {
		t.Fatalf("expected minLength failure on control")
	}
	if errs := snap.Errors["name"]; len(errs) != 1 || errs[0].Kind != "minLength" {
		t.Fatalf("unexpected control errors %v", snap.Errors)
	}

	dup := []model.ValidatorDefinition{model.Required(), model.Required()}
	if _, err := s.UpdateField(ctx, "name", FieldPatch{Label: new(string), Validators: &dup}); err == nil {
		t.Fatalf("expected invalid patch to fail")
	}
	el, _ := s.Definition().FindChildByID("name")
	if el.Label() != label {
		t.Fatalf("failed patch mutated the field: %q", el.Label())
	}

	if _, err := s.UpdateField(ctx, "missing", FieldPatch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSession_UpdateElementVariantMismatch(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	if _, err := s.AddGroup(ctx, "Address"); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}
	groupID := s.Definition().Children()[0].ID()

	f, _ := model.NewField(model.FieldConfig{ID: groupID, Type: model.InputTypeText})
	if err := s.UpdateElement(ctx, f); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}

	if err := s.RenameGroup(ctx, groupID, "Shipping"); err != nil {
		t.Fatalf("RenameGroup: %v", err)
	}
	if err := s.RenameGroup(ctx, groupID, " "); !errors.Is(err, model.ErrEmptyLabel) {
		t.Fatalf("expected ErrEmptyLabel, got %v", err)
	}
	el, _ := s.Definition().FindChildByID(groupID)
	if el.Label() != "Shipping" {
		t.Fatalf("unexpected label %q", el.Label())
	}
}

func TestSession_DeleteLastFieldRemovesGroup(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	grp, err := s.AddGroup(ctx, "G")
	if err != nil {
		t.Fatalf("AddGroup: %v", err)
	}
	addField(t, s, "a", model.InputTypeText, grp.ID())
	addField(t, s, "b", model.InputTypeText, grp.ID())

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := s.Snapshot().Layout; got != "{"+grp.ID()+"{b}}" {
		t.Fatalf("unexpected layout %s", got)
	}
	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Definition().Len() != 0 || s.Snapshot().Layout != "{}" {
		t.Fatalf("empty group should be removed")
	}
	if err := s.Delete(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSession_UngroupPaths(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	addField(t, s, "x", model.InputTypeText, "")
	grp, _ := s.AddGroup(ctx, "G")
	addField(t, s, "a", model.InputTypeText, grp.ID())
	addField(t, s, "b", model.InputTypeText, grp.ID())
	addField(t, s, "y", model.InputTypeText, "")

	if err := s.FieldUngroup(ctx, "x"); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected for top-level field, got %v", err)
	}
	if err := s.FieldUngroup(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.FieldUngroup(ctx, "a"); err != nil {
		t.Fatalf("FieldUngroup: %v", err)
	}
	if diff := cmp.Diff([]string{"x", grp.ID(), "a", "y"}, topLevel(s.Definition())); diff != "" {
		t.Fatalf("order after field ungroup (-want +got):\n%s", diff)
	}

	if err := s.Ungroup(ctx, grp.ID()); err != nil {
		t.Fatalf("Ungroup: %v", err)
	}
	if diff := cmp.Diff([]string{"x", "b", "a", "y"}, topLevel(s.Definition())); diff != "" {
		t.Fatalf("order after ungroup (-want +got):\n%s", diff)
	}
	if got := s.Snapshot().Layout; got != "{x, y, a, b}" {
		t.Fatalf("unexpected control layout %s", got)
	}
}

func TestSession_DropRejections(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	addField(t, s, "a", model.InputTypeText, "")

	if err := s.StartDrag("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DropOnElement(ctx, 0, ""); !errors.Is(err, ErrRejected) {
		t.Fatalf("drop without drag should be rejected, got %v", err)
	}

	_ = s.StartDrag("a")
	if err := s.DropAsReorder(ctx, 0, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown parent, got %v", err)
	}
	if _, ok := s.Dragging(); ok {
		t.Fatalf("drag should be cleared after a failed drop")
	}

	_ = s.StartDrag("a")
	s.CancelDrag()
	if _, ok := s.Dragging(); ok {
		t.Fatalf("CancelDrag should clear the drag")
	}
}

func TestSession_SetValueAndReset(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := New(st)
	if _, err := s.AddField(ctx, model.FieldConfig{ID: "email", Type: model.InputTypeEmail, Validators: []model.ValidatorDefinition{model.Required()}}, ""); err != nil {
		t.Fatalf("AddField: %v", err)
	}

	errs, err := s.SetValue("email", "")
	if err != nil || len(errs) != 1 {
		t.Fatalf("expected required error, got %v %v", errs, err)
	}
	if _, err := s.SetValue("missing", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, ok, _ := st.Get(ctx, store.DefaultKey); ok {
		t.Fatalf("reset should remove the stored definition")
	}
	if s.Definition().Len() != 0 {
		t.Fatalf("reset should clear the definition")
	}
}

func TestSession_AddInputRejectsUnknownKind(t *testing.T) {
	s := New(nil)
	if _, err := s.AddInput(context.Background(), "stars", ""); !errors.Is(err, model.ErrInvalidFieldType) {
		t.Fatalf("expected ErrInvalidFieldType, got %v", err)
	}
	f, err := s.AddInput(context.Background(), model.InputTypeDate, "")
	if err != nil {
		t.Fatalf("AddInput: %v", err)
	}
	if f.Label() != model.DefaultLabel(model.InputTypeDate) || f.ID() == "" {
		t.Fatalf("unexpected field %+v", f)
	}
}

func TestSession_Replace(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := New(st)
	addField(t, s, "old", model.InputTypeText, "")

	def := model.NewDefinition()
	group := model.NewGroupWithID("addr", "Address")
	street, _ := model.NewField(model.FieldConfig{ID: "street", Type: model.InputTypeText})
	if err := group.AddChild(street); err != nil {
		t.Fatalf("AddChild: %v", err)
	}
	if err := def.AddChild(group); err != nil {
		t.Fatalf("AddChild: %v", err)
	}

	if err := s.Replace(ctx, def); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got := s.Snapshot().Layout; got != "{addr{street}}" {
		t.Fatalf("unexpected layout %s", got)
	}

	// The session keeps its own copy.
	street.SetValue("changed")
	if f, _ := s.Definition().FindChildByID("street"); f.(*model.Field).Value() != nil {
		t.Fatalf("replace must copy the definition")
	}

	reloaded := New(st)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"addr"}, topLevel(reloaded.Definition())); diff != "" {
		t.Fatalf("persisted order (-want +got):\n%s", diff)
	}

	if err := s.Replace(ctx, nil); !errors.Is(err, model.ErrNilElement) {
		t.Fatalf("expected ErrNilElement, got %v", err)
	}
}
