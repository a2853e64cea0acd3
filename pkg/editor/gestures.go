package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/controls"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// FieldPatch lists the attributes UpdateField changes. Nil members are left
// alone.
type FieldPatch struct {
	Label      *string                      `json:"label,omitempty"`
	Value      *any                         `json:"value,omitempty"`
	Validators *[]model.ValidatorDefinition `json:"validators,omitempty"`
	Options    *[]model.FieldOption         `json:"options,omitempty"`
}

func (p FieldPatch) apply(f *model.Field) error {
	if p.Label != nil {
		if err := f.SetLabel(*p.Label); err != nil {
			return err
		}
	}
	if p.Validators != nil {
		if err := f.SetValidators(*p.Validators); err != nil {
			return err
		}
	}
	if p.Options != nil {
		if err := f.SetOptions(*p.Options); err != nil {
			return err
		}
	}
	if p.Value != nil {
		f.SetValue(*p.Value)
	}
	return nil
}

// AddInput appends a field of kind with its default label (or label when
// set) and binds a control for it.
func (s *Session) AddInput(ctx context.Context, kind model.InputType, label string) (*model.Field, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidFieldType, kind)
	}
	return s.AddField(ctx, model.FieldConfig{Type: kind, Label: label}, "")
}

// AddField builds a field from cfg and appends it to the top level, or to the
// group parentID when set.
func (s *Session) AddField(ctx context.Context, cfg model.FieldConfig, parentID string) (*model.Field, error) {
	f, err := model.NewField(cfg)
	if err != nil {
		return nil, err
	}
	err = s.commit(ctx, "add field", func() error {
		if _, exists := s.def.FindChildByID(f.ID()); exists {
			return fmt.Errorf("%w: %s", model.ErrDuplicateID, f.ID())
		}
		if strings.TrimSpace(parentID) == "" {
			if err := s.def.AddChild(f); err != nil {
				return err
			}
			s.form.AddControl(f.ID(), s.builder.CreateControl(f))
			return nil
		}
		group, err := s.groupLocked(parentID)
		if err != nil {
			return err
		}
		if err := s.def.AddToGroup(group, f); err != nil {
			return err
		}
		s.scopeLocked(group).AddControl(f.ID(), s.builder.CreateControl(f))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return f.Clone(), nil
}

// AddGroup appends an empty group.
func (s *Session) AddGroup(ctx context.Context, label string) (*model.Group, error) {
	group := model.NewGroup(label)
	err := s.commit(ctx, "add group", func() error {
		if err := s.def.AddChild(group); err != nil {
			return err
		}
		s.form.AddControl(group.ID(), controls.NewGroupControl())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group.Clone(), nil
}

// UpdateField applies patch to the field id. The patch is validated on a
// copy first, so a failing patch leaves the field untouched.
func (s *Session) UpdateField(ctx context.Context, id string, patch FieldPatch) (*model.Field, error) {
	var updated *model.Field
	err := s.commit(ctx, "update field", func() error {
		current, _, err := s.fieldLocked(id)
		if err != nil {
			return err
		}
		draft := current.Clone()
		if err := patch.apply(draft); err != nil {
			return err
		}
		s.def.UpdateElement(draft)
		s.syncControlLocked(current)
		updated = current.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateElement overwrites the element sharing el's id: every attribute for
// a field, only the label for a group. A variant mismatch is rejected.
func (s *Session) UpdateElement(ctx context.Context, el model.Element) error {
	if el == nil {
		return model.ErrNilElement
	}
	return s.commit(ctx, "update element", func() error {
		existing, ok := s.def.FindChildByID(el.ID())
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, el.ID())
		}
		if el.Kind() == model.KindGroup {
			if err := validLabel(el.Label()); err != nil {
				return err
			}
		}
		if !s.def.UpdateElement(el) {
			return fmt.Errorf("%w: cannot replace a %s with a %s", ErrRejected, existing.Kind(), el.Kind())
		}
		if f, ok := existing.AsField(); ok {
			s.syncControlLocked(f)
		}
		return nil
	})
}

// RenameGroup sets the label of group id.
func (s *Session) RenameGroup(ctx context.Context, id, label string) error {
	return s.commit(ctx, "rename group", func() error {
		group, err := s.groupLocked(id)
		if err != nil {
			return err
		}
		return group.SetLabel(label)
	})
}

// Delete removes an element and its control. Deleting the last field of a
// group removes the group too.
func (s *Session) Delete(ctx context.Context, id string) error {
	return s.commit(ctx, "delete", func() error {
		if parent := s.def.ParentOf(id); parent != nil {
			parent.RemoveChild(id)
			scope := s.scopeLocked(parent)
			scope.RemoveControl(id)
			if parent.IsEmpty() {
				s.def.RemoveChildByID(parent.ID())
				s.form.RemoveControl(parent.ID())
			}
			return nil
		}
		if _, ok := s.def.RemoveChildByID(id); !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		s.form.RemoveControl(id)
		return nil
	})
}

// Move reorders the top level, or the group parentID when set. Indices
// follow model.Definition.MoveChild.
func (s *Session) Move(ctx context.Context, from, to int, parentID string) error {
	return s.commit(ctx, "move", func() error {
		container, err := s.containerLocked(parentID)
		if err != nil {
			return err
		}
		if !container.MoveChild(from, to) {
			return fmt.Errorf("%w: move %d to %d", ErrRejected, from, to)
		}
		return nil
	})
}

// StartDrag picks up element id. Nothing is saved until a drop.
func (s *Session) StartDrag(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.def.FindChildByID(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.reconciler.StartDrag(el)
	return nil
}

// CancelDrag drops the element in flight, if any.
func (s *Session) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconciler.Cancel()
}

// Dragging reports the id of the element in flight.
func (s *Session) Dragging() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.reconciler.Dragged()
	if !ok {
		return "", false
	}
	return el.ID(), true
}

// DropOnElement drops the element in flight onto the element at
// targetIndex of the top level or of group parentID.
func (s *Session) DropOnElement(ctx context.Context, targetIndex int, parentID string) error {
	return s.commit(ctx, "drop", func() error {
		parent, err := s.parentLocked(parentID)
		if err != nil {
			s.reconciler.Cancel()
			return err
		}
		if !s.reconciler.DropOnElement(s.def, s.form, targetIndex, parent) {
			return fmt.Errorf("%w: drop on %d", ErrRejected, targetIndex)
		}
		return nil
	})
}

// DropAsReorder moves the element in flight to targetIndex within its
// container.
func (s *Session) DropAsReorder(ctx context.Context, targetIndex int, parentID string) error {
	return s.commit(ctx, "reorder", func() error {
		parent, err := s.parentLocked(parentID)
		if err != nil {
			s.reconciler.Cancel()
			return err
		}
		if !s.reconciler.DropAsReorder(s.def, targetIndex, parent) {
			return fmt.Errorf("%w: reorder to %d", ErrRejected, targetIndex)
		}
		return nil
	})
}

// Ungroup dissolves group id in place.
func (s *Session) Ungroup(ctx context.Context, id string) error {
	return s.commit(ctx, "ungroup", func() error {
		group, err := s.groupLocked(id)
		if err != nil {
			return err
		}
		if !s.reconciler.Ungroup(s.def, s.form, group) {
			return fmt.Errorf("%w: ungroup %s", ErrRejected, id)
		}
		return nil
	})
}

// FieldUngroup moves field id out of its group to just after the group.
func (s *Session) FieldUngroup(ctx context.Context, id string) error {
	return s.commit(ctx, "ungroup field", func() error {
		field, parent, err := s.fieldLocked(id)
		if err != nil {
			return err
		}
		if parent == nil {
			return fmt.Errorf("%w: %s is not in a group", ErrRejected, id)
		}
		if !s.reconciler.FieldUngroup(s.def, s.form, field, parent) {
			return fmt.Errorf("%w: ungroup field %s", ErrRejected, id)
		}
		return nil
	})
}

// Replace swaps the whole definition for a copy of def and rebuilds the
// control tree. def must pass model.Definition.Validate.
func (s *Session) Replace(ctx context.Context, def *model.Definition) error {
	if def == nil {
		return model.ErrNilElement
	}
	if err := def.Validate(); err != nil {
		return err
	}
	next := def.Clone()
	return s.commit(ctx, "replace", func() error {
		s.def = next
		s.form = s.builder.BuildForm(next)
		s.reconciler.Cancel()
		return nil
	})
}

// Reset clears the definition and removes it from the store.
func (s *Session) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.def = model.NewDefinition()
	s.form = s.builder.BuildForm(s.def)
	s.reconciler.Cancel()
	s.revision++
	err := s.store.Remove(ctx, s.key)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	if err != nil {
		return fmt.Errorf("editor: reset: %w", err)
	}
	return nil
}

func (s *Session) fieldLocked(id string) (*model.Field, *model.Group, error) {
	el, ok := s.def.FindChildByID(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	f, ok := el.AsField()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s is a group", ErrRejected, id)
	}
	return f, s.def.ParentOf(id), nil
}

func (s *Session) groupLocked(id string) (*model.Group, error) {
	el, ok := s.def.FindChildByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	group, ok := el.AsGroup()
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a group", ErrRejected, id)
	}
	return group, nil
}

func (s *Session) parentLocked(id string) (*model.Group, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	return s.groupLocked(id)
}

func (s *Session) containerLocked(parentID string) (model.Container, error) {
	parent, err := s.parentLocked(parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return s.def, nil
	}
	return parent, nil
}

// scopeLocked returns the control scope of group, creating it when the
// control tree lost track of it.
func (s *Session) scopeLocked(group *model.Group) *controls.GroupControl {
	if group == nil {
		return s.form
	}
	scope, ok := s.form.Group(group.ID())
	if !ok {
		scope = s.builder.CreateGroupControl(group)
		s.form.AddControl(group.ID(), scope)
	}
	return scope
}

// syncControlLocked rebinds the control of f to its current validators and
// value, keeping its position in the scope.
func (s *Session) syncControlLocked(f *model.Field) {
	scope := s.scopeLocked(s.def.ParentOf(f.ID()))
	ctrl, ok := scope.Field(f.ID())
	if !ok {
		scope.AddControl(f.ID(), s.builder.CreateControl(f))
		return
	}
	ctrl.SetValidators(s.builder.Validators(f)...)
	ctrl.SetValue(f.Value())
}

func validLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return model.ErrEmptyLabel
	}
	return nil
}
