package controls

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Option configures a Builder.
type Option func(*Builder)

// WithLogger routes warnings about dropped rules to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Builder projects a form definition onto a control tree. It never mutates
// the definition.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder constructs a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// BuildForm creates the root scope: one leaf per top-level field and one
// nested scope per group.
func (b *Builder) BuildForm(def *model.Definition) *GroupControl {
	root := NewGroupControl()
	for _, el := range def.Children() {
		switch el.Kind() {
		case model.KindField:
			f, _ := el.AsField()
			root.AddControl(f.ID(), b.CreateControl(f))
		case model.KindGroup:
			g, _ := el.AsGroup()
			root.AddControl(g.ID(), b.CreateGroupControl(g))
		}
	}
	return root
}

// CreateControl builds the leaf for a single field.
func (b *Builder) CreateControl(field *model.Field) *FieldControl {
	return NewFieldControl(field.Value(), b.Validators(field)...)
}

// CreateGroupControl builds the scope for a group and its fields.
func (b *Builder) CreateGroupControl(group *model.Group) *GroupControl {
	scope := NewGroupControl()
	for _, child := range group.Children() {
		scope.AddControl(child.ID(), b.CreateControl(child))
	}
	return scope
}

// Validators maps the field's rules to validation functions. Unknown kinds
// are dropped.
func (b *Builder) Validators(field *model.Field) []ValidatorFunc {
	defs := field.Validators()
	out := make([]ValidatorFunc, 0, len(defs))
	for _, def := range defs {
		factory, ok := validatorTable[def.Kind]
		if !ok {
			b.logger.Warn("dropping unknown validator",
				zap.String("field", field.ID()),
				zap.String("validator", string(def.Kind)),
			)
			continue
		}
		out = append(out, factory(def))
	}
	return out
}
