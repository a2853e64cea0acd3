// Package prompt drives interactive terminal dialogs for building a form:
// picking an input kind from the palette and editing a field's label,
// value, validators and options.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/controls"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

const noneChoice = "(none)"

// Editor runs the dialogs on top of a PromptDriver.
type Editor struct {
	driver PromptDriver
}

// NewEditor returns an Editor using driver, or a survey driver on stdout
// when driver is nil.
func NewEditor(driver PromptDriver) *Editor {
	if driver == nil {
		driver = NewSurveyDriver(nil)
	}
	return &Editor{driver: driver}
}

// ChooseInputType asks for one of the palette kinds.
func (e *Editor) ChooseInputType(ctx context.Context) (model.InputType, error) {
	names := make([]string, len(model.InputTypes))
	for i, t := range model.InputTypes {
		names[i] = t.DisplayName()
	}
	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:  "Input type",
		Options:  names,
		PageSize: len(names),
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(model.InputTypes) {
		return "", fmt.Errorf("prompt: invalid selection %d", idx)
	}
	return model.InputTypes[idx], nil
}

// EditGroup asks for a new group label.
func (e *Editor) EditGroup(ctx context.Context, g *model.Group) (string, error) {
	return e.driver.Input(ctx, InputConfig{
		Message:   "Group label",
		Default:   g.Label(),
		Validator: requireText,
	})
}

// EditField walks through the field dialog and returns an edited copy. The
// original field is not modified.
func (e *Editor) EditField(ctx context.Context, f *model.Field) (*model.Field, error) {
	out := f.Clone()

	label, err := e.driver.Input(ctx, InputConfig{
		Message:   "Label",
		Default:   f.Label(),
		Validator: requireText,
	})
	if err != nil {
		return nil, err
	}
	if err := out.SetLabel(label); err != nil {
		return nil, err
	}

	if out.SupportsOptions() {
		opts, err := e.editOptions(ctx, f.Options())
		if err != nil {
			return nil, err
		}
		if err := out.SetOptions(opts); err != nil {
			return nil, err
		}
	}

	validators, err := e.editValidators(ctx, out)
	if err != nil {
		return nil, err
	}
	if err := out.SetValidators(validators); err != nil {
		return nil, err
	}

	value, err := e.editValue(ctx, out)
	if err != nil {
		return nil, err
	}
	out.SetValue(value)
	return out, nil
}

func (e *Editor) editOptions(ctx context.Context, current []model.FieldOption) ([]model.FieldOption, error) {
	raw, err := e.driver.TextArea(ctx, TextAreaConfig{
		Message: "Options",
		Default: FormatOptions(current),
		Help:    "One option per line as label=value. A leading ! disables the option.",
	})
	if err != nil {
		return nil, err
	}
	return ParseOptions(raw)
}

func (e *Editor) editValidators(ctx context.Context, f *model.Field) ([]model.ValidatorDefinition, error) {
	var kinds []model.ValidatorKind
	var names []string
	var defaults []int
	for _, k := range model.ValidatorKinds {
		if !k.AppliesTo(f.Type()) {
			continue
		}
		if f.HasValidator(k) {
			defaults = append(defaults, len(kinds))
		}
		kinds = append(kinds, k)
		names = append(names, string(k))
	}

	picked, err := e.driver.MultiSelect(ctx, SelectConfig{
		Message:  "Validators",
		Options:  names,
		Defaults: defaults,
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.ValidatorDefinition, 0, len(picked))
	for _, idx := range picked {
		if idx < 0 || idx >= len(kinds) {
			continue
		}
		kind := kinds[idx]
		if !kind.NeedsValue() {
			out = append(out, model.ValidatorDefinition{Kind: kind})
			continue
		}
		fallback := defaultParameter(kind)
		if existing, ok := f.Validator(kind); ok {
			fallback = existing.NumberOr(fallback)
		}
		answer, err := e.driver.Input(ctx, InputConfig{
			Message:   fmt.Sprintf("%s value", kind),
			Default:   strconv.FormatFloat(fallback, 'f', -1, 64),
			Validator: requireNumber,
		})
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
		if err != nil {
			return nil, fmt.Errorf("prompt: %s value: %w", kind, err)
		}
		out = append(out, model.ValidatorDefinition{Kind: kind, Value: &n})
	}
	return out, nil
}

func (e *Editor) editValue(ctx context.Context, f *model.Field) (any, error) {
	switch f.Type() {
	case model.InputTypeCheckbox:
		opts := f.Options()
		names := make([]string, len(opts))
		var defaults []int
		selected := stringSet(f.Value())
		for i, opt := range opts {
			names[i] = opt.Label
			if _, ok := selected[opt.Value]; ok {
				defaults = append(defaults, i)
			}
		}
		picked, err := e.driver.MultiSelect(ctx, SelectConfig{Message: "Checked by default", Options: names, Defaults: defaults})
		if err != nil {
			return nil, err
		}
		if len(picked) == 0 {
			return nil, nil
		}
		values := make([]any, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(opts) {
				values = append(values, opts[idx].Value)
			}
		}
		return values, nil

	case model.InputTypeRadio:
		opts := f.Options()
		names := []string{noneChoice}
		defaultIdx := 0
		for i, opt := range opts {
			names = append(names, opt.Label)
			if fmt.Sprint(f.Value()) == opt.Value {
				defaultIdx = i + 1
			}
		}
		idx, err := e.driver.Select(ctx, SelectConfig{Message: "Selected by default", Options: names, DefaultIndex: defaultIdx})
		if err != nil {
			return nil, err
		}
		if idx <= 0 || idx > len(opts) {
			return nil, nil
		}
		return opts[idx-1].Value, nil

	case model.InputTypeNumber:
		answer, err := e.driver.Input(ctx, InputConfig{
			Message:   "Initial value",
			Default:   valueString(f.Value()),
			Validator: optionalNumber,
		})
		if err != nil {
			return nil, err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return nil, nil
		}
		return strconv.ParseFloat(answer, 64)
	}

	answer, err := e.driver.Input(ctx, InputConfig{
		Message: "Initial value",
		Default: valueString(f.Value()),
	})
	if err != nil {
		return nil, err
	}
	if answer == "" {
		return nil, nil
	}
	return answer, nil
}

// FormatOptions renders options in the format ParseOptions reads.
func FormatOptions(opts []model.FieldOption) string {
	lines := make([]string, 0, len(opts))
	for _, opt := range opts {
		line := opt.Label
		if opt.Value != opt.Label {
			line += "=" + opt.Value
		}
		if opt.Disabled {
			line = "!" + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// ParseOptions reads one option per line as "label=value" or "value".
// Blank lines are skipped and a leading "!" marks the option disabled.
func ParseOptions(raw string) ([]model.FieldOption, error) {
	var out []model.FieldOption
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		opt := model.FieldOption{}
		if strings.HasPrefix(line, "!") {
			opt.Disabled = true
			line = strings.TrimSpace(line[1:])
		}
		label, value, found := strings.Cut(line, "=")
		label, value = strings.TrimSpace(label), strings.TrimSpace(value)
		if !found {
			value = label
		}
		if label == "" {
			return nil, fmt.Errorf("%w: %q", model.ErrEmptyOption, line)
		}
		if value == "" {
			value = label
		}
		opt.Label, opt.Value = label, value
		out = append(out, opt)
	}
	return out, nil
}

func defaultParameter(kind model.ValidatorKind) float64 {
	switch kind {
	case model.ValidatorMinLength:
		return controls.DefaultMinLength
	case model.ValidatorMaxLength:
		return controls.DefaultMaxLength
	case model.ValidatorMin:
		return controls.DefaultMin
	case model.ValidatorMax:
		return controls.DefaultMax
	}
	return 0
}

func requireText(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("a value is required")
	}
	return nil
}

func requireNumber(s string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return errors.New("enter a number")
	}
	return nil
}

func optionalNumber(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return requireNumber(s)
}

func valueString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case string:
		return value
	}
	return fmt.Sprint(v)
}

func stringSet(v any) map[string]struct{} {
	out := make(map[string]struct{})
	switch values := v.(type) {
	case []any:
		for _, item := range values {
			out[fmt.Sprint(item)] = struct{}{}
		}
	case []string:
		for _, item := range values {
			out[item] = struct{}{}
		}
	}
	return out
}
