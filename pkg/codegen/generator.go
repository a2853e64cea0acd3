package codegen

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/controls"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/widgets"
)

// TemplateGenerator renders the control markup of one field. pad is the
// indentation of the first line.
type TemplateGenerator func(field *model.Field, pad string) string

// Output bundles both generated snippets.
type Output struct {
	BuilderCode  string `json:"builderCode"`
	HTMLTemplate string `json:"htmlTemplate"`
}

// Option configures a Generator.
type Option func(*Generator)

// WithWidgets replaces the registry used to pick a template shape per field.
func WithWidgets(reg *widgets.Registry) Option {
	return func(g *Generator) {
		if reg != nil {
			g.widgets = reg
		}
	}
}

// WithTemplate registers or overrides the generator for a template shape.
func WithTemplate(shape string, gen TemplateGenerator) Option {
	return func(g *Generator) {
		if strings.TrimSpace(shape) != "" && gen != nil {
			g.templates[shape] = gen
		}
	}
}

// Generator turns a definition into a builder-style construction snippet and
// an HTML template. It is stateless between calls and safe for concurrent
// use once configured.
type Generator struct {
	widgets   *widgets.Registry
	templates map[string]TemplateGenerator
}

// New constructs a Generator with the built-in template shapes.
func New(opts ...Option) *Generator {
	g := &Generator{
		widgets: widgets.NewRegistry(),
		templates: map[string]TemplateGenerator{
			widgets.WidgetInput:    inputTemplate,
			widgets.WidgetTextarea: textareaTemplate,
			widgets.WidgetCheckbox: choiceTemplate("checkbox"),
			widgets.WidgetRadio:    choiceTemplate("radio"),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

var defaultGenerator = New()

// Generate renders both snippets with the default generator.
func Generate(def *model.Definition) Output { return defaultGenerator.Generate(def) }

// BuilderCode renders the construction snippet with the default generator.
func BuilderCode(def *model.Definition) string { return defaultGenerator.BuilderCode(def) }

// HTMLTemplate renders the template with the default generator.
func HTMLTemplate(def *model.Definition) string { return defaultGenerator.HTMLTemplate(def) }

// Generate renders both snippets.
func (g *Generator) Generate(def *model.Definition) Output {
	return Output{
		BuilderCode:  g.BuilderCode(def),
		HTMLTemplate: g.HTMLTemplate(def),
	}
}

// BuilderCode renders
//
//	this.form = this.fb.group({
//	  key: [value, validators],
//	});
func (g *Generator) BuilderCode(def *model.Definition) string {
	return "this.form = this.fb.group({\n" + g.controls(def.Children(), 2) + "\n});"
}

func (g *Generator) controls(elements []model.Element, indent int) string {
	pad := strings.Repeat(" ", indent)
	lines := make([]string, 0, len(elements))
	for _, el := range elements {
		switch el.Kind() {
		case model.KindField:
			f, _ := el.AsField()
			lines = append(lines, fieldControl(f, pad, indent))
		case model.KindGroup:
			grp, _ := el.AsGroup()
			children := make([]model.Element, 0, grp.Len())
			for _, child := range grp.Children() {
				children = append(children, child)
			}
			lines = append(lines, fmt.Sprintf("%s%s: this.fb.group({\n%s\n%s}),",
				pad, formatKey(grp.ID()), g.controls(children, indent+2), pad))
		}
	}
	return strings.Join(lines, "\n")
}

func fieldControl(f *model.Field, pad string, indent int) string {
	value := "[]"
	if f.Type() != model.InputTypeCheckbox {
		value = stringifyValue(f.Value())
	}
	return fmt.Sprintf("%s%s: [%s, %s],", pad, formatKey(f.ID()), value, validatorList(f.Validators(), indent))
}

func validatorList(defs []model.ValidatorDefinition, indent int) string {
	calls := make([]string, 0, len(defs))
	for _, def := range defs {
		if call, ok := validatorCall(def); ok {
			calls = append(calls, call)
		}
	}
	if len(calls) == 0 {
		return "[]"
	}
	pad := strings.Repeat(" ", indent)
	inner := strings.Repeat(" ", indent+2)
	return "[\n" + inner + strings.Join(calls, ", \n"+inner) + "\n" + pad + "]"
}

func validatorCall(def model.ValidatorDefinition) (string, bool) {
	switch def.Kind {
	case model.ValidatorRequired:
		return "Validators.required", true
	case model.ValidatorMinLength:
		return "Validators.minLength(" + formatNumber(def.NumberOr(controls.DefaultMinLength)) + ")", true
	case model.ValidatorMaxLength:
		return "Validators.maxLength(" + formatNumber(def.NumberOr(controls.DefaultMaxLength)) + ")", true
	case model.ValidatorMin:
		return "Validators.min(" + formatNumber(def.NumberOr(controls.DefaultMin)) + ")", true
	case model.ValidatorMax:
		return "Validators.max(" + formatNumber(def.NumberOr(controls.DefaultMax)) + ")", true
	}
	return "", false
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func formatKey(key string) string {
	if identifierPattern.MatchString(key) {
		return key
	}
	return "'" + escapeString(key) + "'"
}

func stringifyValue(v any) string {
	switch value := v.(type) {
	case nil:
		return "null"
	case string:
		return "'" + escapeString(value) + "'"
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return formatNumber(value)
	case float32:
		return formatNumber(float64(value))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(value)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)

func escapeString(s string) string {
	return stringEscaper.Replace(s)
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// HTMLTemplate renders a label and control per field and wraps each group in
// a formGroupName container.
func (g *Generator) HTMLTemplate(def *model.Definition) string {
	return g.templateControls(def.Children(), 0)
}

func (g *Generator) templateControls(elements []model.Element, indent int) string {
	pad := strings.Repeat(" ", indent)
	blocks := make([]string, 0, len(elements))
	for _, el := range elements {
		switch el.Kind() {
		case model.KindField:
			f, _ := el.AsField()
			blocks = append(blocks, labelTemplate(f, pad)+"\n"+g.controlTemplate(f, pad))
		case model.KindGroup:
			grp, _ := el.AsGroup()
			children := make([]model.Element, 0, grp.Len())
			for _, child := range grp.Children() {
				children = append(children, child)
			}
			blocks = append(blocks, fmt.Sprintf("%s<div formGroupName=\"%s\">\n%s\n%s</div>",
				pad, attr(grp.ID()), g.templateControls(children, indent+2), pad))
		}
	}
	return strings.Join(blocks, "\n")
}

func labelTemplate(f *model.Field, pad string) string {
	return fmt.Sprintf("%s<label for=\"%s\">\n%s  %s\n%s</label>", pad, attr(f.ID()), pad, sanitizeLabel(f.Label()), pad)
}

func (g *Generator) controlTemplate(f *model.Field, pad string) string {
	if shape, ok := g.widgets.Resolve(f); ok {
		if gen, ok := g.templates[shape]; ok {
			return gen(f, pad)
		}
	}
	return fmt.Sprintf("%s<!-- unknown input type: %s -->", pad, html.EscapeString(string(f.Type())))
}

func inputTemplate(f *model.Field, pad string) string {
	inner := pad + "  "
	id := attr(f.ID())
	return strings.Join([]string{
		pad + "<input",
		inner + `id="` + id + `"`,
		inner + `formControlName="` + id + `"`,
		inner + `type="` + attr(string(f.Type())) + `" />`,
	}, "\n")
}

func textareaTemplate(f *model.Field, pad string) string {
	inner := pad + "  "
	id := attr(f.ID())
	return strings.Join([]string{
		pad + "<textarea",
		inner + `id="` + id + `"`,
		inner + `formControlName="` + id + `">`,
		pad + "</textarea>",
	}, "\n")
}

func choiceTemplate(kind string) TemplateGenerator {
	return func(f *model.Field, pad string) string {
		options := f.Options()
		if len(options) == 0 {
			return fmt.Sprintf("%s<!-- No %s options provided -->", pad, kind)
		}
		inner := pad + "  "
		optPad := pad + "    "
		id := attr(f.ID())
		blocks := make([]string, 0, len(options))
		for _, opt := range options {
			optionID := attr(f.ID() + "_" + opt.Value)
			lines := []string{
				pad + "<div>",
				inner + "<input",
				optPad + `type="` + kind + `"`,
				optPad + `id="` + optionID + `"`,
				optPad + `name="` + id + `"`,
				optPad + `value="` + attr(opt.Value) + `"`,
			}
			if opt.Disabled {
				lines = append(lines, optPad+"disabled")
			}
			lines = append(lines,
				optPad+`formControlName="`+id+`" />`,
				inner+`<label for="`+optionID+`">`,
				optPad+sanitizeLabel(opt.Label),
				inner+"</label>",
				pad+"</div>",
			)
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
		return strings.Join(blocks, "\n")
	}
}

func attr(s string) string {
	return html.EscapeString(s)
}
