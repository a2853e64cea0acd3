package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// printElement writes one outline line per element:
//
//	0 name [text] Name {required}
//	1 f81d… [group] Address
//	  0 street [text] Street
func printElement(out io.Writer, index int, el model.Element, indent string) {
	line := fmt.Sprintf("%s%d %s [%s] %s", indent, index, el.ID(), el.Type(), el.Label())
	if f, ok := el.AsField(); ok {
		if defs := f.Validators(); len(defs) > 0 {
			names := make([]string, len(defs))
			for i, def := range defs {
				names[i] = def.String()
			}
			line += " {" + strings.Join(names, ", ") + "}"
		}
	}
	fmt.Fprintln(out, line)

	if g, ok := el.AsGroup(); ok {
		for i, child := range g.Children() {
			printElement(out, i, child, indent+"  ")
		}
	}
}

// parseValue reads raw as JSON, falling back to the plain string.
func parseValue(raw string) any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

// parseValidators reads "required,minLength=3,max=10".
func parseValidators(raw string) ([]model.ValidatorDefinition, error) {
	out := []model.ValidatorDefinition{}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		name, value, hasValue := strings.Cut(token, "=")
		kind, ok := lookupValidator(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("%w: %q", model.ErrUnknownValidator, name)
		}
		def := model.ValidatorDefinition{Kind: kind}
		if hasValue {
			n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return nil, fmt.Errorf("validator %s: invalid value %q", kind, value)
			}
			def.Value = &n
		}
		out = append(out, def)
	}
	return out, nil
}

func lookupValidator(name string) (model.ValidatorKind, bool) {
	for _, kind := range model.ValidatorKinds {
		if strings.EqualFold(string(kind), name) {
			return kind, true
		}
	}
	return "", false
}

func parseIndices(rawFrom, rawTo string) (int, int, error) {
	from, err := strconv.Atoi(rawFrom)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid index %q", rawFrom)
	}
	to, err := strconv.Atoi(rawTo)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid index %q", rawTo)
	}
	return from, to, nil
}
