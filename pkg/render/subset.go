package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// ApplySubset returns a filtered clone of def. A group named in Groups (by id
// or label) is kept whole; any other group keeps only the fields matching
// Types or Fields and is dropped when none match. When the subset is empty
// the clone is unfiltered. A nil definition yields nil.
func ApplySubset(def *model.Definition, subset FieldSubset) *model.Definition {
	if def == nil {
		return nil
	}
	clone := def.Clone()

	matcher := newSubsetMatcher(subset)
	if matcher.empty() {
		return clone
	}

	filtered := model.NewDefinition()
	for _, el := range clone.Children() {
		switch el.Kind() {
		case model.KindField:
			f, _ := el.AsField()
			if matcher.matchesField(f) {
				_ = filtered.AddChild(f)
			}
		case model.KindGroup:
			grp, _ := el.AsGroup()
			if !matcher.matchesGroup(grp) {
				for _, child := range grp.Children() {
					if !matcher.matchesField(child) {
						grp.RemoveChild(child.ID())
					}
				}
				if grp.IsEmpty() {
					continue
				}
			}
			_ = filtered.AddChild(grp)
		}
	}
	return filtered
}

type subsetMatcher struct {
	groups map[string]struct{}
	types  map[string]struct{}
	fields map[string]struct{}
}

func newSubsetMatcher(subset FieldSubset) subsetMatcher {
	return subsetMatcher{
		groups: normaliseTokens(subset.Groups),
		types:  normaliseTokens(subset.Types),
		fields: normaliseTokens(subset.Fields),
	}
}

func (m subsetMatcher) empty() bool {
	return len(m.groups) == 0 && len(m.types) == 0 && len(m.fields) == 0
}

func (m subsetMatcher) matchesGroup(grp *model.Group) bool {
	if len(m.groups) == 0 {
		return false
	}
	for _, candidate := range []string{grp.ID(), grp.Label()} {
		if _, ok := m.groups[normaliseToken(candidate)]; ok {
			return true
		}
	}
	return false
}

func (m subsetMatcher) matchesField(f *model.Field) bool {
	if _, ok := m.fields[normaliseToken(f.ID())]; ok {
		return true
	}
	_, ok := m.types[normaliseToken(string(f.Type()))]
	return ok
}

func normaliseTokens(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]struct{}, len(values))
	for _, value := range values {
		token := normaliseToken(value)
		if token == "" {
			continue
		}
		result[token] = struct{}{}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func normaliseToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func parseTokenList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var parsed []any
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			tokens := make([]string, 0, len(parsed))
			for _, entry := range parsed {
				if token := normaliseToken(anyToString(entry)); token != "" {
					tokens = append(tokens, token)
				}
			}
			return dedupe(tokens)
		}
	}

	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if token := normaliseToken(part); token != "" {
			tokens = append(tokens, token)
		}
	}
	return dedupe(tokens)
}

func splitClauses(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == '&' })
}

func cutClause(clause string) (string, string, bool) {
	key, value, ok := strings.Cut(clause, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return "", "", false
	}
	return key, value, true
}

func anyToString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
