package render

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the definition being edited.
type RenderOptions struct {
	// Subset narrows the rendered definition. Renderers receive a filtered
	// clone so the caller's tree is never touched.
	Subset FieldSubset
	// Title is used by renderers that produce a full document (preview page,
	// OpenAPI info block).
	Title string
}

// FieldSubset selects elements by id or label (Groups), by input type
// (Types) or by field id (Fields). An empty subset keeps everything.
type FieldSubset struct {
	Groups []string
	Types  []string
	Fields []string
}

// ParseSubset reads the query form "groups=a,b;types=text;fields=x". Each
// list also accepts a JSON array.
func ParseSubset(raw string) FieldSubset {
	var subset FieldSubset
	for _, clause := range splitClauses(raw) {
		key, value, ok := cutClause(clause)
		if !ok {
			continue
		}
		tokens := parseTokenList(value)
		switch normaliseToken(key) {
		case "groups", "group":
			subset.Groups = append(subset.Groups, tokens...)
		case "types", "type":
			subset.Types = append(subset.Types, tokens...)
		case "fields", "field":
			subset.Fields = append(subset.Fields, tokens...)
		}
	}
	return subset
}
