package analysis

import (
	"encoding/json"
	"strings"
)

// The upstream services answer with one of three shapes depending on the
// model behind them: a JSON object, a bare string, or an array of strings
// where "## " prefixes mark section headings. Normalize is total over all
// inputs and produces exactly one canonical Result; nothing downstream
// ever sees the raw blob.

type Kind string

const (
	KindStructured  Kind = "structured"
	KindPlainText   Kind = "plain_text"
	KindHeadingList Kind = "heading_list"
)

// Section groups lines under one "## heading" marker.
type Section struct {
	Heading string   `json:"heading"`
	Items   []string `json:"items"`
}

// Result is the canonical upstream-response shape. Exactly one of the
// payload fields is populated, selected by Kind.
type Result struct {
	Kind       Kind                   `json:"kind"`
	Structured map[string]interface{} `json:"structured,omitempty"`
	Text       string                 `json:"text,omitempty"`
	Sections   []Section              `json:"sections,omitempty"`
}

const headingMarker = "## "

// Normalize maps any upstream body to a Result.
func Normalize(raw []byte) Result {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return Result{Kind: KindPlainText, Text: ""}
	}

	var value interface{}
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		// Not JSON at all; treat the body as plain text.
		return Result{Kind: KindPlainText, Text: trimmed}
	}

	switch v := value.(type) {
	case map[string]interface{}:
		return Result{Kind: KindStructured, Structured: v}

	case []interface{}:
		lines, ok := stringSlice(v)
		if !ok {
			// Mixed array; wrap it so the shape stays structured.
			return Result{Kind: KindStructured, Structured: map[string]interface{}{"items": v}}
		}
		return Result{Kind: KindHeadingList, Sections: sectionize(lines)}

	case string:
		return Result{Kind: KindPlainText, Text: v}

	default:
		// Numbers, booleans, null: nothing useful to split, keep the text.
		return Result{Kind: KindPlainText, Text: trimmed}
	}
}

func stringSlice(items []interface{}) ([]string, bool) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// sectionize folds a flat line list into sections. Lines before the first
// heading land in an untitled section.
func sectionize(lines []string) []Section {
	sections := make([]Section, 0, 2)
	current := Section{Items: []string{}}

	flush := func() {
		if current.Heading != "" || len(current.Items) > 0 {
			sections = append(sections, current)
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, headingMarker) {
			flush()
			current = Section{
				Heading: strings.TrimSpace(strings.TrimPrefix(line, headingMarker)),
				Items:   []string{},
			}
			continue
		}
		current.Items = append(current.Items, line)
	}
	flush()

	return sections
}
