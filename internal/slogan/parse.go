package slogan

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"posterforge/internal/domain"
	"posterforge/internal/providers/openai"
)

// OptionCount is the number of options a reply must yield.
const OptionCount = 3

// Status tags the outcome of parsing one model reply.
type Status int

const (
	StatusOK Status = iota
	StatusNeedsRepair
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNeedsRepair:
		return "needs_repair"
	default:
		return "failed"
	}
}

// ParseResult is the tagged result of Parse. Options holds every valid option
// recovered, even when Status is StatusNeedsRepair; Raw is the reply to send
// back for repair.
type ParseResult struct {
	Status  Status
	Options []domain.SloganOption
	Raw     string
	Reason  string
}

const optionsSchemaJSON = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["slogan", "visual"],
    "properties": {
      "slogan": {"type": "string", "minLength": 1},
      "visual": {"type": "string", "minLength": 1}
    }
  }
}`

var optionsSchema = mustSchema(optionsSchemaJSON)

var salvageRe = regexp.MustCompile(`(?s)\{\s*"slogan"\s*:\s*"((?:[^"\\]|\\.)*)"\s*,\s*"visual"\s*:\s*"((?:[^"\\]|\\.)*)"\s*\}`)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(err)
	}
	return s
}

// Parse runs the strict stage and then the salvage stage over a model reply.
// It is pure: the same input always yields the same result.
func Parse(raw string) ParseResult {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ParseResult{Status: StatusFailed, Reason: "empty reply"}
	}

	options, reason := parseStrict(trimmed)
	if options == nil {
		options = salvage(trimmed)
		if len(options) > 0 {
			reason = "salvaged: " + reason
		}
	}
	valid := filterOptions(options)
	if len(valid) >= OptionCount {
		return ParseResult{Status: StatusOK, Options: valid[:OptionCount], Raw: trimmed}
	}
	if reason == "" {
		reason = "too few valid options"
	}
	return ParseResult{Status: StatusNeedsRepair, Options: valid, Raw: trimmed, Reason: reason}
}

// parseStrict decodes the reply as JSON and validates it against the options
// schema. A nil slice means the strict stage did not apply.
func parseStrict(raw string) ([]domain.SloganOption, string) {
	fragment := openai.ExtractJSONFragment(raw)
	if fragment == "" {
		return nil, "no json found"
	}
	var doc any
	if err := json.Unmarshal([]byte(fragment), &doc); err != nil {
		return nil, "invalid json"
	}
	doc = unwrap(doc)
	result, err := optionsSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, "schema: " + err.Error()
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, "schema: " + strings.Join(msgs, "; ")
	}
	items := doc.([]any)
	out := make([]domain.SloganOption, 0, len(items))
	for _, item := range items {
		m := item.(map[string]any)
		s, _ := m["slogan"].(string)
		v, _ := m["visual"].(string)
		out = append(out, domain.SloganOption{Slogan: s, Visual: v})
	}
	return out, ""
}

// unwrap accepts {"options": [...]} style envelopes around the array.
func unwrap(doc any) any {
	m, ok := doc.(map[string]any)
	if !ok {
		return doc
	}
	for _, key := range []string{"options", "slogans", "items", "results"} {
		if arr, ok := m[key].([]any); ok {
			return arr
		}
	}
	if _, ok := m["slogan"]; ok {
		return []any{m}
	}
	return doc
}

func salvage(raw string) []domain.SloganOption {
	matches := salvageRe.FindAllStringSubmatch(raw, -1)
	out := make([]domain.SloganOption, 0, len(matches))
	for _, m := range matches {
		out = append(out, domain.SloganOption{Slogan: unescape(m[1]), Visual: unescape(m[2])})
	}
	return out
}

func unescape(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}
