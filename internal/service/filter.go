package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pageza/vinoteca/backend/internal/types"
	"github.com/xeipuuv/gojsonschema"
)

// FilterSentinel introduces the structured filter the sommelier prompt asks the model
// to append to its answer.
const FilterSentinel = "FILTERS:"

// Filter extraction outcomes, also used as metric labels.
const (
	FilterFromSentinel = "sentinel"
	FilterFromScan     = "scan"
	FilterNone         = "none"
	FilterInvalid      = "invalid"
)

const filterSchemaJSON = `{
	"type": "object",
	"properties": {
		"wine_type":      {"type": ["string", "null"]},
		"food":           {"type": ["string", "null"]},
		"grape":          {"type": ["string", "null"]},
		"region":         {"type": ["string", "null"]},
		"country":        {"type": ["string", "null"]},
		"year":           {"type": ["string", "number", "null"]},
		"classification": {"type": ["string", "null"]},
		"appellation":    {"type": ["string", "null"]},
		"appelation":     {"type": ["string", "null"]},
		"name":           {"type": ["string", "null"]},
		"pairing":        {"type": ["string", "null"]}
	}
}`

var filterSchema = mustSchema(filterSchemaJSON)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid JSON schema: %v", err))
	}
	return schema
}

// validateJSON checks raw against schema and reports every violation.
func validateJSON(schema *gojsonschema.Schema, raw []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("data validation failed: %v", errs)
	}
	return nil
}

// BraceScanner watches streamed text for the first '{' and the first '}' after it.
// Once the pair is found it stops looking; later text never changes the candidate.
type BraceScanner struct {
	text      strings.Builder
	start     int
	candidate string
	done      bool
}

func NewBraceScanner() *BraceScanner {
	return &BraceScanner{start: -1}
}

// Feed appends the next delta.
func (s *BraceScanner) Feed(delta string) {
	if s.done {
		return
	}
	offset := s.text.Len()
	s.text.WriteString(delta)

	if s.start == -1 {
		idx := strings.IndexByte(delta, '{')
		if idx == -1 {
			return
		}
		s.start = offset + idx
	}

	text := s.text.String()
	from := offset
	if from < s.start+1 {
		from = s.start + 1
	}
	if idx := strings.IndexByte(text[from:], '}'); idx != -1 {
		end := from + idx
		s.candidate = text[s.start : end+1]
		s.done = true
		s.text.Reset()
	}
}

// Candidate returns the detected span, or "" when no pair was seen.
func (s *BraceScanner) Candidate() string {
	return s.candidate
}

// Done reports whether a brace pair has been found.
func (s *BraceScanner) Done() bool {
	return s.done
}

// ExtractFilter derives a ModelFilter from the full model text. A JSON object after the
// last FilterSentinel wins; otherwise the scanner's brace span is used. Anything that
// fails to parse or validate yields an empty filter.
func ExtractFilter(fullText, scanned string) (types.ModelFilter, string) {
	raw, outcome := sentinelObject(fullText), FilterFromSentinel
	if raw == nil {
		if scanned == "" {
			return types.ModelFilter{}, FilterNone
		}
		raw, outcome = []byte(scanned), FilterFromScan
	}

	filter, err := ParseModelFilter(raw)
	if err != nil {
		return types.ModelFilter{}, FilterInvalid
	}
	return filter, outcome
}

// ParseModelFilter validates raw against the filter schema and decodes it.
func ParseModelFilter(raw []byte) (types.ModelFilter, error) {
	var filter types.ModelFilter
	if !json.Valid(raw) {
		return filter, fmt.Errorf("filter is not valid JSON")
	}
	if err := validateJSON(filterSchema, raw); err != nil {
		return filter, err
	}
	if err := json.Unmarshal(raw, &filter); err != nil {
		return types.ModelFilter{}, fmt.Errorf("failed to decode filter: %w", err)
	}
	return filter, nil
}

// sentinelObject decodes the first JSON value after the last sentinel. Nested braces are
// handled by the decoder.
func sentinelObject(text string) []byte {
	idx := strings.LastIndex(text, FilterSentinel)
	if idx == -1 {
		return nil
	}
	rest := text[idx+len(FilterSentinel):]
	brace := strings.IndexByte(rest, '{')
	if brace == -1 {
		return nil
	}

	dec := json.NewDecoder(strings.NewReader(rest[brace:]))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil
	}
	return bytes.TrimSpace(raw)
}
