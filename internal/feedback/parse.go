package feedback

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrEmptyResponse is returned by Parse when the model reply has no text.
var ErrEmptyResponse = errors.New("feedback: empty response from model")

// shapeSchema is the minimum a reply must satisfy before it is normalized.
// Everything else about the reply is tolerated and cleaned up afterwards.
var shapeSchema = map[string]any{
	"type":     "object",
	"required": []any{"overallEncouragement", "criteria"},
	"properties": map[string]any{
		"overallEncouragement": map[string]any{"type": "string", "minLength": 1},
		"criteria":             map[string]any{"type": "array"},
	},
}

var compileShape = sync.OnceValues(func() (*jsonschema.Schema, error) {
	const url = "schema://feedback-shape.json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, shapeSchema); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(url)
})

// Parse converts a raw model reply into Feedback. Replies that are not JSON,
// or JSON missing the required fields, produce a fallback Feedback that
// carries the raw text. The only error is ErrEmptyResponse.
func Parse(raw string) (*Feedback, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyResponse
	}

	var doc any
	dec := json.NewDecoder(strings.NewReader(unwrapFence(raw)))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fallback(raw), nil
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fallback(raw), nil
	}
	if err := checkShape(doc); err != nil {
		return fallback(raw), nil
	}

	obj := doc.(map[string]any)
	fb := &Feedback{
		OverallEncouragement: obj["overallEncouragement"].(string),
		OverallStars:         ClampStars(obj["overallStars"]),
		Criteria:             []CriterionFeedback{},
		FunFact:              stringField(obj, "funFact"),
		NextChallenge:        stringField(obj, "nextChallenge"),
	}
	for _, item := range obj["criteria"].([]any) {
		// Entries that are not objects still count, at default values.
		c, _ := item.(map[string]any)
		fb.Criteria = append(fb.Criteria, CriterionFeedback{
			ID:       stringField(c, "id"),
			Name:     stringField(c, "name"),
			Stars:    ClampStars(c["stars"]),
			Feedback: stringField(c, "feedback"),
			Tip:      stringField(c, "tip"),
		})
	}
	return fb, nil
}

// ClampStars converts a loosely typed rating into the 1-5 scale. Numbers and
// numeric strings are rounded; anything else rates DefaultStars.
func ClampStars(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, ok := parseRating(string(n))
		if !ok {
			return DefaultStars
		}
		f = parsed
	case string:
		parsed, ok := parseRating(strings.TrimSpace(n))
		if !ok {
			return DefaultStars
		}
		f = parsed
	default:
		return DefaultStars
	}
	if math.IsNaN(f) {
		return DefaultStars
	}
	f = math.Round(f)
	switch {
	case f < MinStars:
		return MinStars
	case f > MaxStars:
		return MaxStars
	}
	return int(f)
}

// parseRating parses a decimal rating. Out of range values come back as
// +/-Inf or 0 so they still clamp.
func parseRating(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

func checkShape(doc any) error {
	schema, err := compileShape()
	if err != nil {
		return err
	}
	return schema.Validate(doc)
}

// unwrapFence strips a surrounding markdown code fence, tagged or not.
func unwrapFence(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimPrefix(s, "```json")
	case strings.HasPrefix(s, "```"):
		s = strings.TrimPrefix(s, "```")
	default:
		return s
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func fallback(raw string) *Feedback {
	preview := raw
	if r := []rune(raw); len(r) > fallbackPreviewRunes {
		preview = string(r[:fallbackPreviewRunes])
	}
	return &Feedback{
		OverallEncouragement: preview,
		OverallStars:         DefaultStars,
		Criteria:             []CriterionFeedback{},
		RawText:              raw,
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
