package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseWindowJSON parses a generative model's reply into a WindowSummary.
// The model is instructed to answer with a JSON object, but replies routinely
// arrive wrapped in markdown code fences or surrounded by prose, so the
// outermost JSON object is extracted before unmarshalling. Returns
// ErrMalformed when no usable object can be recovered.
func ParseWindowJSON(raw string) (WindowSummary, error) {
	var out WindowSummary
	if err := unmarshalObject(raw, &out); err != nil {
		return WindowSummary{}, err
	}
	return out, nil
}

// ParseMeetingJSON parses a generative model's reply into a MeetingSummary.
func ParseMeetingJSON(raw string) (MeetingSummary, error) {
	var out MeetingSummary
	if err := unmarshalObject(raw, &out); err != nil {
		return MeetingSummary{}, err
	}
	return out, nil
}

func unmarshalObject(raw string, v any) error {
	obj, err := extractObject(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// extractObject returns the first balanced top-level JSON object in raw,
// ignoring braces inside string literals.
func extractObject(raw string) (string, error) {
	s := stripFences(raw)

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("%w: no JSON object found", ErrMalformed)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("%w: unbalanced JSON object", ErrMalformed)
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
