// Package sanitize repairs near-valid JSON emitted by text generation models
// before it is decoded. Each step is exposed separately so callers and tests
// can tell a repair failure apart from a decode failure.
package sanitize

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoObject is returned when the text contains no {...} span.
var ErrNoObject = errors.New("no JSON object found")

var fenceMarker = regexp.MustCompile("```(?:json|JSON)?[ \t]*")

// StripFences removes Markdown code fence markers, keeping the fenced content.
func StripFences(s string) string {
	return fenceMarker.ReplaceAllString(s, "")
}

// ExtractObject returns the span from the first '{' to the last '}'.
func ExtractObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", ErrNoObject
	}
	return s[start : end+1], nil
}

// validEscape lists the characters that may follow a backslash in JSON.
const validEscape = "\"\\/bfnrtu"

// RepairEscapes doubles every backslash that does not begin a valid JSON
// escape, so LaTeX such as \alpha or \frac survives decoding as a literal
// backslash. Valid escape pairs are copied through untouched.
func RepairEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			b.WriteString(`\\`)
			continue
		}
		next := s[i+1]
		if strings.IndexByte(validEscape, next) >= 0 {
			b.WriteByte(c)
		} else {
			b.WriteString(`\\`)
		}
		b.WriteByte(next)
		i++
	}
	return b.String()
}

// Clean runs StripFences, ExtractObject and RepairEscapes in order and
// returns a payload ready for json.Unmarshal.
func Clean(raw string) (string, error) {
	obj, err := ExtractObject(StripFences(raw))
	if err != nil {
		return "", err
	}
	return RepairEscapes(obj), nil
}
