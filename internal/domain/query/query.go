package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"unicode"
)

// Kind distinguishes a parsed query from raw model output.
type Kind string

// Query kinds.
const (
	KindStructured Kind = "structured"
	KindText       Kind = "text"
)

// Object is the result of translation: either structured data or the raw text
// the model produced when it could not be parsed.
type Object struct {
	kind  Kind
	value any
	text  string
	raw   []byte // literal model output for parsed objects
}

// Structured wraps a decoded mapping or list.
func Structured(v any) Object {
	return Object{kind: KindStructured, value: v}
}

// Text wraps unparsed model output.
func Text(s string) Object {
	return Object{kind: KindText, text: s}
}

// Kind returns the variant.
func (o Object) Kind() Kind { return o.kind }

// IsText reports whether parsing fell back to the raw text.
func (o Object) IsText() bool { return o.kind == KindText }

// Value returns the decoded value for structured objects, the text otherwise.
func (o Object) Value() any {
	if o.kind == KindText {
		return o.text
	}
	return o.value
}

// Text returns the raw text of a text object.
func (o Object) Text() string { return o.text }

// JSON returns the bytes a store adapter should decode as a filter.
// Text objects return their text unchanged; parsed objects return the
// literal text they were decoded from, so numbers keep their precision.
func (o Object) JSON() ([]byte, error) {
	if o.kind == KindText {
		return []byte(o.text), nil
	}
	if o.raw != nil {
		return o.raw, nil
	}
	return json.Marshal(o.value)
}

// MarshalJSON renders structured objects as themselves and text objects as a JSON string.
func (o Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value())
}

// Clean strips surrounding whitespace and markdown code fences, including
// a leading language tag such as "json".
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	fenced := strings.HasPrefix(s, "```")
	s = strings.TrimSpace(strings.Trim(s, "`"))
	if !fenced {
		return s
	}
	if tag, rest, ok := strings.Cut(s, "\n"); ok && isFenceTag(strings.TrimSpace(tag)) {
		s = rest
	} else if tag, rest, ok := strings.Cut(s, " "); ok && isFenceTag(tag) && opensJSON(rest) {
		s = rest
	}
	return strings.TrimSpace(s)
}

// Parse cleans raw model output and decodes it when it is a JSON mapping or list.
// Anything else is returned as text.
func Parse(raw string) Object {
	cleaned := Clean(raw)

	v, err := decode([]byte(cleaned))
	if err != nil {
		return Text(cleaned)
	}
	switch v.(type) {
	case map[string]any, []any:
		return Object{kind: KindStructured, value: v, raw: []byte(cleaned)}
	default:
		return Text(cleaned)
	}
}

// decode reads exactly one JSON value, keeping numbers as json.Number.
func decode(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

func opensJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

func isFenceTag(s string) bool {
	if s == "" || len(s) > 16 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
