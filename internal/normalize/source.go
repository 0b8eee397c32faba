package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// sourceKind tags which variant a payload was decoded into
type sourceKind int

const (
	sourceEmpty sourceKind = iota
	sourceObject
	sourceArray
	sourceText
)

// source is the decoded form of an upstream payload. Exactly one of
// object, array or text is set, according to kind.
type source struct {
	kind   sourceKind
	object map[string]any
	array  []any
	text   string
}

// textDecoder tries to recover a JSON value from a piece of agent text
type textDecoder func(text string) (any, bool)

const maxDecodeDepth = 4

var (
	fencePattern         = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

	planPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\{[\s\S]*"inventorySummary"[\s\S]*"recipes"[\s\S]*\}`),
		regexp.MustCompile(`\{[\s\S]*"recipes"[\s\S]*"inventorySummary"[\s\S]*\}`),
	}
	// a wrapped list is tried before a bare array so the wrapper key survives
	listPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\{[\s\S]*"(shoppingList|shopping_list|items|inventory)"[\s\S]*\}`),
		regexp.MustCompile(`\[[\s\S]*"name"[\s\S]*\]`),
	}
)

// classify decodes a raw payload into a source without parsing text
func classify(raw any) source {
	switch v := raw.(type) {
	case nil:
		return source{kind: sourceEmpty}
	case source:
		return v
	case map[string]any:
		return source{kind: sourceObject, object: v}
	case []any:
		return source{kind: sourceArray, array: v}
	case string:
		return textSource(v)
	case []byte:
		return textSource(string(v))
	case json.RawMessage:
		return textSource(string(v))
	case float64, bool, json.Number:
		return textSource(stringify(v))
	default:
		// Typed records go through JSON so they are coerced like any other payload.
		b, err := json.Marshal(v)
		if err != nil {
			return source{kind: sourceEmpty}
		}
		var decoded any
		if err := json.Unmarshal(b, &decoded); err != nil {
			return source{kind: sourceEmpty}
		}
		return classify(decoded)
	}
}

func textSource(s string) source {
	s = strings.TrimSpace(s)
	if s == "" {
		return source{kind: sourceEmpty}
	}
	return source{kind: sourceText, text: s}
}

// resolve classifies raw and, for text, runs the decoders in order until one
// yields an object or array. A JSON string is unquoted. Text no decoder
// understands is returned as is.
func resolve(raw any, decoders []textDecoder) source {
	return resolveDepth(classify(raw), decoders, 0)
}

func resolveDepth(src source, decoders []textDecoder, depth int) source {
	if src.kind != sourceText || depth >= maxDecodeDepth {
		return src
	}
	fallback := src
	unquoted := false
	for _, decode := range decoders {
		v, ok := decode(src.text)
		if !ok {
			continue
		}
		next := resolveDepth(classify(v), decoders, depth+1)
		if next.kind == sourceObject || next.kind == sourceArray {
			return next
		}
		if _, isString := v.(string); isString && !unquoted {
			fallback, unquoted = next, true
		}
	}
	return fallback
}

// decodeJSON parses the whole text as JSON
func decodeJSON(text string) (any, bool) {
	return parseLoose(text)
}

// decodeFenced parses the body of the first markdown code fence
func decodeFenced(text string) (any, bool) {
	m := fencePattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil, false
	}
	return parseLoose(m[1])
}

// embeddedDecoder locates a JSON object inside prose by pattern
func embeddedDecoder(patterns ...*regexp.Regexp) textDecoder {
	return func(text string) (any, bool) {
		for _, p := range patterns {
			if m := p.FindString(text); m != "" {
				if v, ok := parseLoose(m); ok {
					return v, true
				}
			}
		}
		return nil, false
	}
}

func parseLoose(text string) (any, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	var v any
	if err := decodeInto([]byte(text), &v); err == nil {
		return v, true
	}
	cleaned := trailingCommaPattern.ReplaceAllString(text, "$1")
	if err := decodeInto([]byte(cleaned), &v); err == nil {
		return v, true
	}
	return nil, false
}

func decodeInto(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(v); err != nil {
		return err
	}
	// Trailing prose after a valid value means this was not a JSON document.
	if dec.More() {
		return errTrailingData
	}
	return nil
}

var errTrailingData = errors.New("trailing data after JSON value")
