package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/types"
)

const defaultRecipeMinutes = 30

var leadingNumber = regexp.MustCompile(`\d+`)

var difficultySynonyms = map[string]string{
	"beginner":     types.DifficultyBeginner,
	"easy":         types.DifficultyBeginner,
	"intermediate": types.DifficultyIntermediate,
	"medium":       types.DifficultyIntermediate,
	"advanced":     types.DifficultyAdvanced,
	"hard":         types.DifficultyAdvanced,
}

// ParseDifficulty maps a difficulty or one of its synonyms to the canonical level.
// The boolean reports whether the input was recognized.
func ParseDifficulty(s string) (string, bool) {
	d, ok := difficultySynonyms[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

// Difficulty maps s to a canonical level, defaulting to beginner
func Difficulty(s string) string {
	if d, ok := ParseDifficulty(s); ok {
		return d
	}
	return types.DifficultyBeginner
}

// stringify renders any decoded JSON value as a string without failing
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int, int64, int32:
		return fmt.Sprint(t)
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(math.Round(t)), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return int(math.Round(f)), true
	case string:
		m := leadingNumber.FindString(t)
		if m == "" {
			return 0, false
		}
		n, err := strconv.Atoi(m)
		return n, err == nil
	}
	return 0, false
}

func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	case float64:
		return t != 0
	}
	return false
}

// stringList coerces v into a non-nil slice of non-empty strings
func stringList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, e := range t {
			var s string
			if m, ok := e.(map[string]any); ok {
				s = firstString(m, "name", "text", "instruction", "description")
				if s == "" {
					s = stringify(m)
				}
			} else {
				s = stringify(e)
			}
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// firstString returns the first non-empty stringified value among keys
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringify(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// firstPresent returns the value of the first key that exists with a non-null value
func firstPresent(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// splitList splits free text on commas and newlines, dropping list bullets
func splitList(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(p), "-*•"))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func truncate(text string, limit int) string {
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit]) + "..."
}
