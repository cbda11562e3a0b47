// Package refs turns the human-maintained reference cells of the control
// spreadsheets into clean token lists. Nothing here returns an error: dirty
// input degrades to fewer (or zero) tokens.
package refs

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// placeholderChars are mojibake leftovers found in exported spreadsheets.
var placeholderChars = strings.NewReplacer("¿½", "", "�", "")

var nullTokens = map[string]struct{}{
	"nan": {},
	"na":  {},
	"n/a": {},
}

// Normalize parses a raw reference value into an ordered token list.
// Strings are split on newlines, then on commas. Lists are taken element by
// element. First-occurrence order is kept and duplicates are not removed.
func Normalize(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return []string{}
	case string:
		return splitText(v)
	case []string:
		return cleanList(v)
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			items = append(items, stringify(item))
		}
		return cleanList(items)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return []string{}
		}
		return splitText(stringify(v))
	case float32:
		return Normalize(float64(v))
	default:
		return splitText(stringify(v))
	}
}

// Unique drops empty tokens and repeats, keeping the first occurrence.
func Unique(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Display returns the deduplicated, lexicographically sorted form used in
// rendered tables.
func Display(raw any) []string {
	return SortedUnique(Normalize(raw))
}

// SortedUnique is Unique followed by a lexicographic sort.
func SortedUnique(tokens []string) []string {
	out := Unique(tokens)
	sort.Strings(out)
	return out
}

// IsNull reports whether a cell carries one of the spreadsheet null spellings.
func IsNull(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return true
	}
	_, ok := nullTokens[strings.ToLower(trimmed)]
	return ok
}

func splitText(s string) []string {
	if IsNull(s) {
		return []string{}
	}
	s = placeholderChars.Replace(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		for _, tok := range strings.Split(line, ",") {
			tok = strings.TrimSpace(tok)
			if tok != "" {
				out = append(out, tok)
			}
		}
	}
	return out
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(placeholderChars.Replace(item))
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
