package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"ccf-policy/core/refs"
	"golang.org/x/text/unicode/norm"
)

var smartQuotes = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
)

// CleanText normalizes a free-text cell: NFC, ASCII quotes and a single space
// between words. Null spellings become the empty string.
func CleanText(raw any) string {
	s := asString(raw)
	if refs.IsNull(s) {
		return ""
	}
	s = norm.NFC.String(s)
	s = smartQuotes.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// CleanArtifacts splits an audit artifact cell on newlines into distinct ids.
func CleanArtifacts(raw any) []string {
	switch v := raw.(type) {
	case []any, []string:
		return refs.Unique(refs.Normalize(v))
	}
	s := asString(raw)
	if refs.IsNull(s) {
		return []string{}
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return refs.Unique(strings.Split(s, "\n"))
}

// CleanValue trims a generic cell; null spellings become nil.
func CleanValue(raw any) any {
	if raw == nil {
		return nil
	}
	s := asString(raw)
	if refs.IsNull(s) {
		return nil
	}
	return strings.TrimSpace(s)
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
