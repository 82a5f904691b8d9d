package manifest

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Canonicalize renders a value as canonical JSON: object keys sorted, no
// whitespace, and floats in shortest round-trip form. Two logically
// identical values always produce byte-identical output, which is what makes
// the manifest's hashes reproducible across platforms and key orderings.
//
// Supported value shapes: nil, bool, string, float64, int, int64,
// map[string]any, and []any. Anything else, and any non-finite float, fails
// with CanonicalizationError.
func Canonicalize(value any) ([]byte, error) {
	var sb strings.Builder
	if err := writeCanonical(&sb, value); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func writeCanonical(sb *strings.Builder, value any) error {
	switch v := value.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		if v {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case string:
		sb.WriteString(strconv.Quote(v))
	case int:
		sb.WriteString(strconv.Itoa(v))
	case int64:
		sb.WriteString(strconv.FormatInt(v, 10))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &CanonicalizationError{Reason: "non-finite float"}
		}
		if v == 0 {
			// Negative zero compares equal to zero and must encode the same.
			v = 0
		}
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			if err := writeCanonical(sb, v[k]); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	case []any:
		sb.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := writeCanonical(sb, item); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	default:
		return &CanonicalizationError{Reason: "unsupported value type"}
	}
	return nil
}
