package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// normalizeAnswer maps an answer value to a canonical string so that grading
// and review apply the same equality everywhere. Strings compare
// case-insensitively with surrounding whitespace ignored; sets of strings
// compare order-independently.
func normalizeAnswer(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case bool:
		if v {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			if s, ok := item.(string); ok {
				parts[i] = strings.ToLower(strings.TrimSpace(s))
			} else {
				parts[i] = fmt.Sprintf("%v", item)
			}
		}
		sort.Strings(parts)
		return strings.Join(parts, "|")
	case []string:
		parts := make([]string, len(v))
		for i, s := range v {
			parts[i] = strings.ToLower(strings.TrimSpace(s))
		}
		sort.Strings(parts)
		return strings.Join(parts, "|")
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

// answersEqual reports whether a submitted answer matches the correct one
// under the normalization policy.
func answersEqual(submitted, correct any) bool {
	return normalizeAnswer(submitted) == normalizeAnswer(correct)
}
