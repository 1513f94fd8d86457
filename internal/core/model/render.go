package model

import (
	"fmt"
	"sort"
	"strings"
)

// HasValue reports whether an attribute value counts as present. Nil values,
// empty strings, empty lists and empty maps do not.
func HasValue(v interface{}) bool {
	switch tv := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(tv) != ""
	case []interface{}:
		return len(tv) > 0
	case map[string]interface{}:
		return len(tv) > 0
	default:
		return true
	}
}

// CanonicalValue renders an attribute value deterministically so equal values
// compare equal as strings: lists keep their order and join with ", ", nested
// maps render as sorted "key=value" pairs.
func CanonicalValue(v interface{}) string {
	switch tv := v.(type) {
	case []interface{}:
		parts := make([]string, len(tv))
		for i, e := range tv {
			parts[i] = CanonicalValue(e)
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		keys := make([]string, 0, len(tv))
		for k := range tv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + CanonicalValue(tv[k])
		}
		return strings.Join(parts, ", ")
	case float64:
		// JSON numbers decode as float64; render integral values without
		// the trailing ".0" so 34 and 34.0 compare equal.
		if tv == float64(int64(tv)) {
			return fmt.Sprintf("%d", int64(tv))
		}
		return fmt.Sprintf("%v", tv)
	default:
		return fmt.Sprintf("%v", tv)
	}
}
