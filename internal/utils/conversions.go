package utils

import (
	"strconv"
)

func ToStringSlice(slice []any) []string {
	stringSlice := make([]string, 0)
	for _, v := range slice {
		if s, ok := v.(string); ok {
			stringSlice = append(stringSlice, s)
		}
	}
	return stringSlice
}

// ClaimString renders a JSON-decoded claim value as a string. Numeric ids
// arrive as float64 and are rendered without a fractional part.
func ClaimString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	}
	return ""
}

// NonNil returns s, or an empty slice when s is nil, so JSON encodes it as [].
func NonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
