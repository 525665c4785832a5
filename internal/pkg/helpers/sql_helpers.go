package helpers

import "strings"

// NullIfBlank trims s and returns nil when nothing is left.
// Optional text columns are stored as NULL rather than empty strings.
func NullIfBlank(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// StringValue dereferences s, returning "" for nil
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
