package utils

import "strings"

// TrimOrEmpty normalizes user input without turning nil into "nil".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// IsBlank reports whether the string is empty after trimming.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
