package application

import (
	"fmt"
	"strings"

	"tagit/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		// Format field name with spaces for error message (e.g., "oldID" -> "old identity")
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"id":    "file identity",
		"oldID": "old identity",
		"newID": "new identity",
		"tag":   "tag",
		"tags":  "tags",
		"query": "query",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}

// ValidateTags checks that every element is a legal tag name.
// All offending values are reported at once.
func ValidateTags(tags []string) error {
	invalid := domain.InvalidTagNames(tags)
	if len(invalid) == 0 {
		return nil
	}
	return &ValidationError{
		Field:   "tags",
		Message: fmt.Sprintf("tag names must be non-empty and contain no whitespace or any of %q", domain.ReservedTagChars),
		Values:  invalid,
	}
}

// ValidateTag checks a single tag name
func ValidateTag(tag string) error {
	if err := ValidateTags([]string{tag}); err != nil {
		valErr := err.(*ValidationError)
		valErr.Field = "tag"
		return valErr
	}
	return nil
}
