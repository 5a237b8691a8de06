package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const maxNodeNameLength = 255

// ValidateNodeName validates a munin node host name received from a request.
// An empty name is valid: it selects the node listing dashboard.
//
// The rules are conservative:
//   - Maximum length of 255 characters (DNS limit)
//   - No control characters or null bytes
//   - No whitespace or path separators
func ValidateNodeName(name string) error {
	if name == "" {
		return nil
	}

	if len(name) > maxNodeNameLength {
		return New(ErrCodeInvalidNode, "node name too long (max %d characters)", maxNodeNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNode, "node name contains invalid control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidNode, "node name cannot contain whitespace")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidNode, "node name cannot contain path separators")
	}

	return nil
}

// timespanRegex matches Grafana relative time spans such as 6h, 30m or 7d.
var timespanRegex = regexp.MustCompile(`^[1-9][0-9]{0,5}[smhdwMy]$`)

// ValidateTimespan validates a relative time span used for "now-<span>".
func ValidateTimespan(span string) error {
	if span == "" {
		return New(ErrCodeInvalidTimespan, "timespan cannot be empty")
	}
	if !timespanRegex.MatchString(span) {
		return New(ErrCodeInvalidTimespan, "invalid timespan %q (want <number><s|m|h|d|w|M|y>)", span)
	}
	return nil
}

// ValidatePattern validates a node listing glob pattern.
// Only letters, digits, '.', '-', '_', '*' and '?' are accepted.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return New(ErrCodeInvalidPattern, "pattern cannot be empty")
	}
	if len(pattern) > maxNodeNameLength {
		return New(ErrCodeInvalidPattern, "pattern too long (max %d characters)", maxNodeNameLength)
	}
	for _, r := range pattern {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		case strings.ContainsRune(".-_*?", r):
		default:
			return New(ErrCodeInvalidPattern, "pattern contains invalid character %q", r)
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
