package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// identifierRegex matches module and class identifiers as the catalog names them.
var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdentifier validates a native module or class identifier.
//
// Identifiers end up as directory names in the output tree, so the rules are
// conservative: a letter or underscore followed by letters, digits or
// underscores, at most 128 characters.
func ValidateIdentifier(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "%s name cannot be empty", kind)
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "%s name too long (max 128 characters)", kind)
	}
	if !identifierRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid %s name: %q", kind, name)
	}
	return nil
}

// ValidateTitle validates a documentation title.
// Titles are free text but must be non-empty and free of control characters.
// A title made only of dots and path separators is rejected since it would
// name the parent output directory.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return New(ErrCodeInvalidInput, "documentation title cannot be empty")
	}
	if strings.Trim(title, "./\\ \t") == "" {
		return New(ErrCodeInvalidInput, "documentation title %q does not name a directory", title)
	}
	if len(title) > 256 {
		return New(ErrCodeInvalidInput, "documentation title too long (max 256 characters)")
	}
	for _, r := range title {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "documentation title contains invalid control characters")
		}
	}
	return nil
}

// ValidateContentPath validates a content path such as "/Game/Characters".
//
// Validation rules:
//   - Path cannot be empty
//   - Must be rooted (start with /)
//   - No control characters, backslashes or traversal sequences (..)
//   - Maximum length of 500 characters
func ValidateContentPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "content path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "content path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "content path contains invalid characters")
		}
	}

	if !strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "content path must be rooted (start with /): %q", path)
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "content path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "content path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a backend connection URL for one of the allowed schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes %s", strings.Join(schemes, ", "))
}
