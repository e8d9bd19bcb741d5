package utils

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String length limits
const (
	MaxUsernameLength = 64
	MinUsernameLength = 3
	MaxPasswordLength = 128
	MinPasswordLength = 8
	MaxURLLength      = 2048
	MaxPackageName    = 128
)

// Regular expressions for validation
var (
	// UsernamePattern allows alphanumeric and underscores
	UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	// PackageNamePattern allows alphanumeric, dots, hyphens, underscores and @ (scoped npm names)
	PackageNamePattern = regexp.MustCompile(`^[a-zA-Z0-9@][a-zA-Z0-9._@-]*$`)
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateUsername validates a username
func ValidateUsername(username string) error {
	if err := ValidateString(username, "username", MinUsernameLength, MaxUsernameLength, true); err != nil {
		return err
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username contains invalid characters (only alphanumeric and underscores allowed)")
	}

	return nil
}

// ValidatePassword validates a password
func ValidatePassword(password string) error {
	return ValidateString(password, "password", MinPasswordLength, MaxPasswordLength, true)
}

// ValidateDownloadURL checks that raw is an absolute http(s) URL.
func ValidateDownloadURL(raw string) (*url.URL, error) {
	if err := ValidateString(raw, "url", 1, MaxURLLength, true); err != nil {
		return nil, err
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("url is malformed: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("url scheme %q is not supported (http or https required)", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url has no host")
	}

	return u, nil
}

// PackageNameFromURL derives an install directory name from the last path
// segment of u with every extension removed ("foo.tar.gz" -> "foo").
func PackageNameFromURL(u *url.URL) (string, error) {
	name := path.Base(u.Path)
	if i := strings.Index(name, "."); i > 0 {
		name = name[:i]
	}

	if err := ValidateString(name, "package name", 1, MaxPackageName, true); err != nil {
		return "", err
	}
	if !PackageNamePattern.MatchString(name) {
		return "", fmt.Errorf("package name %q contains invalid characters", name)
	}

	return name, nil
}
