package data

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xirelogy/magpie-s3-filesystem/data/errors"
)

// Delimiter separates the segments of an object key.
const Delimiter = "/"

// NormalizePath checks whether path is acceptable and returns its canonical form.
// Repeated slashes are collapsed and "." segments dropped, while a single leading
// and trailing slash are preserved. Empty paths, invalid UTF-8, NUL bytes,
// control characters, backslashes and ".." segments are rejected.
func NormalizePath(path string) (string, error) {
	if len(path) == 0 {
		return "", errors.InvalidPath(fmt.Errorf("empty path"), path)
	}

	if !utf8.ValidString(path) {
		return "", errors.InvalidPath(fmt.Errorf("invalid utf-8"), path)
	}

	for _, r := range path {
		switch {
		case r == 0:
			return "", errors.InvalidPath(fmt.Errorf("null byte"), path)
		case r < 0x20 || r == 0x7f:
			return "", errors.InvalidPath(fmt.Errorf("control character %q", r), path)
		case r == '\\':
			return "", errors.InvalidPath(fmt.Errorf("backslash"), path)
		}
	}

	segments := make([]string, 0, strings.Count(path, Delimiter)+1)
	for _, segment := range strings.Split(path, Delimiter) {
		switch segment {
		case "", ".":
			continue
		case "..":
			return "", errors.InvalidPath(fmt.Errorf("directory traversal"), path)
		}
		segments = append(segments, segment)
	}

	canonical := strings.Join(segments, Delimiter)
	if strings.HasPrefix(path, Delimiter) {
		canonical = Delimiter + canonical
	}
	if len(segments) > 0 && strings.HasSuffix(path, Delimiter) {
		canonical += Delimiter
	}

	return canonical, nil
}

// ToObjectKey converts a caller path into a flat object key.
// Exactly one leading slash is stripped after validation.
func ToObjectKey(path string) (string, error) {
	canonical, err := NormalizePath(path)
	if err != nil {
		return "", err
	}

	return strings.TrimPrefix(canonical, Delimiter), nil
}

// WithTrailingDelimiter forces exactly one trailing slash onto key.
// The root key stays empty so that it addresses the whole bucket.
func WithTrailingDelimiter(key string) string {
	key = strings.TrimRight(key, Delimiter)
	if key == "" {
		return ""
	}

	return key + Delimiter
}

// IsDirectoryPath reports whether the caller path names a directory.
func IsDirectoryPath(path string) bool {
	return strings.HasSuffix(path, Delimiter)
}
