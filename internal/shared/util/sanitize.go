package util

import (
	"errors"
	"strings"
)

var errBadFileName = errors.New("invalid file name")

// SanitizeFileName flattens path separators and rejects traversal
// patterns so uploaded names cannot escape the store prefix.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errBadFileName
	}
	s := strings.TrimSpace(name)
	replacer := strings.NewReplacer("/", "_", "\\", "_", "\x00", "")
	s = replacer.Replace(s)
	if s == "" || s == "." {
		return "", errBadFileName
	}
	return s, nil
}
