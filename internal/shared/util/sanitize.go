package util

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxFileNameRunes caps sanitized upload names.
const MaxFileNameRunes = 128

// ErrInvalidFileName is returned when nothing usable is left of a name.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName reduces a client-supplied upload name to a printable base
// name: directories and control characters are dropped and the result is
// capped at MaxFileNameRunes.
func SanitizeFileName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Map(func(r rune) rune {
		if r == utf8.RuneError || unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "", ErrInvalidFileName
	}
	if utf8.RuneCountInString(name) > MaxFileNameRunes {
		name = string([]rune(name)[:MaxFileNameRunes])
	}
	return name, nil
}
