// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	MaxDisplayNameLen = 256
)

var (
	ErrDisplayNameTooLong = errors.New("display name too long")
	ErrDisplayNameEmpty   = errors.New("display name empty")
)

// NormalizeDisplayName trims the name and enforces the length bound.
func NormalizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrDisplayNameEmpty
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return "", ErrDisplayNameTooLong
	}
	return name, nil
}
