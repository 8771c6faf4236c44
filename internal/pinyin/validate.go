package pinyin

import (
	"errors"
	"regexp"
)

var (
	ErrEmptyInput       = errors.New("pinyin input is empty")
	ErrInvalidCharacter = errors.New("pinyin input contains characters outside A-Z and a-z")
)

var lettersOnly = regexp.MustCompile(`^[A-Za-z]+$`)

// Validate reports whether raw is acceptable as a conversion input.
// The whole string must consist of ASCII letters; a single other byte rejects it.
func Validate(raw string) error {
	if raw == "" {
		return ErrEmptyInput
	}
	if !lettersOnly.MatchString(raw) {
		return ErrInvalidCharacter
	}
	return nil
}
