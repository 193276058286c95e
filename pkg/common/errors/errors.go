// Package errors defines the error kinds shared by the seed, share and key
// packages. Package level errors wrap one of these so callers can test the
// kind with errors.Is regardless of which package raised it.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrShareSet         = errors.New("inconsistent share set")
	ErrChecksum         = errors.New("checksum mismatch")
	ErrDigestMismatch   = errors.New("shared secret digest mismatch")
	ErrIncompleteScheme = errors.New("incomplete scheme")
	ErrInvalidMnemonic  = errors.New("invalid mnemonic")
	ErrInvalidSeed      = errors.New("invalid seed")
)

// Newf returns an error of the given kind carrying a formatted detail message.
func Newf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Wrap attaches kind to err. The result matches both kind and err with errors.Is.
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}
