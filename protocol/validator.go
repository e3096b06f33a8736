// Package protocol defines validation primitives shared by rackplan inputs:
// rack topologies, placement configurations, and written plans.
package protocol

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidationError is an error implementation which captures its validation context.
type ValidationError struct {
	Context []string
	Err     error
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	if len(ve.Context) != 0 {
		return strings.Join(ve.Context, ".") + ": " + ve.Err.Error()
	} else {
		return ve.Err.Error()
	}
}

// Unwrap returns the underlying error of the ValidationError.
func (ve *ValidationError) Unwrap() error { return ve.Err }

// ExtendContext type-checks |err| to a *ValidationError, and if matched extends
// it with |context|. In all cases the value of |err| is returned.
func ExtendContext(err error, format string, args ...interface{}) error {
	if ve, ok := err.(*ValidationError); ok {
		ve.Context = append([]string{fmt.Sprintf(format, args...)}, ve.Context...)
	}
	return err
}

// NewValidationError parallels fmt.Errorf to returns a new ValidationError instance.
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Err: fmt.Errorf(format, args...)}
}

// ValidateToken ensures the string is of length [min, max] and consists
// only of runes drawn from a restricted set: unicode.Letter and unicode.Digit
// character classes, and the symbols -_+/.
// Tokens are simple strings which represent things like rack and host names.
func ValidateToken(n string, min, max int) error {
	if l := len(n); l < min || l > max {
		return NewValidationError("invalid length (%d; expected %d <= length <= %d)", l, min, max)
	}
	for _, r := range n {
		// Note that '#' is the separator of keys written by the etcd sink,
		// and cannot be included in this alphabet.
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			continue
		} else if !strings.ContainsRune(TokenSymbols, r) {
			return NewValidationError("not a valid token (%s)", n)
		}
	}
	return nil
}

// ValidateNonNegative ensures |n| is zero or greater.
func ValidateNonNegative(n int, name string) error {
	if n < 0 {
		return NewValidationError("invalid %s (%d; expected %s >= 0)", name, n, name)
	}
	return nil
}

// ValidatePositive ensures |n| is one or greater.
func ValidatePositive(n int, name string) error {
	if n < 1 {
		return NewValidationError("invalid %s (%d; expected %s >= 1)", name, n, name)
	}
	return nil
}

// TokenSymbols is allowed runes of tokens, in addition to letters and digits.
// The alphabet leads with '-' to facilitate escaping in regular expressions.
const TokenSymbols = "-_+/."
