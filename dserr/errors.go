// This file is part of dsdecomp.
//
// dsdecomp is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// dsdecomp is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with dsdecomp.  If not, see <https://www.gnu.org/licenses/>.

// Package dserr provides curated errors: every terminal error raised by the
// core carries a stable head message (one of the Errno constants in
// categories.go) so callers can match on it with Is/Has rather than on the
// fully rendered, argument-interpolated string.
package dserr

import (
	"fmt"
	"strings"
)

// Values is the argument list passed to a curated error's format string.
type Values []any

// curated is an error that remembers the format string it was built from
// separately from its rendered arguments, so Head/Is can recover it.
type curated struct {
	message string
	values  Values
}

// Errorf creates a new curated error. message is a fmt-style format string;
// it is also the error's "head" as reported by Head/Is.
func Errorf(message string, values ...any) error {
	return curated{message: message, values: values}
}

// Error implements the error interface. Adjacent duplicate ": "-separated
// parts are collapsed, which happens often when a curated error wraps
// another curated error built from the same message.
func (e curated) Error() string {
	s := fmt.Errorf(e.message, e.values...).Error()

	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}
	return strings.Join(p, ": ")
}

// Unwrap exposes any wrapped curated errors found among the format values,
// so errors.Is/errors.As still traverse into them.
func (e curated) Unwrap() error {
	for _, v := range e.values {
		if err, ok := v.(error); ok {
			return err
		}
	}
	return nil
}

// Head returns the leading format-string part of err, or err.Error() if err
// is not a curated error.
func Head(err error) string {
	if e, ok := err.(curated); ok {
		return e.message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsAny reports whether err was built by this package.
func IsAny(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(curated)
	return ok
}

// Is reports whether err is a curated error with the given head.
func Is(err error, head string) bool {
	if err == nil {
		return false
	}
	e, ok := err.(curated)
	return ok && e.message == head
}

// Has reports whether head appears anywhere in err's chain of curated
// causes, not just at the head.
func Has(err error, head string) bool {
	if err == nil || !IsAny(err) {
		return false
	}
	if Is(err, head) {
		return true
	}
	for _, v := range err.(curated).values {
		if e, ok := v.(error); ok && Has(e, head) {
			return true
		}
	}
	return false
}
