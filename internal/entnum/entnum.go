// Package entnum validates and formats Belgian enterprise numbers.
//
// An enterprise number is 10 digits, starts with 0 or 1, and carries a
// mod-97 check: 97 minus (first 8 digits mod 97) must equal the last 2
// digits. The canonical display form is "BE 0xxx.xxx.xxx".
package entnum

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrInvalidFormat indicates the input does not reduce to 10 digits
// starting with 0 or 1.
var ErrInvalidFormat = eris.New("entnum: invalid enterprise number format")

// ChecksumError reports a well-formed number whose check digits do not
// match the mod-97 checksum of the base.
type ChecksumError struct {
	Number   string
	Expected int
	Got      int
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("entnum: checksum mismatch for %s: expected %02d, got %02d", e.Number, e.Expected, e.Got)
}

// Normalize strips a leading country prefix, dots, and spaces, and returns
// the canonical 10-digit form. It validates shape only; use Validate to
// also verify the checksum.
func Normalize(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "BE")
	s = strings.NewReplacer(".", "", " ", "", "-", "").Replace(s)

	if len(s) != 10 {
		return "", eris.Wrapf(ErrInvalidFormat, "%q", raw)
	}
	if s[0] != '0' && s[0] != '1' {
		return "", eris.Wrapf(ErrInvalidFormat, "%q", raw)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return "", eris.Wrapf(ErrInvalidFormat, "%q", raw)
		}
	}
	return s, nil
}

// Validate normalizes raw and verifies the mod-97 check digits.
// Returns the canonical 10-digit form on success.
func Validate(raw string) (string, error) {
	n, err := Normalize(raw)
	if err != nil {
		return "", err
	}

	base, err := strconv.Atoi(n[:8])
	if err != nil {
		return "", eris.Wrapf(ErrInvalidFormat, "%q", raw)
	}
	check, err := strconv.Atoi(n[8:])
	if err != nil {
		return "", eris.Wrapf(ErrInvalidFormat, "%q", raw)
	}

	expected := 97 - base%97
	if expected != check {
		return "", &ChecksumError{Number: n, Expected: expected, Got: check}
	}
	return n, nil
}

// Format renders a canonical 10-digit number as "BE 0xxx.xxx.xxx".
// The input must already be normalized; Format does not re-validate.
func Format(n string) string {
	if len(n) != 10 {
		return n
	}
	return fmt.Sprintf("BE %s.%s.%s", n[:4], n[4:7], n[7:])
}

// FormatDigitsGrouped renders "0xxx.xxx.xxx" without the country prefix,
// the shape the registry-detail portal expects in its URLs.
func FormatDigitsGrouped(n string) string {
	if len(n) != 10 {
		return n
	}
	return fmt.Sprintf("%s.%s.%s", n[:4], n[4:7], n[7:])
}
