// Package isbn converts 10-digit ISBNs to their ISBN-13 form.
package isbn

import (
	"errors"
	"strconv"
)

// ErrInvalid reports an ISBN whose leading characters are not numeric.
// Callers holding an ASIN-only record treat this as "no ISBN-13".
var ErrInvalid = errors.New("not a valid ISBN")

// To13 converts a 10-digit ISBN to ISBN-13. Values already carrying the
// "978" prefix are returned verbatim. The check digit follows the standard
// alternating 1/3 weighted sum modulo 10.
func To13(value string) (string, error) {
	if len(value) < 8 {
		return "", ErrInvalid
	}
	if _, err := strconv.Atoi(value[:8]); err != nil {
		return "", ErrInvalid
	}

	if len(value) >= 3 && value[:3] == "978" {
		return value, nil
	}
	if len(value) < 9 {
		return "", ErrInvalid
	}

	core := "978" + value[:9]

	sumOdd := 0
	sumEven := 0
	for i := 0; i < 12; i++ {
		digit := int(core[i] - '0')
		if i%2 == 0 {
			sumOdd += digit
		} else {
			sumEven += digit
		}
	}
	remainder := (sumOdd + 3*sumEven) % 10
	check := 0
	if remainder != 0 {
		check = 10 - remainder
	}

	return core + strconv.Itoa(check), nil
}
