// Package monthkey derives the "MONTHNAME_YYYY" keys that bucket
// events and points by calendar month.
package monthkey

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownMonth = errors.New("unknown month name")

// Months is the fixed ordered table of month names, indexed by
// time.Month - 1. Keys always use the uppercase form.
var Months = [12]string{
	"JANEIRO",
	"FEVEREIRO",
	"MARÇO",
	"ABRIL",
	"MAIO",
	"JUNHO",
	"JULHO",
	"AGOSTO",
	"SETEMBRO",
	"OUTUBRO",
	"NOVEMBRO",
	"DEZEMBRO",
}

// FromDate derives the key from the calendar month and year of t.
func FromDate(t time.Time) string {
	return fmt.Sprintf("%s_%d", Months[t.Month()-1], t.Year())
}

// FromMonthName builds the key for a month name (any casing) and a year.
func FromMonthName(name string, year int) (string, error) {
	normalized, err := Normalize(name)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s_%d", normalized, year), nil
}

// Normalize uppercases and validates a month name against the table.
func Normalize(name string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for _, m := range Months {
		if m == upper {
			return upper, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownMonth, name)
}
