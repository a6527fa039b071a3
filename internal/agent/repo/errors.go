package repo

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrNegativeValue   = errors.New("value must not be negative")
)

// normalize collapses whitespace and case-folds s so that lookups ignore
// spacing and case differences between user input and stored titles.
func normalize(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}
