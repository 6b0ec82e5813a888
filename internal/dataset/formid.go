package dataset

import (
	"path/filepath"
	"strings"
)

// PageDigits is the maximum number of digits in a page id.
const PageDigits = 4

// FormID identifies the scripter and page a scan belongs to.
type FormID struct {
	Scripter string
	Page     string
}

// String returns the concatenated form number.
func (f FormID) String() string { return f.Scripter + f.Page }

// Empty reports whether no digits were found.
func (f FormID) Empty() bool { return f.Scripter == "" && f.Page == "" }

// Digits returns the decimal digits of s in order.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseFormID splits digits into a scripter id of scripterDigits and a page
// id of up to PageDigits.
func ParseFormID(digits string, scripterDigits int) FormID {
	digits = Digits(digits)
	n := min(scripterDigits, len(digits))
	rest := digits[n:]
	return FormID{Scripter: digits[:n], Page: rest[:min(PageDigits, len(rest))]}
}

// FormIDFromPath derives the form id from the digits of path relative to
// root. When path is not under root the full path is used.
func FormIDFromPath(root, path string, scripterDigits int) FormID {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = path
	}
	return ParseFormID(rel, scripterDigits)
}
