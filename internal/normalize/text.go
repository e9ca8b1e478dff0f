// Package normalize cleans Persian portal text and maps inconsistent sheet
// labels onto canonical field names.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letterVariants unifies visually equivalent Arabic code points to the
// Persian form, and localized digits and the decimal separator to ASCII.
var letterVariants = map[rune]rune{
	'ي': 'ی',
	'ى': 'ی',
	'ك': 'ک',
	'أ': 'ا',
	'إ': 'ا',
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
	'۰': '0', '۱': '1', '۲': '2', '۳': '3', '۴': '4',
	'۵': '5', '۶': '6', '۷': '7', '۸': '8', '۹': '9',
	'٫': '.',
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u200e', '\u200f', '\ufeff':
		return true
	}
	return false
}

func unify(r rune) rune {
	if m, ok := letterVariants[r]; ok {
		return m
	}
	return r
}

// newCleaner builds a fresh transformer chain; chains carry state and
// cannot be shared between goroutines.
func newCleaner() transform.Transformer {
	return transform.Chain(
		norm.NFC,
		runes.Remove(runes.Predicate(isZeroWidth)),
		runes.Map(unify),
	)
}

var (
	parenNumber = regexp.MustCompile(`\((\d+(?:\.\d+)?)\)`)
	plainNumber = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	separators  = strings.NewReplacer(",", "", "٬", "", "--", "", "\n", "", "\t", "", "\r", "")
)

// Persian unifies letters and digits and strips zero-width characters
func Persian(text string) string {
	out, _, err := transform.String(newCleaner(), text)
	if err != nil {
		return text
	}
	return out
}

// Clean applies the full portal cleaning pipeline. The boolean is false when
// nothing is left, so callers can treat the cell as absent rather than as a
// present empty value.
func Clean(text string) (string, bool) {
	text = Persian(text)
	text = separators.Replace(text)
	text = parenNumber.ReplaceAllString(text, "-$1")
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "", false
	}
	return text, true
}

const labelPunct = ":.-*•،؛؟?!"

// labelPairs are removed only when they enclose the whole label, so
// "سود نقدی هر سهم (ریال)" keeps its unit
var labelPairs = [][2]string{
	{"(", ")"}, {"[", "]"}, {"«", "»"}, {"“", "”"}, {"\"", "\""}, {"'", "'"},
}

func trimLabel(text string) string {
	for {
		prev := text
		text = strings.TrimSpace(strings.Trim(text, labelPunct))
		for _, p := range labelPairs {
			inner, ok := strings.CutPrefix(text, p[0])
			if !ok {
				continue
			}
			inner, ok = strings.CutSuffix(inner, p[1])
			if ok && !strings.Contains(inner, p[0]) && !strings.Contains(inner, p[1]) {
				text = strings.TrimSpace(inner)
			}
		}
		if text == prev {
			return text
		}
	}
}

// Label cleans a row label and strips punctuation around it
func Label(text string) (string, bool) {
	text, ok := Clean(text)
	if !ok {
		return "", false
	}
	text = trimLabel(text)
	if text == "" {
		return "", false
	}
	return text, true
}

// Value cleans a cell value; numeric values are rendered in canonical
// decimal form so "1000.0" and "1000" compare equal downstream.
func Value(text string) (string, bool) {
	text, ok := Clean(text)
	if !ok {
		return "", false
	}
	if !plainNumber.MatchString(text) {
		return text, true
	}
	if d, err := decimal.NewFromString(text); err == nil {
		return d.String(), true
	}
	return text, true
}

// TickerName normalizes an instrument short name
func TickerName(name string) string {
	return strings.TrimSpace(Persian(name))
}
