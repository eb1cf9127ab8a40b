// Package core provides the domain model and cell-coercion utilities for
// treasury dashboard data.
//
// This file contains functions for parsing spreadsheet cells into numbers
// and dates. Cells arrive from the Sheets API as untyped values: numbers
// when the sheet is read UNFORMATTED, but frequently display strings with
// currency symbols, thousands separators, or parenthesized negatives.
package core

import (
	"strconv"
	"strings"
	"time"
)

// sheetsEpoch is the zero point of Google Sheets serial dates. It is
// 1899-12-30 rather than 1900-01-01 to absorb the inherited Lotus/Excel
// 1900 leap-year bug plus 1-based indexing.
var sheetsEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseNumeric coerces a raw cell into a float64.
//
// Accepted string forms: optional $ / £ / € prefix, thousands commas,
// a trailing %, a leading minus, and parenthesized negatives:
//
//	ParseNumeric("$1,234.56") -> 1234.56, true
//	ParseNumeric("(1,234)")   -> -1234, true
//	ParseNumeric("£2,000")    -> 2000, true
//	ParseNumeric("n/a")       -> 0, false
func ParseNumeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		return parseNumericString(x)
	default:
		return 0, false
	}
}

func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == Placeholder {
		return 0, false
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	}

	for _, sym := range []string{"$", "£", "€"} {
		s = strings.TrimPrefix(s, sym)
	}
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

// FromSerialDate converts a Google Sheets serial date number to a UTC time.
// Serial 1 is 1899-12-31; fractional parts carry time of day.
func FromSerialDate(serial float64) time.Time {
	days := int(serial)
	frac := serial - float64(days)
	t := sheetsEpoch.AddDate(0, 0, days)
	if frac > 0 {
		t = t.Add(time.Duration(frac * float64(24*time.Hour)))
	}
	return t
}

// dateLayouts are the textual date forms seen across the company sheets.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseCellDate coerces a raw cell into a date. Numeric cells are treated
// as Sheets serial dates; strings are tried against known layouts.
func ParseCellDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case float64:
		if x <= 0 {
			return time.Time{}, false
		}
		return FromSerialDate(x), true
	case int:
		if x <= 0 {
			return time.Time{}, false
		}
		return FromSerialDate(float64(x)), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		// Some sheets hold serials as text.
		if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
			return FromSerialDate(serial), true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// CellString renders a raw cell as a trimmed string.
func CellString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(formatAny(v))
}

func formatAny(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
