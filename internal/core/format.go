package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatUSD renders a dollar value with a magnitude suffix for card display:
// $1.30B, $42.5M, $420K, $12.34. Negative values keep the sign ahead of
// the symbol.
func FormatUSD(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%s$%.2fB", sign, v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%s$%.2fM", sign, v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%s$%.1fK", sign, v/1e3)
	default:
		return fmt.Sprintf("%s$%.2f", sign, v)
	}
}

// FormatBTC renders a Bitcoin amount with up to 8 decimals, trailing
// zeros trimmed, thousands separators on the integer part.
func FormatBTC(v float64) string {
	s := strconv.FormatFloat(v, 'f', 8, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	intPart := s
	fracPart := ""
	if i := strings.Index(s, "."); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}
	return groupThousands(intPart) + fracPart
}

// FormatCount renders an integer-valued statistic with thousands separators.
func FormatCount(v float64) string {
	return groupThousands(strconv.FormatFloat(math.Round(v), 'f', 0, 64))
}

// FormatMultiple renders a NAV multiple like "1.84x".
func FormatMultiple(v float64) string {
	return fmt.Sprintf("%.2fx", v)
}

// FormatPercent renders a ratio as a percentage with one decimal.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// FormatOrPlaceholder re-parses a raw cell for display; unparsable cells
// degrade to the placeholder instead of an error.
func FormatOrPlaceholder(v any, format func(float64) string) string {
	f, ok := ParseNumeric(v)
	if !ok {
		return Placeholder
	}
	return format(f)
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
		if n > head {
			b.WriteByte(',')
		}
	}
	for i := head; i < n; i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < n {
			b.WriteByte(',')
		}
	}
	return b.String()
}
