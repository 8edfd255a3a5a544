package tool

import (
	"fmt"
	"strings"
)

// money renders a dollar amount with thousands grouping, e.g. $12,340.50.
func money(v float64) string {
	return "$" + group(fmt.Sprintf("%.2f", v))
}

// moneyWhole renders a dollar amount without cents, e.g. $12,340.
func moneyWhole(v float64) string {
	return "$" + group(fmt.Sprintf("%.0f", v))
}

// groupInt renders an integer with thousands grouping.
func groupInt(v int64) string {
	return group(fmt.Sprintf("%d", v))
}

func group(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}
	if neg {
		intPart = "-" + intPart
	}
	return intPart + frac
}

// payloadStr reads a string field from a search-hit payload.
func payloadStr(p map[string]any, key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
