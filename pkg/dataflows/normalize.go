package dataflows

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var magnitudeSuffix = map[byte]float64{
	'T': 1e12,
	'B': 1e9,
	'M': 1e6,
	'K': 1e3,
}

// ParseMagnitude turns a display string such as "$1.2T", "45.6 B USD" or
// "900M" into a number usable for ranking. Anything it cannot parse maps to
// 0, which ranks lowest.
func ParseMagnitude(s string) float64 {
	v := cleanNumeric(s, false)
	if v == "" {
		return 0
	}

	mult := 1.0
	if m, ok := magnitudeSuffix[byte(unicode.ToUpper(rune(v[len(v)-1])))]; ok {
		mult = m
		v = v[:len(v)-1]
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f * mult
}

// ParseNullDecimal parses a price or percentage cell. Invalid input yields an
// absent value instead of zero.
func ParseNullDecimal(s string) decimal.NullDecimal {
	v := cleanNumeric(s, true)
	if v == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func cleanNumeric(s string, dropPercent bool) string {
	v := stripCurrencyCode(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', '¥', ',', '+':
			return -1
		case '%':
			if dropPercent {
				return -1
			}
		case '−':
			return '-'
		}
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, v)
}

// stripCurrencyCode drops a trailing ISO code such as " USD".
func stripCurrencyCode(s string) string {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return s
	}
	last := fields[len(fields)-1]
	if len(last) != 3 {
		return s
	}
	for _, r := range last {
		if r < 'A' || r > 'Z' {
			return s
		}
	}
	return strings.Join(fields[:len(fields)-1], " ")
}
