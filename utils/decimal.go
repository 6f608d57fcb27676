package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal accepts user-formatted amounts like "20,000", "BDT 1,250.50" or "-3".
// Only digits, '.' and a leading '-' are kept.
func ParseDecimal(i interface{}) (decimal.Decimal, error) {
	switch v := i.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("invalid value")
	case decimal.Decimal:
		return v, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		neg := false
		var b strings.Builder
		b.Grow(len(s) + 1)
		for _, r := range s {
			if r == '-' && b.Len() == 0 {
				neg = true
				continue
			}
			if (r >= '0' && r <= '9') || r == '.' {
				b.WriteRune(r)
			}
		}
		clean := b.String()
		if clean == "" {
			return decimal.Zero, fmt.Errorf("invalid value")
		}
		if neg {
			clean = "-" + clean
		}
		return decimal.NewFromString(clean)
	default:
		return decimal.Zero, fmt.Errorf("invalid value")
	}
}

// ParseDecimalOrZero is ParseDecimal with every failure mapped to zero.
func ParseDecimalOrZero(i interface{}) decimal.Decimal {
	d, err := ParseDecimal(i)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// LooseDecimal decodes a JSON number, a numeric string or anything else (as zero).
// It never fails, so optional numeric fields in request bodies default to 0.
type LooseDecimal struct {
	decimal.Decimal
}

func (l *LooseDecimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		l.Decimal = decimal.Zero
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			l.Decimal = decimal.Zero
			return nil
		}
		l.Decimal = ParseDecimalOrZero(s)
		return nil
	}
	l.Decimal = ParseDecimalOrZero(json.Number(string(data)))
	return nil
}

func (l LooseDecimal) MarshalJSON() ([]byte, error) {
	return l.Decimal.MarshalJSON()
}
