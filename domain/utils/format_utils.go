package utils

import (
	"fmt"
	"strconv"
)

// FormatCoins formats an amount with dot thousand separators (5000 -> 5.000)
func FormatCoins(value int64) string {
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	digits := strconv.FormatInt(value, 10)
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, digits[i])
	}
	return sign + string(out)
}

// FormatDelta formats a signed change with an explicit plus sign
func FormatDelta(value int64) string {
	if value > 0 {
		return fmt.Sprintf("+%s", FormatCoins(value))
	}
	return FormatCoins(value)
}
