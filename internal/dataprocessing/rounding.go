package dataprocessing

import (
	"math"
	"strconv"
	"strings"
)

// round rounds x to places decimal digits, half away from zero, on the
// shortest decimal representation of x. This keeps 1.005 at 1.01 where
// binary rounding via math.Round(x*100)/100 would give 1.00.
func round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || places < 0 {
		return x
	}

	neg := x < 0
	s := strconv.FormatFloat(math.Abs(x), 'f', -1, 64)

	intPart, frac, _ := strings.Cut(s, ".")
	if len(frac) <= places {
		return x
	}

	digits := []byte(intPart + frac[:places])
	if frac[places] >= '5' {
		i := len(digits) - 1
		for ; i >= 0; i-- {
			if digits[i] == '9' {
				digits[i] = '0'
				continue
			}
			digits[i]++
			break
		}
		if i < 0 {
			digits = append([]byte{'1'}, digits...)
		}
	}

	split := len(digits) - places
	out := string(digits[:split])
	if places > 0 {
		out += "." + string(digits[split:])
	}

	v, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return x
	}
	if neg {
		v = -v
	}
	return v
}

func round2(x float64) float64 { return round(x, 2) }

func round1(x float64) float64 { return round(x, 1) }
