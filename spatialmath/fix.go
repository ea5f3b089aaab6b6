package spatialmath

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// FixFractionalBits is the number of fractional bits of a Fix value.
const FixFractionalBits = 32

const fixOne = Fix(1) << FixFractionalBits

// Extremes of the Fix range. They are used as the corners of the empty bounds sentinel.
const (
	MaxFix = Fix(math.MaxInt64)
	MinFix = Fix(math.MinInt64)
)

// FixLimit bounds the magnitude of every coordinate a Fix can hold.
const FixLimit = float64(1 << (63 - FixFractionalBits))

// Fix is a signed fixed-point scalar. World positions are stored as Fix so that long simulation
// runs do not lose precision far from the origin the way float64 coordinates do.
type Fix int64

// InFixRange returns whether f can be converted to a Fix.
func InFixRange(f float64) bool {
	return f > -FixLimit && f < FixLimit
}

// NewFix converts a float64 to the nearest representable Fix. It panics when f is outside the open
// interval (-FixLimit, FixLimit) or is NaN, since the converted value would wrap around.
func NewFix(f float64) Fix {
	if !InFixRange(f) {
		panic(errFixOutOfRange(f))
	}
	return Fix(math.Round(f * float64(fixOne)))
}

func errFixOutOfRange(f float64) error {
	return errors.Errorf("%v is outside the fixed-point range of ±%v", f, FixLimit)
}

// addFix returns a+b, panicking on overflow.
func addFix(a, b Fix) Fix {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		panic(errFixOutOfRange(a.Float64() + b.Float64()))
	}
	return sum
}

// FixFromInt converts a whole number to Fix.
func FixFromInt(i int64) Fix {
	return Fix(i) << FixFractionalBits
}

// Float64 returns the float64 closest to f.
func (f Fix) Float64() float64 {
	return float64(f) / float64(fixOne)
}

// String returns a human readable string that represents the fixed-point value.
func (f Fix) String() string {
	return fmt.Sprintf("%g", f.Float64())
}

func minFix(a, b Fix) Fix {
	if a < b {
		return a
	}
	return b
}

func maxFix(a, b Fix) Fix {
	if a > b {
		return a
	}
	return b
}
