// Package nctype defines the closed set of netCDF element types used
// throughout the CDL pipeline, together with their CDL keywords, default
// fill values, and numeric range limits.
package nctype

import (
	"math"
	"strings"
)

// Type identifies one of the fixed netCDF element types.
type Type int

const (
	// Invalid is the zero value; it never appears in a validated dataset.
	Invalid Type = iota

	Byte   // 8-bit signed integer
	Char   // single 8-bit character
	Short  // 16-bit signed integer
	Int    // 32-bit signed integer
	Long   // 64-bit signed integer
	Float  // 32-bit IEEE float
	Double // 64-bit IEEE float
	String // variable-length character string
)

// String returns the canonical CDL keyword for the type.
func (t Type) String() string {
	switch t {
	case Byte:
		return "byte"
	case Char:
		return "char"
	case Short:
		return "short"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	case String:
		return "string"
	default:
		return "invalid"
	}
}

// Parse maps a CDL type keyword to its Type. Matching is case-insensitive
// and accepts the historical aliases "integer" (int) and "real" (float).
// The second result reports whether the keyword named a type.
func Parse(keyword string) (Type, bool) {
	switch strings.ToLower(keyword) {
	case "byte":
		return Byte, true
	case "char":
		return Char, true
	case "short":
		return Short, true
	case "int", "integer":
		return Int, true
	case "long":
		return Long, true
	case "float", "real":
		return Float, true
	case "double":
		return Double, true
	case "string":
		return String, true
	default:
		return Invalid, false
	}
}

// Numeric reports whether the type holds numeric values.
func (t Type) Numeric() bool {
	switch t {
	case Byte, Short, Int, Long, Float, Double:
		return true
	default:
		return false
	}
}

// Integral reports whether the type holds integer values.
func (t Type) Integral() bool {
	switch t {
	case Byte, Short, Int, Long:
		return true
	default:
		return false
	}
}

// Real reports whether the type holds floating-point values.
func (t Type) Real() bool {
	return t == Float || t == Double
}

// Default fill values for netCDF data types, as defined in netcdf.h.
const (
	FillByte   = int8(-127)
	FillChar   = byte(0)
	FillShort  = int16(-32767)
	FillInt    = int32(-2147483647)
	FillFloat  = float32(9.9692099683868690e+36)
	FillDouble = float64(9.9692099683868690e+36)
)

// Range returns the inclusive bounds of an integral type. It returns
// ok=false for non-integral types, which are not range-checked.
func (t Type) Range() (minVal, maxVal int64, ok bool) {
	switch t {
	case Byte, Char:
		return math.MinInt8, math.MaxInt8, true
	case Short:
		return math.MinInt16, math.MaxInt16, true
	case Int:
		return math.MinInt32, math.MaxInt32, true
	case Long:
		return math.MinInt64, math.MaxInt64, true
	default:
		return 0, 0, false
	}
}

// Wider reports whether t can represent every value of u without loss of
// magnitude, following the CDL numeric widening order
// byte < short < int < long < float < double.
func (t Type) Wider(u Type) bool {
	return t.widenRank() >= u.widenRank()
}

func (t Type) widenRank() int {
	switch t {
	case Byte:
		return 1
	case Short:
		return 2
	case Int:
		return 3
	case Long:
		return 4
	case Float:
		return 5
	case Double:
		return 6
	default:
		return 0
	}
}
