package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rockdoc/cdlgen/lang/token"
	"github.com/rockdoc/cdlgen/nctype"
)

// Value is a closed tagged union over the netCDF element types. A Value is
// never an untyped runtime quantity: its element type is fixed when the
// literal is lexed (suffix) or when the semantic builder coerces it into a
// typed context.
type Value struct {
	typ nctype.Type
	i   int64   // Byte, Char, Short, Int, Long
	f   float64 // Float, Double
	s   string  // String
}

// IntValue creates a value of an integral or char type.
func IntValue(typ nctype.Type, v int64) Value {
	return Value{typ: typ, i: v}
}

// FloatValue creates a value of a floating-point type.
func FloatValue(typ nctype.Type, v float64) Value {
	return Value{typ: typ, f: v}
}

// StringValue creates a string value.
func StringValue(s string) Value {
	return Value{typ: nctype.String, s: s}
}

// FromToken converts a literal token into a Value of the element type fixed
// by the token's suffix.
func FromToken(tok token.Token) Value {
	elem := tok.Elem()

	switch {
	case elem == nctype.String:
		return StringValue(tok.Str)
	case elem.Real():
		return FloatValue(elem, tok.Float)
	default:
		return IntValue(elem, tok.Int)
	}
}

// Type returns the element type of the value.
func (v Value) Type() nctype.Type { return v.typ }

// Int64 returns the integral payload. It is only meaningful for integral
// and char values.
func (v Value) Int64() int64 { return v.i }

// Float64 returns the value as a float64, converting integral payloads.
func (v Value) Float64() float64 {
	if v.typ.Real() {
		return v.f
	}

	return float64(v.i)
}

// Text returns the string payload of a String value.
func (v Value) Text() string { return v.s }

// Native returns the value as the Go type matching its element type:
// int8, byte, int16, int32, int64, float32, float64, or string.
func (v Value) Native() any {
	switch v.typ {
	case nctype.Byte:
		return int8(v.i)
	case nctype.Char:
		return byte(v.i)
	case nctype.Short:
		return int16(v.i)
	case nctype.Int:
		return int32(v.i)
	case nctype.Long:
		return v.i
	case nctype.Float:
		return float32(v.f)
	case nctype.Double:
		return v.f
	case nctype.String:
		return v.s
	default:
		return nil
	}
}

// Equal reports whether two values have the same type and payload.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}

	switch {
	case v.typ == nctype.String:
		return v.s == o.s
	case v.typ.Real():
		return v.f == o.f
	default:
		return v.i == o.i
	}
}

// Convert coerces the value to the target element type, range-checking
// integral narrowing. Conversions that cannot preserve the value's meaning
// (string to numeric, real to integral) fail.
func (v Value) Convert(target nctype.Type) (Value, error) {
	if v.typ == target {
		return v, nil
	}

	switch {
	case target == nctype.String:
		if v.typ == nctype.Char {
			return StringValue(string(byte(v.i))), nil
		}

		return Value{}, fmt.Errorf("cannot convert %s to string", v.typ)

	case target == nctype.Char:
		if v.typ == nctype.String && len(v.s) == 1 {
			return IntValue(nctype.Char, int64(v.s[0])), nil
		}

		fallthrough

	case target.Integral():
		if !v.typ.Integral() && v.typ != nctype.Char {
			return Value{}, fmt.Errorf("cannot convert %s to %s", v.typ, target)
		}

		if minVal, maxVal, ok := target.Range(); ok {
			if v.i < minVal || v.i > maxVal {
				return Value{}, fmt.Errorf(
					"%s constant %d outside valid range of %s (%d to %d)",
					v.typ, v.i, target, minVal, maxVal,
				)
			}
		}

		return IntValue(target, v.i), nil

	case target.Real():
		switch {
		case v.typ.Integral() || v.typ == nctype.Char:
			return FloatValue(target, float64(v.i)), nil
		case v.typ.Real():
			f := v.f
			if target == nctype.Float {
				f = float64(float32(f))
			}

			return FloatValue(target, f), nil
		}
	}

	return Value{}, fmt.Errorf("cannot convert %s to %s", v.typ, target)
}

// CDL renders the value as a CDL literal, including the type suffix, such
// that re-lexing it reproduces an identical value.
func (v Value) CDL() string {
	switch v.typ {
	case nctype.Byte:
		return strconv.FormatInt(v.i, 10) + "b"
	case nctype.Char:
		return charLiteral(byte(v.i))
	case nctype.Short:
		return strconv.FormatInt(v.i, 10) + "s"
	case nctype.Int:
		return strconv.FormatInt(v.i, 10)
	case nctype.Long:
		return strconv.FormatInt(v.i, 10) + "l"
	case nctype.Float:
		return strconv.FormatFloat(v.f, 'g', -1, 32) + "f"
	case nctype.Double:
		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += "."
		}

		return s
	case nctype.String:
		return strconv.Quote(v.s)
	default:
		return "invalid"
	}
}

func charLiteral(ch byte) string {
	switch ch {
	case 0:
		return `'\0'`
	case '\n':
		return `'\n'`
	case '\t':
		return `'\t'`
	case '\r':
		return `'\r'`
	case '\'':
		return `'\''`
	case '\\':
		return `'\\'`
	}

	if ch < 0x20 || ch > 0x7e {
		return fmt.Sprintf(`'\x%02x'`, ch)
	}

	return "'" + string(ch) + "'"
}

// DefaultFill returns the default netCDF fill value for the element type,
// as defined in netcdf.h.
func DefaultFill(typ nctype.Type) Value {
	switch typ {
	case nctype.Byte:
		return IntValue(nctype.Byte, int64(nctype.FillByte))
	case nctype.Char:
		return IntValue(nctype.Char, int64(nctype.FillChar))
	case nctype.Short:
		return IntValue(nctype.Short, int64(nctype.FillShort))
	case nctype.Int:
		return IntValue(nctype.Int, int64(nctype.FillInt))
	case nctype.Long:
		return IntValue(nctype.Long, int64(nctype.FillInt))
	case nctype.Float:
		return FloatValue(nctype.Float, float64(nctype.FillFloat))
	case nctype.Double:
		return FloatValue(nctype.Double, nctype.FillDouble)
	case nctype.String:
		return StringValue("")
	default:
		return Value{}
	}
}
