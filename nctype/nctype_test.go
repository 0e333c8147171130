package nctype

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		keyword string
		want    Type
		ok      bool
	}{
		{keyword: "byte", want: Byte, ok: true},
		{keyword: "char", want: Char, ok: true},
		{keyword: "short", want: Short, ok: true},
		{keyword: "int", want: Int, ok: true},
		{keyword: "integer", want: Int, ok: true},
		{keyword: "long", want: Long, ok: true},
		{keyword: "float", want: Float, ok: true},
		{keyword: "real", want: Float, ok: true},
		{keyword: "double", want: Double, ok: true},
		{keyword: "string", want: String, ok: true},
		{keyword: "DOUBLE", want: Double, ok: true},
		{keyword: "Integer", want: Int, ok: true},
		{keyword: "complex", want: Invalid, ok: false},
		{keyword: "", want: Invalid, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			got, ok := Parse(tt.keyword)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Parse(%q) = %v, %t; want %v, %t",
					tt.keyword, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRange(t *testing.T) {
	tests := []struct {
		typ      Type
		min, max int64
		ok       bool
	}{
		{typ: Byte, min: -128, max: 127, ok: true},
		{typ: Char, min: -128, max: 127, ok: true},
		{typ: Short, min: -32768, max: 32767, ok: true},
		{typ: Int, min: -2147483648, max: 2147483647, ok: true},
		{typ: Float, ok: false},
		{typ: Double, ok: false},
		{typ: String, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			minVal, maxVal, ok := tt.typ.Range()
			if ok != tt.ok {
				t.Fatalf("Range() ok = %t, want %t", ok, tt.ok)
			}

			if ok && (minVal != tt.min || maxVal != tt.max) {
				t.Errorf("Range() = %d..%d, want %d..%d",
					minVal, maxVal, tt.min, tt.max)
			}
		})
	}
}

func TestWider(t *testing.T) {
	order := []Type{Byte, Short, Int, Long, Float, Double}

	for i, narrow := range order {
		for _, wide := range order[i:] {
			if !wide.Wider(narrow) {
				t.Errorf("%v should be wider than %v", wide, narrow)
			}
		}
	}

	if Short.Wider(Int) {
		t.Error("short must not be wider than int")
	}
}

func TestClassification(t *testing.T) {
	if !Int.Numeric() || !Int.Integral() || Int.Real() {
		t.Error("int misclassified")
	}

	if !Double.Numeric() || Double.Integral() || !Double.Real() {
		t.Error("double misclassified")
	}

	if Char.Numeric() || String.Numeric() {
		t.Error("char and string are not numeric")
	}
}
