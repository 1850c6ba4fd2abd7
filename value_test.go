package aslang

import "testing"

func Test_Value_Format(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Num(42), "42"},
		{Num(2.5), "2.5"},
		{Num(-0.125), "-0.125"},
		{Str("hi"), "hi"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Arr([]Value{Num(1), Str("x"), Bool(false)}), "[1, x, false]"},
		{Arr([]Value{Arr([]Value{Num(1)})}), "[[1]]"},
		{Arr(nil), "[]"},
		{None, "none"},
	}
	for _, c := range cases {
		if got := FormatValue(c.v); got != c.want {
			t.Fatalf("format %#v: want %q, got %q", c.v, c.want, got)
		}
	}
}

func Test_Value_Equality(t *testing.T) {
	if !ValuesEqual(Num(1), Num(1)) || ValuesEqual(Num(1), Num(2)) {
		t.Fatal("number equality broken")
	}
	if ValuesEqual(Num(1), Str("1")) {
		t.Fatal("cross-tag values must differ")
	}
	a := Arr([]Value{Num(1), Arr([]Value{Str("x")})})
	b := Arr([]Value{Num(1), Arr([]Value{Str("x")})})
	if !ValuesEqual(a, b) {
		t.Fatal("deep array equality broken")
	}
	c := Arr([]Value{Num(1), Arr([]Value{Str("y")})})
	if ValuesEqual(a, c) {
		t.Fatal("nested difference not detected")
	}
	if !ValuesEqual(None, None) {
		t.Fatal("none equals none")
	}
}

func Test_Value_Truthy(t *testing.T) {
	truthy := []Value{Bool(true), Num(1), Num(-3)}
	falsy := []Value{Bool(false), Num(0), Str(""), Str("x"), Arr([]Value{Num(1)}), None}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Fatalf("%#v should be truthy", v)
		}
	}
	for _, v := range falsy {
		if Truthy(v) {
			t.Fatalf("%#v should be falsy", v)
		}
	}
}

func Test_Value_ArraysAreBoxed(t *testing.T) {
	inner := []Value{Num(1)}
	v := Arr(inner)
	arr, ok := v.AsArray()
	if !ok {
		t.Fatal("AsArray failed")
	}
	arr.Elems[0] = Num(9)
	again, _ := v.AsArray()
	if again.Elems[0].Data.(float64) != 9 {
		t.Fatal("array mutation must be visible through the value")
	}
}
