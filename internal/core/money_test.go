package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", -100, true},
		{"-4.5", -450, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{-450, "-4.50"},
		{0, "0.00"},
		{123456, "1234.56"},
		{5, "0.05"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("cents %d expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestMoneyDecimalRoundTrip(t *testing.T) {
	for _, cents := range []int64{-450, -1, 0, 1, 99, 100, 123456} {
		m := Money{Cents: cents}
		if got := MoneyFromDecimal(m.Decimal()); got.Cents != cents {
			t.Fatalf("round trip for %d cents produced %d", cents, got.Cents)
		}
	}
}
