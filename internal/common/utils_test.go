package common

import "testing"

func TestHourLabel(t *testing.T) {
	cases := map[int]string{0: "00", 3: "03", 23: "23"}
	for in, want := range cases {
		if got := HourLabel(in); got != want {
			t.Fatalf("HourLabel(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestRoundTo(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{12.34, 12.3},
		{12.36, 12.4},
		{-45.06, -45.1},
		{0.04, 0},
	}
	for _, c := range cases {
		if got := RoundTo(c.in, 1); got != c.want {
			t.Fatalf("RoundTo(%v, 1) = %v, want %v", c.in, got, c.want)
		}
	}
}
