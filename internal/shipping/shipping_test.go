package shipping

import "testing"

func TestFee(t *testing.T) {
	cases := []struct {
		subtotal int
		state    string
		want     int
	}{
		{999, "Tamil Nadu", 60},
		{1000, "Tamil Nadu", 0},
		{999, "Kerala", 100},
		{1500, "Kerala", 0},
		{10, " tamil nadu ", 60},
		{10, "TAMIL NADU", 60},
		{0, "", 100},
	}
	for _, tc := range cases {
		if got := Fee(tc.subtotal, tc.state); got != tc.want {
			t.Errorf("Fee(%d, %q) = %d, want %d", tc.subtotal, tc.state, got, tc.want)
		}
	}
}

func TestTotal(t *testing.T) {
	if got := Total(940, "Tamil Nadu"); got != 1000 {
		t.Fatalf("expected 1000, got %d", got)
	}
	if got := Total(1200, "Kerala"); got != 1200 {
		t.Fatalf("expected free shipping total 1200, got %d", got)
	}
}
