package fees

import "testing"

func TestCalculateFloors(t *testing.T) {
	cases := []struct {
		amount uint64
		rate   float64
		want   uint64
	}{
		{1000, 0.01, 10},
		{999, 0.01, 9},
		{0, 0.01, 0},
		{1, 0.01, 0},
		{10_000_000, 0.01, 100_000},
		{1000, 0, 0},
		{1000, -1, 0},
		{12345, 0.005, 61},
	}
	for _, tc := range cases {
		if got := Calculate(tc.amount, tc.rate); got != tc.want {
			t.Fatalf("Calculate(%d, %v) = %d, want %d", tc.amount, tc.rate, got, tc.want)
		}
	}
}

func TestOnChainCollectorRate(t *testing.T) {
	c := &OnChainCollector{Rate: 0.01}
	if got := c.Calculate(10_000_000); got != 100_000 {
		t.Fatalf("expected 100000, got %d", got)
	}
}
