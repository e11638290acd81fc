package services

import "testing"

func TestDetermineStanding(t *testing.T) {
	info := testInfo() // 900 / 950 / 1000 / 1050 / 1100

	cases := []struct {
		points float64
		want   string
	}{
		{800, "bottom"},
		{899, "bottom"},
		{900, "lower"},
		{949, "lower"},
		{950, "middle"},
		{1049, "middle"},
		{1050, "upper"},
		{1099, "upper"},
		{1100, "top"},
		{2000, "top"},
	}
	for _, tc := range cases {
		if got := determineStanding(tc.points, info); got != tc.want {
			t.Errorf("determineStanding(%v) = %q, want %q", tc.points, got, tc.want)
		}
	}
}
