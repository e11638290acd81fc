package services

import "testing"

func TestComputePercentiles(t *testing.T) {
	sample := []float64{10, 2, 8, 4, 6, 1, 9, 3, 7, 5}

	p20, p40, median, p60, p80 := computePercentiles(sample)

	got := []float64{p20, p40, median, p60, p80}
	want := []float64{2, 4, 5, 6, 8}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("markers %v, want %v", got, want)
		}
	}
}

func TestComputePercentilesSingleSample(t *testing.T) {
	p20, p40, median, p60, p80 := computePercentiles([]float64{1000})
	for _, v := range []float64{p20, p40, median, p60, p80} {
		if v != 1000 {
			t.Fatalf("single sample must collapse every marker to it, got %v", v)
		}
	}
}

func TestComputePercentilesDoesNotMutateInput(t *testing.T) {
	sample := []float64{3, 1, 2}
	computePercentiles(sample)
	if sample[0] != 3 || sample[1] != 1 || sample[2] != 2 {
		t.Fatalf("input sample was mutated: %v", sample)
	}
}
