package main

import "testing"

func TestCleanPeriods(t *testing.T) {
	got := cleanPeriods([]float64{-17.24, 0, 9.925, 24, 24, 24.6229})
	want := []float64{-17.24, 9.925, 24, 24.6229}

	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}
