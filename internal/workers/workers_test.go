package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	t.Setenv(EnvOverride, "")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{"I/O-bound task (2.0x multiplier)", 2.0, 0, 1, availableCPU * 2},
		{"Mixed task (1.5x multiplier)", 1.5, 0, 1, int(float64(availableCPU) * 1.5)},
		{"With limit lower than calculated", 2.0, 2, 1, 2},
		{"Tiny multiplier floors at one", 0.0001, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)
			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, want between %d and %d",
					tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountWithEnvOverride(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		limit    int
		want     int
	}{
		{"Override respected", "4", 0, 4},
		{"Override clamped by limit", "10", 5, 5},
		{"Invalid override ignored", "abc", 1, 1},
		{"Zero override ignored", "0", 1, 1},
		{"Negative override ignored", "-3", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvOverride, tt.envValue)
			if got := Count(2.0, tt.limit); got != tt.want {
				t.Errorf("Count() with %s=%q = %d, want %d", EnvOverride, tt.envValue, got, tt.want)
			}
		})
	}
}

func TestForIOAndMixed(t *testing.T) {
	t.Setenv(EnvOverride, "")

	if got := ForIO(3); got < 1 || got > 3 {
		t.Errorf("ForIO(3) = %d", got)
	}
	if got := ForMixed(1); got != 1 {
		t.Errorf("ForMixed(1) = %d, want 1", got)
	}
	if ForIO(0) < ForMixed(0) {
		t.Error("ForIO should never size smaller than ForMixed")
	}
}
