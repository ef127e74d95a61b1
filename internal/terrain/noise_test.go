package terrain

import (
	"math"
	"testing"
)

func TestMultiOctaveNoiseStaysInUnitRange(t *testing.T) {
	for x := -200.0; x <= 200; x += 3.7 {
		for y := -200.0; y <= 200; y += 4.3 {
			v := MultiOctaveNoise(x, y)
			if v < 0 || v > 1 {
				t.Fatalf("noise at (%v,%v) = %v outside [0,1]", x, y, v)
			}
		}
	}
}

func TestDomainWarpWithZeroFactorIsIdentity(t *testing.T) {
	x, y := DomainWarp(7, 11, 48, 48, 0)
	if x != 7 || y != 11 {
		t.Fatalf("expected unwarped coordinates, got (%v,%v)", x, y)
	}
	wx, wy := DomainWarp(7, 11, 48, 48, 0.2)
	if wx == 7 && wy == 11 {
		t.Fatal("expected warp to move the sample point")
	}
}

func TestSeedInfluenceIsGaussianPerSeed(t *testing.T) {
	seeds := []IslandSeed{{X: 10, Y: 10, Strength: 0.9}}
	if got := SeedInfluence(10, 10, seeds, 5); math.Abs(got-0.9) > 1e-12 {
		t.Fatalf("influence at seed = %v, want 0.9", got)
	}
	want := 0.9 * math.Exp(-0.5)
	if got := SeedInfluence(15, 10, seeds, 5); math.Abs(got-want) > 1e-12 {
		t.Fatalf("influence at max distance = %v, want %v", got, want)
	}

	stacked := []IslandSeed{{X: 0, Y: 0, Strength: 1}, {X: 0, Y: 0, Strength: 1}}
	if got := SeedInfluence(0, 0, stacked, 5); math.Abs(got-2) > 1e-12 {
		t.Fatalf("expected unclamped sum of 2, got %v", got)
	}
	if got := SeedInfluence(0, 0, stacked, 0); got != 0 {
		t.Fatalf("expected zero influence without a radius, got %v", got)
	}
}

func TestEllipticalBorderFalloff(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{name: "centre", x: 5, y: 5, want: 1},
		{name: "on boundary", x: 9, y: 5, want: 0},
		{name: "outside", x: 10, y: 10, want: 0},
		{name: "halfway", x: 7, y: 5, want: math.Pow(0.5, 1.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EllipticalBorderFalloff(tt.x, tt.y, 5, 5, 4, 2)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("falloff = %v, want %v", got, tt.want)
			}
		})
	}

	if got := EllipticalBorderFalloff(3, 0, 0, 0, 0, 0); got != 1 {
		t.Fatalf("degenerate ellipse should not attenuate, got %v", got)
	}
}

func TestNoiseSourcesStayInUnitRange(t *testing.T) {
	for _, kind := range []NoiseKind{NoiseTrig, NoisePerlin, NoiseSimplex} {
		t.Run(string(kind), func(t *testing.T) {
			src, err := NewNoiseSource(kind, 7)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for x := 0.0; x < 64; x += 1.5 {
				for y := 0.0; y < 64; y += 2.5 {
					if v := src.Sample(x, y); v < 0 || v > 1 {
						t.Fatalf("sample (%v,%v) = %v", x, y, v)
					}
				}
			}
		})
	}

	if _, err := ParseNoiseKind("worley"); err == nil {
		t.Fatal("expected unknown noise kind to fail")
	}
	if kind, err := ParseNoiseKind(""); err != nil || kind != NoiseTrig {
		t.Fatalf("expected empty kind to default to trig, got %q, %v", kind, err)
	}
}
