package terrain

import "math"

// IslandSeed is a generation-time island centre in grid space.
type IslandSeed struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Strength float64 `json:"strength"`
}

var octaves = [...]struct {
	amplitude float64
	sinX      float64
	sinY      float64
	cosX      float64
	cosY      float64
}{
	{0.5, 0.05, 0.07, 0.03, -0.06},
	{0.25, 0.12, 0.15, 0.08, -0.11},
	{0.125, 0.25, 0.3, 0.18, -0.22},
}

// MultiOctaveNoise sums three trig octaves and maps the result into [0,1].
// Each octave pairs a sine and a cosine term, so the natural range is
// twice the summed amplitude in each direction.
func MultiOctaveNoise(x, y float64) float64 {
	sum := 0.0
	total := 0.0
	for _, o := range octaves {
		sum += o.amplitude * (math.Sin(x*o.sinX+y*o.sinY) + math.Cos(x*o.cosX+y*o.cosY))
		total += o.amplitude
	}
	return clamp01((sum/(2*total))*0.5 + 0.5)
}

// DomainWarp displaces (x, y) by a low-frequency trig field scaled by the
// grid dimensions and warp.
func DomainWarp(x, y float64, columns, rows int, warp float64) (float64, float64) {
	warpX := (math.Sin(x*0.15+y*0.25) + math.Cos(x*0.08-y*0.18)) * float64(columns) * warp
	warpY := (math.Sin(y*0.15-x*0.22) + math.Cos(y*0.07+x*0.15)) * float64(rows) * warp
	return x + warpX, y + warpY
}

// SeedInfluence sums a Gaussian contribution per seed. The result is not
// clamped.
func SeedInfluence(x, y float64, seeds []IslandSeed, maxDist float64) float64 {
	if maxDist <= 0 {
		return 0
	}
	denom := 2 * maxDist * maxDist
	total := 0.0
	for _, s := range seeds {
		dx := x - s.X
		dy := y - s.Y
		total += s.Strength * math.Exp(-(dx*dx+dy*dy)/denom)
	}
	return total
}

// EllipticalBorderFalloff is 1 at the centre and 0 on or outside the
// ellipse. A non-positive radius contributes no distance along that axis.
func EllipticalBorderFalloff(x, y, cx, cy, rx, ry float64) float64 {
	nx, ny := 0.0, 0.0
	if rx > 0 {
		nx = (x - cx) / rx
	}
	if ry > 0 {
		ny = (y - cy) / ry
	}
	d := math.Hypot(nx, ny)
	if d >= 1 {
		return 0
	}
	return math.Pow((math.Cos(d*math.Pi)+1)/2, 1.5)
}

func ripple(c, r float64) float64 {
	return 0.05 * math.Sin(c*0.02+r*0.015)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
