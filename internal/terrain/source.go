package terrain

import (
	"fmt"
	"strings"

	perlin "github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// NoiseSource returns detail noise in [0,1] for warped grid coordinates.
// Implementations must be safe for concurrent use.
type NoiseSource interface {
	Sample(x, y float64) float64
}

type NoiseKind string

const (
	NoiseTrig    NoiseKind = "trig"
	NoisePerlin  NoiseKind = "perlin"
	NoiseSimplex NoiseKind = "simplex"
)

func ParseNoiseKind(s string) (NoiseKind, error) {
	switch kind := NoiseKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case "", NoiseTrig:
		return NoiseTrig, nil
	case NoisePerlin, NoiseSimplex:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown noise source %q", s)
	}
}

// NewNoiseSource builds the named source. Trig noise ignores the seed.
func NewNoiseSource(kind NoiseKind, seed int64) (NoiseSource, error) {
	switch kind {
	case "", NoiseTrig:
		return trigSource{}, nil
	case NoisePerlin:
		return perlinSource{p: perlin.NewPerlin(2, 2, 3, seed)}, nil
	case NoiseSimplex:
		return simplexSource{n: opensimplex.NewNormalized(seed)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown noise source %q", ErrInvalidConfiguration, kind)
	}
}

type trigSource struct{}

func (trigSource) Sample(x, y float64) float64 {
	return MultiOctaveNoise(x, y)
}

type perlinSource struct {
	p *perlin.Perlin
}

const perlinFrequency = 0.08

func (s perlinSource) Sample(x, y float64) float64 {
	return clamp01(s.p.Noise2D(x*perlinFrequency, y*perlinFrequency)*0.5 + 0.5)
}

type simplexSource struct {
	n opensimplex.Noise
}

var simplexOctaves = [...]struct {
	amplitude float64
	frequency float64
}{
	{0.5, 0.06},
	{0.25, 0.13},
	{0.125, 0.27},
}

func (s simplexSource) Sample(x, y float64) float64 {
	sum := 0.0
	total := 0.0
	for _, o := range simplexOctaves {
		sum += o.amplitude * s.n.Eval2(x*o.frequency, y*o.frequency)
		total += o.amplitude
	}
	return clamp01(sum / total)
}
