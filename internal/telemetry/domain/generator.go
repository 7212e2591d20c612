package telemetry

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	dayCycleHours  = 24.0
	driftFactor    = 0.4
	jitterFactor   = 0.3
	valuePrecision = 100.0
)

// Generator produces synthetic sensor values: a diurnal sine drift plus Gaussian jitter.
// It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator with a fixed seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomGenerator returns a generator seeded from the clock.
func NewRandomGenerator() *Generator {
	return NewGenerator(uint64(time.Now().UnixNano()))
}

// Generate returns one sample for a metric at hoursInCycle hours into the 24h cycle,
// rounded to two decimals.
func (g *Generator) Generate(baseline, noise, hoursInCycle float64) float64 {
	if noise <= 0 || math.IsNaN(noise) || math.IsInf(noise, 0) {
		return Round2(baseline)
	}
	drift := math.Sin(2*math.Pi*hoursInCycle/dayCycleHours) * noise * driftFactor
	jitter := g.normal() * noise * jitterFactor
	return Round2(baseline + drift + jitter)
}

// Sample generates a value for a metric definition.
func (g *Generator) Sample(def MetricDefinition, hoursInCycle float64) float64 {
	return g.Generate(def.Baseline, def.Noise, hoursInCycle)
}

func (g *Generator) normal() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.NormFloat64()
}

// HoursSinceMidnight returns the fractional UTC time of day of t.
func HoursSinceMidnight(t time.Time) float64 {
	t = t.UTC()
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

// Round2 rounds to two decimal places.
func Round2(value float64) float64 {
	return math.Round(value*valuePrecision) / valuePrecision
}
