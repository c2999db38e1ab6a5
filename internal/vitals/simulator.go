// Package vitals simulates wearable sensor readings for a session.
package vitals

import (
	"math"
	"math/rand/v2"

	"mindbot-vr/internal/triage"
)

// Range is a closed interval [Min, Max].
type Range struct {
	Min float64
	Max float64
}

func (r Range) uniform(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

func (r Range) clamp(v float64) float64 {
	return math.Min(r.Max, math.Max(r.Min, v))
}

// Channel describes how one vital drifts between readings.
type Channel struct {
	Initial Range
	Target  Range
	Alpha   float64
	Noise   Range
	// SpikeChance is the per-step probability of drifting toward Spike
	// instead of Target. Zero disables spikes.
	SpikeChance float64
	Spike       Range
	Bounds      Range
}

type Config struct {
	Pulse       Channel
	Temperature Channel
	Oxygen      Channel
	AirQuality  Channel
}

func DefaultConfig() Config {
	return Config{
		Pulse: Channel{
			Initial:     Range{72, 88},
			Target:      Range{68, 96},
			Alpha:       0.15,
			Noise:       Range{-1.2, 1.6},
			SpikeChance: 0.02,
			Spike:       Range{118, 140},
			Bounds:      Range{45, 150},
		},
		Temperature: Channel{
			Initial:     Range{36.4, 36.9},
			Target:      Range{36.4, 37.2},
			Alpha:       0.12,
			Noise:       Range{-0.03, 0.05},
			SpikeChance: 0.01,
			Spike:       Range{38.2, 39.6},
			Bounds:      Range{35.5, 40.5},
		},
		Oxygen: Channel{
			Initial: Range{96, 99},
			Target:  Range{95.5, 99.2},
			Alpha:   0.15,
			Noise:   Range{-0.2, 0.18},
			Bounds:  Range{88, 100},
		},
		AirQuality: Channel{
			Initial: Range{450, 850},
			Target:  Range{420, 980},
			Alpha:   0.10,
			Noise:   Range{-18, 25},
			Bounds:  Range{350, 2000},
		},
	}
}

// SmoothStep moves prev toward target by alpha, clamped to [0, 1].
func SmoothStep(prev, target, alpha float64) float64 {
	alpha = math.Min(1, math.Max(0, alpha))
	return prev + (target-prev)*alpha
}

// Round rounds pulse, temperature and oxygen to one decimal and air quality
// to a whole number.
func Round(s triage.VitalsSample) triage.VitalsSample {
	return triage.VitalsSample{
		PulseBPM:      roundTo(s.PulseBPM, 10),
		TemperatureC:  roundTo(s.TemperatureC, 10),
		OxygenPercent: roundTo(s.OxygenPercent, 10),
		AirQualityPPM: math.Round(s.AirQualityPPM),
	}
}

func roundTo(v, scale float64) float64 {
	return math.Round(v*scale) / scale
}

// Simulator produces readings from an injected random source. It is not
// safe for concurrent use; Store serializes access to it.
type Simulator struct {
	cfg Config
	rng *rand.Rand
}

func NewSimulator(cfg Config, rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulator{cfg: cfg, rng: rng}
}

// Initial draws a fresh unrounded state.
func (s *Simulator) Initial() triage.VitalsSample {
	return triage.VitalsSample{
		PulseBPM:      s.cfg.Pulse.Initial.uniform(s.rng),
		TemperatureC:  s.cfg.Temperature.Initial.uniform(s.rng),
		OxygenPercent: s.cfg.Oxygen.Initial.uniform(s.rng),
		AirQualityPPM: s.cfg.AirQuality.Initial.uniform(s.rng),
	}
}

// Next advances state one step and returns the new unrounded state.
// Callers keep the unrounded value and publish Round(next).
func (s *Simulator) Next(state triage.VitalsSample) triage.VitalsSample {
	return triage.VitalsSample{
		PulseBPM:      s.step(s.cfg.Pulse, state.PulseBPM),
		TemperatureC:  s.step(s.cfg.Temperature, state.TemperatureC),
		OxygenPercent: s.step(s.cfg.Oxygen, state.OxygenPercent),
		AirQualityPPM: s.step(s.cfg.AirQuality, state.AirQualityPPM),
	}
}

func (s *Simulator) step(ch Channel, prev float64) float64 {
	target := ch.Target.uniform(s.rng)
	if ch.SpikeChance > 0 && s.rng.Float64() < ch.SpikeChance {
		target = ch.Spike.uniform(s.rng)
	}
	next := SmoothStep(prev, target, ch.Alpha) + ch.Noise.uniform(s.rng)
	return ch.Bounds.clamp(next)
}
