package vitals

import (
	"math"
	"math/rand/v2"
	"testing"

	"mindbot-vr/internal/triage"
)

func newTestSimulator(seed uint64) *Simulator {
	return NewSimulator(DefaultConfig(), rand.New(rand.NewPCG(seed, seed+1)))
}

func TestSmoothStep(t *testing.T) {
	tests := []struct {
		prev, target, alpha, want float64
	}{
		{prev: 10, target: 20, alpha: 0.5, want: 15},
		{prev: 10, target: 20, alpha: 0, want: 10},
		{prev: 10, target: 20, alpha: 1, want: 20},
		{prev: 10, target: 20, alpha: 3, want: 20},
		{prev: 10, target: 20, alpha: -1, want: 10},
	}
	for _, tt := range tests {
		if got := SmoothStep(tt.prev, tt.target, tt.alpha); got != tt.want {
			t.Fatalf("SmoothStep(%v, %v, %v) = %v, want %v", tt.prev, tt.target, tt.alpha, got, tt.want)
		}
	}
}

func TestInitialStateWithinRanges(t *testing.T) {
	cfg := DefaultConfig()
	sim := newTestSimulator(1)
	for i := 0; i < 500; i++ {
		s := sim.Initial()
		assertIn(t, "pulse", s.PulseBPM, cfg.Pulse.Initial)
		assertIn(t, "temperature", s.TemperatureC, cfg.Temperature.Initial)
		assertIn(t, "oxygen", s.OxygenPercent, cfg.Oxygen.Initial)
		assertIn(t, "air", s.AirQualityPPM, cfg.AirQuality.Initial)
	}
}

func TestNextStaysWithinBounds(t *testing.T) {
	cfg := DefaultConfig()
	sim := newTestSimulator(7)
	state := sim.Initial()
	for i := 0; i < 10000; i++ {
		state = sim.Next(state)
		out := Round(state)
		assertIn(t, "pulse", out.PulseBPM, cfg.Pulse.Bounds)
		assertIn(t, "temperature", out.TemperatureC, cfg.Temperature.Bounds)
		assertIn(t, "oxygen", out.OxygenPercent, cfg.Oxygen.Bounds)
		assertIn(t, "air", out.AirQualityPPM, cfg.AirQuality.Bounds)
	}
}

func TestNextClampsRunawayState(t *testing.T) {
	sim := newTestSimulator(3)
	got := sim.Next(triage.VitalsSample{PulseBPM: 1000, TemperatureC: 100, OxygenPercent: 200, AirQualityPPM: 1e6})
	if got.PulseBPM != 150 || got.TemperatureC != 40.5 || got.OxygenPercent != 100 || got.AirQualityPPM != 2000 {
		t.Fatalf("Next() = %+v, want every vital at its upper bound", got)
	}

	got = sim.Next(triage.VitalsSample{PulseBPM: -1000, TemperatureC: -100, OxygenPercent: -200, AirQualityPPM: -1e6})
	if got.PulseBPM != 45 || got.TemperatureC != 35.5 || got.OxygenPercent != 88 || got.AirQualityPPM != 350 {
		t.Fatalf("Next() = %+v, want every vital at its lower bound", got)
	}
}

func TestSimulatorIsDeterministicForSeed(t *testing.T) {
	a, b := newTestSimulator(42), newTestSimulator(42)
	sa, sb := a.Initial(), b.Initial()
	for i := 0; i < 50; i++ {
		sa, sb = a.Next(sa), b.Next(sb)
		if sa != sb {
			t.Fatalf("step %d diverged: %+v vs %+v", i, sa, sb)
		}
	}
}

func TestSpikeAlwaysTaken(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pulse.SpikeChance = 1
	cfg.Pulse.Alpha = 1
	cfg.Pulse.Noise = Range{}
	sim := NewSimulator(cfg, rand.New(rand.NewPCG(5, 6)))

	for i := 0; i < 100; i++ {
		got := sim.Next(sim.Initial())
		assertIn(t, "spiked pulse", got.PulseBPM, cfg.Pulse.Spike)
	}
}

func TestRound(t *testing.T) {
	got := Round(triage.VitalsSample{PulseBPM: 88.26, TemperatureC: 36.94, OxygenPercent: 97.06, AirQualityPPM: 612.5})
	want := triage.VitalsSample{PulseBPM: 88.3, TemperatureC: 36.9, OxygenPercent: 97.1, AirQualityPPM: 613}
	if math.Abs(got.PulseBPM-want.PulseBPM) > 1e-9 ||
		math.Abs(got.TemperatureC-want.TemperatureC) > 1e-9 ||
		math.Abs(got.OxygenPercent-want.OxygenPercent) > 1e-9 ||
		got.AirQualityPPM != want.AirQualityPPM {
		t.Fatalf("Round() = %+v, want %+v", got, want)
	}
}

func TestAlerts(t *testing.T) {
	if got := Alerts(triage.VitalsSample{PulseBPM: 110, TemperatureC: 38}); len(got) != 0 {
		t.Fatalf("Alerts(at thresholds) = %v, want none", got)
	}
	got := Alerts(triage.VitalsSample{PulseBPM: 111, TemperatureC: 38.4})
	if len(got) != 2 || got[0] != AlertHighPulse || got[1] != AlertFever {
		t.Fatalf("Alerts() = %v", got)
	}
}

func assertIn(t *testing.T, name string, v float64, r Range) {
	t.Helper()
	if v < r.Min || v > r.Max {
		t.Fatalf("%s = %v, want within [%v, %v]", name, v, r.Min, r.Max)
	}
}
