package sweep

import (
	"math"
	"strings"
	"testing"

	"github.com/ridgeline-data/ascent.report/internal/elevation"
	"github.com/ridgeline-data/ascent.report/internal/groundtruth"
)

// climbTrack builds a synthetic ride: a steady climb with a small sinusoidal
// ripple, sampled every 5 m.
func climbTrack(name string, lengthM float64) Track {
	n := int(lengthM/5) + 1
	samples := make(elevation.Trace, n)
	for i := 0; i < n; i++ {
		d := float64(i) * 5
		samples[i] = elevation.Sample{
			DistanceM:  d,
			ElevationM: 100 + 0.05*d + 2*math.Sin(d/40),
		}
	}
	return Track{Name: name, Trace: samples}
}

type panicLookup struct{}

func (panicLookup) GainM(string) uint32 { panic("lookup exploded") }

func TestEvaluateWithTruth(t *testing.T) {
	track := climbTrack("ride.json", 2000)
	truth := groundtruth.Map{"ride.json": 100}

	ev := Evaluator{Truth: truth}
	got := ev.Evaluate(elevation.DefaultParams(), track)

	if got.Err != "" {
		t.Fatalf("unexpected error: %s", got.Err)
	}
	if got.Track != "ride.json" {
		t.Errorf("Track = %q", got.Track)
	}
	if !got.HasTruth || got.TruthGainM != 100 {
		t.Errorf("truth not applied: HasTruth=%v TruthGainM=%f", got.HasTruth, got.TruthGainM)
	}
	if got.AccuracyPct != got.GainM/100*100 {
		t.Errorf("AccuracyPct = %f for gain %f", got.AccuracyPct, got.GainM)
	}
	if got.RawGainM <= 0 {
		t.Errorf("RawGainM = %f, want positive", got.RawGainM)
	}
	// Smoothing should not inflate gain above the raw accumulation.
	if got.GainM > got.RawGainM {
		t.Errorf("processed gain %f exceeds raw gain %f", got.GainM, got.RawGainM)
	}
}

func TestEvaluateWithoutTruth(t *testing.T) {
	track := climbTrack("unknown.json", 1000)

	got := Evaluator{Truth: groundtruth.Map{}}.Evaluate(elevation.DefaultParams(), track)
	if got.Err != "" {
		t.Fatalf("unexpected error: %s", got.Err)
	}
	if got.HasTruth || got.AccuracyPct != 0 {
		t.Errorf("no-truth track should not be scored: %+v", got)
	}

	got = Evaluator{}.Evaluate(elevation.DefaultParams(), track)
	if got.HasTruth {
		t.Error("nil lookup should not mark truth")
	}
}

func TestEvaluateEmptyTrace(t *testing.T) {
	got := Evaluator{}.Evaluate(elevation.DefaultParams(), Track{Name: "empty.json"})
	if got.Err == "" {
		t.Fatal("empty trace should report an error")
	}
	if got.GainM != 0 || got.LossM != 0 {
		t.Errorf("failed evaluation should carry zero results: %+v", got)
	}
}

func TestEvaluateContainsPanics(t *testing.T) {
	track := climbTrack("ride.json", 500)
	got := Evaluator{Truth: panicLookup{}}.Evaluate(elevation.DefaultParams(), track)
	if !strings.Contains(got.Err, "panic") {
		t.Errorf("panic should be captured in Err, got %q", got.Err)
	}
}
