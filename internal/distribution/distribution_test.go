package distribution

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
)

func TestParseUnknownFamily(t *testing.T) {
	if _, err := Parse("bogus", "value=1"); err == nil {
		t.Fatal("expected error for unknown family")
	}
}

func TestParseMissingParam(t *testing.T) {
	if _, err := Parse("Uniform", "min=1"); err == nil {
		t.Fatal("expected error for missing max")
	}
}

func TestParseAliases(t *testing.T) {
	spec, err := Parse("Uniform", "low=1, high=5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Params["min"] != 1 || spec.Params["max"] != 5 {
		t.Fatalf("alias normalization failed: %+v", spec.Params)
	}
}

func TestConstantSample(t *testing.T) {
	spec, err := Parse("Constant", "value=7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	d := spec.Bind(rng)
	for i := 0; i < 5; i++ {
		if got := d.Sample(); got != 7 {
			t.Fatalf("Constant sample = %v, want 7", got)
		}
	}
}

func TestNoArrivalSample(t *testing.T) {
	spec, err := Parse("NoArrival", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	d := spec.Bind(rng)
	if got := d.Sample(); !math.IsInf(got, 1) {
		t.Fatalf("NoArrival sample = %v, want +Inf", got)
	}
}

func TestIntUniformInclusive(t *testing.T) {
	spec, err := Parse("IntUniform", "min=2, max=4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rng := rand.New(rand.NewSource(42))
	d := spec.Bind(rng)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		v := d.Sample()
		if v != math.Trunc(v) || v < 2 || v > 4 {
			t.Fatalf("IntUniform sample out of range: %v", v)
		}
		seen[int(v)] = true
	}
	for _, want := range []int{2, 3, 4} {
		if !seen[want] {
			t.Errorf("never sampled %d in 500 draws", want)
		}
	}
}

func TestExponentialMeanApprox(t *testing.T) {
	spec, err := Parse("Exponential", "rate=0.5, loc=0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rng := rand.New(rand.NewSource(7))
	d := spec.Bind(rng)
	sum := 0.0
	const n = 20000
	for i := 0; i < n; i++ {
		sum += d.Sample()
	}
	mean := sum / n
	want := 1.0 / 0.5
	if math.Abs(mean-want)/want > 0.1 {
		t.Fatalf("sample mean %v too far from expected %v", mean, want)
	}
}

func TestArgsRoundTrip(t *testing.T) {
	spec, err := Parse("Weibull", "shape=1.5, loc=0, scale=3.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	args := spec.Args()
	spec2, err := Parse("Weibull", args)
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if spec2.Args() != args {
		t.Fatalf("args not stable: %q vs %q", args, spec2.Args())
	}
}
