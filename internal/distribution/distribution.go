// Package distribution parses and samples the parametric families used by
// demand rules: a name plus a "k=v, k=v" argument string becomes a
// Spec, and a Spec is bound to a shared RNG stream to become a
// sampleable Distribution. Binding is deferred so the same parsed Spec can
// be reused across runs with different seeds.
package distribution

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Family names a recognized distribution kind. Matching is case-insensitive
// at parse time; Family itself is always the canonical capitalized form.
type Family string

const (
	Constant    Family = "Constant"
	Poisson     Family = "Poisson"
	Exponential Family = "Exponential"
	Weibull     Family = "Weibull"
	Gamma       Family = "Gamma"
	Uniform     Family = "Uniform"
	IntUniform  Family = "IntUniform"
	NoArrival   Family = "NoArrival"
)

// InvalidDistributionError reports an unknown family or a missing/invalid
// parameter while parsing a Spec.
type InvalidDistributionError struct {
	Name string
	Msg  string
}

func (e *InvalidDistributionError) Error() string {
	return fmt.Sprintf("invalid distribution %q: %s", e.Name, e.Msg)
}

// Spec is a parsed, RNG-independent distribution description.
type Spec struct {
	Family Family
	Params map[string]float64
}

// Distribution is a Spec bound to a shared random stream, ready to sample.
type Distribution interface {
	// Sample draws the next value. NoArrival always returns +Inf.
	Sample() float64
	Family() Family
	// Args renders the canonical, re-parseable "k=v, k=v" argument string.
	Args() string
}

// Parse turns a (name, "k=v,k=v") pair into a Spec. Name matching is
// case-insensitive; unknown names or missing required parameters return an
// *InvalidDistributionError.
func Parse(name, args string) (Spec, error) {
	fam, err := normalizeFamily(name)
	if err != nil {
		return Spec{}, err
	}
	kv, err := parseArgs(args)
	if err != nil {
		return Spec{}, &InvalidDistributionError{Name: name, Msg: err.Error()}
	}
	spec := Spec{Family: fam, Params: kv}
	if err := spec.validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

func normalizeFamily(name string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "constant":
		return Constant, nil
	case "poisson":
		return Poisson, nil
	case "exponential":
		return Exponential, nil
	case "weibull":
		return Weibull, nil
	case "gamma":
		return Gamma, nil
	case "uniform":
		return Uniform, nil
	case "intuniform":
		return IntUniform, nil
	case "noarrival", "no arrival", "no_arrival":
		return NoArrival, nil
	default:
		return "", &InvalidDistributionError{Name: name, Msg: "unknown distribution family"}
	}
}

func parseArgs(args string) (map[string]float64, error) {
	kv := make(map[string]float64)
	args = strings.TrimSpace(args)
	if args == "" {
		return kv, nil
	}
	for _, part := range strings.Split(args, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			return nil, fmt.Errorf("malformed parameter %q", part)
		}
		key := strings.ToLower(strings.TrimSpace(part[:eq]))
		valStr := strings.TrimSpace(part[eq+1:])
		v, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed value for %q: %w", key, err)
		}
		// normalize aliases
		switch key {
		case "low":
			key = "min"
		case "high":
			key = "max"
		}
		kv[key] = v
	}
	return kv, nil
}

func (s Spec) require(keys ...string) error {
	for _, k := range keys {
		if _, ok := s.Params[k]; !ok {
			return &InvalidDistributionError{Name: string(s.Family), Msg: fmt.Sprintf("missing required parameter %q", k)}
		}
	}
	return nil
}

func (s Spec) validate() error {
	switch s.Family {
	case Constant:
		return s.require("value")
	case Poisson:
		if err := s.require("lambda"); err != nil {
			return err
		}
		if s.Params["lambda"] < 0 {
			return &InvalidDistributionError{Name: string(s.Family), Msg: "lambda must be >= 0"}
		}
	case Exponential:
		if err := s.require("rate"); err != nil {
			return err
		}
		if s.Params["rate"] <= 0 {
			return &InvalidDistributionError{Name: string(s.Family), Msg: "rate must be > 0"}
		}
	case Weibull:
		if err := s.require("shape", "scale"); err != nil {
			return err
		}
		if s.Params["shape"] <= 0 || s.Params["scale"] <= 0 {
			return &InvalidDistributionError{Name: string(s.Family), Msg: "shape and scale must be > 0"}
		}
	case Gamma:
		if err := s.require("shape", "scale"); err != nil {
			return err
		}
		if s.Params["shape"] <= 0 || s.Params["scale"] <= 0 {
			return &InvalidDistributionError{Name: string(s.Family), Msg: "shape and scale must be > 0"}
		}
	case Uniform:
		if err := s.require("min", "max"); err != nil {
			return err
		}
		if s.Params["max"] < s.Params["min"] {
			return &InvalidDistributionError{Name: string(s.Family), Msg: "max must be >= min"}
		}
	case IntUniform:
		if err := s.require("min", "max"); err != nil {
			return err
		}
		if s.Params["max"] < s.Params["min"] {
			return &InvalidDistributionError{Name: string(s.Family), Msg: "max must be >= min"}
		}
	case NoArrival:
		// no parameters required
	default:
		return &InvalidDistributionError{Name: string(s.Family), Msg: "unknown family"}
	}
	return nil
}

func (s Spec) loc() float64 {
	return s.Params["loc"]
}

// Args renders the canonical argument string for this spec, matching the
// emission format of the fitting engine (4-decimal floats, integers for
// IntUniform).
func (s Spec) Args() string {
	f := func(k string) string { return strconv.FormatFloat(s.Params[k], 'f', 4, 64) }
	switch s.Family {
	case Constant:
		return fmt.Sprintf("value=%s", f("value"))
	case Poisson:
		return fmt.Sprintf("lambda=%s", f("lambda"))
	case Exponential:
		return fmt.Sprintf("rate=%s, loc=%s", f("rate"), f("loc"))
	case Weibull, Gamma:
		return fmt.Sprintf("shape=%s, loc=%s, scale=%s", f("shape"), f("loc"), f("scale"))
	case Uniform:
		return fmt.Sprintf("min=%s, max=%s", f("min"), f("max"))
	case IntUniform:
		return fmt.Sprintf("min=%d, max=%d", int64(s.Params["min"]), int64(s.Params["max"]))
	case NoArrival:
		return ""
	default:
		keys := make([]string, 0, len(s.Params))
		for k := range s.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, f(k)))
		}
		return strings.Join(parts, ", ")
	}
}

// Bind attaches a Spec to a shared RNG stream, producing a sampleable
// Distribution. The same RNG instance should be reused across every
// Distribution in a run so that a fixed seed reproduces the same draw
// sequence deterministically.
func (s Spec) Bind(rng *rand.Rand) Distribution {
	return &boundDistribution{spec: s, rng: rng}
}

type boundDistribution struct {
	spec Spec
	rng  *rand.Rand
}

func (b *boundDistribution) Family() Family { return b.spec.Family }
func (b *boundDistribution) Args() string   { return b.spec.Args() }

func (b *boundDistribution) Sample() float64 {
	p := b.spec.Params
	switch b.spec.Family {
	case Constant:
		return p["value"]
	case NoArrival:
		return math.Inf(1)
	case Poisson:
		d := distuv.Poisson{Lambda: p["lambda"], Src: b.rng}
		return d.Rand()
	case Exponential:
		d := distuv.Exponential{Rate: p["rate"], Src: b.rng}
		return d.Rand() + b.spec.loc()
	case Weibull:
		d := distuv.Weibull{K: p["shape"], Lambda: p["scale"], Src: b.rng}
		return d.Rand() + b.spec.loc()
	case Gamma:
		// gonum's Gamma is parameterized by rate (Beta = 1/scale).
		d := distuv.Gamma{Alpha: p["shape"], Beta: 1.0 / p["scale"], Src: b.rng}
		return d.Rand() + b.spec.loc()
	case Uniform:
		d := distuv.Uniform{Min: p["min"], Max: p["max"], Src: b.rng}
		return d.Rand() + b.spec.loc()
	case IntUniform:
		lo := int64(p["min"])
		hi := int64(p["max"])
		return float64(lo + int64(b.rng.Int63n(hi-lo+1)))
	default:
		return math.NaN()
	}
}
