// Package fitting implements the FittingEngine: given raw numeric samples,
// it chooses the best-fit parametric family by AIC and emits a canonical
// (Station, TimeRange, DistributionName, ArgumentList) record. Two
// variants are provided: FitInterarrival (continuous, non-negative gaps)
// and FitAlighting (discrete passenger counts).
package fitting

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"transitsim/internal/distribution"
)

// candidate is an internal (spec, AIC) pair used to pick the minimum-AIC
// family.
type candidate struct {
	spec distribution.Spec
	aic  float64
}

// FitInterarrival fits a continuous, non-negative distribution to
// interarrival-gap samples.
func FitInterarrival(values []float64) distribution.Spec {
	if guard, ok := commonGuard(values); ok {
		return guard
	}

	v := trimOutliers(values)

	var candidates []candidate

	if c, ok := fitExponential(v); ok {
		candidates = append(candidates, c)
	}
	if c, ok := fitWeibull(v); ok {
		candidates = append(candidates, c)
	}
	if c, ok := fitGamma(v); ok {
		candidates = append(candidates, c)
	}
	if c, ok := fitUniformContinuous(v); ok {
		candidates = append(candidates, c)
	}
	if c, ok := fitPoissonFromContinuous(v); ok {
		candidates = append(candidates, c)
	}

	best, ok := bestByAIC(candidates)
	if !ok {
		// Fallback: Exponential at sample MLE.
		mean := stat.Mean(v, nil)
		if mean <= 0 {
			mean = 1
		}
		return mustParse(distribution.Exponential, paramString(map[string]float64{"rate": 1.0 / mean, "loc": 0}))
	}
	return best.spec
}

// FitAlighting fits a discrete distribution to alighting-count samples.
func FitAlighting(values []float64) distribution.Spec {
	if guard, ok := commonGuard(values); ok {
		return guard
	}

	ints := make([]float64, len(values))
	for i, x := range values {
		ints[i] = math.Round(x)
	}
	if guard, ok := commonGuard(ints); ok {
		return guard
	}

	var candidates []candidate
	if c, ok := fitPoissonDiscrete(ints); ok {
		candidates = append(candidates, c)
	}
	if c, ok := fitIntUniform(ints); ok {
		candidates = append(candidates, c)
	}

	best, ok := bestByAIC(candidates)
	if !ok {
		mean := stat.Mean(ints, nil)
		return mustParse(distribution.Constant, paramString(map[string]float64{"value": mean}))
	}
	return best.spec
}

// commonGuard implements the shared empty/all-equal guards. Both fitters
// map an empty or all-equal sample to Constant, so the guard is handled
// once here.
func commonGuard(values []float64) (distribution.Spec, bool) {
	if len(values) == 0 {
		return mustParse(distribution.Constant, "value=0.0000"), true
	}
	allEqual := true
	for _, x := range values[1:] {
		if x != values[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return mustParse(distribution.Constant, paramString(map[string]float64{"value": values[0]})), true
	}
	return distribution.Spec{}, false
}

// trimOutliers drops samples above the 99th percentile when there are more
// than 10 samples, per spec §4.2.
func trimOutliers(values []float64) []float64 {
	if len(values) <= 10 {
		return values
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	upper := stat.Quantile(0.99, stat.Empirical, sorted, nil)
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v <= upper {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return values
	}
	return out
}

func fitExponential(v []float64) (candidate, bool) {
	mean := stat.Mean(v, nil)
	if mean <= 0 {
		return candidate{}, false
	}
	rate := 1.0 / mean
	d := distuv.Exponential{Rate: rate}
	logL := sumLogProb(d, v)
	spec := mustParse(distribution.Exponential, paramString(map[string]float64{"rate": rate, "loc": 0}))
	return candidate{spec: spec, aic: aic(1, logL)}, isFinite(logL)
}

func fitWeibull(v []float64) (candidate, bool) {
	shape, scale, ok := weibullMLE(v)
	if !ok || shape < 0.2 {
		return candidate{}, false
	}
	d := distuv.Weibull{K: shape, Lambda: scale}
	logL := sumLogProb(d, v)
	if !isFinite(logL) {
		return candidate{}, false
	}
	spec := mustParse(distribution.Weibull, paramString(map[string]float64{"shape": shape, "loc": 0, "scale": scale}))
	return candidate{spec: spec, aic: aic(2, logL)}, true
}

func fitGamma(v []float64) (candidate, bool) {
	mean, variance := stat.MeanVariance(v, nil)
	if mean <= 0 || variance <= 0 {
		return candidate{}, false
	}
	shape := mean * mean / variance
	scale := variance / mean
	if shape < 0.2 {
		return candidate{}, false
	}
	d := distuv.Gamma{Alpha: shape, Beta: 1.0 / scale}
	logL := sumLogProb(d, v)
	if !isFinite(logL) {
		return candidate{}, false
	}
	spec := mustParse(distribution.Gamma, paramString(map[string]float64{"shape": shape, "loc": 0, "scale": scale}))
	return candidate{spec: spec, aic: aic(2, logL)}, true
}

func fitUniformContinuous(v []float64) (candidate, bool) {
	lo, hi := minMax(v)
	if hi < lo {
		return candidate{}, false
	}
	d := distuv.Uniform{Min: lo, Max: hi}
	logL := sumLogProb(d, v)
	if !isFinite(logL) {
		return candidate{}, false
	}
	spec := mustParse(distribution.Uniform, paramString(map[string]float64{"min": lo, "max": hi}))
	return candidate{spec: spec, aic: aic(2, logL)}, true
}

func fitPoissonFromContinuous(v []float64) (candidate, bool) {
	lam := stat.Mean(v, nil)
	if lam <= 0 {
		return candidate{}, false
	}
	rounded := make([]float64, len(v))
	for i, x := range v {
		rounded[i] = math.Round(x)
	}
	d := distuv.Poisson{Lambda: lam}
	logL := sumLogProb(d, rounded)
	if !isFinite(logL) {
		return candidate{}, false
	}
	spec := mustParse(distribution.Poisson, paramString(map[string]float64{"lambda": lam}))
	return candidate{spec: spec, aic: aic(1, logL)}, true
}

func fitPoissonDiscrete(v []float64) (candidate, bool) {
	lam := stat.Mean(v, nil)
	if lam <= 0 {
		return candidate{}, false
	}
	d := distuv.Poisson{Lambda: lam}
	logL := sumLogProb(d, v)
	if !isFinite(logL) {
		return candidate{}, false
	}
	spec := mustParse(distribution.Poisson, paramString(map[string]float64{"lambda": lam}))
	return candidate{spec: spec, aic: aic(1, logL)}, true
}

func fitIntUniform(v []float64) (candidate, bool) {
	lo, hi := minMax(v)
	n := hi - lo + 1
	if n <= 0 {
		return candidate{}, false
	}
	logP := -math.Log(n)
	logL := logP * float64(len(v))
	if !isFinite(logL) {
		return candidate{}, false
	}
	spec := mustParse(distribution.IntUniform, paramStringInt(map[string]float64{"min": lo, "max": hi}))
	return candidate{spec: spec, aic: aic(2, logL)}, true
}

func bestByAIC(candidates []candidate) (candidate, bool) {
	if len(candidates) == 0 {
		return candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.aic < best.aic {
			best = c
		}
	}
	return best, true
}

func aic(k int, logL float64) float64 { return 2*float64(k) - 2*logL }

func sumLogProb(d interface{ LogProb(float64) float64 }, v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += d.LogProb(x)
	}
	return sum
}

func isFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

func minMax(v []float64) (float64, float64) {
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}

func mustParse(fam distribution.Family, args string) distribution.Spec {
	spec, err := distribution.Parse(string(fam), args)
	if err != nil {
		// Construction here uses internally-derived parameters; a failure
		// indicates a bug in this package, not bad external input.
		panic("fitting: internal spec construction failed: " + err.Error())
	}
	return spec
}
