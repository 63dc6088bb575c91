package fitting

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// paramString renders a map of named parameters as a stable "k=v, k=v"
// string with 4-decimal floats, matching distribution.Spec.Args' format.
func paramString(params map[string]float64) string {
	order := paramOrder(params)
	parts := make([]string, 0, len(order))
	for _, k := range order {
		parts = append(parts, fmt.Sprintf("%s=%.4f", k, params[k]))
	}
	return strings.Join(parts, ", ")
}

// paramStringInt renders integer-valued parameters (IntUniform).
func paramStringInt(params map[string]float64) string {
	order := paramOrder(params)
	parts := make([]string, 0, len(order))
	for _, k := range order {
		parts = append(parts, fmt.Sprintf("%s=%d", k, int64(math.Round(params[k]))))
	}
	return strings.Join(parts, ", ")
}

// paramOrder gives a stable, spec-matching key order for known parameter
// names and falls back to alphabetical for anything else.
func paramOrder(params map[string]float64) []string {
	preferred := []string{"rate", "shape", "loc", "scale", "min", "max", "lambda", "value"}
	seen := make(map[string]bool, len(params))
	var order []string
	for _, k := range preferred {
		if _, ok := params[k]; ok {
			order = append(order, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range params {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// weibullMLE estimates the Weibull shape (k) and scale (lambda) parameters
// by Newton-Raphson on the MLE estimating equation for the shape, then
// solving for scale in closed form. Returns ok=false if the iteration does
// not converge to a usable value.
func weibullMLE(v []float64) (shape, scale float64, ok bool) {
	n := float64(len(v))
	if n == 0 {
		return 0, 0, false
	}
	for _, x := range v {
		if x <= 0 {
			return 0, 0, false
		}
	}
	lnx := make([]float64, len(v))
	sumLn := 0.0
	for i, x := range v {
		lnx[i] = math.Log(x)
		sumLn += lnx[i]
	}
	meanLn := sumLn / n

	k := 1.0 // initial guess
	for iter := 0; iter < 100; iter++ {
		var sumXkLnx, sumXk float64
		for i, x := range v {
			xk := math.Pow(x, k)
			sumXk += xk
			sumXkLnx += xk * lnx[i]
		}
		if sumXk <= 0 {
			return 0, 0, false
		}
		f := sumXkLnx/sumXk - 1.0/k - meanLn
		// analytic derivative of f with respect to k
		var sumXkLnx2 float64
		for i, x := range v {
			xk := math.Pow(x, k)
			sumXkLnx2 += xk * lnx[i] * lnx[i]
		}
		fPrime := (sumXkLnx2*sumXk - sumXkLnx*sumXkLnx) / (sumXk * sumXk) + 1.0/(k*k)
		if fPrime == 0 || math.IsNaN(fPrime) {
			break
		}
		next := k - f/fPrime
		if next <= 0 || math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		if math.Abs(next-k) < 1e-9 {
			k = next
			break
		}
		k = next
	}
	if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return 0, 0, false
	}
	var sumXk float64
	for _, x := range v {
		sumXk += math.Pow(x, k)
	}
	lambda := math.Pow(sumXk/n, 1.0/k)
	if lambda <= 0 || math.IsNaN(lambda) || math.IsInf(lambda, 0) {
		return 0, 0, false
	}
	return k, lambda, true
}
