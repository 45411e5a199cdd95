package monitoring

import (
	"math"
	"sort"
)

// KSTest returns the two-sample Kolmogorov-Smirnov statistic and its
// asymptotic p-value. Empty samples yield (0, 1).
func KSTest(a, b []float64) (d, pValue float64) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 1
	}
	x := append([]float64(nil), a...)
	y := append([]float64(nil), b...)
	sort.Float64s(x)
	sort.Float64s(y)

	n, m := float64(len(x)), float64(len(y))
	i, j := 0, 0
	for i < len(x) && j < len(y) {
		v := math.Min(x[i], y[j])
		for i < len(x) && x[i] <= v {
			i++
		}
		for j < len(y) && y[j] <= v {
			j++
		}
		d = math.Max(d, math.Abs(float64(i)/n-float64(j)/m))
	}

	en := math.Sqrt(n * m / (n + m))
	return d, ksSurvival((en + 0.12 + 0.11/en) * d)
}

// ksSurvival is the Kolmogorov distribution tail Q(lambda).
func ksSurvival(lambda float64) float64 {
	if lambda < 1e-9 {
		return 1
	}
	const eps1, eps2 = 1e-6, 1e-16
	a2 := -2 * lambda * lambda
	sum, fac, prev := 0.0, 2.0, 0.0
	for j := 1; j <= 100; j++ {
		term := fac * math.Exp(a2*float64(j*j))
		sum += term
		if math.Abs(term) <= eps1*prev || math.Abs(term) <= eps2*sum {
			return clamp01(sum)
		}
		fac = -fac
		prev = math.Abs(term)
	}
	return 1
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var s float64
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}
