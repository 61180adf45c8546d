package anomaly

const sqrtIterations = 10

// mean returns the arithmetic mean, 0 for no values.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// stdDev is the population standard deviation sqrt(sum((x-mean)^2)/n).
func stdDev(values []float64, mu float64) float64 {
	if len(values) == 0 {
		return 0
	}
	squaredDiffs := 0.0
	for _, v := range values {
		d := v - mu
		squaredDiffs += d * d
	}
	return newtonSqrt(squaredDiffs / float64(len(values)))
}

// newtonSqrt runs a fixed 10 Newton iterations from x0 = n/2.
func newtonSqrt(n float64) float64 {
	if n <= 0 {
		return 0
	}
	x := n / 2.0
	for range sqrtIterations {
		x = (x + n/x) / 2.0
	}
	return x
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
