package analysis

// LinearTrend fits an ordinary least-squares line over the series index and
// returns the fitted value at each point. Fewer than two points yield a
// flat line at the single available value; an empty input yields an empty
// trend.
func LinearTrend(values []float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	if len(values) == 1 {
		return []float64{values[0]}
	}

	n := float64(len(values))
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	slope := (n*sumXY - sumX*sumY) / (n*sumX2 - sumX*sumX)
	intercept := (sumY - slope*sumX) / n

	trend := make([]float64, len(values))
	for i := range trend {
		trend[i] = slope*float64(i) + intercept
	}
	return trend
}

// ExtendTrend continues a fitted trend line futureLen steps past its end by
// repeating the final per-step delta instead of refitting. A trend of one
// point extends flat; an empty trend stays empty.
func ExtendTrend(trend []float64, futureLen int) []float64 {
	if len(trend) == 0 || futureLen <= 0 {
		return trend
	}
	var delta float64
	if len(trend) >= 2 {
		delta = trend[len(trend)-1] - trend[len(trend)-2]
	}
	out := make([]float64, len(trend), len(trend)+futureLen)
	copy(out, trend)
	last := trend[len(trend)-1]
	for i := 0; i < futureLen; i++ {
		last += delta
		out = append(out, last)
	}
	return out
}
