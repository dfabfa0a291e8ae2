package service

import (
	"fmt"
	"math"
)

const (
	minRating = 0.0
	maxRating = 5.0

	// Changes smaller than this are reported as stable.
	stableDelta = 0.02
)

// Forecast fits y = a·x + b by ordinary least squares over x = 1..n and
// returns the clamped prediction at x = n+1. NaN and infinite values are
// dropped before fitting. ok is false when nothing usable remains.
func Forecast(seq []float64) (ForecastPoint, bool) {
	ys := make([]float64, 0, len(seq))
	for _, v := range seq {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ys = append(ys, v)
	}

	n := len(ys)
	switch n {
	case 0:
		return ForecastPoint{}, false
	case 1:
		return ForecastPoint{NextIndex: 2, PredictedRating: clampRating(ys[0])}, true
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range ys {
		x := float64(i + 1)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	fn := float64(n)
	var slope float64
	if denom := fn*sumX2 - sumX*sumX; denom != 0 {
		slope = (fn*sumXY - sumX*sumY) / denom
	}
	intercept := (sumY - slope*sumX) / fn

	next := n + 1
	return ForecastPoint{
		NextIndex:       next,
		PredictedRating: clampRating(slope*float64(next) + intercept),
	}, true
}

// ForecastNext is Forecast without the index.
func ForecastNext(seq []float64) (float64, bool) {
	p, ok := Forecast(seq)
	return p.PredictedRating, ok
}

func clampRating(v float64) float64 {
	return math.Max(minRating, math.Min(maxRating, v))
}

// PercentChange is (forecast-last)/last, or 0 when last is 0.
func PercentChange(forecast, last float64) float64 {
	if last == 0 {
		return 0
	}
	return (forecast - last) / last
}

// FormatPercent renders a ratio as a signed percentage, e.g. "+12.5%".
func FormatPercent(ratio float64) string {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return "+0.0%"
	}
	pct := ratio * 100
	if math.Abs(pct) < 0.05 {
		pct = 0
	}
	return fmt.Sprintf("%+.1f%%", pct)
}

func direction(delta float64) string {
	switch {
	case math.Abs(delta) < stableDelta:
		return "remain roughly stable"
	case delta > 0:
		return "increase"
	default:
		return "decrease"
	}
}

// SummarizeTrend forecasts from the labelled semesters of a trend, in the
// order given. Unlabelled semesters are left out of the fit.
func SummarizeTrend(trend []SemesterTrendPoint) *ForecastSummary {
	values := make([]float64, 0, len(trend))
	var lastLabel string
	for _, p := range trend {
		if p.Semester == nil || *p.Semester == "" {
			continue
		}
		values = append(values, p.AvgSemesterRating)
		lastLabel = *p.Semester
	}

	forecast, ok := ForecastNext(values)
	if !ok {
		return nil
	}

	last := values[len(values)-1]
	pct := PercentChange(forecast, last)
	return &ForecastSummary{
		Forecast:      round2(forecast),
		LastSemester:  lastLabel,
		LastObserved:  last,
		PercentChange: pct,
		PercentLabel:  FormatPercent(pct),
		Direction:     direction(forecast - last),
		Points:        len(values),
	}
}
