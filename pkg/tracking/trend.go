package tracking

// Trend is the dominant direction of a sampled altitude sequence.
type Trend int

const (
	// TrendUnknown is the state before any sample has been classified.
	// ClassifyTrend never returns it.
	TrendUnknown Trend = iota
	TrendIncrease
	TrendDecrease
)

func (t Trend) String() string {
	switch t {
	case TrendIncrease:
		return "increase"
	case TrendDecrease:
		return "decrease"
	default:
		return "unknown"
	}
}

// ClassifyTrend guesses whether values are mostly rising or mostly falling.
//
// Every adjacent pair (v[i], v[i+1]) with v[i] > v[i+1] counts as decreasing.
// The result is TrendDecrease only when decreasing pairs strictly exceed
// floor(pairs/2); an exact split resolves to TrendIncrease.
// values must hold at least two elements.
func ClassifyTrend(values []float64) Trend {
	pairs := len(values) - 1
	threshold := int(float64(pairs) * 0.5)

	decreasing := 0
	for i := 0; i < pairs; i++ {
		if values[i] > values[i+1] {
			decreasing++
		}
	}

	if decreasing > threshold {
		return TrendDecrease
	}
	return TrendIncrease
}
