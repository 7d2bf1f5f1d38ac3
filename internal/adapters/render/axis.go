package render

import (
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
)

// linearTicks returns evenly spaced ticks from 0 covering max, using a step
// of 1, 2, 2.5 or 5 times a power of ten.
func linearTicks(max float64, want int) []chart.Tick {
	if max <= 0 || math.IsNaN(max) || math.IsInf(max, 0) {
		max = 1
	}
	raw := max / float64(want)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := 10 * mag
	for _, c := range []float64{1, 2, 2.5, 5} {
		if c*mag >= raw {
			step = c * mag
			break
		}
	}

	top := math.Ceil(max/step) * step
	ticks := make([]chart.Tick, 0, int(top/step)+1)
	for i := 0; float64(i)*step <= top+step/2; i++ {
		v := float64(i) * step
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v)})
	}
	return ticks
}

// decadeTicks labels log10-transformed positions 0..n with 1, 10, 100, ...
func decadeTicks(maxLog float64) []chart.Tick {
	top := int(math.Ceil(maxLog))
	if top < 1 {
		top = 1
	}
	ticks := make([]chart.Tick, 0, top+1)
	for e := 0; e <= top; e++ {
		ticks = append(ticks, chart.Tick{Value: float64(e), Label: formatTick(math.Pow(10, float64(e)))})
	}
	return ticks
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}

func tickRange(ticks []chart.Tick, descending bool) *chart.ContinuousRange {
	return &chart.ContinuousRange{
		Min:        ticks[0].Value,
		Max:        ticks[len(ticks)-1].Value,
		Descending: descending,
	}
}
