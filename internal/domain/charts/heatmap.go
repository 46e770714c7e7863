package charts

import (
	"errors"
	"fmt"
	"math"

	"github.com/bryanwahyu/datascope/internal/domain/analytics"
)

var (
	// ErrFractionalTick is returned when an axis tick is not an integer index.
	ErrFractionalTick = errors.New("tick value is not an integer index")
	// ErrTickOutOfRange is returned when an axis tick has no matching label.
	ErrTickOutOfRange = errors.New("tick index out of range")
)

const heatmapPointRadius = 10

// HeatmapPoints emits one point per ordered (x, y) pair of correlation labels,
// self-pairs included, in row-major order.
func HeatmapPoints(m analytics.Matrix) []Point {
	out := make([]Point, 0, len(m.Labels)*len(m.Labels))
	for i, x := range m.Labels {
		for j, y := range m.Labels {
			out = append(out, Point{X: i, Y: j, V: m.At(x, y)})
		}
	}
	return out
}

// Heatmap fakes a heatmap with a scatter chart whose axis ticks are integer
// indices into the label list.
func Heatmap(m analytics.Matrix) Config {
	names := make([]string, len(m.Labels))
	copy(names, m.Labels)

	axis := Scale{Ticks: Ticks{StepSize: 1, Precision: 0, Labels: names}}
	opts := defaultOptions()
	opts.Scales = map[string]Scale{"x": axis, "y": axis}

	return Config{
		Type: TypeScatter,
		Data: Data{
			Datasets: []Dataset{{
				Points:      HeatmapPoints(m),
				PointRadius: heatmapPointRadius,
			}},
		},
		Options: opts,
	}
}

// TickLabel maps an axis tick value back to its column name. Only integral
// values inside the label list resolve.
func TickLabel(labels []string, v float64) (string, error) {
	if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
		return "", fmt.Errorf("%w: %v", ErrFractionalTick, v)
	}
	i := int(v)
	if i < 0 || i >= len(labels) {
		return "", fmt.Errorf("%w: %d of %d", ErrTickOutOfRange, i, len(labels))
	}
	return labels[i], nil
}
