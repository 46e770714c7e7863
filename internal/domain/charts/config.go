package charts

import "encoding/json"

// Chart types understood by the page's charting library.
type Type string

const (
	TypeBar     Type = "bar"
	TypeLine    Type = "line"
	TypeScatter Type = "scatter"
)

// Render target ids. Each one names a canvas on the report page.
const (
	TargetBar      = "barChart"
	TargetHist     = "histChart"
	TargetVariance = "varianceChart"
	TargetMissing  = "missingChart"
	TargetOutlier  = "outlierChart"
	TargetHeatmap  = "heatmap"
)

// Targets lists the six render targets in build order.
var Targets = []string{
	TargetBar,
	TargetHist,
	TargetVariance,
	TargetMissing,
	TargetOutlier,
	TargetHeatmap,
}

// Config is a chart configuration in the shape the charting library consumes.
type Config struct {
	Type    Type    `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

type Data struct {
	Labels   []string  `json:"labels,omitempty"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset carries either plain values (category charts) or points (scatter).
type Dataset struct {
	Label       string    `json:"label,omitempty"`
	Data        []float64 `json:"-"`
	Points      []Point   `json:"-"`
	Tension     float64   `json:"tension,omitempty"`
	PointRadius int       `json:"pointRadius,omitempty"`
}

// Point is one heatmap cell: integer column indices and the coefficient.
type Point struct {
	X int     `json:"x"`
	Y int     `json:"y"`
	V float64 `json:"v"`
}

type Options struct {
	Responsive          bool             `json:"responsive"`
	MaintainAspectRatio bool             `json:"maintainAspectRatio"`
	Scales              map[string]Scale `json:"scales,omitempty"`
}

// Scale describes one axis. Labels is the index-to-name lookup table the
// page uses as a tick callback.
type Scale struct {
	Ticks Ticks `json:"ticks"`
}

type Ticks struct {
	StepSize  int      `json:"stepSize,omitempty"`
	Precision int      `json:"precision"`
	Labels    []string `json:"labels,omitempty"`
}

// Widget binds one config to one render target.
type Widget struct {
	Target string `json:"target"`
	Config Config `json:"config"`
}

func defaultOptions() Options {
	return Options{Responsive: true, MaintainAspectRatio: false}
}

// MarshalJSON emits "data" as the point list for scatter datasets and as the
// value list otherwise.
func (d Dataset) MarshalJSON() ([]byte, error) {
	type alias Dataset
	out := struct {
		alias
		Data any `json:"data"`
	}{alias: alias(d)}
	if d.Points != nil {
		out.Data = d.Points
	} else if d.Data != nil {
		out.Data = d.Data
	} else {
		out.Data = []float64{}
	}
	return json.Marshal(out)
}
