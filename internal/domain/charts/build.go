package charts

import (
	"github.com/bryanwahyu/datascope/internal/domain/analytics"
)

// BuildAll produces the six report widgets. Every category chart uses the
// payload's column order. No input is validated: a column absent from one
// mapping shows up as a zero value.
func BuildAll(p *analytics.Payload) []Widget {
	return []Widget{
		{Target: TargetBar, Config: SummaryBar(p)},
		{Target: TargetHist, Config: MeanLine(p)},
		{Target: TargetVariance, Config: VarianceBar(p)},
		{Target: TargetMissing, Config: MissingBar(p)},
		{Target: TargetOutlier, Config: OutlierBar(p)},
		{Target: TargetHeatmap, Config: Heatmap(p.Correlation)},
	}
}

// SummaryBar is the Min/Mean/Max bar chart, one dataset per statistic.
func SummaryBar(p *analytics.Payload) Config {
	return Config{
		Type: TypeBar,
		Data: Data{
			Labels: labels(p),
			Datasets: []Dataset{
				{Label: "Min", Data: column(p, func(c string) float64 { return p.Stats[c].Min })},
				{Label: "Mean", Data: column(p, func(c string) float64 { return p.Stats[c].Mean })},
				{Label: "Max", Data: column(p, func(c string) float64 { return p.Stats[c].Max })},
			},
		},
		Options: defaultOptions(),
	}
}

// MeanLine re-uses the column means as a simulated histogram. It is not a
// distribution plot.
func MeanLine(p *analytics.Payload) Config {
	return Config{
		Type: TypeLine,
		Data: Data{
			Labels: labels(p),
			Datasets: []Dataset{{
				Label:   "Mean Distribution",
				Data:    column(p, func(c string) float64 { return p.Stats[c].Mean }),
				Tension: 0.4,
			}},
		},
		Options: defaultOptions(),
	}
}

func VarianceBar(p *analytics.Payload) Config {
	return single(p, "Variance", func(c string) float64 { return p.Variance[c] })
}

func MissingBar(p *analytics.Payload) Config {
	return single(p, "Missing Values", func(c string) float64 { return float64(p.Missing[c]) })
}

func OutlierBar(p *analytics.Payload) Config {
	return single(p, "Outliers", func(c string) float64 { return float64(p.Outliers[c]) })
}

func single(p *analytics.Payload, label string, value func(string) float64) Config {
	return Config{
		Type: TypeBar,
		Data: Data{
			Labels:   labels(p),
			Datasets: []Dataset{{Label: label, Data: column(p, value)}},
		},
		Options: defaultOptions(),
	}
}

func labels(p *analytics.Payload) []string {
	out := make([]string, len(p.Columns))
	copy(out, p.Columns)
	return out
}

func column(p *analytics.Payload, value func(string) float64) []float64 {
	out := make([]float64, 0, len(p.Columns))
	for _, c := range p.Columns {
		out = append(out, value(c))
	}
	return out
}
