package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
)

// Summary holds the min/mean/max triple for one column.
type Summary struct {
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

// Matrix is a correlation matrix keyed by column name. Labels keeps the key
// order of the serialized object.
type Matrix struct {
	Labels []string                      `json:"labels"`
	Values map[string]map[string]float64 `json:"values"`
}

// At returns corr[x][y], or 0 when either side is absent.
func (m Matrix) At(x, y string) float64 {
	row, ok := m.Values[x]
	if !ok {
		return 0
	}
	return row[y]
}

// Payload is the pre-computed analytics for one dataset. It is produced by the
// reporting collaborator and never mutated here.
type Payload struct {
	Filename    string             `json:"filename,omitempty"`
	Columns     []string           `json:"columns"`
	Stats       map[string]Summary `json:"stats"`
	Missing     map[string]int     `json:"missing"`
	Variance    map[string]float64 `json:"variance"`
	Outliers    map[string]int     `json:"outliers"`
	Correlation Matrix             `json:"correlation"`

	// MissingOrder is the key order of the missing mapping. It can name
	// columns that have no stats entry.
	MissingOrder []string `json:"-"`
}

// Parts are the five independently serialized mappings of a payload, the
// shape a server-rendered page injects.
type Parts struct {
	Stats       []byte
	Missing     []byte
	Variance    []byte
	Outliers    []byte
	Correlation []byte
}

// Decode parses a single document of the form
// {"stats":{...},"missing":{...},"variance":{...},"outliers":{...},"correlation":{...}}.
func Decode(raw []byte) (*Payload, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: payload must be an object", ErrMalformed)
	}
	p, err := DecodeParts(Parts{
		Stats:       rawOf(doc.Get("stats")),
		Missing:     rawOf(doc.Get("missing")),
		Variance:    rawOf(doc.Get("variance")),
		Outliers:    rawOf(doc.Get("outliers")),
		Correlation: rawOf(doc.Get("correlation")),
	})
	if err != nil {
		return nil, err
	}
	p.Filename = doc.Get("filename").String()
	return p, nil
}

// DecodeParts parses the five mappings separately. Column order is the key
// order of the stats mapping.
func DecodeParts(parts Parts) (*Payload, error) {
	p := &Payload{
		Stats:    map[string]Summary{},
		Missing:  map[string]int{},
		Variance: map[string]float64{},
		Outliers: map[string]int{},
		Correlation: Matrix{
			Values: map[string]map[string]float64{},
		},
	}

	stats, err := object("stats", parts.Stats)
	if err != nil {
		return nil, err
	}
	stats.ForEach(func(k, v gjson.Result) bool {
		col := k.String()
		p.Columns = append(p.Columns, col)
		p.Stats[col] = Summary{
			Min:  v.Get("min").Float(),
			Mean: v.Get("mean").Float(),
			Max:  v.Get("max").Float(),
		}
		return true
	})

	missing, err := object("missing", parts.Missing)
	if err != nil {
		return nil, err
	}
	missing.ForEach(func(k, v gjson.Result) bool {
		col := k.String()
		p.MissingOrder = append(p.MissingOrder, col)
		p.Missing[col] = int(v.Int())
		return true
	})

	variance, err := object("variance", parts.Variance)
	if err != nil {
		return nil, err
	}
	variance.ForEach(func(k, v gjson.Result) bool {
		p.Variance[k.String()] = v.Float()
		return true
	})

	outliers, err := object("outliers", parts.Outliers)
	if err != nil {
		return nil, err
	}
	outliers.ForEach(func(k, v gjson.Result) bool {
		p.Outliers[k.String()] = int(v.Int())
		return true
	})

	corr, err := object("correlation", parts.Correlation)
	if err != nil {
		return nil, err
	}
	corr.ForEach(func(k, row gjson.Result) bool {
		x := k.String()
		p.Correlation.Labels = append(p.Correlation.Labels, x)
		values := map[string]float64{}
		row.ForEach(func(y, v gjson.Result) bool {
			values[y.String()] = v.Float()
			return true
		})
		p.Correlation.Values[x] = values
		return true
	})

	return p, nil
}

// object treats an absent part as an empty mapping.
func object(name string, raw []byte) (gjson.Result, error) {
	if len(raw) == 0 {
		return gjson.Parse("{}"), nil
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%w: %s is not valid json", ErrMalformed, name)
	}
	res := gjson.ParseBytes(raw)
	if res.Type == gjson.Null {
		return gjson.Parse("{}"), nil
	}
	if !res.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: %s must be an object", ErrMalformed, name)
	}
	return res, nil
}

func rawOf(r gjson.Result) []byte {
	if !r.Exists() {
		return nil
	}
	return []byte(r.Raw)
}

// Encode writes p back as a single document. Object keys follow the payload
// order: Columns for stats, variance and outliers, MissingOrder for missing
// and Correlation.Labels for the matrix. Keys outside those orders follow in
// name order.
func Encode(p *Payload) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if p.Filename != "" {
		writeKey(&buf, "filename")
		if err := writeValue(&buf, p.Filename); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}

	sections := []struct {
		name  string
		keys  []string
		value func(k string) any
	}{
		{"stats", orderedKeys(p.Columns, p.Stats), func(k string) any { return p.Stats[k] }},
		{"missing", orderedKeys(p.MissingOrder, p.Missing), func(k string) any { return p.Missing[k] }},
		{"variance", orderedKeys(p.Columns, p.Variance), func(k string) any { return p.Variance[k] }},
		{"outliers", orderedKeys(p.Columns, p.Outliers), func(k string) any { return p.Outliers[k] }},
	}
	for _, sec := range sections {
		writeKey(&buf, sec.name)
		if err := writeObject(&buf, sec.keys, sec.value); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}

	writeKey(&buf, "correlation")
	labels := orderedKeys(p.Correlation.Labels, p.Correlation.Values)
	err := writeObject(&buf, labels, func(x string) any {
		row := p.Correlation.Values[x]
		return orderedRow{keys: orderedKeys(labels, row), row: row}
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// orderedRow is one correlation row encoded in label order.
type orderedRow struct {
	keys []string
	row  map[string]float64
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	err := writeObject(&buf, r.keys, func(k string) any { return r.row[k] })
	return buf.Bytes(), err
}

// orderedKeys returns the keys of m listed in order first, then the rest
// sorted by name.
func orderedKeys[V any](order []string, m map[string]V) []string {
	seen := make(map[string]bool, len(m))
	out := make([]string, 0, len(m))
	for _, k := range order {
		if _, ok := m[k]; ok && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func writeObject(buf *bytes.Buffer, keys []string, value func(string) any) error {
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeKey(buf, k)
		if err := writeValue(buf, value(k)); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeKey(buf *bytes.Buffer, k string) {
	b, _ := json.Marshal(k)
	buf.Write(b)
	buf.WriteByte(':')
}

func writeValue(buf *bytes.Buffer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
