package charts

// RenderTarget port (where a built chart is attached). The report page and
// tests provide implementations.
type RenderTarget interface {
	Bind(target string, cfg Config) error
}

// Recorder is an in-memory RenderTarget that keeps bindings in call order.
type Recorder struct {
	Widgets []Widget
}

func (r *Recorder) Bind(target string, cfg Config) error {
	r.Widgets = append(r.Widgets, Widget{Target: target, Config: cfg})
	return nil
}

// Get returns the config bound to target.
func (r *Recorder) Get(target string) (Config, bool) {
	for _, w := range r.Widgets {
		if w.Target == target {
			return w.Config, true
		}
	}
	return Config{}, false
}
