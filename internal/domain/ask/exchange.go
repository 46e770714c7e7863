package ask

// Fixed user-facing messages.
const (
	MsgEmptyQuery   = "❗ Please enter a question."
	MsgFailure      = "❌ Error processing query."
	WarningMarker   = "⚠️ "
	FieldQuery      = "query"
	FormContentType = "application/x-www-form-urlencoded"
)

// Response is the body of an ask endpoint reply: either Answer or Error.
type Response struct {
	Answer string           `json:"answer,omitempty"`
	Error  string           `json:"error,omitempty"`
	Table  []map[string]any `json:"table,omitempty"`
}

// Failed reports whether the service answered with an error.
func (r Response) Failed() bool { return r.Error != "" }

// State is where one ask invocation ended.
type State string

const (
	StateIdle        State = "idle"
	StateValidating  State = "validating"
	StateEarlyReturn State = "early_return"
	StateSending     State = "sending"
	StateSuccess     State = "success"
	StateFailure     State = "failure"
)

// Outcome describes one finished invocation.
type Outcome struct {
	Seq      uint64   `json:"seq"`
	State    State    `json:"state"`
	Response Response `json:"response"`
	// Applied is false when a newer invocation had already been issued and
	// this result was dropped.
	Applied bool   `json:"applied"`
	HTML    string `json:"html"`
}
