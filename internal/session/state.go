// Package session implements the prediction session: draft text, a single
// in-flight request, the current result and a bounded recency-ordered history.
package session

import (
	"strings"

	"github.com/comigor/sentiment-go/internal/prediction"
)

// Phase is the request lifecycle state.
type Phase string

const (
	PhaseIdle       Phase = "Idle"
	PhaseSubmitting Phase = "Submitting"
)

// DefaultHistoryLimit is the number of results kept in History.
const DefaultHistoryLimit = 10

// Submit affordance labels.
const (
	SubmitLabel     = "Analyze Sentiment"
	SubmittingLabel = "Analyzing Sentiment..."
)

// State is a snapshot of a session. History is most recent first. The zero
// value is an idle session with an empty draft.
type State struct {
	Draft   string
	Phase   Phase
	Current *prediction.Result
	History []prediction.Result
}

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

// DraftChanged replaces the draft text.
type DraftChanged struct{ Text string }

// SubmitStarted moves an idle session with a non-blank draft to Submitting.
type SubmitStarted struct{}

// SubmitSucceeded applies a normalized result.
type SubmitSucceeded struct{ Result prediction.Result }

// SubmitFailed returns to Idle without touching results.
type SubmitFailed struct{ Err error }

func (DraftChanged) isEvent()    {}
func (SubmitStarted) isEvent()   {}
func (SubmitSucceeded) isEvent() {}
func (SubmitFailed) isEvent()    {}

// CanSubmit reports whether a submit would start a request.
func (s State) CanSubmit() bool {
	return s.Phase != PhaseSubmitting && strings.TrimSpace(s.Draft) != ""
}

// Loading reports whether a request is in flight.
func (s State) Loading() bool {
	return s.Phase == PhaseSubmitting
}

// Reduce returns the state after ev. It never mutates s; History is copied
// whenever it changes. limit <= 0 means DefaultHistoryLimit.
//
// The draft is kept after a successful submission.
func Reduce(s State, ev Event, limit int) State {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	switch e := ev.(type) {
	case DraftChanged:
		if s.Phase == PhaseSubmitting {
			return s
		}
		s.Draft = e.Text
	case SubmitStarted:
		if !s.CanSubmit() {
			return s
		}
		s.Phase = PhaseSubmitting
	case SubmitSucceeded:
		r := e.Result
		s.Phase = PhaseIdle
		s.Current = &r
		s.History = prepend(s.History, r, limit)
	case SubmitFailed:
		s.Phase = PhaseIdle
	}
	return s
}

func prepend(history []prediction.Result, r prediction.Result, limit int) []prediction.Result {
	n := min(len(history)+1, limit)
	out := make([]prediction.Result, n)
	out[0] = r
	copy(out[1:], history)
	return out
}

// clone returns a copy that shares nothing mutable with s.
func (s State) clone() State {
	if s.Current != nil {
		r := *s.Current
		s.Current = &r
	}
	if s.History != nil {
		s.History = append([]prediction.Result(nil), s.History...)
	}
	return s
}

// View is the presentation-facing projection of a State.
type View struct {
	Draft       string                `json:"draft"`
	CharCount   int                   `json:"char_count"`
	WordCount   int                   `json:"word_count"`
	CanSubmit   bool                  `json:"can_submit"`
	Loading     bool                  `json:"loading"`
	SubmitLabel string                `json:"submit_label"`
	Current     *prediction.Result    `json:"current,omitempty"`
	History     []prediction.Result   `json:"history"`
	Stats       prediction.Statistics `json:"stats"`
}

// View derives the presentation outputs.
func (s State) View() View {
	s = s.clone()
	v := View{
		Draft:       s.Draft,
		CharCount:   prediction.CharCount(s.Draft),
		WordCount:   prediction.WordCount(s.Draft),
		CanSubmit:   s.CanSubmit(),
		Loading:     s.Loading(),
		SubmitLabel: SubmitLabel,
		Current:     s.Current,
		History:     s.History,
		Stats:       prediction.Summarize(s.History),
	}
	if v.Loading {
		v.SubmitLabel = SubmittingLabel
	}
	if v.History == nil {
		v.History = []prediction.Result{}
	}
	return v
}
