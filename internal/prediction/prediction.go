// Package prediction holds the sentiment data model shared by the classifier
// backends, the session controller and every front end.
package prediction

import (
	"strings"
	"time"
)

// Label is the sentiment class reported by the prediction service.
type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// Labels lists the known labels in display order.
var Labels = []Label{Positive, Neutral, Negative}

// Valid reports whether l is one of the three known labels.
func (l Label) Valid() bool {
	switch l {
	case Positive, Neutral, Negative:
		return true
	}
	return false
}

// Title is the capitalized label for display.
func (l Label) Title() string {
	if l == "" {
		return ""
	}
	return strings.ToUpper(string(l[:1])) + string(l[1:])
}

// Confidence is the per-label probability distribution. The service is trusted,
// so values are not checked to lie in [0,1] or to sum to 1.
type Confidence struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// Of returns the probability for l, or 0 for an unknown label.
func (c Confidence) Of(l Label) float64 {
	switch l {
	case Positive:
		return c.Positive
	case Neutral:
		return c.Neutral
	case Negative:
		return c.Negative
	}
	return 0
}

// Result is one successful analysis. It is created once per service response
// and never modified afterwards.
type Result struct {
	Sentiment  Label      `json:"sentiment"`
	Confidence Confidence `json:"confidence"`
	// Text is the analyzed text as echoed by the service.
	Text string `json:"text"`
	// Timestamp is the creation time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// TopConfidence is the probability of the predicted label.
func (r Result) TopConfidence() float64 {
	return r.Confidence.Of(r.Sentiment)
}

// CreatedAt converts Timestamp back to a time.Time.
func (r Result) CreatedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}
