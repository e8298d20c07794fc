package prediction

import (
	"encoding/json"
	"fmt"
	"time"
)

// Request is the body sent to the prediction service.
type Request struct {
	Text string `json:"text"`
}

// Response is the decoded success body of the prediction service. Confidence
// fields are pointers so absent and null entries can be told apart from 0.
type Response struct {
	PredictedLabel string              `json:"predicted_label"`
	Confidence     *ResponseConfidence `json:"confidence"`
	Text           string              `json:"text"`
}

// ResponseConfidence mirrors the confidence object of the service response.
type ResponseConfidence struct {
	Negative *float64 `json:"negative"`
	Neutral  *float64 `json:"neutral"`
	Positive *float64 `json:"positive"`
}

// ErrorBody is the optional JSON body of a non-2xx service response.
type ErrorBody struct {
	Message string `json:"message"`
}

// DecodeResponse parses a raw service body.
func DecodeResponse(body []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return Response{}, NewFailure(KindDecode, "failed to decode prediction response", err)
	}
	return resp, nil
}

// NormalizeOptions controls how strictly a response is mapped.
type NormalizeOptions struct {
	// StrictLabels rejects predicted labels outside Labels with ErrUnknownLabel.
	StrictLabels bool
}

// Normalize maps a service response to a Result stamped with now. Missing
// confidence entries default to 0; a missing confidence object is a decode failure.
func Normalize(resp Response, now time.Time, opts NormalizeOptions) (Result, error) {
	if resp.Confidence == nil {
		return Result{}, NewFailure(KindDecode, "prediction response has no confidence object", nil)
	}
	label := Label(resp.PredictedLabel)
	if opts.StrictLabels && !label.Valid() {
		return Result{}, NewFailure(KindUnknownLabel, fmt.Sprintf("unknown sentiment label %q", resp.PredictedLabel), nil)
	}

	return Result{
		Sentiment: label,
		Confidence: Confidence{
			Negative: valueOrZero(resp.Confidence.Negative),
			Neutral:  valueOrZero(resp.Confidence.Neutral),
			Positive: valueOrZero(resp.Confidence.Positive),
		},
		Text:      resp.Text,
		Timestamp: now.UnixMilli(),
	}, nil
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
