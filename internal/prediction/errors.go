package prediction

import (
	"errors"
	"fmt"
)

// ErrPredictionFailure matches every failed prediction regardless of kind.
var ErrPredictionFailure = errors.New("prediction failed")

// Failure kinds.
var (
	ErrTransport    = errors.New("transport failure")
	ErrService      = errors.New("service failure")
	ErrDecode       = errors.New("decode failure")
	ErrUnknownLabel = errors.New("unknown label")
)

// Kind classifies a Failure.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindService
	KindDecode
	KindUnknownLabel
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindService:
		return "service"
	case KindDecode:
		return "decode"
	case KindUnknownLabel:
		return "unknown_label"
	}
	return "unknown"
}

func (k Kind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindService:
		return ErrService
	case KindDecode:
		return ErrDecode
	case KindUnknownLabel:
		return ErrUnknownLabel
	}
	return nil
}

// GenericServiceMessage is surfaced when a failed response carries no message.
const GenericServiceMessage = "Prediction failed"

// Failure is the error returned by a failed submission.
type Failure struct {
	Kind    Kind
	Message string
	// StatusCode is set for service failures.
	StatusCode int
	Err        error
}

// NewFailure builds a Failure of the given kind wrapping cause (may be nil).
func NewFailure(kind Kind, message string, cause error) *Failure {
	return &Failure{Kind: kind, Message: message, Err: cause}
}

// NewServiceFailure builds a failure for a non-2xx status. An empty message
// falls back to GenericServiceMessage.
func NewServiceFailure(status int, message string) *Failure {
	if message == "" {
		message = GenericServiceMessage
	}
	return &Failure{Kind: KindService, Message: message, StatusCode: status}
}

func (f *Failure) Error() string {
	msg := f.Message
	if f.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, f.StatusCode)
	}
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, msg, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, msg)
}

func (f *Failure) Unwrap() []error {
	errs := []error{ErrPredictionFailure}
	if s := f.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if f.Err != nil {
		errs = append(errs, f.Err)
	}
	return errs
}

// AsFailure extracts a *Failure from err. Errors that are not already
// failures are reported as transport failures.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return NewFailure(KindTransport, "prediction request failed", err)
}
