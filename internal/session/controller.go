package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/comigor/sentiment-go/internal/classifier"
	"github.com/comigor/sentiment-go/internal/logger"
	"github.com/comigor/sentiment-go/internal/prediction"
)

// ErrSubmissionInFlight is returned when the session is already submitting.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// FSM triggers
const (
	triggerEdit    = "Edit"
	triggerSubmit  = "Submit"
	triggerSucceed = "Succeed"
	triggerFail    = "Fail"
)

// Recorder receives every successful result, e.g. to archive it.
type Recorder interface {
	Record(ctx context.Context, sessionID string, r prediction.Result) error
}

// Options configures a Controller.
type Options struct {
	// ID identifies the session in logs and archive rows.
	ID           string
	HistoryLimit int
	StrictLabels bool
	Recorder     Recorder
	// Now is the clock used to timestamp results.
	Now func() time.Time
}

// Controller owns one session's state. It is the only writer of that state;
// Snapshot and View may be called concurrently from any goroutine.
type Controller struct {
	classifier classifier.Classifier
	opts       Options

	mu    sync.Mutex
	state State
	fsm   *stateless.StateMachine
}

// New creates an idle controller.
func New(c classifier.Classifier, opts Options) *Controller {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctrl := &Controller{
		classifier: c,
		opts:       opts,
		state:      State{Phase: PhaseIdle},
	}
	ctrl.fsm = ctrl.newStateMachine()
	return ctrl
}

// newStateMachine wires the lifecycle. Every transition action runs the event
// through Reduce, so the FSM decides what is legal and Reduce decides the data.
//
//	Idle --Edit--> Idle
//	Idle --Submit [draft not blank]--> Submitting
//	Submitting --Succeed|Fail--> Idle
func (c *Controller) newStateMachine() *stateless.StateMachine {
	fsm := stateless.NewStateMachine(PhaseIdle)

	fsm.Configure(PhaseIdle).
		InternalTransition(triggerEdit, c.apply).
		Permit(triggerSubmit, PhaseSubmitting, func(_ context.Context, _ ...any) bool {
			return strings.TrimSpace(c.state.Draft) != ""
		}).
		OnEntryFrom(triggerSucceed, c.apply).
		OnEntryFrom(triggerFail, c.apply)

	fsm.Configure(PhaseSubmitting).
		OnEntryFrom(triggerSubmit, c.apply).
		Permit(triggerSucceed, PhaseIdle).
		Permit(triggerFail, PhaseIdle)

	fsm.OnTransitioned(func(_ context.Context, t stateless.Transition) {
		logger.L.Debug("session transition", "session", c.opts.ID, "trigger", t.Trigger, "from", t.Source, "to", t.Destination)
	})
	return fsm
}

func (c *Controller) apply(_ context.Context, args ...any) error {
	if len(args) == 0 {
		return errors.New("session: transition fired without an event")
	}
	ev, ok := args[0].(Event)
	if !ok {
		return errors.New("session: transition argument is not an Event")
	}
	c.state = Reduce(c.state, ev, c.opts.HistoryLimit)
	return nil
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.opts.ID
}

// SetDraft replaces the draft text. The draft is read-only while submitting.
func (c *Controller) SetDraft(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.fsm.Fire(triggerEdit, DraftChanged{Text: text}); err != nil {
		return ErrSubmissionInFlight
	}
	return nil
}

// Submit sends the current draft, untrimmed, to the classifier. A blank draft
// is a no-op returning nil. A second call while a request is in flight returns
// ErrSubmissionInFlight. Failures return a *prediction.Failure and leave the
// current result and history untouched.
//
// ctx bounds the outbound call only: a response that arrives is applied even
// if the caller has lost interest in it.
func (c *Controller) Submit(ctx context.Context) error {
	_, _, err := c.submit(ctx, nil)
	return err
}

// Analyze replaces the draft with text and submits it in the same step, so a
// concurrent caller cannot swap the draft in between. It returns the result
// this call applied; ok is false when text is blank and nothing was sent.
func (c *Controller) Analyze(ctx context.Context, text string) (result prediction.Result, ok bool, err error) {
	return c.submit(ctx, &text)
}

// SubmitText sets the draft and submits it.
func (c *Controller) SubmitText(ctx context.Context, text string) error {
	_, _, err := c.Analyze(ctx, text)
	return err
}

func (c *Controller) submit(ctx context.Context, draft *string) (prediction.Result, bool, error) {
	c.mu.Lock()
	if draft != nil {
		if err := c.fsm.FireCtx(ctx, triggerEdit, DraftChanged{Text: *draft}); err != nil {
			c.mu.Unlock()
			return prediction.Result{}, false, ErrSubmissionInFlight
		}
	}
	text := c.state.Draft
	if strings.TrimSpace(text) == "" {
		c.mu.Unlock()
		logger.L.Debug("blank draft, submit skipped", "session", c.opts.ID)
		return prediction.Result{}, false, nil
	}
	if err := c.fsm.FireCtx(ctx, triggerSubmit, SubmitStarted{}); err != nil {
		c.mu.Unlock()
		logger.L.Debug("submit rejected", "session", c.opts.ID, "error", err)
		return prediction.Result{}, false, ErrSubmissionInFlight
	}
	c.mu.Unlock()

	result, err := c.classify(ctx, text)

	settleCtx := context.WithoutCancel(ctx)
	c.mu.Lock()
	if err != nil {
		f := prediction.AsFailure(err)
		fireErr := c.fsm.FireCtx(settleCtx, triggerFail, SubmitFailed{Err: f})
		c.mu.Unlock()
		if fireErr != nil {
			logger.L.Error("FSM fire error", "session", c.opts.ID, "error", fireErr)
		}
		logger.L.Error("prediction failed", "session", c.opts.ID, "kind", f.Kind.String(), "error", f)
		return prediction.Result{}, false, f
	}
	fireErr := c.fsm.FireCtx(settleCtx, triggerSucceed, SubmitSucceeded{Result: result})
	c.mu.Unlock()
	if fireErr != nil {
		logger.L.Error("FSM fire error", "session", c.opts.ID, "error", fireErr)
		return prediction.Result{}, false, fireErr
	}

	logger.L.Info("prediction completed", "session", c.opts.ID, "sentiment", result.Sentiment, "confidence", result.TopConfidence())
	if c.opts.Recorder != nil {
		if err := c.opts.Recorder.Record(settleCtx, c.opts.ID, result); err != nil {
			logger.L.Warn("failed to record prediction", "session", c.opts.ID, "error", err)
		}
	}
	return result, true, nil
}

func (c *Controller) classify(ctx context.Context, text string) (prediction.Result, error) {
	resp, err := c.classifier.Classify(ctx, text)
	if err != nil {
		return prediction.Result{}, err
	}
	return prediction.Normalize(resp, c.opts.Now(), prediction.NormalizeOptions{StrictLabels: c.opts.StrictLabels})
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// View returns the presentation projection of the current state.
func (c *Controller) View() View {
	return c.Snapshot().View()
}
