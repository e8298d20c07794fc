package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/comigor/sentiment-go/internal/prediction"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func ptr(v float64) *float64 { return &v }

type mockClassifier struct {
	ClassifyFunc func(ctx context.Context, text string) (prediction.Response, error)
	calls        atomic.Int32
	texts        []string
	mu           sync.Mutex
}

func (m *mockClassifier) Classify(ctx context.Context, text string) (prediction.Response, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, text)
	}
	return prediction.Response{
		PredictedLabel: "positive",
		Confidence:     &prediction.ResponseConfidence{Positive: ptr(0.87), Neutral: ptr(0.1), Negative: ptr(0.03)},
		Text:           text,
	}, nil
}

type mockRecorder struct {
	mu      sync.Mutex
	records []prediction.Result
	err     error
}

func (m *mockRecorder) Record(ctx context.Context, sessionID string, r prediction.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return m.err
}

func TestSubmit_BlankDraftIsNoOp(t *testing.T) {
	mc := &mockClassifier{}
	c := New(mc, Options{ID: "s1"})

	for _, draft := range []string{"", "   ", "\n\t"} {
		require.NoError(t, c.SetDraft(draft))
		before := c.Snapshot()
		require.NoError(t, c.Submit(context.Background()))
		assert.Equal(t, before, c.Snapshot())
	}
	assert.Zero(t, mc.calls.Load())
}

func TestSubmit_ResultFidelity(t *testing.T) {
	mc := &mockClassifier{ClassifyFunc: func(ctx context.Context, text string) (prediction.Response, error) {
		return prediction.Response{
			PredictedLabel: "positive",
			Confidence:     &prediction.ResponseConfidence{Positive: ptr(0.87), Neutral: ptr(0.1), Negative: ptr(0.03)},
			Text:           "I love this",
		}, nil
	}}
	c := New(mc, Options{ID: "s1", StrictLabels: true})

	issued := time.Now().UnixMilli()
	require.NoError(t, c.SubmitText(context.Background(), "  I love this  "))

	s := c.Snapshot()
	require.NotNil(t, s.Current)
	want := prediction.Result{
		Sentiment:  prediction.Positive,
		Confidence: prediction.Confidence{Positive: 0.87, Neutral: 0.1, Negative: 0.03},
		Text:       "I love this",
	}
	got := *s.Current
	assert.GreaterOrEqual(t, got.Timestamp, issued)
	got.Timestamp = 0
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"  I love this  "}, mc.texts, "payload is the untrimmed draft")
	assert.Equal(t, "  I love this  ", s.Draft, "draft is kept after success")
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Len(t, s.History, 1)
}

func TestSubmit_MissingConfidenceDefaultsToZero(t *testing.T) {
	mc := &mockClassifier{ClassifyFunc: func(ctx context.Context, text string) (prediction.Response, error) {
		return prediction.Response{
			PredictedLabel: "positive",
			Confidence:     &prediction.ResponseConfidence{Positive: ptr(0.9), Neutral: ptr(0.1)},
			Text:           text,
		}, nil
	}}
	c := New(mc, Options{})
	require.NoError(t, c.SubmitText(context.Background(), "x"))
	assert.Zero(t, c.Snapshot().Current.Confidence.Negative)
}

func TestSubmit_HistoryOrderingAndBound(t *testing.T) {
	clock := time.UnixMilli(1_000)
	c := New(&mockClassifier{}, Options{Now: func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}})

	require.NoError(t, c.SubmitText(context.Background(), "A"))
	require.NoError(t, c.SubmitText(context.Background(), "B"))
	s := c.Snapshot()
	require.Len(t, s.History, 2)
	assert.Equal(t, "B", s.History[0].Text)
	assert.Equal(t, "A", s.History[1].Text)

	for i := 0; i < 15; i++ {
		require.NoError(t, c.SubmitText(context.Background(), string(rune('a'+i))))
		require.LessOrEqual(t, len(c.Snapshot().History), DefaultHistoryLimit)
	}
	s = c.Snapshot()
	require.Len(t, s.History, DefaultHistoryLimit)
	assert.Equal(t, "o", s.History[0].Text)
	assert.Equal(t, "f", s.History[9].Text)
	assert.Equal(t, s.History[0], *s.Current)
	for i := 1; i < len(s.History); i++ {
		assert.Greater(t, s.History[i-1].Timestamp, s.History[i].Timestamp)
	}
}

func TestSubmit_NoMutationOnFailure(t *testing.T) {
	fail := false
	mc := &mockClassifier{}
	mc.ClassifyFunc = func(ctx context.Context, text string) (prediction.Response, error) {
		if fail {
			return prediction.Response{}, prediction.NewServiceFailure(500, "model unavailable")
		}
		return prediction.Response{PredictedLabel: "neutral", Confidence: &prediction.ResponseConfidence{}, Text: text}, nil
	}
	rec := &mockRecorder{}
	c := New(mc, Options{Recorder: rec})
	require.NoError(t, c.SubmitText(context.Background(), "first"))

	fail = true
	require.NoError(t, c.SetDraft("second"))
	before := c.Snapshot()
	err := c.Submit(context.Background())
	require.ErrorIs(t, err, prediction.ErrPredictionFailure)
	require.ErrorIs(t, err, prediction.ErrService)
	assert.Contains(t, err.Error(), "model unavailable")

	after := c.Snapshot()
	assert.Equal(t, before, after)
	assert.False(t, after.Loading())
	assert.Len(t, rec.records, 1)
}

func TestSubmit_FailureKinds(t *testing.T) {
	tests := []struct {
		name string
		resp prediction.Response
		err  error
		want error
	}{
		{name: "transport", err: errors.New("dial tcp: no route to host"), want: prediction.ErrTransport},
		{name: "decode", resp: prediction.Response{PredictedLabel: "positive"}, want: prediction.ErrDecode},
		{name: "unknown label", resp: prediction.Response{PredictedLabel: "meh", Confidence: &prediction.ResponseConfidence{}}, want: prediction.ErrUnknownLabel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&mockClassifier{ClassifyFunc: func(ctx context.Context, text string) (prediction.Response, error) {
				return tt.resp, tt.err
			}}, Options{StrictLabels: true})
			err := c.SubmitText(context.Background(), "x")
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, prediction.ErrPredictionFailure)
			s := c.Snapshot()
			assert.Nil(t, s.Current)
			assert.Empty(t, s.History)
			assert.Equal(t, PhaseIdle, s.Phase)
		})
	}
}

func TestSubmit_UnknownLabelPassThroughWhenLenient(t *testing.T) {
	c := New(&mockClassifier{ClassifyFunc: func(ctx context.Context, text string) (prediction.Response, error) {
		return prediction.Response{PredictedLabel: "mixed", Confidence: &prediction.ResponseConfidence{}, Text: text}, nil
	}}, Options{StrictLabels: false})
	require.NoError(t, c.SubmitText(context.Background(), "x"))
	assert.Equal(t, prediction.Label("mixed"), c.Snapshot().Current.Sentiment)
}

func TestSubmit_SingleFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	mc := &mockClassifier{}
	mc.ClassifyFunc = func(ctx context.Context, text string) (prediction.Response, error) {
		close(started)
		<-release
		return prediction.Response{PredictedLabel: "negative", Confidence: &prediction.ResponseConfidence{Negative: ptr(1)}, Text: text}, nil
	}
	c := New(mc, Options{})
	require.NoError(t, c.SetDraft("first"))

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()
	<-started

	v := c.View()
	assert.True(t, v.Loading)
	assert.False(t, v.CanSubmit)
	assert.Equal(t, SubmittingLabel, v.SubmitLabel)

	assert.ErrorIs(t, c.Submit(context.Background()), ErrSubmissionInFlight)
	assert.ErrorIs(t, c.SetDraft("second"), ErrSubmissionInFlight)
	assert.Equal(t, "first", c.Snapshot().Draft)

	close(release)
	require.NoError(t, <-done)
	assert.EqualValues(t, 1, mc.calls.Load())
	assert.False(t, c.View().Loading)
	assert.Len(t, c.Snapshot().History, 1)
}

func TestSubmit_LateResponseStillApplied(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := New(&mockClassifier{ClassifyFunc: func(_ context.Context, text string) (prediction.Response, error) {
		cancel()
		return prediction.Response{PredictedLabel: "neutral", Confidence: &prediction.ResponseConfidence{}, Text: text}, nil
	}}, Options{})

	require.NoError(t, c.SubmitText(ctx, "x"))
	assert.NotNil(t, c.Snapshot().Current)
}

func TestSubmit_RecorderErrorIsNotFatal(t *testing.T) {
	rec := &mockRecorder{err: errors.New("disk full")}
	c := New(&mockClassifier{}, Options{ID: "abc", Recorder: rec})

	require.NoError(t, c.SubmitText(context.Background(), "x"))
	assert.Len(t, rec.records, 1)
	assert.Len(t, c.Snapshot().History, 1)
}

func TestSnapshot_IsACopy(t *testing.T) {
	c := New(&mockClassifier{}, Options{})
	require.NoError(t, c.SubmitText(context.Background(), "x"))

	s := c.Snapshot()
	s.History[0].Text = "changed"
	s.Current.Text = "changed"
	fresh := c.Snapshot()
	assert.Equal(t, "x", fresh.History[0].Text)
	assert.Equal(t, "x", fresh.Current.Text)
}

func TestController_FSMTracksPhase(t *testing.T) {
	c := New(&mockClassifier{}, Options{})
	state, err := c.fsm.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, state)

	require.NoError(t, c.SubmitText(context.Background(), "x"))
	state, err = c.fsm.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, c.Snapshot().Phase, state)
}

func TestAnalyze_ReturnsOwnResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	mc := &mockClassifier{}
	mc.ClassifyFunc = func(ctx context.Context, text string) (prediction.Response, error) {
		once.Do(func() {
			close(started)
			<-release
		})
		return prediction.Response{PredictedLabel: "neutral", Confidence: &prediction.ResponseConfidence{}, Text: text}, nil
	}
	c := New(mc, Options{})

	type outcome struct {
		result prediction.Result
		ok     bool
		err    error
	}
	first := make(chan outcome, 1)
	go func() {
		r, ok, err := c.Analyze(context.Background(), "from a")
		first <- outcome{r, ok, err}
	}()
	<-started

	_, ok, err := c.Analyze(context.Background(), "from b")
	require.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.False(t, ok)
	assert.Equal(t, "from a", c.Snapshot().Draft, "rejected call leaves the draft alone")

	close(release)
	got := <-first
	require.NoError(t, got.err)
	require.True(t, got.ok)
	assert.Equal(t, "from a", got.result.Text)
	assert.Equal(t, []string{"from a"}, mc.texts)
}

func TestAnalyze_ConcurrentCallersGetTheirOwnText(t *testing.T) {
	c := New(&mockClassifier{}, Options{HistoryLimit: 100})

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text := string(rune('a' + i))
			for {
				r, ok, err := c.Analyze(context.Background(), text)
				if errors.Is(err, ErrSubmissionInFlight) {
					time.Sleep(time.Millisecond)
					continue
				}
				assert.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, text, r.Text)
				return
			}
		}()
	}
	wg.Wait()
	assert.Len(t, c.Snapshot().History, 20)
}

func TestAnalyze_BlankText(t *testing.T) {
	mc := &mockClassifier{}
	c := New(mc, Options{})

	r, ok, err := c.Analyze(context.Background(), "  \n")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, r)
	assert.Zero(t, mc.calls.Load())
}
