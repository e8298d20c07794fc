package classifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comigor/sentiment-go/internal/config"
	"github.com/comigor/sentiment-go/internal/prediction"
)

func newTestClient(t *testing.T, h http.HandlerFunc, timeout time.Duration) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(config.ClassifierConfig{Endpoint: srv.URL + "/predict", Timeout: timeout}, srv.Client())
}

func TestHTTPClient_SendsUntrimmedText(t *testing.T) {
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"predicted_label":"positive","confidence":{"positive":0.87,"neutral":0.1,"negative":0.03},"text":"I love this"}`)
	}, 0)

	resp, err := c.Classify(context.Background(), "  I love this \n")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"text": "  I love this \n"}, gotBody)
	assert.Equal(t, "positive", resp.PredictedLabel)
	assert.Equal(t, "I love this", resp.Text)
	require.NotNil(t, resp.Confidence)
	require.NotNil(t, resp.Confidence.Positive)
	assert.Equal(t, 0.87, *resp.Confidence.Positive)
}

func TestHTTPClient_ServiceFailureWithMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"message":"text is empty"}`)
	}, 0)

	_, err := c.Classify(context.Background(), "x")
	require.ErrorIs(t, err, prediction.ErrService)
	f := prediction.AsFailure(err)
	assert.Equal(t, "text is empty", f.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, f.StatusCode)
}

func TestHTTPClient_ServiceFailureGenericMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}, 0)

	_, err := c.Classify(context.Background(), "x")
	require.ErrorIs(t, err, prediction.ErrPredictionFailure)
	assert.Equal(t, prediction.GenericServiceMessage, prediction.AsFailure(err).Message)
}

func TestHTTPClient_DecodeFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `not json`)
	}, 0)

	_, err := c.Classify(context.Background(), "x")
	require.ErrorIs(t, err, prediction.ErrDecode)
}

func TestHTTPClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(config.ClassifierConfig{Endpoint: url}, nil)
	_, err := c.Classify(context.Background(), "x")
	require.ErrorIs(t, err, prediction.ErrTransport)
}

func TestHTTPClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 20*time.Millisecond)
	defer close(release)

	_, err := c.Classify(context.Background(), "x")
	require.ErrorIs(t, err, prediction.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPClient_CallerCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Classify(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
}
