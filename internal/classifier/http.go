package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/comigor/sentiment-go/internal/config"
	"github.com/comigor/sentiment-go/internal/logger"
	"github.com/comigor/sentiment-go/internal/prediction"
)

// HTTPClient calls the prediction service over HTTP.
type HTTPClient struct {
	cfg    config.ClassifierConfig
	client *http.Client
}

// NewHTTPClient creates a new HTTPClient. A nil client uses a fresh http.Client
// without a timeout; deadlines come from cfg.Timeout or the caller's context.
func NewHTTPClient(cfg config.ClassifierConfig, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPClient{cfg: cfg, client: client}
}

// Classify posts {"text": text} to the configured endpoint. The text is sent as given.
func (c *HTTPClient) Classify(ctx context.Context, text string) (prediction.Response, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(prediction.Request{Text: text})
	if err != nil {
		return prediction.Response{}, prediction.NewFailure(prediction.KindTransport, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return prediction.Response{}, prediction.NewFailure(prediction.KindTransport, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return prediction.Response{}, prediction.NewFailure(prediction.KindTransport, "prediction request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return prediction.Response{}, prediction.NewFailure(prediction.KindTransport, "failed to read response", err)
	}
	logger.L.Debug("prediction response", "status", resp.StatusCode, "elapsed", time.Since(start), "bytes", len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb prediction.ErrorBody
		if err := json.Unmarshal(respBody, &eb); err != nil {
			logger.L.Debug("non-JSON error body", "status", resp.StatusCode, "raw_response", preview(respBody))
		}
		return prediction.Response{}, prediction.NewServiceFailure(resp.StatusCode, eb.Message)
	}

	out, err := prediction.DecodeResponse(respBody)
	if err != nil {
		logger.L.Debug("undecodable prediction body", "raw_response", preview(respBody))
		return prediction.Response{}, err
	}
	return out, nil
}

func preview(b []byte) string {
	const limit = 80
	if len(b) > limit {
		return fmt.Sprintf("%s...", b[:limit])
	}
	return string(b)
}
