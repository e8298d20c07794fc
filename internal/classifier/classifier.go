// Package classifier performs the single outbound call of a submission.
package classifier

import (
	"context"
	"fmt"

	"github.com/comigor/sentiment-go/internal/config"
	"github.com/comigor/sentiment-go/internal/llm"
	"github.com/comigor/sentiment-go/internal/prediction"
)

// Classifier sends text to a sentiment model and returns its decoded response.
// Errors are *prediction.Failure values.
type Classifier interface {
	Classify(ctx context.Context, text string) (prediction.Response, error)
}

// Func adapts a function to Classifier.
type Func func(ctx context.Context, text string) (prediction.Response, error)

func (f Func) Classify(ctx context.Context, text string) (prediction.Response, error) {
	return f(ctx, text)
}

// New builds the backend selected by cfg.Classifier.Provider.
func New(cfg config.Config) (Classifier, error) {
	switch cfg.Classifier.Provider {
	case config.ProviderHTTP:
		return NewHTTPClient(cfg.Classifier, nil), nil
	case config.ProviderLLM:
		return NewLLMClassifier(llm.NewClient(cfg.LLM), cfg.LLM, cfg.Classifier), nil
	}
	return nil, fmt.Errorf("unsupported classifier provider %q", cfg.Classifier.Provider)
}
