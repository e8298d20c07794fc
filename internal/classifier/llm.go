package classifier

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/comigor/sentiment-go/internal/config"
	"github.com/comigor/sentiment-go/internal/llm"
	"github.com/comigor/sentiment-go/internal/logger"
	"github.com/comigor/sentiment-go/internal/prediction"
)

const llmSystemPrompt = `You are a sentiment classifier for short texts, including Moroccan Darija written in Arabic or Latin script.
Classify the user's text as exactly one of: positive, neutral, negative.
Respond with a single JSON object and nothing else:
{"predicted_label": "<label>", "confidence": {"positive": <0..1>, "neutral": <0..1>, "negative": <0..1>}, "text": "<the text you classified>"}`

// LLMClassifier asks an OpenAI-compatible chat model for the same JSON shape
// the prediction service returns.
type LLMClassifier struct {
	client llm.Client
	model  string
	cfg    config.ClassifierConfig
}

// NewLLMClassifier creates a classifier backed by a chat completion client.
func NewLLMClassifier(client llm.Client, llmCfg config.LLMConfig, cfg config.ClassifierConfig) *LLMClassifier {
	return &LLMClassifier{client: client, model: llmCfg.Model, cfg: cfg}
}

func (c *LLMClassifier) Classify(ctx context.Context, text string) (prediction.Response, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: llmSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			f := prediction.NewServiceFailure(apiErr.HTTPStatusCode, apiErr.Message)
			f.Err = err
			return prediction.Response{}, f
		}
		return prediction.Response{}, prediction.NewFailure(prediction.KindTransport, "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return prediction.Response{}, prediction.NewFailure(prediction.KindDecode, "chat completion returned no choices", nil)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimSuffix(strings.TrimPrefix(content, "```"), "```")
	logger.L.Debug("LLM classification", "model", c.model, "content", content)

	out, err := prediction.DecodeResponse([]byte(content))
	if err != nil {
		return prediction.Response{}, err
	}
	if out.Text == "" {
		out.Text = text
	}
	return out, nil
}
