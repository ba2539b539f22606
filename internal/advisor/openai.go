package advisor

import (
	"context"
	"net/http"
	"strings"

	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
)

// OpenAICompleter calls any OpenAI-compatible /chat/completions endpoint.
type OpenAICompleter struct {
	baseURL string
	apiKey  string
	opts    CompletionOptions
}

func NewOpenAICompleter(baseURL, apiKey string, opts CompletionOptions) *OpenAICompleter {
	if opts.Model == "" {
		opts.Model = "gpt-5-mini"
	}
	return &OpenAICompleter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		opts:    opts,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *OpenAICompleter) Complete(ctx context.Context, system string, turns []domain.ChatTurn) (string, error) {
	req := chatRequest{
		Model:       c.opts.Model,
		Messages:    make([]chatMessage, 0, len(turns)+1),
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
	}
	req.Messages = append(req.Messages, chatMessage{Role: "system", Content: system})
	for _, t := range turns {
		req.Messages = append(req.Messages, chatMessage{Role: t.Role, Content: t.Content})
	}

	var (
		body string
		code int
	)
	err := gout.POST(c.baseURL + "/chat/completions").
		WithContext(ctx).
		SetTimeout(c.opts.Timeout).
		SetHeader(gout.H{"Authorization": "Bearer " + c.apiKey}).
		SetJSON(req).
		BindBody(&body).
		Code(&code).
		Do()
	if err != nil {
		return "", errors.Wrap(err, "completion request")
	}

	var resp chatResponse
	if err := json.UnmarshalFromString(body, &resp); err != nil {
		return "", errors.Wrapf(err, "completion response (status %d)", code)
	}
	if code != http.StatusOK {
		msg := http.StatusText(code)
		if resp.Error != nil && resp.Error.Message != "" {
			msg = resp.Error.Message
		}
		return "", errors.Errorf("completion service returned %d: %s", code, msg)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New("completion service returned no content")
	}
	return resp.Choices[0].Message.Content, nil
}
