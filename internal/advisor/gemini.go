package advisor

import (
	"context"
	"strings"

	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/pkg/errors"
	"google.golang.org/genai"
)

// GeminiCompleter uses the Gemini API through the official genai client.
type GeminiCompleter struct {
	client *genai.Client
	opts   CompletionOptions
}

func NewGeminiCompleter(ctx context.Context, apiKey string, opts CompletionOptions) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if opts.Model == "" || strings.HasPrefix(opts.Model, "gpt-") {
		opts.Model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}
	return &GeminiCompleter{client: client, opts: opts}, nil
}

func (c *GeminiCompleter) Complete(ctx context.Context, system string, turns []domain.ChatTurn) (string, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.opts.Model, geminiContents(turns), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(float32(c.opts.Temperature)),
		MaxOutputTokens:   int32(c.opts.MaxTokens),
	})
	if err != nil {
		return "", errors.Wrap(err, "gemini generate content")
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini returned no content")
	}
	return text, nil
}

// geminiContents maps chat turns onto gemini roles; assistant turns become model turns.
func geminiContents(turns []domain.ChatTurn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		var role genai.Role = genai.RoleUser
		if t.Role == "assistant" || t.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}
	return contents
}
