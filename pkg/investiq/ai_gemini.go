package investiq

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiProvider serves the Gemini API through the genai SDK. The client is
// created lazily because genai.NewClient needs a context.
type geminiProvider struct {
	apiKey string
	model  string
}

func newGeminiProvider(apiKey, model string) *geminiProvider {
	return &geminiProvider{apiKey: apiKey, model: model}
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) Analyze(ctx context.Context, system, user string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", WrapError(ErrCodeAIUnavailable, "create gemini client", err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		Temperature:     genai.Ptr(float32(0.7)),
		MaxOutputTokens: 1024,
	}
	resp, err := client.Models.GenerateContent(ctx, p.model, genai.Text(user), config)
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(resp.Text())
	if content == "" {
		return "", NewError(ErrCodeAIUnavailable, "empty gemini response")
	}
	return content, nil
}
