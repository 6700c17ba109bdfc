package investiq

import (
	"context"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI-compatible chat completion endpoints.
const (
	togetherBaseURL = "https://api.together.xyz/v1"
	groqBaseURL     = "https://api.groq.com/openai/v1"

	defaultTogetherModel = "meta-llama/Llama-3.3-70B-Instruct-Turbo"
	defaultGroqModel     = "llama-3.3-70b-versatile"
)

// openAIProvider serves any OpenAI-compatible chat completion backend
// (Together, Groq). SDK retries are disabled so the analyzer fallback chain
// controls exactly how many calls each state makes.
type openAIProvider struct {
	name   string
	model  string
	client openai.Client
}

func newOpenAIProvider(name, baseURL, apiKey, model string) *openAIProvider {
	return &openAIProvider{
		name:  name,
		model: model,
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
			option.WithMaxRetries(0),
		),
	}
}

func (p *openAIProvider) Name() string { return p.name }

func (p *openAIProvider) Analyze(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(1024),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", NewError(ErrCodeAIUnavailable, "empty completion response")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", NewError(ErrCodeAIUnavailable, "empty completion content")
	}
	return content, nil
}
