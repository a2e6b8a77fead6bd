package inference

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	"samosa-vision/config"
	"samosa-vision/internal/domain/entity"
	"samosa-vision/internal/domain/port"
)

// OpenAIAnalyzer отправляет фото в OpenAI-совместимый chat completions.
type OpenAIAnalyzer struct {
	client *openai.Client
	cfg    *config.OpenAIConfig
	prompt string
}

// NewOpenAI создаёт клиент для openai или azure.
func NewOpenAI(cfg *config.OpenAIConfig, prompt string, opts ...option.RequestOption) (*OpenAIAnalyzer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("OPENAI_API_KEY is empty")
	}

	var client *openai.Client
	switch cfg.Provider {
	case "azure":
		client = openai.NewClient(append([]option.RequestOption{
			azure.WithEndpoint(cfg.APIEndpoint, cfg.APIVersion),
			azure.WithAPIKey(cfg.APIKey),
		}, opts...)...)
	default: // "openai"
		client = openai.NewClient(append([]option.RequestOption{
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.APIEndpoint),
		}, opts...)...)
	}

	return &OpenAIAnalyzer{
		client: client,
		cfg:    cfg,
		prompt: prompt,
	}, nil
}

func (o *OpenAIAnalyzer) Name() string { return "openai" }

// Analyze возвращает текст ответа модели как есть.
func (o *OpenAIAnalyzer) Analyze(ctx context.Context, img *entity.EncodedImage) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.F(o.cfg.Model),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessageParts(
				openai.TextPart(o.prompt),
				openai.ImagePart(img.DataURL()),
			),
		}),
		Temperature: openai.F(0.2),
		MaxTokens:   openai.F(int64(1000)),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response")
	}
	txt := strings.TrimSpace(resp.Choices[0].Message.Content)
	if txt == "" {
		return "", errors.New("empty response")
	}
	return txt, nil
}

var _ port.Analyzer = (*OpenAIAnalyzer)(nil)
