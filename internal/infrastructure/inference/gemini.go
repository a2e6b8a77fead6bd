package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"samosa-vision/internal/domain/entity"
	"samosa-vision/internal/domain/port"
)

// GeminiAnalyzer отправляет фото в Gemini. Клиент создаётся один раз при старте.
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
	prompt string
}

// NewGemini создаёт клиент Gemini по API-ключу.
func NewGemini(ctx context.Context, apiKey, model, prompt string, opts ...option.ClientOption) (*GeminiAnalyzer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiAnalyzer{
		client: cl,
		model:  strings.TrimSpace(model),
		prompt: prompt,
	}, nil
}

func (g *GeminiAnalyzer) Name() string { return "gemini" }

// Close освобождает соединение клиента.
func (g *GeminiAnalyzer) Close() error { return g.client.Close() }

// Analyze возвращает текст ответа модели как есть.
func (g *GeminiAnalyzer) Analyze(ctx context.Context, img *entity.EncodedImage) (string, error) {
	data, err := img.Bytes()
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(0.2)

	resp, err := m.GenerateContent(ctx,
		genai.Text(g.prompt),
		genai.Blob{MIMEType: img.MediaType, Data: data},
	)
	if err != nil {
		return "", err
	}

	txt := replyText(resp)
	if txt == "" {
		return "", errors.New("empty response")
	}
	return txt, nil
}

// replyText склеивает текстовые части первого кандидата.
func replyText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if s := strings.TrimSpace(sb.String()); s != "" {
			return s
		}
	}
	return ""
}

var _ port.Analyzer = (*GeminiAnalyzer)(nil)
