package port

import (
	"context"

	"samosa-vision/internal/domain/entity"
)

// Analyzer интерфейс внешнего сервиса инференса
type Analyzer interface {
	// Name возвращает имя провайдера, например "gemini"
	Name() string

	// Analyze отправляет изображение с фиксированным промптом и возвращает сырой текст ответа
	Analyze(ctx context.Context, image *entity.EncodedImage) (string, error)
}
