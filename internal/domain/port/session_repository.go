package port

import (
	"context"
	"time"

	"samosa-vision/internal/domain/entity"
)

// SessionRepository интерфейс хранилища сессий
type SessionRepository interface {
	// Get возвращает сессию по ID, создаёт новую если не найдена
	Get(ctx context.Context, id string) (*entity.Session, error)

	// Save сохраняет состояние сессии
	Save(ctx context.Context, session *entity.Session) error

	// Delete удаляет сессию
	Delete(ctx context.Context, id string) error

	// Prune удаляет сессии, не менявшиеся с момента before, кроме тех, что сейчас в анализе
	Prune(ctx context.Context, before time.Time) (int, error)
}
