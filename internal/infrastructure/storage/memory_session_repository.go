package storage

import (
	"context"
	"sync"
	"time"

	"samosa-vision/internal/domain/entity"
	"samosa-vision/internal/domain/port"
)

// MemorySessionRepository in-memory хранилище сессий
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
}

// NewMemorySessionRepository создаёт новое in-memory хранилище
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*entity.Session),
	}
}

// Get возвращает сессию по ID, создаёт новую если не найдена
func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*entity.Session, error) {
	r.mu.RLock()
	sess, exists := r.sessions[id]
	r.mu.RUnlock()

	if exists {
		return sess, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Между RUnlock и Lock сессию мог создать другой запрос
	if sess, exists := r.sessions[id]; exists {
		return sess, nil
	}
	sess = entity.NewSession(id)
	r.sessions[id] = sess

	return sess, nil
}

// Save сохраняет состояние сессии
func (r *MemorySessionRepository) Save(ctx context.Context, sess *entity.Session) error {
	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()

	return nil
}

// Delete удаляет сессию
func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; !exists {
		return entity.ErrSessionNotFound
	}
	delete(r.sessions, id)

	return nil
}

// Prune удаляет простаивающие сессии; сессии в анализе не трогаем
func (r *MemorySessionRepository) Prune(ctx context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, sess := range r.sessions {
		if sess.State.Kind() == entity.StateAnalyzing {
			continue
		}
		if sess.UpdatedAt.Before(before) {
			delete(r.sessions, id)
			n++
		}
	}

	return n, nil
}

// Проверка реализации интерфейса
var _ port.SessionRepository = (*MemorySessionRepository)(nil)
