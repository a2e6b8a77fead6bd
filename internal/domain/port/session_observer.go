package port

import "samosa-vision/internal/domain/entity"

// SessionObserver получает события машины состояний
type SessionObserver interface {
	// Progress вызывается на каждом шаге подписи прогресса во время анализа
	Progress(sessionID, caption string)

	// Finished вызывается один раз, когда анализ завершился (Result или Upload с alert)
	Finished(sessionID string, state entity.State, alert string)
}
