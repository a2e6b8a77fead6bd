package entity

import "time"

// StateKind — имя состояния для отображения и сериализации.
type StateKind string

const (
	StateUpload    StateKind = "upload"    // ждём файл
	StateAnalyzing StateKind = "analyzing" // идёт анализ
	StateResult    StateKind = "result"    // показываем результат
)

// State — одно из Upload, Analyzing, Result.
// Реализации закрыты внутри пакета, поэтому Result без записи не построить.
type State interface {
	Kind() StateKind
	isState()
}

// Upload — начальное состояние.
type Upload struct{}

// Analyzing хранит индекс текущей подписи прогресса.
type Analyzing struct {
	Progress int
}

// Result хранит проверенную запись анализа.
type Result struct {
	Record AnalysisRecord
}

func (Upload) Kind() StateKind    { return StateUpload }
func (Analyzing) Kind() StateKind { return StateAnalyzing }
func (Result) Kind() StateKind    { return StateResult }

func (Upload) isState()    {}
func (Analyzing) isState() {}
func (Result) isState()    {}

// Session — состояние одного пользователя (браузер или чат).
type Session struct {
	ID        string
	State     State
	Alert     string // одноразовое уведомление об ошибке
	UpdatedAt time.Time
}

// NewSession создаёт сессию в начальном состоянии.
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		State:     Upload{},
		UpdatedAt: time.Now(),
	}
}

// SetState переводит сессию в новое состояние.
func (s *Session) SetState(state State) {
	s.State = state
	s.UpdatedAt = time.Now()
}
