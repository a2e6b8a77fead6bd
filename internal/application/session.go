package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"samosa-vision/internal/domain/entity"
	"samosa-vision/internal/domain/port"
)

// DefaultCaptions — подписи, которые крутятся, пока идёт анализ.
var DefaultCaptions = []string{
	"Inspecting the golden crust...",
	"Measuring corner angles...",
	"Consulting the samosa council...",
}

const (
	DefaultProgressInterval = 2 * time.Second
	DefaultAnalyzeTimeout   = 60 * time.Second

	observerGrace   = time.Second
	progressBacklog = 8

	genericAlert = "Something went wrong. Please try again."
)

// SessionService — машина состояний Upload → Analyzing → Result для каждой сессии.
type SessionService struct {
	repo      port.SessionRepository
	encoder   *Encoder
	analyzer  port.Analyzer
	validator *Validator

	captions []string
	interval time.Duration
	timeout  time.Duration
	grace    time.Duration

	mu        sync.Mutex
	observers []port.SessionObserver
}

// SessionOption настраивает SessionService.
type SessionOption func(*SessionService)

// WithCaptions задаёт подписи прогресса.
func WithCaptions(captions []string) SessionOption {
	return func(s *SessionService) {
		if len(captions) > 0 {
			s.captions = captions
		}
	}
}

// WithProgressInterval задаёт период смены подписей.
func WithProgressInterval(d time.Duration) SessionOption {
	return func(s *SessionService) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithAnalyzeTimeout ограничивает время кодирования и запроса к провайдеру.
func WithAnalyzeTimeout(d time.Duration) SessionOption {
	return func(s *SessionService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSessionService создаёт машину состояний.
func NewSessionService(repo port.SessionRepository, encoder *Encoder, analyzer port.Analyzer, validator *Validator, opts ...SessionOption) *SessionService {
	s := &SessionService{
		repo:      repo,
		encoder:   encoder,
		analyzer:  analyzer,
		validator: validator,
		captions:  DefaultCaptions,
		interval:  DefaultProgressInterval,
		timeout:   DefaultAnalyzeTimeout,
		grace:     observerGrace,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Observe подписывает наблюдателя на события всех сессий.
func (s *SessionService) Observe(o port.SessionObserver) {
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Session возвращает копию сессии.
func (s *SessionService) Session(ctx context.Context, id string) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := *sess
	return &cp, nil
}

// State возвращает текущее состояние сессии.
func (s *SessionService) State(ctx context.Context, id string) (entity.State, error) {
	sess, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.State, nil
}

// TakeAlert возвращает отложенное уведомление и очищает его.
func (s *SessionService) TakeAlert(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	alert := sess.Alert
	if alert == "" {
		return "", nil
	}
	sess.Alert = ""
	if err := s.repo.Save(ctx, sess); err != nil {
		return "", err
	}
	return alert, nil
}

// ProgressInterval — период смены подписей.
func (s *SessionService) ProgressInterval() time.Duration { return s.interval }

// Caption возвращает подпись для индекса прогресса.
func (s *SessionService) Caption(progress int) string {
	if progress < 0 {
		progress = 0
	}
	return s.captions[progress%len(s.captions)]
}

// SelectFile запускает анализ выбранного файла. Допустимо только из Upload.
// Канал отдаёт итоговое состояние (Result или Upload) и закрывается.
func (s *SessionService) SelectFile(ctx context.Context, id string, file *entity.ImageFile) (<-chan entity.State, error) {
	s.mu.Lock()
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if sess.State.Kind() != entity.StateUpload {
		s.mu.Unlock()
		return nil, entity.ErrBusy
	}
	sess.Alert = ""
	sess.SetState(entity.Analyzing{})
	if err := s.repo.Save(ctx, sess); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	slog.Info("analysis started", "session", id, "file", fileName(file))

	stop := s.startProgress(id)
	done := make(chan entity.State, 1)
	go func() {
		defer close(done)
		done <- s.run(ctx, id, file, stop)
	}()
	return done, nil
}

// Reset возвращает сессию из Result в Upload.
func (s *SessionService) Reset(ctx context.Context, id string) (entity.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch sess.State.(type) {
	case entity.Analyzing:
		return sess.State, entity.ErrBusy
	case entity.Result:
		sess.SetState(entity.Upload{})
		if err := s.repo.Save(ctx, sess); err != nil {
			return nil, err
		}
	}
	return sess.State, nil
}

// Drop забывает сессию целиком. Во время анализа — ErrBusy.
func (s *SessionService) Drop(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess.State.Kind() == entity.StateAnalyzing {
		return entity.ErrBusy
	}
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, entity.ErrSessionNotFound) {
		return err
	}
	return nil
}

// PruneIdle удаляет сессии, простаивающие дольше ttl.
func (s *SessionService) PruneIdle(ctx context.Context, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Prune(ctx, time.Now().Add(-ttl))
}

func (s *SessionService) run(ctx context.Context, id string, file *entity.ImageFile, stop func()) entity.State {
	record, err := s.analyze(ctx, file)
	stop()

	var (
		next  entity.State
		alert string
	)
	if err != nil {
		next = entity.Upload{}
		alert = alertMessage(err)
		slog.Warn("analysis failed", "session", id, "error", err)
	} else {
		next = entity.Result{Record: *record}
		slog.Info("analysis completed", "session", id, "score", record.Score, "corners", len(record.Corners))
	}

	saveCtx := context.WithoutCancel(ctx)
	s.mu.Lock()
	sess, gerr := s.repo.Get(saveCtx, id)
	if gerr == nil {
		sess.Alert = alert
		sess.SetState(next)
		gerr = s.repo.Save(saveCtx, sess)
	}
	observers := append([]port.SessionObserver(nil), s.observers...)
	s.mu.Unlock()
	if gerr != nil {
		slog.Error("save session", "session", id, "error", gerr)
	}

	for _, o := range observers {
		o.Finished(id, next, alert)
	}
	return next
}

func (s *SessionService) analyze(ctx context.Context, file *entity.ImageFile) (rec *entity.AnalysisRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	img, err := s.encoder.Encode(ctx, file)
	if err != nil {
		return nil, err
	}
	raw, err := s.analyzer.Analyze(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.analyzer.Name(), err)
	}
	slog.Debug("model reply", "provider", s.analyzer.Name(), "reply", raw)
	return s.validator.Validate(raw)
}

// startProgress крутит подписи, пока сессия в Analyzing.
// Тикер только меняет состояние, наблюдателей вызывает отдельная горутина.
// stop останавливает тикер и ждёт доставку не дольше observerGrace.
func (s *SessionService) startProgress(id string) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan progressEvent, progressBacklog)
	tickerDone := make(chan struct{})
	notifyDone := make(chan struct{})

	go func() {
		defer close(tickerDone)
		defer close(ticks)
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if ctx.Err() != nil {
					return
				}
				ev, ok := s.advance(ctx, id)
				if !ok {
					continue
				}
				// наблюдатель завис — лишние подписи пропускаем
				select {
				case ticks <- ev:
				default:
				}
			}
		}
	}()

	go func() {
		defer close(notifyDone)
		for ev := range ticks {
			if ctx.Err() != nil {
				continue
			}
			for _, o := range ev.observers {
				o.Progress(id, ev.caption)
			}
		}
	}()

	return func() {
		cancel()
		<-tickerDone
		select {
		case <-notifyDone:
		case <-time.After(s.grace):
			slog.Warn("progress observer is slow, finishing without it", "session", id)
		}
	}
}

type progressEvent struct {
	caption   string
	observers []port.SessionObserver
}

func (s *SessionService) advance(ctx context.Context, id string) (progressEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return progressEvent{}, false
	}
	a, ok := sess.State.(entity.Analyzing)
	if !ok {
		return progressEvent{}, false
	}
	a.Progress = (a.Progress + 1) % len(s.captions)
	sess.SetState(a)
	_ = s.repo.Save(ctx, sess)
	return progressEvent{
		caption:   s.captions[a.Progress],
		observers: append([]port.SessionObserver(nil), s.observers...),
	}, true
}

func alertMessage(err error) string {
	if err == nil || err.Error() == "" {
		return genericAlert
	}
	return err.Error()
}

func fileName(f *entity.ImageFile) string {
	if f == nil {
		return ""
	}
	return f.Name
}
