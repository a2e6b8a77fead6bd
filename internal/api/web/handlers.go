package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"samosa-vision/internal/domain/entity"
)

const (
	sessionCookie = "sid"
	formField     = "image"

	// запас на заголовки multipart поверх самого файла
	multipartOverhead = 1 << 20
)

type pageView struct {
	State   entity.StateKind
	Caption string
	Alert   string
	Record  *entity.AnalysisRecord
	Refresh int
}

type sessionResponse struct {
	State   entity.StateKind           `json:"state"`
	Caption string                     `json:"caption,omitempty"`
	Score   *float64                   `json:"score,omitempty"`
	Corners []entity.CornerObservation `json:"corners,omitempty"`
	Alert   string                     `json:"alert,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sid := s.sessionID(w, r)

	view, err := s.view(r.Context(), sid)
	if err != nil {
		slog.Error("load session", "session", sid, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.page.Execute(w, view); err != nil {
		slog.Error("render page", "error", err)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sid := s.sessionID(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+multipartOverhead)

	var img *entity.ImageFile
	file, header, err := r.FormFile(formField)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// пустой выбор — машина состояний сама сообщит об ошибке
	case err != nil:
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.fail(w, r, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		s.fail(w, r, http.StatusBadRequest, "bad upload: "+err.Error())
		return
	default:
		// multipart-файлы удаляются после выхода из хендлера, поэтому читаем сразу
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, "read upload: "+err.Error())
			return
		}
		img = &entity.ImageFile{
			Name:      header.Filename,
			MediaType: header.Header.Get("Content-Type"),
			Reader:    bytes.NewReader(data),
		}
	}

	if _, err := s.sessions.SelectFile(context.WithoutCancel(r.Context()), sid, img); err != nil {
		if errors.Is(err, entity.ErrBusy) {
			s.fail(w, r, http.StatusConflict, err.Error())
			return
		}
		slog.Error("select file", "session", sid, "error", err)
		s.fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	s.done(w, r, sid, http.StatusAccepted)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sid := s.sessionID(w, r)

	if _, err := s.sessions.Reset(r.Context(), sid); err != nil {
		if errors.Is(err, entity.ErrBusy) {
			s.fail(w, r, http.StatusConflict, err.Error())
			return
		}
		slog.Error("reset session", "session", sid, "error", err)
		s.fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	s.done(w, r, sid, http.StatusOK)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sid := s.sessionID(w, r)

	view, err := s.view(r.Context(), sid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toResponse(view))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// view собирает данные страницы; alert забирается только в состоянии Upload.
func (s *Server) view(ctx context.Context, sid string) (pageView, error) {
	sess, err := s.sessions.Session(ctx, sid)
	if err != nil {
		return pageView{}, err
	}

	v := pageView{State: sess.State.Kind()}
	switch st := sess.State.(type) {
	case entity.Upload:
		if v.Alert, err = s.sessions.TakeAlert(ctx, sid); err != nil {
			return pageView{}, err
		}
	case entity.Analyzing:
		v.Caption = s.sessions.Caption(st.Progress)
		v.Refresh = refreshSeconds(s.sessions.ProgressInterval())
	case entity.Result:
		rec := st.Record
		v.Record = &rec
	}
	return v, nil
}

// refreshSeconds округляет период подписей вверх до целых секунд для meta refresh.
func refreshSeconds(d time.Duration) int {
	n := int((d + time.Second - 1) / time.Second)
	if n < 1 {
		return 1
	}
	return n
}

func toResponse(v pageView) sessionResponse {
	resp := sessionResponse{State: v.State, Caption: v.Caption, Alert: v.Alert}
	if v.Record != nil {
		score := v.Record.Score
		resp.Score = &score
		resp.Corners = v.Record.Corners
	}
	return resp
}

// sessionID читает cookie сессии или выдаёт новую.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) done(w http.ResponseWriter, r *http.Request, sid string, code int) {
	if wantsJSON(r) {
		view, err := s.view(r.Context(), sid)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, code, toResponse(view))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if wantsJSON(r) {
		writeJSON(w, code, map[string]string{"error": msg})
		return
	}
	http.Error(w, msg, code)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
