package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cesde-ntp/tablero/dashboard"
	"github.com/cesde-ntp/tablero/session"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	id := s.sessions.Create()
	w.Header().Set(SessionHeader, id)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.Exists(id) {
		writeError(w, http.StatusNotFound, session.ErrNotFound.Error())
		return
	}
	s.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.Pages())
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	s.withSession(w, r, func(st *session.State) (*dashboard.Render, error) {
		return s.dash.Render(r.Context(), page, st)
	})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	var a dashboard.Action
	if err := decode(r, &a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	a.Type = chi.URLParam(r, "action")
	s.withSession(w, r, func(st *session.State) (*dashboard.Render, error) {
		return s.dash.Act(r.Context(), page, st, a)
	})
}

// withSession runs fn under the session's lock and writes its render.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.State) (*dashboard.Render, error)) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing "+SessionHeader+" header")
		return
	}
	var out *dashboard.Render
	err := s.sessions.Update(id, func(st *session.State) error {
		var err error
		out, err = fn(st)
		return err
	})
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, dashboard.ErrUnknownPage):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, dashboard.ErrInvalidAction):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.logger.Error("page request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		w.Header().Set(SessionHeader, id)
		writeJSON(w, http.StatusOK, out)
	}
}
