package handler

import (
	"context"
	"net/http"
	"strings"

	"rescue-console/internal/model"
	"rescue-console/internal/session"
	"rescue-console/pkg/apierror"
)

type sessionService interface {
	Login(ctx context.Context, creds model.Credentials) (session.Info, error)
	Logout(ctx context.Context)
	Session(ctx context.Context) session.Info
}

type viewSetter interface {
	SetView(view string) string
}

type SessionHandler struct {
	service sessionService
	views   viewSetter
}

func NewSessionHandler(service sessionService, views viewSetter) *SessionHandler {
	return &SessionHandler{service: service, views: views}
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, h.service.Session(r.Context()))
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	info, err := h.service.Login(r.Context(), model.Credentials{Username: payload.Username, Password: payload.Password})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, r, http.StatusOK, info)
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context())
	writeSuccess(w, r, http.StatusOK, map[string]any{"logged_out": true})
}

// SetView is how the UI reports navigation; the periodic check decides on
// the view last reported here.
func (h *SessionHandler) SetView(w http.ResponseWriter, r *http.Request) {
	var payload model.ViewRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.ContainsAny(payload.View, "\r\n") || len(payload.View) > 128 {
		writeError(w, r, apierror.New("BAD_REQUEST", "invalid view name", "view", http.StatusBadRequest))
		return
	}

	view := h.views.SetView(payload.View)
	writeSuccess(w, r, http.StatusOK, map[string]string{"view": view})
}
