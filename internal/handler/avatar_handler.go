package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type avatarSource interface {
	Avatar(ctx context.Context, id string) ([]byte, error)
}

type AvatarHandler struct {
	avatars avatarSource
}

func NewAvatarHandler(avatars avatarSource) *AvatarHandler {
	return &AvatarHandler{avatars: avatars}
}

func (h *AvatarHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, err := h.avatars.Avatar(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
