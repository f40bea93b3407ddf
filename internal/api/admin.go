package api

import (
	"context"
	"log/slog"
	"net/http"

	"rescue-console/pkg/apierror"
)

// AdminService wraps the destructive maintenance endpoints. Calls are refused
// locally unless the session carries the Administrator role; the backend
// still makes the final decision.
type AdminService struct {
	c *Client
}

func (s *AdminService) allowed(ctx context.Context) error {
	if s.c.authority == nil || !s.c.authority.IsAdmin(ctx) {
		return apierror.New("FORBIDDEN", "administrator role required", "", http.StatusForbidden)
	}
	return nil
}

// Reset wipes the backend data set.
func (s *AdminService) Reset(ctx context.Context) error {
	if err := s.allowed(ctx); err != nil {
		return err
	}

	slog.Warn("requesting backend data reset")
	return s.c.call(ctx, http.MethodDelete, s.c.url(nil, "admin", "reset"), nil, nil)
}

func (s *AdminService) RestartCluster(ctx context.Context) error {
	if err := s.allowed(ctx); err != nil {
		return err
	}

	slog.Warn("requesting cluster restart")
	return s.c.call(ctx, http.MethodPost, s.c.url(nil, "admin", "k8s", "restart"), nil, nil)
}
