package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"rescue-console/internal/event"
	"rescue-console/internal/metrics"
	"rescue-console/internal/model"
	"rescue-console/internal/session"
	"rescue-console/internal/token"
	"rescue-console/pkg/apierror"
)

const (
	ReasonSessionExpired = "session_expired"

	defaultNotifyTimeout = 3 * time.Second
)

type Config struct {
	BackendURL string

	// Client carries the full interceptor pipeline and is used for login.
	Client *http.Client
	// Bare skips the pipeline; the logout notification must not be able to
	// trigger another logout.
	Bare *http.Client

	Tokens    *token.Store
	State     *session.State
	Bus       event.Bus
	Navigator Navigator
	Metrics   *metrics.Metrics

	CheckInterval time.Duration
	NotifyTimeout time.Duration
}

// Service moves the console between Anonymous and Authenticated. The token
// store is the only state; events announce every transition.
type Service struct {
	backend       *url.URL
	client        *http.Client
	bare          *http.Client
	tokens        *token.Store
	state         *session.State
	bus           event.Bus
	nav           Navigator
	metrics       *metrics.Metrics
	checker       *Checker
	notifyTimeout time.Duration

	logoutMu sync.Mutex
}

func NewService(cfg Config) (*Service, error) {
	backend, err := url.Parse(strings.TrimSpace(cfg.BackendURL))
	if err != nil || backend.Scheme == "" || backend.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", cfg.BackendURL)
	}
	if cfg.Client == nil || cfg.Bare == nil {
		return nil, fmt.Errorf("auth service needs both a pipelined and a bare HTTP client")
	}
	if cfg.Tokens == nil || cfg.State == nil || cfg.Bus == nil || cfg.Navigator == nil {
		return nil, fmt.Errorf("auth service dependencies are incomplete")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNop()
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}

	s := &Service{
		backend:       backend,
		client:        cfg.Client,
		bare:          cfg.Bare,
		tokens:        cfg.Tokens,
		state:         cfg.State,
		bus:           cfg.Bus,
		nav:           cfg.Navigator,
		metrics:       cfg.Metrics,
		notifyTimeout: cfg.NotifyTimeout,
	}
	s.checker = NewChecker(cfg.CheckInterval, s.CheckSession)

	return s, nil
}

func (s *Service) endpoint(path string) string {
	return s.backend.JoinPath(path).String()
}

// Login exchanges credentials for a token. Failures are returned as is and
// leave the console anonymous.
func (s *Service) Login(ctx context.Context, creds model.Credentials) (session.Info, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		s.metrics.Logins.WithLabelValues("invalid").Inc()
		return session.Info{}, apierror.New("BAD_REQUEST", "username and password are required", "", http.StatusBadRequest)
	}

	body, err := json.Marshal(creds)
	if err != nil {
		return session.Info{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint("login"), bytes.NewReader(body))
	if err != nil {
		return session.Info{}, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.Logins.WithLabelValues("error").Inc()
		return session.Info{}, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.metrics.Logins.WithLabelValues("rejected").Inc()
		return session.Info{}, apierror.FromResponse(resp)
	}

	var payload model.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Token) == "" {
		s.metrics.Logins.WithLabelValues("error").Inc()
		return session.Info{}, apierror.New("INVALID_RESPONSE", "login response carried no token", "", http.StatusBadGateway)
	}

	if err := s.tokens.Set(ctx, strings.TrimSpace(payload.Token)); err != nil {
		s.metrics.Logins.WithLabelValues("error").Inc()
		return session.Info{}, fmt.Errorf("store token: %w", err)
	}

	info := s.state.Snapshot(ctx)
	s.metrics.Logins.WithLabelValues("success").Inc()
	slog.Info("logged in", "user_id", info.UserID, "role", info.Role)

	s.bus.Publish(event.New(event.TypeSessionLogin, info.UserID, info))
	s.StartSessionCheck(context.WithoutCancel(ctx))

	return info, nil
}

// Logout never fails. With a token present the backend is told once, on the
// bare client, and its answer is ignored; local cleanup always follows.
func (s *Service) Logout(ctx context.Context) {
	s.logoutMu.Lock()
	defer s.logoutMu.Unlock()

	raw := s.tokens.Get(ctx)
	userID := s.state.UserID(ctx)

	if raw != "" {
		s.notifyLogout(ctx, raw)
	}

	if err := s.tokens.Clear(ctx); err != nil {
		slog.Error("failed to clear token", "error", err)
	}
	s.checker.Stop()

	s.bus.Publish(event.New(event.TypeSessionLogout, userID, nil))
	s.nav.Redirect(ViewLogin)

	slog.Info("logged out", "user_id", userID)
}

// ForceLogout is a Logout the console decided on by itself.
func (s *Service) ForceLogout(ctx context.Context, reason string) {
	s.metrics.ForcedLogouts.WithLabelValues(reason).Inc()
	slog.Warn("forcing logout", "reason", reason, "view", s.nav.CurrentView())
	s.Logout(ctx)
}

func (s *Service) notifyLogout(ctx context.Context, raw string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint("logout"), nil)
	if err != nil {
		slog.Warn("logout notification not sent", "error", err)
		return
	}
	req.Header.Set("Authorization", "Bearer "+raw)

	resp, err := s.bare.Do(req)
	if err != nil {
		slog.Warn("logout notification failed", "error", err)
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("logout notification rejected", "status", resp.StatusCode)
	}
}

// CheckSession ends a session that silently expired while the operator sits
// on a view that needs one.
func (s *Service) CheckSession(ctx context.Context) {
	if s.state.IsAuthenticated(ctx) {
		s.metrics.SessionChecks.WithLabelValues("valid").Inc()
		return
	}

	view := s.nav.CurrentView()
	if !RequiresAuth(view) {
		s.metrics.SessionChecks.WithLabelValues("public_view").Inc()
		return
	}

	s.metrics.SessionChecks.WithLabelValues("expired").Inc()
	s.ForceLogout(ctx, ReasonSessionExpired)
}

func (s *Service) StartSessionCheck(ctx context.Context) {
	s.checker.Start(ctx)
}

func (s *Service) StopSessionCheck() {
	s.checker.Stop()
}

func (s *Service) SessionCheckRunning() bool {
	return s.checker.Running()
}

func (s *Service) Session(ctx context.Context) session.Info {
	return s.state.Snapshot(ctx)
}
