// Package console assembles the client core shared by the gateway and the
// CLI: storage-backed token, derived session, interceptor pipeline, auth
// lifecycle and the typed API client.
package console

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"rescue-console/internal/api"
	"rescue-console/internal/auth"
	"rescue-console/internal/event"
	"rescue-console/internal/metrics"
	"rescue-console/internal/session"
	"rescue-console/internal/storage"
	"rescue-console/internal/token"
	"rescue-console/internal/transport"
)

type Options struct {
	BackendURL string

	// Local survives restarts and holds the token. Session lives as long as
	// the process and holds the correlation id and cached avatars.
	Local   storage.Storage
	Session storage.Storage

	// Navigator defaults to a ViewTracker publishing on Bus.
	Navigator auth.Navigator
	Bus       event.Bus
	Metrics   *metrics.Metrics

	// Base is the transport under the pipeline; nil means http.DefaultTransport.
	Base http.RoundTripper

	RequestTimeout      time.Duration
	CheckInterval       time.Duration
	FreshnessFallback   time.Duration
	FreshnessNamespaces []string
	OutboundRPS         float64
	OutboundBurst       int
}

type Console struct {
	Backend *url.URL
	Local   storage.Storage
	Session storage.Storage

	Tokens  *token.Store
	State   *session.State
	Bus     event.Bus
	Views   *auth.ViewTracker
	Auth    *auth.Service
	API     *api.Client
	Window  *transport.FreshnessWindow
	Metrics *metrics.Metrics

	// HTTP is the pipelined client; Transport is its RoundTripper for the
	// gateway's reverse proxy.
	HTTP      *http.Client
	Transport http.RoundTripper
}

func New(opts Options) (*Console, error) {
	backend, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.BackendURL), "/"))
	if err != nil || backend.Scheme == "" || backend.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", opts.BackendURL)
	}
	if opts.Local == nil {
		return nil, fmt.Errorf("local storage is required")
	}
	if opts.Session == nil {
		opts.Session = storage.NewMemory()
	}
	if opts.Bus == nil {
		opts.Bus = event.NewBus()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	c := &Console{
		Backend: backend,
		Local:   opts.Local,
		Session: opts.Session,
		Bus:     opts.Bus,
		Metrics: opts.Metrics,
	}

	c.Tokens = token.NewStore(opts.Local)
	c.State = session.NewState(c.Tokens, nil)
	c.Window = transport.NewFreshnessWindow(opts.FreshnessFallback, nil)

	navigator := opts.Navigator
	if navigator == nil {
		c.Views = auth.NewViewTracker(opts.Bus)
		navigator = c.Views
	}

	var limiter *rate.Limiter
	if opts.OutboundRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.OutboundRPS), max(1, opts.OutboundBurst))
	}

	// The pipeline ends sessions through the auth service, which itself
	// needs the pipeline; the closure breaks the cycle.
	var service *auth.Service
	interceptors := transport.Standard(transport.Options{
		RequestIDs: transport.NewRequestIDs(opts.Session),
		Tokens:     c.Tokens,
		Validator:  c.State,
		Terminator: transport.TerminatorFunc(func(ctx context.Context, reason string) {
			service.ForceLogout(ctx, reason)
		}),
		Window:     c.Window,
		Namespaces: transport.NewNamespaces(backend.Path, opts.FreshnessNamespaces),
		Limiter:    limiter,
		Metrics:    opts.Metrics,
	})

	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}
	c.Transport = transport.Chain(base, interceptors...)
	c.HTTP = &http.Client{Transport: c.Transport, Timeout: opts.RequestTimeout}

	service, err = auth.NewService(auth.Config{
		BackendURL:    backend.String(),
		Client:        c.HTTP,
		Bare:          &http.Client{Transport: base, Timeout: opts.RequestTimeout},
		Tokens:        c.Tokens,
		State:         c.State,
		Bus:           opts.Bus,
		Navigator:     navigator,
		Metrics:       opts.Metrics,
		CheckInterval: opts.CheckInterval,
	})
	if err != nil {
		return nil, err
	}
	c.Auth = service

	c.API, err = api.New(backend.String(), c.HTTP, c.State)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Resume starts the periodic check after a gateway restart and reports
// whether the stored token is still live. The check runs either way so a
// token that expired while the gateway was down still ends the session.
func (c *Console) Resume(ctx context.Context) bool {
	c.Auth.StartSessionCheck(ctx)
	return c.State.IsAuthenticated(ctx)
}

func (c *Console) Close() {
	c.Auth.StopSessionCheck()
}
