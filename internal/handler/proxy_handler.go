package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"rescue-console/internal/middleware"
	"rescue-console/internal/transport"
	"rescue-console/pkg/apierror"
)

// ProxyHandler forwards UI calls under prefix to the rescue backend through
// the console's interceptor pipeline, which supplies the bearer token. What
// the UI sends as credentials is dropped.
type ProxyHandler struct {
	prefix string
	proxy  *httputil.ReverseProxy
}

func NewProxyHandler(backend *url.URL, rt http.RoundTripper, prefix string) *ProxyHandler {
	h := &ProxyHandler{prefix: strings.TrimRight(prefix, "/")}

	h.proxy = &httputil.ReverseProxy{
		Transport: rt,
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL = rootedJoin(backend, strings.TrimPrefix(pr.In.URL.Path, h.prefix))
			pr.Out.URL.RawQuery = pr.In.URL.RawQuery
			pr.Out.Host = backend.Host
			pr.Out.Header.Del("Authorization")
			pr.Out.Header.Del("Cookie")
			// only the freshness stage may set the marker
			pr.Out.Header.Del(transport.HeaderFreshUntil)
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Warn("backend proxy failed",
				"path", r.URL.Path, "error", err, "request_id", middleware.RequestIDFromContext(r.Context()))
			if errors.Is(err, r.Context().Err()) && r.Context().Err() != nil {
				writeError(w, r, apierror.New("UPSTREAM_TIMEOUT", "rescue backend did not answer in time", "", http.StatusGatewayTimeout))
				return
			}
			writeError(w, r, apierror.New("UPSTREAM_UNAVAILABLE", "rescue backend unreachable", "", http.StatusBadGateway))
		},
	}

	return h
}

// rootedJoin joins rest onto the backend path. JoinPath leaves the result
// relative when the backend URL has no path, which is not a valid request
// target.
func rootedJoin(backend *url.URL, rest string) *url.URL {
	target := backend.JoinPath(rest)
	if !strings.HasPrefix(target.Path, "/") {
		target.Path = "/" + target.Path
		if target.RawPath != "" {
			target.RawPath = "/" + target.RawPath
		}
	}
	return target
}

func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, h.prefix)
	for _, segment := range strings.Split(rest, "/") {
		if segment == ".." || segment == "." {
			writeError(w, r, apierror.New("BAD_REQUEST", "invalid backend path", rest, http.StatusBadRequest))
			return
		}
	}

	h.proxy.ServeHTTP(w, r)
}
