// Package transport is the outbound request pipeline of the console. Every
// call to the rescue backend passes through an ordered list of interceptors
// composed once into an http.RoundTripper.
package transport

import (
	"net/http"
	"time"
)

// Next forwards a request to the rest of the chain.
type Next func(*http.Request) (*http.Response, error)

// Interceptor may rewrite the request before calling next and inspect the
// response after. Requests must be cloned before mutation.
type Interceptor func(req *http.Request, next Next) (*http.Response, error)

type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Chain composes interceptors around base. The first interceptor is the
// outermost: it sees the request first and the response last.
func Chain(base http.RoundTripper, interceptors ...Interceptor) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	next := base.RoundTrip
	for i := len(interceptors) - 1; i >= 0; i-- {
		interceptor := interceptors[i]
		inner := next
		next = func(req *http.Request) (*http.Response, error) {
			return interceptor(req, inner)
		}
	}

	return RoundTripFunc(next)
}

func NewClient(base http.RoundTripper, timeout time.Duration, interceptors ...Interceptor) *http.Client {
	return &http.Client{
		Transport: Chain(base, interceptors...),
		Timeout:   timeout,
	}
}

func cloneRequest(req *http.Request) *http.Request {
	clone := req.Clone(req.Context())
	if clone.Header == nil {
		clone.Header = http.Header{}
	}
	return clone
}
