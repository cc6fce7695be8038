// Package adapthttp is the driven HTTP adapter: the request gateway and the
// clients for each backend resource.
package adapthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"fieldsync/internal/domain"
)

// Options configures a Gateway.
type Options struct {
	// BaseURL is prefixed to every request path, e.g. http://host/api.
	BaseURL string
	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration
	// Transport is the underlying round tripper. Defaults to
	// http.DefaultTransport.
	Transport http.RoundTripper
	Session   domain.SessionHandle
	Navigator domain.Navigator
	Metrics   *Metrics
}

// Gateway is the single outbound path to the backend. It attaches identity
// to every request and reacts to 401 responses by ending the session.
type Gateway struct {
	base    *url.URL
	client  *http.Client
	session domain.SessionHandle
	nav     domain.Navigator
	metrics *Metrics

	// authMu serializes 401 handling so concurrent failures redirect once.
	authMu sync.Mutex
}

// NewGateway validates opts and builds a Gateway.
func NewGateway(opts Options) (*Gateway, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", opts.BaseURL)
	}
	next := opts.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	g := &Gateway{
		base:    base,
		session: opts.Session,
		nav:     opts.Navigator,
		metrics: opts.Metrics,
	}
	g.client = &http.Client{
		Timeout: opts.Timeout,
		Transport: &loggingTransport{
			next: &identityTransport{next: next, session: opts.Session},
		},
	}
	return g, nil
}

// BaseURL returns the URL every request path is resolved against.
func (g *Gateway) BaseURL() string { return g.base.String() }

// Do sends a JSON request and decodes a JSON response into out. out may be
// nil. Every failure is a *domain.Error.
func (g *Gateway) Do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &domain.Error{Kind: domain.KindValidationFailed, Op: op, Detail: "encode request", Err: err}
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.resolve(path), rdr)
	if err != nil {
		return &domain.Error{Kind: domain.KindConnectivityFailure, Op: op, Err: err}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.metrics.observe(method, "error")
		return &domain.Error{Kind: domain.KindConnectivityFailure, Op: op, Err: err}
	}
	defer resp.Body.Close()
	g.metrics.observe(method, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := classify(op, resp)
		if resp.StatusCode == http.StatusUnauthorized {
			g.unauthorized(ctx)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return &domain.Error{Kind: domain.KindServiceUnavailable, Op: op, Status: resp.StatusCode, Detail: "empty response"}
		}
		return &domain.Error{Kind: domain.KindServiceUnavailable, Op: op, Status: resp.StatusCode, Detail: "malformed response", Err: err}
	}
	return nil
}

// unauthorized ends the session and sends the user to the login surface,
// unless they are already there.
func (g *Gateway) unauthorized(ctx context.Context) {
	g.authMu.Lock()
	defer g.authMu.Unlock()

	g.metrics.authFailure()
	if g.session != nil {
		if err := g.session.Logout(context.WithoutCancel(ctx)); err != nil {
			log.Printf("gateway: logout after 401: %v", err)
		}
	}
	if g.nav != nil && g.nav.Current() != domain.LoginPath {
		log.Printf("gateway: session expired, redirecting to %s", domain.LoginPath)
		g.nav.Redirect(domain.LoginPath)
	}
}

func (g *Gateway) resolve(path string) string {
	u := *g.base
	u.Path = g.base.Path + "/" + strings.TrimLeft(path, "/")
	return u.String()
}

// classify maps an error response onto the domain error taxonomy.
func classify(op string, resp *http.Response) error {
	e := &domain.Error{Op: op, Status: resp.StatusCode, Detail: errorDetail(resp.Body)}
	switch code := resp.StatusCode; {
	case code == http.StatusUnauthorized:
		e.Kind = domain.KindAuthorizationExpired
	case code == http.StatusForbidden:
		e.Kind = domain.KindAccountDisabled
	case code == http.StatusNotFound:
		e.Kind = domain.KindNotFound
	case code >= http.StatusInternalServerError:
		e.Kind = domain.KindServiceUnavailable
	default:
		e.Kind = domain.KindValidationFailed
	}
	return e
}
