package adapthttp

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"fieldsync/internal/domain"
)

// HeaderRequestID carries a per-request correlation id.
const HeaderRequestID = "X-Request-Id"

type sessionReader interface {
	Current() domain.Session
}

// identityTransport stamps the current session onto every outbound request.
// The session is read at send time so the headers always reflect the latest
// login or logout.
type identityTransport struct {
	next    http.RoundTripper
	session sessionReader
}

func (t *identityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if r.Header.Get(HeaderRequestID) == "" {
		r.Header.Set(HeaderRequestID, uuid.NewString())
	}
	if r.Body != nil && r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "application/json")
	}
	r.Header.Set("Accept", "application/json")

	if t.session != nil {
		s := t.session.Current()
		if s.Authenticated() {
			tok := &oauth2.Token{AccessToken: s.Token, TokenType: "Bearer"}
			tok.SetAuthHeader(r)
			for k, v := range s.IdentityHeaders() {
				r.Header.Set(k, v)
			}
		}
	}
	return t.next.RoundTrip(r)
}

// loggingTransport logs one line per round trip.
type loggingTransport struct {
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		log.Printf("gateway: %s %s failed after %v: %v", req.Method, req.URL.Path, time.Since(start), err)
		return nil, err
	}
	log.Printf("gateway: %s %s %d %v", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))
	return resp, nil
}
