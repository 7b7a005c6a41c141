// Package rest implements the authenticated REST pipeline of the FTX API:
// a per-call transport session that signs every request, and a client that
// composes endpoints, unwraps the response envelope and reassembles
// paginated candle history.
package rest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/veiloq/ftx-connector/pkg/config"
	"github.com/veiloq/ftx-connector/pkg/logging"
	"github.com/veiloq/ftx-connector/pkg/ratelimit"
	"github.com/veiloq/ftx-connector/pkg/sign"
)

const apiPrefix = "/api/"

// SessionConfig holds the transport configuration of a Session.
type SessionConfig struct {
	// Endpoint is the base URL, e.g. https://ftx.com.
	Endpoint string

	// Timeout bounds one full request/response round trip.
	Timeout time.Duration

	// RateLimit paces outgoing requests. FTX allows 30 requests per second
	// per account.
	RateLimit ratelimit.Rate

	Logger logging.Logger
}

// DefaultSessionConfig returns the production transport configuration.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		Endpoint: "https://ftx.com",
		Timeout:  30 * time.Second,
		RateLimit: ratelimit.Rate{
			Limit:    30,
			Interval: time.Second,
		},
		Logger: logging.NewZapLogger(),
	}
}

// Session sends one signed HTTP request per call over a fresh connection.
// There is no connection reuse: every call pays the full handshake, which
// keeps the transport stateless at the cost of throughput.
type Session struct {
	endpoint   string
	httpClient *http.Client
	limiter    ratelimit.RateLimiter
	logger     logging.Logger

	credMu sync.Mutex
	creds  config.Credentials
}

// NewSession creates a transport session with the given credentials.
func NewSession(creds config.Credentials, cfg *SessionConfig) *Session {
	if cfg == nil {
		cfg = DefaultSessionConfig()
	}

	return &Session{
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
		},
		limiter: ratelimit.NewTokenBucketLimiter(cfg.RateLimit),
		logger:  cfg.Logger,
		creds:   creds,
	}
}

// SetCredentials replaces the session credentials wholesale. Requests in
// flight keep the credentials they were signed with.
func (s *Session) SetCredentials(creds config.Credentials) {
	s.credMu.Lock()
	s.creds = creds
	s.credMu.Unlock()
}

func (s *Session) credentials() config.Credentials {
	s.credMu.Lock()
	defer s.credMu.Unlock()
	return s.creds
}

// Get performs a signed GET of /api/<target>.
func (s *Session) Get(ctx context.Context, target string) (int, []byte, error) {
	return s.do(ctx, http.MethodGet, target, nil)
}

// Post performs a signed POST of /api/<target> with a JSON body.
func (s *Session) Post(ctx context.Context, target string, body []byte) (int, []byte, error) {
	return s.do(ctx, http.MethodPost, target, body)
}

// Delete performs a signed DELETE of /api/<target>. A body is optional.
func (s *Session) Delete(ctx context.Context, target string, body []byte) (int, []byte, error) {
	return s.do(ctx, http.MethodDelete, target, body)
}

// do signs and sends a single request. Transport failures propagate; the
// status and body of any completed exchange are returned as-is, non-2xx
// included, for the caller to interpret. A call is never retried here.
func (s *Session) do(ctx context.Context, method, target string, body []byte) (int, []byte, error) {
	creds := s.credentials()
	if !creds.Valid() {
		return 0, nil, ErrMissingCredentials
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	path := apiPrefix + target

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Close = true

	ts := time.Now().UnixMilli()
	payload := sign.RESTPayload(ts, method, req.URL.RequestURI(), string(body))

	req.Header.Set("FTX-KEY", creds.Key)
	req.Header.Set("FTX-TS", strconv.FormatInt(ts, 10))
	req.Header.Set("FTX-SIGN", sign.Signature(creds.Secret, payload))
	if creds.SubAccount != "" {
		req.Header.Set("FTX-SUBACCOUNT", creds.SubAccount)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	s.logger.Debug("rest request",
		logging.String("method", method),
		logging.String("path", path),
	)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, respBody, nil
}
