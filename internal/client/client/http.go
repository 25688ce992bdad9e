package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/rs/xid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/net/publicsuffix"
)

const (
	apiPrefix = "/api/v1"

	pathRegister = apiPrefix + "/auth/register"
	pathLogin    = apiPrefix + "/auth/login"
	pathRefresh  = apiPrefix + "/auth/refresh"

	maxResponseBody = 4 << 20
)

// renewable reports whether a 401 from path may trigger a renewal. The
// endpoints that establish or renew a session never do.
func renewable(path string) bool {
	switch path {
	case pathRegister, pathLogin, pathRefresh:
		return false
	}
	return true
}

type Options struct {
	BaseURL string
	// Timeout bounds a single HTTP exchange. Zero means no limit.
	Timeout time.Duration
	Retry   RetryPolicy
	Logger  logging.Logger
	// HTTPClient overrides the transport. A cookie jar is installed if it
	// has none.
	HTTPClient *http.Client
}

// HTTPClient implements Client over the REST API.
type HTTPClient struct {
	base    *url.URL
	http    *http.Client
	retry   RetryPolicy
	logger  logging.Logger
	renewal renewal
}

func New(opts Options) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, err
		}
		hc.Jar = jar
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	policy := opts.Retry
	if policy.MaxAttempts == 0 {
		policy = DefaultRetryPolicy()
	}

	return &HTTPClient{
		base:   base,
		http:   hc,
		retry:  policy,
		logger: logger.With("module", "api_client"),
	}, nil
}

type request struct {
	method string
	path   string
	query  url.Values
	body   []byte
}

type response struct {
	status int
	body   []byte
}

func newRequest(method, path string, in any) (request, error) {
	req := request{method: method, path: path}
	if in == nil {
		return req, nil
	}
	b, err := json.Marshal(in)
	if err != nil {
		return req, &APIError{Kind: KindClient, Message: "cannot encode request", Err: err}
	}
	req.body = b
	return req, nil
}

type errorBody struct {
	Error         string            `json:"error"`
	Code          string            `json:"code"`
	Fields        map[string]string `json:"fields"`
	CorrelationID string            `json:"correlation_id"`
}

// send performs one HTTP exchange. Failures the backoff policy may retry
// come back wrapped in retry.RetryableError.
func (c *HTTPClient) send(ctx context.Context, req request, correlationID string) (*response, error) {
	u := *c.base
	u.Path = c.base.Path + req.path
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, &APIError{Kind: KindClient, Message: "cannot build request", Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(common.CorrelationIDHeader, correlationID)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &APIError{Kind: KindNetwork, Message: "request cancelled", CorrelationID: correlationID, Err: ctx.Err()}
		}
		return nil, retry.RetryableError(&APIError{Kind: KindNetwork, CorrelationID: correlationID, Err: err})
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, retry.RetryableError(&APIError{Kind: KindNetwork, Status: resp.StatusCode, CorrelationID: correlationID, Err: err})
	}

	if resp.StatusCode < http.StatusBadRequest {
		return &response{status: resp.StatusCode, body: data}, nil
	}

	apiErr := classify(resp.StatusCode, data)
	if apiErr.CorrelationID == "" {
		apiErr.CorrelationID = resp.Header.Get(common.CorrelationIDHeader)
	}
	if apiErr.Retryable() {
		return nil, retry.RetryableError(apiErr)
	}
	return nil, apiErr
}

func classify(status int, data []byte) *APIError {
	var eb errorBody
	_ = json.Unmarshal(data, &eb)

	e := &APIError{
		Status:        status,
		Code:          eb.Code,
		Message:       eb.Error,
		Fields:        eb.Fields,
		CorrelationID: eb.CorrelationID,
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		switch eb.Code {
		case common.CodeInvalidCredential:
			e.Kind = KindInvalidCredential
		case common.CodeRefreshInvalid:
			e.Kind = KindAuthRequired
		case common.CodeBadCredentials:
			e.Kind = KindClient
		default:
			e.Kind = KindExpiredCredential
		}
	case status >= http.StatusInternalServerError:
		e.Kind = KindServer
	default:
		e.Kind = KindClient
	}
	return e
}

// issue sends req under the retry policy. gen is the renewal generation
// observed before the final attempt.
func (c *HTTPClient) issue(ctx context.Context, req request, correlationID string) (resp *response, gen uint64, err error) {
	attempt := 0
	resp, err = retry.DoValue(ctx, c.retry.backoff(), func(ctx context.Context) (*response, error) {
		attempt++
		gen = c.renewal.generation()
		r, err := c.send(ctx, req, correlationID)
		if err != nil {
			c.logger.Debug(ctx, "request attempt failed", "path", req.path, "attempt", attempt, "error", err)
		}
		return r, err
	})
	if err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			err = &APIError{Kind: KindNetwork, Message: "request cancelled", CorrelationID: correlationID, Err: err}
		}
	}
	return resp, gen, err
}

// do runs the call state machine: issue under the retry policy, renew on
// an expired credential, then reissue exactly once.
func (c *HTTPClient) do(ctx context.Context, req request) (*response, error) {
	correlationID := xid.New().String()

	resp, gen, err := c.issue(ctx, req, correlationID)
	if err == nil {
		return resp, nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindExpiredCredential || !renewable(req.path) {
		return nil, err
	}

	if err := c.renew(ctx, gen); err != nil {
		return nil, err
	}

	resp, err = c.send(ctx, req, correlationID)
	if err == nil {
		return resp, nil
	}
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusUnauthorized {
			return nil, authRequired(apiErr)
		}
		return nil, apiErr
	}
	return nil, err
}

// renew obtains a fresh access credential, sharing any renewal already in
// flight. The leader runs detached from its caller's context so that a
// cancelled leader does not fail the waiters.
func (c *HTTPClient) renew(ctx context.Context, seen uint64) error {
	h, leader := c.renewal.beginOrJoin(seen)
	if leader {
		go func() {
			c.logger.Debug(ctx, "renewing access credential")
			_, _, err := c.issue(context.WithoutCancel(ctx), request{method: http.MethodPost, path: pathRefresh}, xid.New().String())
			if err != nil {
				c.logger.Warn(ctx, "access credential renewal failed", "error", err)
			}
			c.renewal.settle(h, err)
		}()
	}

	select {
	case <-h.done:
		if h.err != nil {
			return authRequired(h.err)
		}
		return nil
	case <-ctx.Done():
		return &APIError{Kind: KindNetwork, Message: "request cancelled", Err: ctx.Err()}
	}
}

func (c *HTTPClient) call(ctx context.Context, method, path string, in, out any) error {
	req, err := newRequest(method, path, in)
	if err != nil {
		return err
	}
	return c.callRequest(ctx, req, out)
}

func (c *HTTPClient) callRequest(ctx context.Context, req request, out any) error {
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return &APIError{Kind: KindServer, Status: resp.status, Message: "malformed response", Err: err}
	}
	return nil
}
