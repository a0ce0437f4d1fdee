// Package remote asks the GeoNames dump server whether the archive changed
// since the last refresh, using a conditional HEAD request.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"altnames/internal/logging"
	"altnames/internal/services"
)

const defaultHeadTimeout = 10 * time.Second

// Action is the outcome of a remote check.
type Action string

const (
	// ActionSkip means the remote is unchanged and local output is current.
	ActionSkip Action = "skip"
	// ActionProceed means a full download and transform is needed.
	ActionProceed Action = "proceed"
)

// Decision carries the remote check result. Token is the entity tag the
// server sent back, empty when none was supplied.
type Decision struct {
	Action Action
	Status int
	Token  string
}

// Request describes one check. Token is the stored entity tag, if any.
// OutputPresent reports whether the canonical output already exists locally.
type Request struct {
	URL           string
	Token         string
	OutputPresent bool
}

// HTTPDoer describes the HTTP client used by the checker.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Checker issues conditional HEAD requests.
type Checker struct {
	client HTTPDoer
	logger *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Checker) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// NewChecker builds a Checker whose requests time out after timeout. The
// default client reports redirects instead of following them, so a 302 from
// the dump mirror is visible to Check.
func NewChecker(timeout time.Duration, opts ...Option) *Checker {
	if timeout <= 0 {
		timeout = defaultHeadTimeout
	}
	c := &Checker{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "remote")
	return c
}

// Accepted reports whether status belongs to the set of responses that let
// a refresh continue.
func Accepted(status int) bool {
	switch status {
	case http.StatusOK, http.StatusPartialContent, http.StatusFound, http.StatusNotModified:
		return true
	default:
		return false
	}
}

// Unchanged reports whether status says the remote matches the stored token.
func Unchanged(status int) bool {
	return status == http.StatusNotModified || status == http.StatusFound
}

// Check performs the HEAD request and decides whether to skip or proceed.
// A 304 or 302 only skips when the output is already present, so a first
// run with a stale token still fetches.
func (c *Checker) Check(ctx context.Context, req Request) (Decision, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return Decision{}, services.Wrap(services.ErrFetch, "fetch", "head", "source url is empty", nil)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return Decision{}, services.Wrap(services.ErrFetch, "fetch", "build request", url, err)
	}
	if token := strings.TrimSpace(req.Token); token != "" {
		httpReq.Header.Set("If-None-Match", token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		hint := "check network connectivity and the source url"
		if errors.Is(err, context.DeadlineExceeded) {
			hint = "the dump server did not answer in time; raise source.head_timeout_seconds"
		}
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "remote check failed", "remote_check_failed",
			logging.String("url", url),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
			logging.String(logging.FieldImpact, "refresh aborted; stored artifacts unchanged"),
		)
		return Decision{}, services.Wrap(services.ErrFetch, "fetch", "head", url, err)
	}
	defer resp.Body.Close()

	decision := Decision{
		Status: resp.StatusCode,
		Token:  strings.TrimSpace(resp.Header.Get("ETag")),
	}
	if !Accepted(resp.StatusCode) {
		return decision, services.Wrap(services.ErrFetch, "fetch", "head",
			fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, url), nil)
	}

	if Unchanged(resp.StatusCode) && req.OutputPresent {
		decision.Action = ActionSkip
	} else {
		decision.Action = ActionProceed
	}

	logging.WithContext(ctx, c.logger).Info("remote checked",
		logging.String(logging.FieldDecision, string(decision.Action)),
		logging.Int("http_status", decision.Status),
		logging.String("etag", decision.Token),
		logging.Bool("output_present", req.OutputPresent),
	)
	return decision, nil
}
