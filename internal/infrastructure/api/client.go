package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/khanhnv2901/talos-cli/internal/domain/report"
	"github.com/khanhnv2901/talos-cli/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/talos-cli/internal/shared/errors"
)

const (
	analyzePath   = "/api/analyze"
	exportPath    = "/api/report/pdf"
	healthPath    = "/api/health"
	rootPath      = "/api/"
	defaultUA     = "talos-cli"
	jsonMediaType = "application/json"
)

// RequestIDHeader is attached to every outbound request so engine logs can be
// correlated with ours.
const RequestIDHeader = "X-Request-ID"

// Config controls how the client reaches the analysis engine.
type Config struct {
	BaseURL    string
	Timeout    time.Duration // per request; 0 uses constants.DefaultRequestTimeout
	RateLimit  int           // requests per second, 0 = unlimited
	RateBurst  int
	UserAgent  string
	HTTPClient *http.Client
}

// Document is an exported report as returned by the engine.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Client talks to the remote analysis engine. Each call performs exactly one
// outbound request; nothing is retried.
type Client struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// NewClient validates cfg and returns a ready client. A nil logger is replaced
// by a no-op logger.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = constants.DefaultAPIBaseURL
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api base url must use http or https, got %q", base)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("api base url %q has no host", base)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUA
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:   base,
		timeout:   timeout,
		userAgent: userAgent,
		http:      httpClient,
		limiter:   limiter,
		logger:    logger.With(zap.String("component", "api-client")),
	}, nil
}

// BaseURL returns the normalized engine address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Analyze submits target to the engine and decodes the returned report.
func (c *Client) Analyze(ctx context.Context, target string) (*report.AnalysisReport, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, sharedErrors.NewValidationError(sharedErrors.ErrEmptyURL)
	}

	body, err := json.Marshal(map[string]string{"url": target})
	if err != nil {
		return nil, fmt.Errorf("encode analyze request: %w", err)
	}

	res, err := c.do(ctx, "analyze", http.MethodPost, analyzePath, body, constants.MaxReportBytes)
	if err != nil {
		var timeoutErr *sharedErrors.TimeoutError
		if errors.As(err, &timeoutErr) {
			return nil, err
		}
		return nil, &sharedErrors.AnalysisRequestError{Err: err}
	}

	if !isSuccess(res.status) {
		c.logger.Warn("analysis request rejected",
			zap.String("url", target),
			zap.Int("status", res.status),
			zap.String("request_id", res.requestID),
			zap.String("body", res.errorBody()))
		return nil, &sharedErrors.AnalysisRequestError{StatusCode: res.status, Body: res.errorBody()}
	}

	r, err := report.Decode(res.body)
	if err != nil {
		c.logger.Warn("malformed analysis report",
			zap.String("url", target),
			zap.String("request_id", res.requestID),
			zap.Error(err))
		return nil, err
	}

	c.logger.Debug("analysis completed",
		zap.String("url", target),
		zap.Float64("score", r.Final.Score),
		zap.String("verdict", r.Final.Verdict),
		zap.String("request_id", res.requestID))
	return r, nil
}

// ExportReport sends the full report to the document service and returns the
// generated file.
func (c *Client) ExportReport(ctx context.Context, r *report.AnalysisReport) (*Document, error) {
	if r == nil {
		return nil, sharedErrors.NewValidationError(sharedErrors.ErrNilReport)
	}

	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	res, err := c.do(ctx, "export", http.MethodPost, exportPath, body, constants.MaxDocumentBytes)
	if err != nil {
		var timeoutErr *sharedErrors.TimeoutError
		if errors.As(err, &timeoutErr) {
			return nil, err
		}
		return nil, &sharedErrors.ExportRequestError{Err: err}
	}

	if !isSuccess(res.status) {
		c.logger.Warn("export request rejected",
			zap.Int("status", res.status),
			zap.String("request_id", res.requestID),
			zap.String("body", res.errorBody()))
		return nil, &sharedErrors.ExportRequestError{StatusCode: res.status, Body: res.errorBody()}
	}
	if len(res.body) == 0 {
		return nil, &sharedErrors.ExportRequestError{StatusCode: res.status, Err: errors.New("empty document")}
	}

	contentType := res.header.Get("Content-Type")
	if contentType == "" {
		contentType = constants.ReportContentType
	}

	c.logger.Debug("export completed",
		zap.Int("bytes", len(res.body)),
		zap.String("request_id", res.requestID))

	return &Document{
		Filename:    constants.ReportFilename,
		ContentType: contentType,
		Data:        res.body,
	}, nil
}

// Health probes GET /api/health.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	return c.probe(ctx, "health", healthPath)
}

// Root probes GET /api/.
func (c *Client) Root(ctx context.Context) (map[string]any, error) {
	return c.probe(ctx, "root", rootPath)
}

func (c *Client) probe(ctx context.Context, op, path string) (map[string]any, error) {
	res, err := c.do(ctx, op, http.MethodGet, path, nil, constants.ErrorBodyLimitBytes*8)
	if err != nil {
		return nil, fmt.Errorf("%s probe: %w", op, err)
	}
	if !isSuccess(res.status) {
		return nil, fmt.Errorf("%s probe: status %d: %s", op, res.status, res.errorBody())
	}

	var payload map[string]any
	if err := json.Unmarshal(res.body, &payload); err != nil {
		return nil, fmt.Errorf("%s probe: decode payload: %w", op, err)
	}
	return payload, nil
}

type response struct {
	status    int
	header    http.Header
	body      []byte
	requestID string
}

func (r *response) errorBody() string {
	body := strings.TrimSpace(string(r.body))
	if len(body) > constants.ErrorBodyLimitBytes {
		body = body[:constants.ErrorBodyLimitBytes] + "..."
	}
	return body
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, limit int64) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("rate limiter: %w", ctx.Err())
		}
		return nil, &sharedErrors.TimeoutError{Op: op, Timeout: c.timeout}
	}

	var bodyReader io.Reader
	if len(body) > 0 {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")
	if bodyReader != nil {
		req.Header.Set("Content-Type", jsonMediaType)
	}

	c.logger.Debug("sending request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID))

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn("request timed out",
				zap.String("op", op),
				zap.Duration("timeout", c.timeout),
				zap.String("request_id", requestID))
			return nil, &sharedErrors.TimeoutError{Op: op, Timeout: c.timeout}
		}
		c.logger.Warn("request failed",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		if isTimeout(err) {
			return nil, &sharedErrors.TimeoutError{Op: op, Timeout: c.timeout}
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}

	return &response{
		status:    resp.StatusCode,
		header:    resp.Header,
		body:      data,
		requestID: requestID,
	}, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
