package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/biaslens/internal/model"
	"github.com/ppiankov/biaslens/internal/util"
	"go.uber.org/zap"
)

// Client posts text to the analysis service
type Client struct {
	httpClient *http.Client
	url        string
	userAgent  string
	maxBytes   int64
	logger     *zap.Logger
}

// NewClient creates a new Client with the given configuration
func NewClient(cfg model.RemoteConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = model.DefaultConfig().Remote.Endpoint
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = model.DefaultConfig().Remote.MaxBodyBytes
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:                 util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		url:       strings.TrimSuffix(cfg.BaseURL, "/") + "/" + strings.TrimPrefix(endpoint, "/"),
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// URL returns the analysis endpoint the client posts to
func (c *Client) URL() string {
	return c.url
}

// Analyze sends one analysis request for text.
// Every failure is returned as *Error.
func (c *Client) Analyze(ctx context.Context, text string) (*model.AnalysisResult, error) {
	body, err := json.Marshal(model.AnalyzeRequest{Text: text})
	if err != nil {
		return nil, transport("encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, transport("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("analysis request failed", zap.String("url", c.url), zap.Error(err))
		return nil, &Error{Kind: KindTransport, Message: describe(err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, transport("read body: %v", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, transport("read body: %v", fmt.Errorf("response exceeds %d bytes", c.maxBytes))
	}

	c.logger.Debug("analysis response received",
		zap.String("url", c.url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := DecodeErrorMessage(data)
		if msg == "" {
			msg = FallbackRejectionMessage
		}
		return nil, rejection(resp.StatusCode, msg)
	}

	result, err := DecodeResult(data)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: err.Error(), Err: err}
	}
	return result, nil
}

// describe returns the innermost useful description of a transport error
func describe(err error) string {
	var uerr interface{ Unwrap() error }
	if errors.As(err, &uerr) {
		if inner := uerr.Unwrap(); inner != nil && inner.Error() != "" {
			return inner.Error()
		}
	}
	return err.Error()
}
