package quilr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quilr/guardrails-go/pkg/infra/httpx"
)

const (
	checkPath           = "/sdk/v1/check"
	defaultCheckTimeout = 10 * time.Second
)

type HTTPClient struct {
	client         httpx.Client
	logger         *logrus.Logger
	circuitBreaker httpx.CircuitBreaker
	checkTimeout   time.Duration
	bufferPool     sync.Pool
}

func NewHTTPClient(logger *logrus.Logger, opts ...ClientOption) Client {
	c := &HTTPClient{
		client:         &http.Client{},
		logger:         logger,
		circuitBreaker: httpx.NewCircuitBreaker("quilr-guardrails", 30*time.Second, 5),
		checkTimeout:   defaultCheckTimeout,
		bufferPool: sync.Pool{
			New: func() any {
				return new(bytes.Buffer)
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *HTTPClient) Check(
	ctx context.Context,
	content CheckContent,
	credentials Credentials,
) (*CheckResult, error) {
	var result *CheckResult
	var err error

	err = c.circuitBreaker.Execute(func() error {
		result, err = c.executeCheckRequest(ctx, content, credentials)
		return err
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.WithError(err).Error("guardrails check failed (circuit breaker)")
		}
		return nil, err
	}

	return result, nil
}

func (c *HTTPClient) executeCheckRequest(
	ctx context.Context,
	content CheckContent,
	credentials Credentials,
) (*CheckResult, error) {
	body, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal content: %w", err)
	}

	baseURL := credentials.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	ctx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		strings.TrimRight(baseURL, "/")+checkPath,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create check request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credentials.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, context.Canceled
		}
		c.logger.WithError(err).Error("failed to call quilr guardrails")
		return nil, fmt.Errorf("failed to call quilr guardrails: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("status_code", resp.StatusCode).Error("quilr guardrails returned non-200 status")
		return nil, fmt.Errorf("%w: status %d", ErrCheckCallFailed, resp.StatusCode)
	}

	bufPtr, ok := c.bufferPool.Get().(*bytes.Buffer)
	if !ok {
		return nil, fmt.Errorf("failed to get buffer from pool")
	}
	bufPtr.Reset()
	defer c.bufferPool.Put(bufPtr)

	if _, err := io.Copy(bufPtr, resp.Body); err != nil {
		return nil, fmt.Errorf("guardrails response read error: %w", err)
	}

	raw, _, err := httpx.DecodeBody(resp.Header.Get("Content-Encoding"), bufPtr.Bytes())
	if err != nil {
		return nil, fmt.Errorf("invalid guardrails response encoding: %w", err)
	}

	var checkResp CheckResult
	if err := json.Unmarshal(raw, &checkResp); err != nil {
		return nil, fmt.Errorf("invalid guardrails response: %w", err)
	}

	return &checkResp, nil
}
