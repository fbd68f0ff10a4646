package net

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mchmarny/buycheck/pkg/data"
	"github.com/mchmarny/buycheck/pkg/score"
)

const (
	PathEvaluate   = "/api/evaluate"
	PathDecisions  = "/api/decisions"
	PathDue        = "/api/decisions/due"
	PathStatistics = "/api/statistics"
	PathHealth     = "/healthz"

	maxResponseBytes = 1 << 20
)

// ErrUnauthorized is returned when the server rejects the bearer token.
var ErrUnauthorized = errors.New("unauthorized: check the API token")

// Response is the envelope every API endpoint replies with.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
}

// DecisionRequest is the body of a new decision: the item name plus the questionnaire.
type DecisionRequest struct {
	ItemName string `json:"item_name"`
	score.Answers
}

// Client talks to a running buycheck server.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(ctx context.Context, baseURL, token string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("server URL is required")
	}

	hc, err := GetAuthClient(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP client: %w", err)
	}

	return &Client{baseURL: baseURL, http: hc}, nil
}

func (c *Client) Evaluate(ctx context.Context, a score.Answers) (*score.Result, error) {
	var r score.Result
	if err := c.do(ctx, http.MethodPost, PathEvaluate, a, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) CreateDecision(ctx context.Context, req *DecisionRequest) (*data.Decision, error) {
	var d data.Decision
	if err := c.do(ctx, http.MethodPost, PathDecisions, req, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDue returns delayed decisions whose wait is over.
func (c *Client) ListDue(ctx context.Context) ([]*data.Decision, error) {
	var list []*data.Decision
	if err := c.do(ctx, http.MethodGet, PathDue, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetStatistics(ctx context.Context) (*data.Statistics, error) {
	var s data.Statistics
	if err := c.do(ctx, http.MethodGet, PathStatistics, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("error creating HTTP %s request: %w", method, err)
	}
	req.Header.Set("User-Agent", clientAgent)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error calling %s: %w", path, err)
	}
	defer resp.Body.Close()
	PrintHTTPResponse(resp)

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	env := Response[json.RawMessage]{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return fmt.Errorf("error decoding response (status: %d): %w", resp.StatusCode, err)
	}

	if !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Error}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("error decoding %s data: %w", path, err)
	}
	return nil
}

// APIError carries a non-success envelope returned by the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (status: %d): %s", e.Status, e.Message)
}
