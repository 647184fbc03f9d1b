package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftsync/internal/models"
	"github.com/claude/liftsync/internal/planner"
)

// HTTPClient implements PlanService by calling the liftsync REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the plan service runs on the server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies PlanService.
var _ PlanService = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey is
// sent on write requests.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, payload any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, respBody)
	}

	return respBody, nil
}

func (c *HTTPClient) Load(ctx context.Context, forceRemote bool) (models.PlanSnapshot, error) {
	var params url.Values
	if forceRemote {
		params = url.Values{"force": {"true"}}
	}
	body, err := c.do(ctx, http.MethodGet, "/api/v1/plan", params, nil)
	if err != nil {
		return models.PlanSnapshot{}, err
	}
	var snap models.PlanSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return models.PlanSnapshot{}, fmt.Errorf("httpclient: decode plan: %w", err)
	}
	return snap, nil
}

func (c *HTTPClient) LoadSupplemental(ctx context.Context) (models.SupplementalBucket, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/plan/supplemental", nil, nil)
	if err != nil {
		return nil, err
	}
	var bucket models.SupplementalBucket
	if err := json.Unmarshal(body, &bucket); err != nil {
		return nil, fmt.Errorf("httpclient: decode supplemental: %w", err)
	}
	return bucket, nil
}

// LogRequest is the body of POST /api/v1/plan/logs.
type LogRequest struct {
	Date    string            `json:"date"`
	Entries []models.LogEntry `json:"entries"`
}

func (c *HTTPClient) SaveLogs(ctx context.Context, dateLabel string, logs []models.LogEntry) (planner.LogResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/plan/logs", nil, LogRequest{Date: dateLabel, Entries: logs})
	if err != nil {
		return planner.LogResult{}, err
	}
	var res planner.LogResult
	if err := json.Unmarshal(body, &res); err != nil {
		return planner.LogResult{}, fmt.Errorf("httpclient: decode log result: %w", err)
	}
	return res, nil
}

func (c *HTTPClient) History(ctx context.Context, limit int) ([]models.SyncRun, error) {
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	body, err := c.do(ctx, http.MethodGet, "/api/v1/history", params, nil)
	if err != nil {
		return nil, err
	}
	var runs []models.SyncRun
	if err := json.Unmarshal(body, &runs); err != nil {
		return nil, fmt.Errorf("httpclient: decode history: %w", err)
	}
	return runs, nil
}
