package dahell

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// API is the subset of the Dahell backend the dashboard talks to.
type API interface {
	FetchGoldMine(ctx context.Context, query GoldMineQuery) ([]Opportunity, error)
	VisualSearch(ctx context.Context, filename string, image io.Reader) ([]Opportunity, error)
	FetchCategories(ctx context.Context) ([]Category, error)
	FetchAuditLogs(ctx context.Context) ([]AuditLog, error)
	FetchOrphans(ctx context.Context) ([]Orphan, error)
	FetchClusterStats(ctx context.Context) (*ClusterStats, error)
	InvestigateOrphan(ctx context.Context, productID int64) (*Investigation, error)
	ExecuteOrphanAction(ctx context.Context, req OrphanActionRequest) error
	SaveFeedback(ctx context.Context, req FeedbackRequest) error
	FetchSystemLogs(ctx context.Context) ([]ServiceLog, error)
	FetchContainerStats(ctx context.Context) (ContainerStats, error)
	ControlContainer(ctx context.Context, service, action string) (*ControlResponse, error)
}

var _ API = (*Client)(nil)

// Client talks to the Dahell HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	// DefaultBaseURL is used when no api_url is configured.
	DefaultBaseURL   = "http://localhost:8000/api"
	defaultUserAgent = "dahell-tui/0.1"
	defaultTimeout   = 10 * time.Second
)

// NewClient builds a Client rooted at apiURL. A zero timeout uses the default.
func NewClient(apiURL string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the API root the client resolves paths against.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// CloseIdleConnections releases keep-alive connections held by the client.
func (c *Client) CloseIdleConnections() {
	if c == nil || c.http == nil {
		return
	}
	c.http.CloseIdleConnections()
}

type requestIDKey struct{}

// WithRequestID attaches the X-Request-ID the client should send.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the id set by WithRequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FetchGoldMine lists opportunities matching query.
func (c *Client) FetchGoldMine(ctx context.Context, query GoldMineQuery) ([]Opportunity, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	values := url.Values{}
	if s := strings.TrimSpace(query.Search); s != "" {
		values.Set("q", s)
	}
	if cat := strings.TrimSpace(query.Category); cat != "" {
		values.Set("category", cat)
	}
	values.Set("min_comp", strconv.Itoa(query.MinCompetitors))
	values.Set("max_comp", strconv.Itoa(query.MaxCompetitors))
	if query.MinPrice > 0 {
		values.Set("min_price", formatFloat(query.MinPrice))
	}
	if query.MaxPrice > 0 {
		values.Set("max_price", formatFloat(query.MaxPrice))
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	values.Set("offset", strconv.Itoa(query.Offset))

	var payload []Opportunity
	if err := c.do(ctx, http.MethodGet, "gold-mine/", values, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// VisualSearch uploads an image and returns visually similar opportunities.
func (c *Client) VisualSearch(ctx context.Context, filename string, image io.Reader) ([]Opportunity, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	if image == nil {
		return nil, fmt.Errorf("image required")
	}
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}
	body := &requestBody{reader: &buf, contentType: form.FormDataContentType()}

	var payload []Opportunity
	if err := c.do(ctx, http.MethodPost, "gold-mine/visual-search/", nil, body, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchCategories lists the category filter options.
func (c *Client) FetchCategories(ctx context.Context) ([]Category, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	var payload []Category
	if err := c.do(ctx, http.MethodGet, "categories/", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchAuditLogs returns the latest clustering decisions.
func (c *Client) FetchAuditLogs(ctx context.Context) ([]AuditLog, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	var payload []AuditLog
	if err := c.do(ctx, http.MethodGet, "cluster-lab/audit-logs/", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchOrphans returns products pending manual clustering.
func (c *Client) FetchOrphans(ctx context.Context) ([]Orphan, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	var payload []Orphan
	if err := c.do(ctx, http.MethodGet, "cluster-lab/orphans/", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchClusterStats returns the trainer metrics.
func (c *Client) FetchClusterStats(ctx context.Context) (*ClusterStats, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	var payload ClusterStats
	if err := c.do(ctx, http.MethodGet, "cluster-lab/stats/", nil, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// InvestigateOrphan asks the backend for candidate twins of productID.
func (c *Client) InvestigateOrphan(ctx context.Context, productID int64) (*Investigation, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	body, err := jsonBody(map[string]int64{"product_id": productID})
	if err != nil {
		return nil, err
	}
	var payload Investigation
	if err := c.do(ctx, http.MethodPost, "cluster-lab/orphans/investigate/", nil, body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ExecuteOrphanAction merges, confirms or trashes an orphan.
func (c *Client) ExecuteOrphanAction(ctx context.Context, req OrphanActionRequest) error {
	if c == nil {
		return ErrNilClient
	}
	if req.Candidates == nil {
		req.Candidates = []int64{}
	}
	body, err := jsonBody(req)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "cluster-lab/orphans/action/", nil, body, nil)
}

// SaveFeedback records the operator verdict on an audit decision.
func (c *Client) SaveFeedback(ctx context.Context, req FeedbackRequest) error {
	if c == nil {
		return ErrNilClient
	}
	body, err := jsonBody(req)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "cluster-lab/feedback/", nil, body, nil)
}

// FetchSystemLogs returns recent container output across services.
func (c *Client) FetchSystemLogs(ctx context.Context) ([]ServiceLog, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	var payload []ServiceLog
	if err := c.do(ctx, http.MethodGet, "system-logs/", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchContainerStats returns per-service container metrics.
func (c *Client) FetchContainerStats(ctx context.Context) (ContainerStats, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	payload := ContainerStats{}
	if err := c.do(ctx, http.MethodGet, "control/stats/", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ControlContainer starts, stops or restarts a backend service.
func (c *Client) ControlContainer(ctx context.Context, service, action string) (*ControlResponse, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	service = strings.TrimSpace(service)
	action = strings.TrimSpace(action)
	if service == "" || action == "" {
		return nil, fmt.Errorf("service and action required")
	}
	path := "control/container/" + url.PathEscape(service) + "/" + url.PathEscape(action) + "/"
	var payload ControlResponse
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

type requestBody struct {
	reader      io.Reader
	contentType string
}

func jsonBody(v any) (*requestBody, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return &requestBody{reader: bytes.NewReader(data), contentType: "application/json"}, nil
}

func (c *Client) resolve(path string, query url.Values) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body *requestBody, dest any) error {
	reqID := RequestIDFrom(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	reqURL := c.resolve(path, query)

	var reader io.Reader
	if body != nil {
		reader = body.reader
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", body.contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Method: method, Path: path, RequestID: reqID, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &ServerError{
			Method:     method,
			Path:       path,
			RequestID:  reqID,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &DecodeError{Path: path, RequestID: reqID, Err: err}
	}
	return nil
}

// errorMessage pulls a short reason out of an error body.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Detail != "" {
			return payload.Detail
		}
	}
	text := strings.TrimSpace(string(data))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
