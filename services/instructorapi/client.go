// Package instructorapi is the HTTP client of the instructor endpoints of the remote service.
package instructorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/coursepanel/core"
	"github.com/trezcool/coursepanel/core/course"
	"github.com/trezcool/coursepanel/core/llm"
	"github.com/trezcool/coursepanel/core/panel"
)

const (
	DefaultTimeout  = 30 * time.Second
	maxResponseSize = 1 << 20

	userAgent       = "coursepanel/1.0"
	requestIDHeader = "X-Request-Id"
)

// Client talks to the remote service. Every call is attempted once; nothing is retried.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

var (
	_ course.Directory  = (*Client)(nil)
	_ panel.ConfigStore = (*Client)(nil)
)

// NewClient returns a client for the API rooted at baseURL, eg. "https://host/v1/".
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(core.CleanString(baseURL))
	if err != nil {
		return nil, core.NewInvalidArgumentError("baseURL", baseURL, err.Error())
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, core.NewInvalidArgumentError("baseURL", baseURL, "absolute URL required")
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{baseURL: u, http: &http.Client{Timeout: timeout}}, nil
}

type (
	loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	tokenResponse struct {
		Token string `json:"token"`
	}

	updateModelRequest struct {
		LLMModelID string `json:"llm_model_id"`
	}

	ModelsResponse struct {
		Models    []llm.Descriptor `json:"models"`
		DefaultID string           `json:"default_id"`
	}
)

// ListCourses implements course.Directory.
func (c *Client) ListCourses(ctx context.Context, token, email string) ([]course.Course, error) {
	q := make(url.Values)
	q.Set("email", email)

	var courses []course.Course
	if err := c.do(ctx, http.MethodGet, "instructor/courses", q, token, nil, &courses); err != nil {
		return nil, errors.Wrap(err, "listing courses")
	}
	return courses, nil
}

// GetModel implements panel.ConfigStore.
func (c *Client) GetModel(ctx context.Context, token, courseID string) (string, error) {
	q := make(url.Values)
	q.Set("course_id", courseID)

	var cfg course.ModelConfig
	if err := c.do(ctx, http.MethodGet, "instructor/get_prompt", q, token, nil, &cfg); err != nil {
		return "", errors.Wrap(err, "getting course model")
	}
	return cfg.LLMModelID, nil
}

// UpdateModel implements panel.ConfigStore.
func (c *Client) UpdateModel(ctx context.Context, token, courseID, instructorEmail, modelID string) error {
	q := make(url.Values)
	q.Set("course_id", courseID)
	q.Set("instructor_email", instructorEmail)

	body := updateModelRequest{LLMModelID: modelID}
	if err := c.do(ctx, http.MethodPut, "instructor/update_llm_model", q, token, body, nil); err != nil {
		return errors.Wrap(err, "updating course model")
	}
	return nil
}

func (c *Client) Models(ctx context.Context) (ModelsResponse, error) {
	var resp ModelsResponse
	if err := c.do(ctx, http.MethodGet, "models", nil, "", nil, &resp); err != nil {
		return ModelsResponse{}, errors.Wrap(err, "listing models")
	}
	return resp, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp tokenResponse
	body := loginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "users/login", nil, "", body, &resp); err != nil {
		return "", errors.Wrap(err, "logging in")
	}
	return resp.Token, nil
}

func (c *Client) RefreshToken(ctx context.Context, token string) (string, error) {
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "users/token-refresh", nil, token, nil, &resp); err != nil {
		return "", errors.Wrap(err, "refreshing token")
	}
	return resp.Token, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, in, out interface{}) error {
	u := c.baseURL.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return core.NewTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return core.NewTransportError(errors.Wrap(err, "reading response"))
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return core.NewRemoteError(resp.StatusCode, errorMessage(data))
	}

	if out != nil && len(data) > 0 {
		if err = json.Unmarshal(data, out); err != nil {
			return errors.Wrap(err, "decoding response")
		}
	}
	return nil
}

// errorMessage extracts the reason of an error response: either {"error": "..."}
// or a map of field errors, rendered as "field: reason" sorted by field.
func errorMessage(data []byte) string {
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return ""
	}
	if msg, ok := fields["error"].(string); ok {
		return msg
	}

	msgs := make([]string, 0, len(fields))
	for fld, v := range fields {
		if msg, ok := v.(string); ok && msg != "" {
			msgs = append(msgs, fld+": "+msg)
		}
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
