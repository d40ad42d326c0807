package funcapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/salpyeo/dream/pkg/schedule"
)

const (
	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 60 * time.Second

	// NotMentioned is the body returned by handle_schedule_with_gpt when the
	// text contains no schedule.
	NotMentioned = "False"
)

// Client calls the function-style service.
type Client struct {
	cfg        Config
	httpClient *http.Client
	maxRetries int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetry retries server errors and network failures of GET requests up to
// n times with exponential backoff. Other methods are sent once, since a
// failed response does not prove the service did not apply them. The default
// is no retry.
func WithRetry(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return c, nil
}

// Do sends body as JSON to ep and returns the response body. A nil body
// sends no content. Non-2xx responses are returned as *Error.
func (c *Client) Do(ctx context.Context, ep Endpoint, method string, body any, query url.Values) ([]byte, error) {
	endpoint, err := c.cfg.URL(ep)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("funcapp: %s: %w", ep, err)
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("code", c.cfg.MasterKey)
	if c.cfg.UserID != "" && !q.Has("user_id") {
		q.Set("user_id", c.cfg.UserID)
	}
	u.RawQuery = q.Encode()

	var data []byte
	if body != nil {
		data, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("funcapp: %s: marshal request body: %w", ep, err)
		}
	}

	retries := 0
	if method == http.MethodGet {
		retries = c.maxRetries
	}
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		resp, err := c.do(ctx, ep, method, u.String(), data)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if apiErr, ok := AsError(err); ok && !apiErr.Retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, ep Endpoint, method, rawURL string, data []byte) ([]byte, error) {
	var r io.Reader
	if data != nil {
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, r)
	if err != nil {
		return nil, fmt.Errorf("funcapp: %s: create request: %w", ep, err)
	}
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("funcapp request", "endpoint", ep, "method", method, "bytes", len(data))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("funcapp: %s: do request: %w", ep, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("funcapp: %s: read response body: %w", ep, err)
	}
	slog.Debug("funcapp response", "endpoint", ep, "status", resp.StatusCode, "bytes", len(body))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Endpoint: ep, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// Call is Do followed by decoding the response JSON into out. A body that
// is not valid JSON is returned as *ParseError carrying the body text.
func (c *Client) Call(ctx context.Context, ep Endpoint, method string, body, out any) error {
	data, err := c.Do(ctx, ep, method, body, nil)
	if err != nil {
		return err
	}
	return decode(ep, data, out)
}

func decode(ep Endpoint, data []byte, out any) error {
	if out == nil {
		if !json.Valid(data) {
			return &ParseError{Endpoint: ep, Body: string(data), Err: errInvalidJSON}
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ParseError{Endpoint: ep, Body: string(data), Err: err}
	}
	return nil
}

// SaveChatHistory appends one turn to the chat history.
func (c *Client) SaveChatHistory(ctx context.Context, userMessage, botMessage string) error {
	var out SetHistResult
	return c.Call(ctx, EndpointSetHist, http.MethodPost, ChatTurn{UserMessage: userMessage, BotMessage: botMessage}, &out)
}

// GetChatHistory returns the stored chat history.
func (c *Client) GetChatHistory(ctx context.Context) ([]HistoryEntry, error) {
	var out []HistoryEntry
	if err := c.Call(ctx, EndpointGetHist, http.MethodGet, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessSchedule asks the service to extract schedules from todos, the
// assistant's latest answers.
func (c *Client) ProcessSchedule(ctx context.Context, todos []string) (*ScheduleResult, error) {
	data, err := c.Do(ctx, EndpointHandleSchedule, http.MethodPost, ScheduleRequest{Todos: todos}, nil)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(strings.TrimSpace(string(data)), NotMentioned) {
		return &ScheduleResult{}, nil
	}
	var items []schedule.Item
	if err := decode(EndpointHandleSchedule, data, &items); err != nil {
		return nil, err
	}
	return &ScheduleResult{Mentioned: true, Items: items}, nil
}

// SetSchedule stores a free-text schedule and returns the service's
// confirmation message.
func (c *Client) SetSchedule(ctx context.Context, text string) (string, error) {
	data, err := c.Do(ctx, EndpointSetSchedule, http.MethodPost, SetScheduleRequest{Schedule: text}, nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GetTodo returns the stored schedule items. A positive fromDays drops items
// dated more than fromDays days ago.
func (c *Client) GetTodo(ctx context.Context, fromDays int) ([]schedule.Item, error) {
	var q url.Values
	if fromDays > 0 {
		q = url.Values{"from_date": {strconv.Itoa(fromDays)}}
	}
	data, err := c.Do(ctx, EndpointGetTodo, http.MethodGet, nil, q)
	if err != nil {
		return nil, err
	}
	var items []schedule.Item
	if err := decode(EndpointGetTodo, data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Init checks that the service's storage is ready. It returns the service's
// status text, "OK" when ready.
func (c *Client) Init(ctx context.Context) (string, error) {
	data, err := c.Do(ctx, EndpointInit, http.MethodGet, nil, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// SetMessage asks the service to synthesize a greeting message.
func (c *Client) SetMessage(ctx context.Context, message string) (string, error) {
	var q url.Values
	if message != "" {
		q = url.Values{"message": {message}}
	}
	data, err := c.Do(ctx, EndpointSetMessage, http.MethodGet, nil, q)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CreateImage returns the image generated for prompt.
func (c *Client) CreateImage(ctx context.Context, prompt string) ([]byte, error) {
	var q url.Values
	if prompt != "" {
		q = url.Values{"prompt": {prompt}}
	}
	return c.Do(ctx, EndpointCreateImage, http.MethodGet, nil, q)
}

// SignUp registers a new user and returns its id. The client keeps sending
// its configured UserID; use the returned id in a new Config.
func (c *Client) SignUp(ctx context.Context) (string, error) {
	var out SignUpResult
	if err := c.Call(ctx, EndpointSignUp, http.MethodGet, nil, &out); err != nil {
		return "", err
	}
	if out.UUID == "" {
		return "", fmt.Errorf("funcapp: %s: empty uuid", EndpointSignUp)
	}
	return out.UUID, nil
}

// GetAudioFile downloads a stored audio file. An empty name selects the
// greeting stored by SetMessage.
func (c *Client) GetAudioFile(ctx context.Context, name string) ([]byte, error) {
	var q url.Values
	if name != "" {
		q = url.Values{"audiofile": {name}}
	}
	return c.Do(ctx, EndpointGetAudioFile, http.MethodGet, nil, q)
}
