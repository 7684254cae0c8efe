// Package messaging is a client for the host inbox API.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/cognicore/tobot/pkg/tobot/config"
	"github.com/cognicore/tobot/pkg/tobot/internalerr"
)

// DefaultMarkReadURL is the web endpoint that flags a thread as read.
const DefaultMarkReadURL = "https://www.airbnb.com/z/q/"

// Client calls the inbox API. Every failure, including an error_code in a
// 200 response, wraps internalerr.ErrUnavailable.
type Client struct {
	BaseURL     string
	MarkReadURL string
	APIKey      string
	OAuthToken  string
	UserAgent   string
	Locale      string
	Currency    string

	HTTPClient *http.Client
	Logger     *zap.Logger
}

// New creates a client from the API settings.
func New(cfg config.APIConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		MarkReadURL: DefaultMarkReadURL,
		APIKey:      cfg.APIKey,
		OAuthToken:  cfg.OAuthToken,
		UserAgent:   cfg.UserAgent,
		Locale:      cfg.Locale,
		Currency:    cfg.Currency,
		HTTPClient:  &http.Client{Timeout: cfg.Timeout},
		Logger:      logger,
	}
}

type apiError struct {
	ErrorCode    json.RawMessage `json:"error_code"`
	ErrorMessage string          `json:"error_message"`
}

// failed reports whether error_code is present and truthy.
func (e apiError) failed() bool {
	switch strings.TrimSpace(string(e.ErrorCode)) {
	case "", "null", "0", "false", `""`:
		return false
	}
	return true
}

// ListThreads returns the host inbox threads.
func (c *Client) ListThreads(ctx context.Context, f ThreadFilter) ([]ThreadSummary, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	qs := url.Values{
		"_limit":                            {strconv.Itoa(f.Limit)},
		"_offset":                           {strconv.Itoa(f.Offset)},
		"selected_inbox_type":               {"host"},
		"_format":                           {"for_messaging_sync"},
		"include_support_messaging_threads": {"false"},
	}
	if f.Archived {
		qs.Set("role", "hidden")
	}
	if f.Unread {
		qs.Set("role", "unread")
	}

	var payload struct {
		apiError
		Threads *[]ThreadSummary `json:"threads"`
	}
	if err := c.getJSON(ctx, c.BaseURL+"/threads/?"+qs.Encode(), &payload, &payload.apiError); err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	if payload.Threads == nil {
		return nil, fmt.Errorf("list threads: %w: no threads in response", internalerr.ErrUnavailable)
	}
	return *payload.Threads, nil
}

// GetThread returns a thread with its posts.
func (c *Client) GetThread(ctx context.Context, id int64) (*Thread, error) {
	qs := url.Values{
		"_limit":              {"50"},
		"_offset":             {"0"},
		"selected_inbox_type": {"host"},
		"_format":             {"for_messaging_sync_with_posts"},
	}

	var payload struct {
		apiError
		Thread *Thread `json:"thread"`
	}
	endpoint := fmt.Sprintf("%s/threads/%d?%s", c.BaseURL, id, qs.Encode())
	if err := c.getJSON(ctx, endpoint, &payload, &payload.apiError); err != nil {
		return nil, fmt.Errorf("get thread %d: %w", id, err)
	}
	if payload.Thread == nil {
		return nil, fmt.Errorf("get thread %d: %w: no thread in response", id, internalerr.ErrUnavailable)
	}
	for i := range payload.Thread.Posts {
		payload.Thread.Posts[i].Message = stripHTML(payload.Thread.Posts[i].Message)
	}
	return payload.Thread, nil
}

// SendMessage posts text to a thread.
func (c *Client) SendMessage(ctx context.Context, threadID int64, text string) error {
	form := url.Values{
		"message":   {text},
		"thread_id": {strconv.FormatInt(threadID, 10)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/messages", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var payload apiError
	if err := c.do(req, &payload, &payload); err != nil {
		return fmt.Errorf("send message to %d: %w", threadID, err)
	}
	c.Logger.Debug("message sent", zap.Int64("thread_id", threadID))
	return nil
}

// MarkRead flags a thread as read.
func (c *Client) MarkRead(ctx context.Context, threadID int64) error {
	endpoint := c.MarkReadURL + strconv.FormatInt(threadID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("mark read %d: %w: %v", threadID, internalerr.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mark read %d: %w: status %d", threadID, internalerr.ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any, apiErr *apiError) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)
	return c.do(req, out, apiErr)
}

func (c *Client) do(req *http.Request, out any, apiErr *apiError) error {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.Logger.Warn("inbox api error",
			zap.String("url", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return fmt.Errorf("%w: status %d", internalerr.ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", internalerr.ErrUnavailable, err)
	}
	if apiErr.failed() {
		return fmt.Errorf("%w: error_code %s: %s", internalerr.ErrUnavailable, apiErr.ErrorCode, apiErr.ErrorMessage)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	h := req.Header
	h.Set("Cache-Control", "no-cache")
	h.Set("User-Agent", c.UserAgent)
	h.Set("Accept", "application/json")
	h.Set("Accept-Language", "en-us")
	if c.OAuthToken != "" {
		h.Set("X-Airbnb-OAuth-Token", c.OAuthToken)
	}
	if c.APIKey != "" {
		h.Set("X-Airbnb-API-Key", c.APIKey)
	}
	if c.Locale != "" {
		h.Set("X-Airbnb-Locale", c.Locale)
	}
	if c.Currency != "" {
		h.Set("X-Airbnb-Currency", c.Currency)
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// stripHTML returns the text content of s. Plain text passes through.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			buf.WriteString("\n")
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			extractText(ch)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}
