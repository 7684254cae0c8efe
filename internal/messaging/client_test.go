package messaging

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cognicore/tobot/pkg/tobot/config"
	"github.com/cognicore/tobot/pkg/tobot/internalerr"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := config.Default().API
	cfg.BaseURL = srv.URL + "/v2/"
	cfg.APIKey = "key"
	cfg.OAuthToken = "token"
	c := New(cfg, zaptest.NewLogger(t))
	c.MarkReadURL = srv.URL + "/z/q/"
	return c, srv
}

const threadsJSON = `{"threads":[{
	"id": 42,
	"unread": true,
	"thread_sub_type": "",
	"status": "accepted",
	"inquiry_checkin_date": "2026-10-16",
	"inquiry_checkout_date": "2026-10-19",
	"inquiry_listing": {"name": "Loft", "inquiry_number_of_guests": 3},
	"posts_count": 2,
	"other_user": {"id": 7, "first_name": "Anna"},
	"should_translate": false
}]}`

func TestListThreads(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/threads/", r.URL.Path)
		assert.Equal(t, "host", r.URL.Query().Get("selected_inbox_type"))
		assert.Equal(t, "unread", r.URL.Query().Get("role"))
		assert.Equal(t, "10", r.URL.Query().Get("_limit"))
		assert.Equal(t, "key", r.Header.Get("X-Airbnb-API-Key"))
		assert.Equal(t, "token", r.Header.Get("X-Airbnb-OAuth-Token"))
		io.WriteString(w, threadsJSON)
	})

	threads, err := c.ListThreads(context.Background(), ThreadFilter{Limit: 10, Unread: true})
	require.NoError(t, err)
	require.Len(t, threads, 1)

	th := threads[0]
	assert.Equal(t, int64(42), th.ID)
	assert.True(t, th.Unread)
	assert.False(t, th.IsSupport())
	assert.Equal(t, "Anna", th.Guest.FirstName)
	assert.Equal(t, int64(7), th.Guest.ID)
	assert.Equal(t, 3, th.NumGuests())
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), th.Checkout(time.UTC))
}

func TestListThreadsFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"error code", http.StatusOK, `{"error_code": 401, "error_message": "unauthorized"}`},
		{"malformed", http.StatusOK, `{"threads": [`},
		{"missing threads", http.StatusOK, `{"metadata": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.payload)
			})
			_, err := c.ListThreads(context.Background(), ThreadFilter{})
			require.Error(t, err)
			assert.ErrorIs(t, err, internalerr.ErrUnavailable)
		})
	}
}

func TestListThreadsTransportError(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()
	_, err := c.ListThreads(context.Background(), ThreadFilter{})
	assert.ErrorIs(t, err, internalerr.ErrUnavailable)
}

func TestGetThreadStripsMarkup(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/threads/42", r.URL.Path)
		assert.Equal(t, "for_messaging_sync_with_posts", r.URL.Query().Get("_format"))
		io.WriteString(w, `{"thread":{"id":42,"posts":[
			{"id":2,"user_id":1,"message":"See you &amp; enjoy<br>Host"},
			{"id":1,"user_id":7,"message":"When is checkin?"}
		]}}`)
	})

	th, err := c.GetThread(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, th.Posts, 2)
	assert.Equal(t, "See you & enjoy\nHost", th.Posts[0].Message)
	assert.Equal(t, "When is checkin?", th.Posts[1].Message)
}

func TestSendMessage(t *testing.T) {
	var got url.Values
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/messages", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		got = r.PostForm
		io.WriteString(w, `{"message":{"id":9}}`)
	})

	require.NoError(t, c.SendMessage(context.Background(), 42, "Hello Anna, checkin is at 3pm"))
	assert.Equal(t, "42", got.Get("thread_id"))
	assert.Equal(t, "Hello Anna, checkin is at 3pm", got.Get("message"))
}

func TestSendMessageErrorCode(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"error_code": "rate_limited"}`)
	})
	err := c.SendMessage(context.Background(), 42, "hi")
	assert.ErrorIs(t, err, internalerr.ErrUnavailable)
}

func TestMarkRead(t *testing.T) {
	hits := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path == "/z/q/42" {
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	require.NoError(t, c.MarkRead(context.Background(), 42))
	assert.ErrorIs(t, c.MarkRead(context.Background(), 43), internalerr.ErrUnavailable)
	assert.Equal(t, 2, hits)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain text", stripHTML("plain text"))
	assert.Equal(t, "bold move", stripHTML("<b>bold</b> move"))
}
