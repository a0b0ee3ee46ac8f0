package posts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/cli/internal/gateway"
)

type call struct {
	method string
	uri    string
	auth   string
	body   []byte
}

func newTestService(t *testing.T, status int, reply string) (*Service, *[]call) {
	t.Helper()
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, call{method: r.Method, uri: r.URL.RequestURI(), auth: r.Header.Get("Authorization"), body: b})
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	svc := NewService(gateway.New(srv.URL, gateway.StaticSession("tok")), "")
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc, &calls
}

func TestList(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		reply   string
		wantURI string
	}{
		{name: "bare array", reply: `[{"id":"1","title":"A"},{"id":"2","title":"B"}]`, wantURI: "/api/posts"},
		{name: "posts envelope", status: StatusDraft, reply: `{"posts":[{"id":"1","title":"A"},{"id":"2","title":"B"}]}`, wantURI: "/api/posts?status=draft"},
		{name: "data envelope", status: StatusPublished, reply: `{"data":[{"id":"1","title":"A"},{"id":"2","title":"B"}]}`, wantURI: "/api/posts?status=published"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, calls := newTestService(t, http.StatusOK, tt.reply)
			got, err := svc.List(context.Background(), tt.status)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "B", got[1].Title)
			assert.Equal(t, tt.wantURI, (*calls)[0].uri)
			assert.Equal(t, "Bearer tok", (*calls)[0].auth)
		})
	}
}

func TestGet(t *testing.T) {
	svc, calls := newTestService(t, http.StatusOK, `{"post":{"id":"a b","title":"T","status":"published","published_at":"2026-01-02T03:04:05Z"}}`)
	p, err := svc.Get(context.Background(), "a b")
	require.NoError(t, err)
	assert.Equal(t, "/api/posts/a%20b", (*calls)[0].uri)
	assert.Equal(t, StatusPublished, p.Status)
	require.NotNil(t, p.PublishedAt)
	assert.Equal(t, 2026, p.PublishedAt.Year())

	_, err = svc.Get(context.Background(), " ")
	assert.Error(t, err)
}

func TestCreate(t *testing.T) {
	svc, calls := newTestService(t, http.StatusCreated, `{"id":"9","title":"Hello World","slug":"hello-world","status":"draft"}`)
	p, err := svc.Create(context.Background(), Draft{Title: "Hello World", Content: "body"})
	require.NoError(t, err)
	assert.Equal(t, "9", p.ID)

	c := (*calls)[0]
	assert.Equal(t, http.MethodPost, c.method)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(c.body, &sent))
	assert.Equal(t, "hello-world", sent["slug"])
	assert.Equal(t, "draft", sent["status"])
	assert.Equal(t, "body", sent["content"])
}

func TestCreateInvalidDraftSendsNothing(t *testing.T) {
	svc, calls := newTestService(t, http.StatusCreated, `{}`)
	_, err := svc.Create(context.Background(), Draft{Content: "no title"})
	assert.Error(t, err)
	assert.Empty(t, *calls)
}

func TestPublish(t *testing.T) {
	svc, calls := newTestService(t, http.StatusOK, `{"id":"9","status":"published"}`)
	p, err := svc.Publish(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, p.Status)

	c := (*calls)[0]
	assert.Equal(t, http.MethodPatch, c.method)
	assert.JSONEq(t, `{"status":"published","published_at":"2026-03-01T09:00:00Z"}`, string(c.body))
}

func TestDelete(t *testing.T) {
	svc, calls := newTestService(t, http.StatusNoContent, "")
	require.NoError(t, svc.Delete(context.Background(), "9"))
	assert.Equal(t, http.MethodDelete, (*calls)[0].method)
	assert.Equal(t, "/api/posts/9", (*calls)[0].uri)
}

func TestServerErrorsSurface(t *testing.T) {
	svc, _ := newTestService(t, http.StatusConflict, `{"message":"slug already taken"}`)
	_, err := svc.Create(context.Background(), Draft{Title: "Dup"})

	var se *gateway.ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "slug already taken", se.Message())
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" Published ")
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, st)

	_, err = ParseStatus("archived")
	assert.Error(t, err)
}
