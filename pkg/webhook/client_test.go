package webhook

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
)

func TestAskSendsQuestionAsJSON(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer": "ok"}`))
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	reply, err := client.Ask(context.Background(), srv.URL, "今天天气如何？")
	require.NoError(t, err)

	// 请求体只包含一个约定字段
	assert.Equal(t, map[string]interface{}{"question": "今天天气如何？"}, received)
	assert.True(t, reply.OK())
	assert.Equal(t, map[string]interface{}{"answer": "ok"}, reply.Payload)
}

func TestAskParsesDeclaredJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`{"data": {"text": "nested"}}`))
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	reply, err := client.Ask(context.Background(), srv.URL, "q")
	require.NoError(t, err)
	payload, ok := reply.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, payload, "data")
}

func TestAskBestEffortParsesUndeclaredJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 纯文本内容类型但载荷本身是 JSON
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(`{"result": "still parsed"}`))
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	reply, err := client.Ask(context.Background(), srv.URL, "q")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"result": "still parsed"}, reply.Payload)
}

func TestAskFallsBackToRawText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Please clarify."))
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	reply, err := client.Ask(context.Background(), srv.URL, "q")
	require.NoError(t, err)
	assert.Equal(t, "Please clarify.", reply.Payload)
}

func TestAskDeclaredJSONButMalformedFallsBackToText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"broken":`))
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	reply, err := client.Ask(context.Background(), srv.URL, "q")
	require.NoError(t, err)
	assert.Equal(t, `{"broken":`, reply.Payload)
}

func TestAskReturnsReplyForNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message": "rate limited"}`))
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	reply, err := client.Ask(context.Background(), srv.URL, "q")
	require.NoError(t, err) // 非 2xx 不是传输错误
	assert.False(t, reply.OK())
	assert.Equal(t, http.StatusTooManyRequests, reply.StatusCode)
}

func TestAskReportsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(time.Second)
	reply, err := client.Ask(context.Background(), srv.URL, "q")
	assert.Error(t, err)
	assert.Nil(t, reply)
}

func TestAskTimeoutSurfacesAsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(50 * time.Millisecond)
	_, err := client.Ask(context.Background(), srv.URL, "q")
	assert.Error(t, err)
}
