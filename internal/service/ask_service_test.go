package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"qna-console-go/internal/model"
	"qna-console-go/internal/repository"
	"qna-console-go/pkg/webhook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAskFixture 构建一套指向测试服务器的完整编排依赖。
func newAskFixture(endpointURL string) (AskService, HistoryService) {
	history := NewHistoryService(repository.NewMemoryHistoryRepository(), 20)
	settings := NewSettingsService(repository.NewMemorySettingsRepository(), endpointURL)
	ask := NewAskService(webhook.NewClient(5*time.Second), history, settings)
	return ask, history
}

func TestSubmitSuccessWithJSONOutputField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"output": "March 31"}`))
	}))
	defer srv.Close()

	ask, history := newAskFixture(srv.URL)
	exchange, err := ask.Submit(context.Background(), "What is the deadline?")
	require.NoError(t, err)

	assert.Equal(t, "What is the deadline?", exchange.Question)
	assert.Equal(t, "March 31", exchange.Answer)
	assert.NotEmpty(t, exchange.ID)
	assert.False(t, exchange.CreatedAt.IsZero())

	status, lastError := ask.Status()
	assert.Equal(t, model.StatusReady, status)
	assert.Empty(t, lastError)

	stored := history.Search("")
	require.Len(t, stored, 1)
	assert.Equal(t, exchange.ID, stored[0].ID)
}

func TestSubmitSupportsPlainTextAnswers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Please clarify."))
	}))
	defer srv.Close()

	ask, _ := newAskFixture(srv.URL)
	exchange, err := ask.Submit(context.Background(), "hm?")
	require.NoError(t, err)
	assert.Equal(t, "Please clarify.", exchange.Answer)
}

func TestSubmitUpstreamErrorExtractsMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message": "rate limited"}`))
	}))
	defer srv.Close()

	ask, history := newAskFixture(srv.URL)
	exchange, err := ask.Submit(context.Background(), "q")
	require.Error(t, err)
	assert.Nil(t, exchange)
	assert.Equal(t, "rate limited", err.Error())

	status, lastError := ask.Status()
	assert.Equal(t, model.StatusError, status)
	assert.Equal(t, "rate limited", lastError)

	// 失败的提交不创建历史记录
	assert.Empty(t, history.Search(""))
}

func TestSubmitUpstreamErrorSynthesizesStatusMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ask, _ := newAskFixture(srv.URL)
	_, err := ask.Submit(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSubmitTransportFailureNoExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 立刻关闭，制造网络不可达

	ask, history := newAskFixture(srv.URL)
	_, err := ask.Submit(context.Background(), "q")
	require.Error(t, err)

	status, lastError := ask.Status()
	assert.Equal(t, model.StatusError, status)
	assert.NotEmpty(t, lastError)
	assert.Empty(t, history.Search(""))
}

func TestSubmitRejectsEmptyQuestion(t *testing.T) {
	ask, history := newAskFixture("https://unused.example.com")

	_, err := ask.Submit(context.Background(), "   \n\t ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)

	status, _ := ask.Status()
	assert.Equal(t, model.StatusIdle, status)
	assert.Empty(t, history.Search(""))
}

func TestSubmitWhileSendingIsDropped(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		close(entered)
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer": "done"}`))
	}))
	defer srv.Close()

	ask, history := newAskFixture(srv.URL)

	firstDone := make(chan error, 1)
	go func() {
		_, err := ask.Submit(context.Background(), "first")
		firstDone <- err
	}()

	<-entered
	status, _ := ask.Status()
	require.Equal(t, model.StatusSending, status)

	// Sending 期间的并发提交被静默丢弃：不排队，也不会发出第二个请求
	_, err := ask.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-firstDone)

	assert.Equal(t, 1, requests)
	stored := history.Search("")
	require.Len(t, stored, 1)
	assert.Equal(t, "first", stored[0].Question)
}

func TestSubmitSubstitutesSentinelForBlankAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`"   "`)) // JSON 字符串，内容全是空白
	}))
	defer srv.Close()

	ask, _ := newAskFixture(srv.URL)
	exchange, err := ask.Submit(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, noAnswerText, exchange.Answer)
}

func TestReadySettlesBackToIdle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer": "ok"}`))
	}))
	defer srv.Close()

	ask, _ := newAskFixture(srv.URL)
	_, err := ask.Submit(context.Background(), "q")
	require.NoError(t, err)

	status, _ := ask.Status()
	require.Equal(t, model.StatusReady, status)

	assert.Eventually(t, func() bool {
		status, _ := ask.Status()
		return status == model.StatusIdle
	}, 4*time.Second, 50*time.Millisecond)
}

func TestStatusEventsAreBroadcast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer": "ok"}`))
	}))
	defer srv.Close()

	ask, _ := newAskFixture(srv.URL)
	events, cancel := ask.Subscribe()
	defer cancel()

	_, err := ask.Submit(context.Background(), "q")
	require.NoError(t, err)

	var seen []model.Status
	timeout := time.After(2 * time.Second)
	for len(seen) < 2 {
		select {
		case ev := <-events:
			seen = append(seen, ev.Status)
		case <-timeout:
			t.Fatalf("状态事件不足，已收到: %v", seen)
		}
	}
	assert.Equal(t, []model.Status{model.StatusSending, model.StatusReady}, seen[:2])
}
