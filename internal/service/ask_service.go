package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"qna-console-go/internal/model"
	"qna-console-go/internal/normalizer"
	"qna-console-go/pkg/log"
	"qna-console-go/pkg/webhook"

	"github.com/google/uuid"
)

// noAnswerText 是归一化结果为空时写入历史的占位答案。
const noAnswerText = "（未返回答案）"

// readyDelay 是 Ready 状态回落到 Idle 的固定延迟，纯粹是给前端的展示缓冲。
const readyDelay = 2 * time.Second

var (
	// ErrEmptyQuestion 表示提交的问题去除空白后为空。
	ErrEmptyQuestion = errors.New("问题不能为空")
	// ErrBusy 表示已有一个在途请求，本次提交被丢弃（不排队、不取消）。
	ErrBusy = errors.New("已有请求正在处理中")
)

// StatusEvent 是推送给观察者的一次状态迁移。
type StatusEvent struct {
	Status    model.Status `json:"status"`
	Message   string       `json:"message,omitempty"` // Error 状态时的用户可读错误文本
	Timestamp int64        `json:"timestamp"`
}

// AskService 定义了一次提问生命周期的编排接口。
type AskService interface {
	// Submit 提交一个问题并同步等待结果。同一时刻最多允许一个在途请求，
	// Sending 期间的并发提交返回 ErrBusy 且不产生任何可观察的副作用。
	Submit(ctx context.Context, question string) (*model.Exchange, error)
	// Status 返回当前状态与最近一次的错误文本。
	Status() (model.Status, string)
	// Subscribe 注册一个状态迁移观察者，返回事件通道与取消函数。
	Subscribe() (<-chan StatusEvent, func())
}

type askService struct {
	client   webhook.Client
	history  HistoryService
	settings SettingsService

	statusMu  sync.Mutex
	status    model.Status
	lastError string
	gen       uint64 // 提交代数，防止过期的回落定时器覆盖新状态

	subMu   sync.Mutex
	subs    map[int]chan StatusEvent
	nextSub int
}

// NewAskService 创建一个新的 AskService 实例。
func NewAskService(client webhook.Client, history HistoryService, settings SettingsService) AskService {
	return &askService{
		client:   client,
		history:  history,
		settings: settings,
		status:   model.StatusIdle,
		subs:     make(map[int]chan StatusEvent),
	}
}

// Submit 执行一次完整的提问流程：Sending -> (Ready | Error)。
func (s *askService) Submit(ctx context.Context, question string) (*model.Exchange, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		// 校验失败同步拒绝，不触碰状态机
		return nil, ErrEmptyQuestion
	}

	// 状态闸门：Sending 期间的并发提交被静默丢弃，而不是排队
	gen, ok := s.enterSending()
	if !ok {
		return nil, ErrBusy
	}

	endpoint := s.settings.EndpointURL()
	log.Infof("提交问题到自动化端点: %s", endpoint)

	reply, err := s.client.Ask(ctx, endpoint, q)
	if err != nil {
		// 传输层失败：网络不可达、超时等。不创建历史记录。
		msg := fmt.Sprintf("请求发送失败: %v", err)
		s.enterError(msg)
		return nil, errors.New(msg)
	}

	if !reply.OK() {
		// 上游返回失败状态：仍然尝试从负载中提取人类可读的错误信息
		msg, extracted := normalizer.Extract(reply.Payload)
		if !extracted {
			msg = fmt.Sprintf("请求失败，状态码 %d", reply.StatusCode)
		}
		s.enterError(msg)
		return nil, errors.New(msg)
	}

	answer, raw := normalizer.Normalize(reply.Payload)
	if strings.TrimSpace(answer) == "" {
		answer = noAnswerText
	}

	exchange := model.Exchange{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		Question:    q,
		Answer:      answer,
		RawResponse: raw,
	}
	s.history.Insert(ctx, exchange)

	s.enterReady(gen)
	return &exchange, nil
}

// Status 返回当前状态与最近一次错误文本。
func (s *askService) Status() (model.Status, string) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.status, s.lastError
}

// enterSending 尝试把状态机迁移到 Sending，已在 Sending 时返回 false。
func (s *askService) enterSending() (uint64, bool) {
	s.statusMu.Lock()
	if s.status == model.StatusSending {
		s.statusMu.Unlock()
		return 0, false
	}
	s.status = model.StatusSending
	s.lastError = ""
	s.gen++
	gen := s.gen
	s.statusMu.Unlock()

	s.broadcast(StatusEvent{Status: model.StatusSending, Timestamp: time.Now().UnixMilli()})
	return gen, true
}

// enterError 以用户可读的错误文本结束本次提交。
func (s *askService) enterError(msg string) {
	s.statusMu.Lock()
	s.status = model.StatusError
	s.lastError = msg
	s.statusMu.Unlock()

	s.broadcast(StatusEvent{Status: model.StatusError, Message: msg, Timestamp: time.Now().UnixMilli()})
}

// enterReady 迁移到 Ready，并在固定延迟后回落到 Idle。
// 回落只在没有更新的提交开始时生效。
func (s *askService) enterReady(gen uint64) {
	s.statusMu.Lock()
	s.status = model.StatusReady
	s.statusMu.Unlock()

	s.broadcast(StatusEvent{Status: model.StatusReady, Timestamp: time.Now().UnixMilli()})

	time.AfterFunc(readyDelay, func() {
		s.statusMu.Lock()
		settle := s.gen == gen && s.status == model.StatusReady
		if settle {
			s.status = model.StatusIdle
		}
		s.statusMu.Unlock()

		if settle {
			s.broadcast(StatusEvent{Status: model.StatusIdle, Timestamp: time.Now().UnixMilli()})
		}
	})
}

// Subscribe 注册一个状态观察者。通道带缓冲，消费过慢时丢弃事件而不是阻塞编排。
func (s *askService) Subscribe() (<-chan StatusEvent, func()) {
	ch := make(chan StatusEvent, 8)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
		s.subMu.Unlock()
	}
	return ch, cancel
}

// broadcast 把状态事件分发给所有观察者。
func (s *askService) broadcast(ev StatusEvent) {
	s.subMu.Lock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.subMu.Unlock()
}
