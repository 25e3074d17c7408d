package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"qna-console-go/internal/repository"
	"qna-console-go/pkg/log"
)

// ErrInvalidEndpoint 表示端点 URL 未通过有效性校验。
var ErrInvalidEndpoint = errors.New("端点 URL 无效：必须是非空的 https 地址")

// SettingsService 定义了端点配置的业务逻辑接口。
// 端点 URL 跨会话持久化；持久化失败时内存中的配置仍然生效。
type SettingsService interface {
	// Load 在启动时恢复持久化的端点配置，没有时保留内置默认值。
	Load(ctx context.Context)
	// EndpointURL 返回当前生效的端点 URL。
	EndpointURL() string
	// UpdateEndpoint 校验并更新端点 URL，校验失败时不产生任何状态变更。
	UpdateEndpoint(ctx context.Context, rawURL string) error
}

type settingsService struct {
	mu       sync.Mutex
	endpoint string
	repo     repository.SettingsRepository
}

// NewSettingsService 创建一个新的 SettingsService 实例，defaultURL 为内置默认端点。
func NewSettingsService(repo repository.SettingsRepository, defaultURL string) SettingsService {
	return &settingsService{
		endpoint: defaultURL,
		repo:     repo,
	}
}

// Load 恢复持久化的端点配置。
func (s *settingsService) Load(ctx context.Context) {
	saved, err := s.repo.LoadEndpoint(ctx)
	if err != nil {
		log.Warnf("恢复端点配置失败，使用默认端点: %v", err)
		return
	}
	// 只接受仍然合法的历史配置
	if validateEndpoint(saved) == nil {
		s.mu.Lock()
		s.endpoint = saved
		s.mu.Unlock()
	}
}

// EndpointURL 返回当前生效的端点 URL。
func (s *settingsService) EndpointURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpoint
}

// UpdateEndpoint 校验并更新端点 URL。
func (s *settingsService) UpdateEndpoint(ctx context.Context, rawURL string) error {
	trimmed := strings.TrimSpace(rawURL)
	if err := validateEndpoint(trimmed); err != nil {
		return err
	}

	s.mu.Lock()
	s.endpoint = trimmed
	s.mu.Unlock()

	if err := s.repo.SaveEndpoint(ctx, trimmed); err != nil {
		log.Warnf("持久化端点配置失败: %v", err)
	}
	return nil
}

// validateEndpoint 执行端点 URL 的有效性断言：非空且使用安全传输。
func validateEndpoint(rawURL string) error {
	if rawURL == "" {
		return ErrInvalidEndpoint
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return ErrInvalidEndpoint
	}
	return nil
}
