package repository

import (
	"context"
	"sync"

	"qna-console-go/internal/model"
)

// memoryHistoryRepository 是 HistoryRepository 的纯内存实现。
// 当配置的持久化后端不可用时作为兜底使用：进程内状态仍然权威，只是不跨会话保留。
type memoryHistoryRepository struct {
	mu       sync.Mutex
	snapshot []model.Exchange
}

// NewMemoryHistoryRepository 创建一个纯内存的 HistoryRepository 实例。
func NewMemoryHistoryRepository() HistoryRepository {
	return &memoryHistoryRepository{}
}

func (r *memoryHistoryRepository) Load(ctx context.Context) ([]model.Exchange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Exchange, len(r.snapshot))
	copy(out, r.snapshot)
	return out, nil
}

func (r *memoryHistoryRepository) Save(ctx context.Context, exchanges []model.Exchange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = make([]model.Exchange, len(exchanges))
	copy(r.snapshot, exchanges)
	return nil
}

// memorySettingsRepository 是 SettingsRepository 的纯内存实现。
type memorySettingsRepository struct {
	mu       sync.Mutex
	endpoint string
}

// NewMemorySettingsRepository 创建一个纯内存的 SettingsRepository 实例。
func NewMemorySettingsRepository() SettingsRepository {
	return &memorySettingsRepository{}
}

func (r *memorySettingsRepository) LoadEndpoint(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endpoint, nil
}

func (r *memorySettingsRepository) SaveEndpoint(ctx context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoint = url
	return nil
}
