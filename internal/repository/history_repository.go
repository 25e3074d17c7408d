// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"qna-console-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// 持久化键内嵌模式版本号，未来格式变更时不会去解析不兼容的旧数据。
const (
	historyKey  = "console:history:v1"
	endpointKey = "console:settings:endpoint:v1"
)

// HistoryRepository 定义了历史记录快照的持久化操作接口。
// 存储层是尽力而为的：缺失或损坏的数据等价于"没有数据"，绝不视为致命错误。
type HistoryRepository interface {
	Load(ctx context.Context) ([]model.Exchange, error)
	Save(ctx context.Context, exchanges []model.Exchange) error
}

// SettingsRepository 定义了端点配置的持久化操作接口。
type SettingsRepository interface {
	LoadEndpoint(ctx context.Context) (string, error)
	SaveEndpoint(ctx context.Context, url string) error
}

type redisHistoryRepository struct {
	redisClient *redis.Client
}

// NewRedisHistoryRepository 创建一个基于 Redis 的 HistoryRepository 实例。
func NewRedisHistoryRepository(redisClient *redis.Client) HistoryRepository {
	return &redisHistoryRepository{redisClient: redisClient}
}

// Load 从 Redis 读取完整的历史快照。
func (r *redisHistoryRepository) Load(ctx context.Context) ([]model.Exchange, error) {
	jsonData, err := r.redisClient.Get(ctx, historyKey).Result()
	if err == redis.Nil {
		return []model.Exchange{}, nil // 尚无历史
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history snapshot: %w", err)
	}
	var exchanges []model.Exchange
	if err := json.Unmarshal([]byte(jsonData), &exchanges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history snapshot: %w", err)
	}
	return exchanges, nil
}

// Save 把完整的历史快照写入 Redis。
func (r *redisHistoryRepository) Save(ctx context.Context, exchanges []model.Exchange) error {
	jsonData, err := json.Marshal(exchanges)
	if err != nil {
		return fmt.Errorf("failed to marshal history snapshot: %w", err)
	}
	if err := r.redisClient.Set(ctx, historyKey, jsonData, 0).Err(); err != nil {
		return fmt.Errorf("failed to set history snapshot: %w", err)
	}
	return nil
}

type redisSettingsRepository struct {
	redisClient *redis.Client
}

// NewRedisSettingsRepository 创建一个基于 Redis 的 SettingsRepository 实例。
func NewRedisSettingsRepository(redisClient *redis.Client) SettingsRepository {
	return &redisSettingsRepository{redisClient: redisClient}
}

// LoadEndpoint 读取持久化的端点 URL，不存在时返回空串。
func (r *redisSettingsRepository) LoadEndpoint(ctx context.Context) (string, error) {
	url, err := r.redisClient.Get(ctx, endpointKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get endpoint url: %w", err)
	}
	return url, nil
}

// SaveEndpoint 持久化端点 URL。
func (r *redisSettingsRepository) SaveEndpoint(ctx context.Context, url string) error {
	if err := r.redisClient.Set(ctx, endpointKey, url, 0).Err(); err != nil {
		return fmt.Errorf("failed to set endpoint url: %w", err)
	}
	return nil
}
