package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"qna-console-go/internal/model"

	bolt "go.etcd.io/bbolt"
)

// 所有控制台数据放在同一个 bucket 下，通过版本化的键区分逻辑数据集。
var boltBucket = []byte("console")

type boltHistoryRepository struct {
	db *bolt.DB
}

// NewBoltHistoryRepository 创建一个基于本地 BoltDB 文件的 HistoryRepository 实例。
func NewBoltHistoryRepository(db *bolt.DB) HistoryRepository {
	return &boltHistoryRepository{db: db}
}

// Load 从 BoltDB 读取完整的历史快照。
func (r *boltHistoryRepository) Load(ctx context.Context) ([]model.Exchange, error) {
	data, err := boltGet(r.db, historyKey)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []model.Exchange{}, nil // 尚无历史
	}
	var exchanges []model.Exchange
	if err := json.Unmarshal(data, &exchanges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history snapshot: %w", err)
	}
	return exchanges, nil
}

// Save 把完整的历史快照写入 BoltDB。
func (r *boltHistoryRepository) Save(ctx context.Context, exchanges []model.Exchange) error {
	jsonData, err := json.Marshal(exchanges)
	if err != nil {
		return fmt.Errorf("failed to marshal history snapshot: %w", err)
	}
	return boltPut(r.db, historyKey, jsonData)
}

type boltSettingsRepository struct {
	db *bolt.DB
}

// NewBoltSettingsRepository 创建一个基于本地 BoltDB 文件的 SettingsRepository 实例。
func NewBoltSettingsRepository(db *bolt.DB) SettingsRepository {
	return &boltSettingsRepository{db: db}
}

// LoadEndpoint 读取持久化的端点 URL，不存在时返回空串。
func (r *boltSettingsRepository) LoadEndpoint(ctx context.Context) (string, error) {
	data, err := boltGet(r.db, endpointKey)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SaveEndpoint 持久化端点 URL。
func (r *boltSettingsRepository) SaveEndpoint(ctx context.Context, url string) error {
	return boltPut(r.db, endpointKey, []byte(url))
}

func boltGet(db *bolt.DB, key string) ([]byte, error) {
	var out []byte
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read bolt key %s: %w", key, err)
	}
	return out, nil
}

func boltPut(db *bolt.DB, key string, value []byte) error {
	err := db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(boltBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write bolt key %s: %w", key, err)
	}
	return nil
}
