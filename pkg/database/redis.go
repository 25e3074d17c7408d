package database

import (
	"context"
	"time"

	"qna-console-go/pkg/log"

	"github.com/go-redis/redis/v8"
)

var RDB *redis.Client

// InitRedis 初始化 Redis 客户端连接。
// 持久化层是尽力而为的：连接不上只告警，不阻止服务启动，
// 后续的读写失败由上层各自吞掉。
func InitRedis(addr, password string, db int) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.Warnf("Redis 连接失败，历史将只保留在内存中直到存储恢复: %v", err)
		return
	}

	log.Info("Redis client connected successfully")
}
