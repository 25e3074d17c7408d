package database

import (
	"os"
	"path/filepath"
	"time"

	"qna-console-go/pkg/log"

	bolt "go.etcd.io/bbolt"
)

var BoltDB *bolt.DB

// InitBolt 打开本地 BoltDB 单文件存储。
// 打开失败时返回 error，由调用方决定退化策略（例如改用纯内存仓库），
// 存储不可用不是致命错误。
func InitBolt(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return err
	}

	BoltDB = db
	log.Infof("BoltDB 已打开: %s", path)
	return nil
}

// CloseBolt 关闭 BoltDB。
func CloseBolt() {
	if BoltDB != nil {
		_ = BoltDB.Close()
	}
}
