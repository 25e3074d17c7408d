// Package model 包含了应用的数据模型定义。
package model

import "time"

// Exchange 代表一次已完成的问答交互，是历史记录的持久化单元。
// 除 Pinned 标志外，Exchange 创建后不再被修改。
type Exchange struct {
	ID          string      `json:"id"`
	CreatedAt   time.Time   `json:"createdAt"`
	Question    string      `json:"question"`
	Answer      string      `json:"answer"`
	Pinned      bool        `json:"pinned"`
	RawResponse interface{} `json:"rawResponse,omitempty"` // 原始响应负载，仅保留用于调试
}
