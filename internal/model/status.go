package model

// Status 表示当前提问流程所处的阶段。
// 它是一个派生的观测信号，只能由编排器内部迁移，外部代码只读。
type Status string

const (
	StatusIdle    Status = "idle"    // 空闲，可以提交新问题
	StatusSending Status = "sending" // 存在一个在途请求
	StatusReady   Status = "ready"   // 最近一次提问成功完成
	StatusError   Status = "error"   // 最近一次提问失败
)
