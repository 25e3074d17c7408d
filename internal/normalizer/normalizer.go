// Package normalizer 负责从形状不确定的响应负载中提取可展示的答案文本。
// 上游自动化端点的响应结构没有契约保证（不同的工作流配置会产出不同形状），
// 因此这里只做尽力而为的降级提取，绝不失败。
package normalizer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// candidateFields 是按优先级排列的候选字段名，先命中者胜出。
var candidateFields = []string{"answer", "result", "text", "message", "output", "response"}

// Extract 对负载执行有序的字段扫描，返回第一个非空白字符串。
// 仅覆盖确定性的提取路径：字符串本身、顶层候选字段、嵌套一层的 data 对象。
// 找不到可用字符串时返回 ("", false)，由调用方决定兜底策略。
func Extract(body interface{}) (string, bool) {
	switch v := body.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		// 原样返回，不做裁剪
		return v, true
	case map[string]interface{}:
		if s, ok := scanFields(v); ok {
			return s, true
		}
		// 再尝试约定俗成的 data 嵌套对象
		if nested, ok := v["data"].(map[string]interface{}); ok {
			if s, ok := scanFields(nested); ok {
				return s, true
			}
		}
	}
	return "", false
}

// scanFields 按候选字段顺序扫描对象的顶层字段。
// 空白字符串视为字段缺失，继续向后扫描，避免空字段"抢先命中"。
func scanFields(obj map[string]interface{}) (string, bool) {
	for _, field := range candidateFields {
		if s, ok := obj[field].(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

// Normalize 把任意形状的响应负载归一化为一个可展示的答案字符串，并保留原始负载。
// 保证永不失败、永不返回形状上不可展示的内容：提取失败时退化为结构化转储，
// 转储也失败时退化为默认字符串表示，确保用户总能看到一些东西而不是空白。
func Normalize(body interface{}) (answer string, raw interface{}) {
	raw = body

	if s, ok := Extract(body); ok {
		return s, raw
	}

	if body == nil {
		return "null", raw
	}
	if s, ok := body.(string); ok {
		// 空白字符串原样保留，由调用方替换为占位文本
		return s, raw
	}

	// 结构化转储兜底
	if dump, err := json.MarshalIndent(body, "", "  "); err == nil {
		return string(dump), raw
	}
	return fmt.Sprintf("%v", body), raw
}
