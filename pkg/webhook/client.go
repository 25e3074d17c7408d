// Package webhook provides a client for the remote automation endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client 定义了自动化端点客户端的接口。
type Client interface {
	// Ask 向指定端点发送一个问题，返回解析后的响应负载。
	// 任何收到的 HTTP 响应（含非 2xx）都作为 Reply 返回，错误仅表示传输层失败。
	Ask(ctx context.Context, endpointURL, question string) (*Reply, error)
}

// Reply 代表自动化端点返回的一次响应。
// Payload 的形状不受契约约束，由上层的归一化逻辑做尽力而为的解释。
type Reply struct {
	StatusCode int
	Payload    interface{}
}

// OK 判断响应是否为成功状态（任意 2xx）。
func (r *Reply) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type httpClient struct {
	client *http.Client
}

// NewClient 创建一个新的自动化端点客户端。
// 超时是传输层自身的责任，超时触发时以传输错误的形式上报给编排器。
func NewClient(timeout time.Duration) Client {
	return &httpClient{
		client: &http.Client{Timeout: timeout},
	}
}

// askRequest 是发往自动化端点的请求体，仅包含一个约定字段。
type askRequest struct {
	Question string `json:"question"`
}

func (c *httpClient) Ask(ctx context.Context, endpointURL, question string) (*Reply, error) {
	reqBytes, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ask request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpointURL, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create ask request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call automation endpoint: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Reply{
		StatusCode: resp.StatusCode,
		Payload:    decodePayload(resp.Header.Get("Content-Type"), bodyBytes),
	}, nil
}

// decodePayload 根据声明的内容类型确定响应的封装方式。
// 声明为 JSON 的按 JSON 解析；其余按纯文本读取后再尝试尽力而为的 JSON 解析。
// 两条路径上解析失败都把原始文本本身作为负载，使纯文本答案无需服务端包装即可使用。
func decodePayload(contentType string, body []byte) interface{} {
	if strings.Contains(strings.ToLower(contentType), "json") {
		var payload interface{}
		if err := json.Unmarshal(body, &payload); err == nil {
			return payload
		}
		return string(body)
	}

	text := string(body)
	var payload interface{}
	if err := json.Unmarshal([]byte(text), &payload); err == nil {
		return payload
	}
	return text
}
