package types

import (
	"bytes"
	"encoding/json"
)

// Envelope 应用层消息信封
//
//	{"sender":"<设备 ID>","text":"..."}
//
// 对端可以用 sender 声明设备 ID，发布方由此建立设备索引。
type Envelope struct {
	Sender string `json:"sender,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Encode 编码为 JSON
func (e Envelope) Encode() []byte {
	data, _ := json.Marshal(e)
	return data
}

// ParseEnvelope 尝试把消息解析为信封，不是 JSON 对象时返回 false
func ParseEnvelope(payload []byte) (Envelope, bool) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Envelope{}, false
	}
	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return Envelope{}, false
	}
	return env, true
}
