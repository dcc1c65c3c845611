package types

import (
	"bytes"
	"strings"
)

// ============================================================================
//                              协商消息
// ============================================================================

// 数据路径协商消息，经由普通发现会话消息传递
const (
	// DataPathRequestPrefix 请求前缀，后接请求方设备 ID
	DataPathRequestPrefix = "DATA_PATH_REQUEST:"

	// DataPathAck 响应方确认
	DataPathAck = "DATA_PATH_ACK"
)

// MaxDataPathPayload 单次数据路径传输上限（10 MiB）
const MaxDataPathPayload = 10 << 20

// DataPathRequest 构造请求消息
func DataPathRequest(deviceID string) []byte {
	return []byte(DataPathRequestPrefix + deviceID)
}

// ParseDataPathRequest 解析请求消息，返回请求方设备 ID
//
// 设备 ID 取前缀后到下一个 ':' 为止的部分，为空时视为无效。
func ParseDataPathRequest(payload []byte) (string, bool) {
	if !bytes.HasPrefix(payload, []byte(DataPathRequestPrefix)) {
		return "", false
	}
	dev := string(payload[len(DataPathRequestPrefix):])
	if i := strings.IndexByte(dev, ':'); i >= 0 {
		dev = dev[:i]
	}
	dev = strings.TrimSpace(dev)
	return dev, dev != ""
}

// IsDataPathAck 是否为确认消息
func IsDataPathAck(payload []byte) bool {
	return string(payload) == DataPathAck
}

// ============================================================================
//                              数据路径状态
// ============================================================================

// DataPathState 数据路径状态
type DataPathState int

const (
	// DataPathRequested 已发送请求，等待确认（仅发起方）
	DataPathRequested DataPathState = iota
	// DataPathOpening 已向无线电栈请求链路，等待可用
	DataPathOpening
	// DataPathAvailable 链路可用
	DataPathAvailable
)

// String 返回状态名称
func (s DataPathState) String() string {
	switch s {
	case DataPathRequested:
		return "requested"
	case DataPathOpening:
		return "opening"
	case DataPathAvailable:
		return "available"
	default:
		return "unknown"
	}
}

// DataPathInfo 数据路径快照
type DataPathInfo struct {
	Peer PeerHandle
	// DeviceID 对端设备 ID，发起方在确认前可能未知
	DeviceID string
	State    DataPathState
	// Initiator 本端是否为发起方
	Initiator bool
}
