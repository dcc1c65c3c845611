package datapath

import "errors"

// 错误定义
var (
	// ErrUnsupported 无线电不支持数据路径
	ErrUnsupported = errors.New("datapath: radio does not support data paths")

	// ErrDisabled 数据路径已在配置中关闭
	ErrDisabled = errors.New("datapath: disabled")

	// ErrNoActiveSession 没有可用于请求链路的子会话
	ErrNoActiveSession = errors.New("datapath: no active session")

	// ErrNotReady 链路尚未可用
	ErrNotReady = errors.New("datapath: not ready")

	// ErrPayloadTooLarge 超过单次传输上限
	ErrPayloadTooLarge = errors.New("datapath: payload too large")

	// ErrUnknownDataPath 没有到该对端的数据路径
	ErrUnknownDataPath = errors.New("datapath: unknown data path")

	// ErrInvalidConfig 无效的配置
	ErrInvalidConfig = errors.New("datapath: invalid config")
)
