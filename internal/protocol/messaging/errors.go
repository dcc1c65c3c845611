package messaging

import "errors"

// 错误定义
var (
	// ErrNoActiveSession 没有活跃的发布/订阅会话
	ErrNoActiveSession = errors.New("messaging: no active session")

	// ErrUnknownPeer 对端不在注册表中
	ErrUnknownPeer = errors.New("messaging: unknown peer")

	// ErrMessageTooLong 消息超过无线电上限
	ErrMessageTooLong = errors.New("messaging: message too long")

	// ErrRateLimited 发送超过限速
	ErrRateLimited = errors.New("messaging: rate limited")

	// ErrNilRadio 未提供无线电
	ErrNilRadio = errors.New("messaging: radio is nil")

	// ErrInvalidConfig 无效的配置
	ErrInvalidConfig = errors.New("messaging: invalid config")
)
