package session

import "errors"

var (
	// ErrNotAttached 会话尚未 attach
	ErrNotAttached = errors.New("session: not attached")

	// ErrRadioUnavailable 平台不支持邻居感知无线电
	ErrRadioUnavailable = errors.New("session: radio unavailable")

	// ErrAttachFailed attach 请求被无线电栈拒绝
	ErrAttachFailed = errors.New("session: attach failed")

	// ErrSubSessionFailed 发布/订阅请求被无线电栈拒绝
	ErrSubSessionFailed = errors.New("session: discovery session failed")

	// ErrClosed 事件循环已停止
	ErrClosed = errors.New("session: closed")
)
