package coordinator

import "errors"

var (
	// ErrInvalidConfig 无效的配置
	ErrInvalidConfig = errors.New("coordinator: invalid config")

	// ErrNilRegistry 未提供注册表
	ErrNilRegistry = errors.New("coordinator: registry is nil")
)
