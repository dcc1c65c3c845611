package config

import (
	"errors"
	"time"
)

// SessionConfig 会话状态机配置
type SessionConfig struct {
	// AutoPublish attach 成功后自动发布服务
	AutoPublish bool `json:"auto_publish"`

	// AutoSubscribe attach 成功后自动订阅服务
	AutoSubscribe bool `json:"auto_subscribe"`

	// ReadyTimeout WaitForState 未带截止时间时的默认超时
	ReadyTimeout Duration `json:"ready_timeout,omitempty"`

	// ReadyCheckInterval WaitForState 的轮询间隔
	ReadyCheckInterval Duration `json:"ready_check_interval,omitempty"`
}

// DefaultSessionConfig 返回默认会话配置
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		AutoPublish:        true,
		AutoSubscribe:      false,
		ReadyTimeout:       Duration(10 * time.Second),
		ReadyCheckInterval: Duration(100 * time.Millisecond),
	}
}

// Validate 验证会话配置
func (c SessionConfig) Validate() error {
	if c.ReadyTimeout < 0 {
		return errors.New("ready timeout must not be negative")
	}
	if c.ReadyCheckInterval <= 0 {
		return errors.New("ready check interval must be positive")
	}
	return nil
}
