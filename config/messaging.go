package config

import "errors"

// DefaultMaxMessageLength 无线电栈未报告上限时使用的保守值
const DefaultMaxMessageLength = 1800

// MessagingConfig 消息分发配置
type MessagingConfig struct {
	// MaxMessageLength 单条消息上限，0 表示使用无线电栈报告的值
	MaxMessageLength int `json:"max_message_length,omitempty"`

	// SendRate 每秒允许的发送数，0 表示不限速
	SendRate float64 `json:"send_rate,omitempty"`

	// SendBurst 限速令牌桶容量
	SendBurst int `json:"send_burst,omitempty"`
}

// DefaultMessagingConfig 返回默认消息配置
func DefaultMessagingConfig() MessagingConfig {
	return MessagingConfig{
		SendBurst: 8,
	}
}

// Validate 验证消息配置
func (c MessagingConfig) Validate() error {
	if c.MaxMessageLength < 0 {
		return errors.New("max message length must not be negative")
	}
	if c.SendRate < 0 {
		return errors.New("send rate must not be negative")
	}
	if c.SendRate > 0 && c.SendBurst <= 0 {
		return errors.New("send burst must be positive when send rate is set")
	}
	return nil
}
