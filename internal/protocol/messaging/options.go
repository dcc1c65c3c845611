package messaging

import (
	"fmt"

	"github.com/dep2p/go-nan/config"
)

// Config 消息分发配置
type Config struct {
	// MaxMessageLength 单条消息上限，0 表示使用无线电报告的值
	MaxMessageLength int

	// SendRate 每秒允许的发送数，0 表示不限速
	SendRate float64

	// SendBurst 令牌桶容量
	SendBurst int
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		SendBurst: 8,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.MaxMessageLength < 0 {
		return fmt.Errorf("%w: MaxMessageLength must not be negative", ErrInvalidConfig)
	}
	if c.SendRate < 0 {
		return fmt.Errorf("%w: SendRate must not be negative", ErrInvalidConfig)
	}
	if c.SendRate > 0 && c.SendBurst <= 0 {
		return fmt.Errorf("%w: SendBurst must be positive when SendRate is set", ErrInvalidConfig)
	}
	return nil
}

// ConfigFromUnified 从统一配置创建消息分发配置
func ConfigFromUnified(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	c.MaxMessageLength = cfg.Messaging.MaxMessageLength
	c.SendRate = cfg.Messaging.SendRate
	c.SendBurst = cfg.Messaging.SendBurst
	return c
}

// Option 配置选项函数
type Option func(*Config)

// WithConfig 整体替换配置
func WithConfig(cfg *Config) Option {
	return func(c *Config) {
		if cfg != nil {
			*c = *cfg
		}
	}
}

// WithMaxMessageLength 设置消息上限
func WithMaxMessageLength(n int) Option {
	return func(c *Config) {
		c.MaxMessageLength = n
	}
}

// WithSendRate 设置发送限速
func WithSendRate(perSecond float64, burst int) Option {
	return func(c *Config) {
		c.SendRate = perSecond
		c.SendBurst = burst
	}
}
