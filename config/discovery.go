package config

import "errors"

// DefaultGreeting 发现新对端后发送的问候
const DefaultGreeting = "Hello from client!"

// DiscoveryConfig 发现协调配置
type DiscoveryConfig struct {
	// EnableGreeting 发现新对端后是否发送问候
	EnableGreeting bool `json:"enable_greeting"`

	// Greeting 问候内容
	Greeting string `json:"greeting,omitempty"`

	// DeviceIndexSize 设备 ID 到句柄索引的容量
	DeviceIndexSize int `json:"device_index_size,omitempty"`
}

// DefaultDiscoveryConfig 返回默认发现配置
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		EnableGreeting:  true,
		Greeting:        DefaultGreeting,
		DeviceIndexSize: 256,
	}
}

// Validate 验证发现配置
func (c DiscoveryConfig) Validate() error {
	if c.EnableGreeting && c.Greeting == "" {
		return errors.New("greeting is empty")
	}
	if c.DeviceIndexSize <= 0 {
		return errors.New("device index size must be positive")
	}
	return nil
}
