package coordinator

import (
	"fmt"

	"github.com/dep2p/go-nan/config"
)

// Config 协调器配置
type Config struct {
	// EnableGreeting 首次发现对端时是否发送问候
	EnableGreeting bool

	// Greeting 问候内容
	Greeting string

	// DeviceIndexSize 设备索引容量
	DeviceIndexSize int

	// AcceptDataPath 是否响应对端的数据路径请求
	AcceptDataPath bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		EnableGreeting:  true,
		Greeting:        config.DefaultGreeting,
		DeviceIndexSize: 256,
		AcceptDataPath:  true,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.EnableGreeting && c.Greeting == "" {
		return fmt.Errorf("%w: Greeting must not be empty when greeting is enabled", ErrInvalidConfig)
	}
	if c.DeviceIndexSize <= 0 {
		return fmt.Errorf("%w: DeviceIndexSize must be positive", ErrInvalidConfig)
	}
	return nil
}

// ConfigFromUnified 从统一配置创建协调器配置
func ConfigFromUnified(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	c.EnableGreeting = cfg.Discovery.EnableGreeting
	c.Greeting = cfg.Discovery.Greeting
	c.DeviceIndexSize = cfg.Discovery.DeviceIndexSize
	c.AcceptDataPath = cfg.DataPath.Enable
	return c
}
