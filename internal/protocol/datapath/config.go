package datapath

import (
	"fmt"

	"github.com/dep2p/go-nan/config"
	"github.com/dep2p/go-nan/pkg/types"
)

// Config 数据路径配置
type Config struct {
	// Enable 是否允许请求和响应数据路径
	Enable bool

	// Passphrase 链路口令，为空表示开放模式
	Passphrase string

	// MaxPayload 单次传输上限
	MaxPayload int

	// DeviceID 本端设备 ID，写入请求消息
	DeviceID string
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Enable:     true,
		MaxPayload: types.MaxDataPathPayload,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if n := len(c.Passphrase); n != 0 && (n < 8 || n > 63) {
		return fmt.Errorf("%w: Passphrase must be 8-63 bytes", ErrInvalidConfig)
	}
	if c.MaxPayload <= 0 || c.MaxPayload > types.MaxDataPathPayload {
		return fmt.Errorf("%w: MaxPayload out of range", ErrInvalidConfig)
	}
	return nil
}

// ConfigFromUnified 从统一配置创建数据路径配置
func ConfigFromUnified(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	c.Enable = cfg.DataPath.Enable
	c.Passphrase = cfg.DataPath.Passphrase
	c.MaxPayload = cfg.DataPath.MaxPayload
	c.DeviceID = cfg.Service.DeviceID
	return c
}
