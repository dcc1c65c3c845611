package config

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-nan/pkg/types"
)

// DataPathConfig 数据路径配置
type DataPathConfig struct {
	// Enable 是否响应对端的数据路径请求
	Enable bool `json:"enable"`

	// Passphrase 链路口令，为空时使用开放模式
	Passphrase string `json:"passphrase,omitempty"`

	// MaxPayload 单次传输上限（字节）
	MaxPayload int `json:"max_payload,omitempty"`
}

// DefaultDataPathConfig 返回默认数据路径配置
func DefaultDataPathConfig() DataPathConfig {
	return DataPathConfig{
		Enable:     true,
		MaxPayload: types.MaxDataPathPayload,
	}
}

// Validate 验证数据路径配置
//
// 口令长度限制与 Wi-Fi Aware 一致：8 到 63 字节。
func (c DataPathConfig) Validate() error {
	if n := len(c.Passphrase); n != 0 && (n < 8 || n > 63) {
		return fmt.Errorf("passphrase must be 8-63 bytes, got %d", n)
	}
	if c.MaxPayload <= 0 || c.MaxPayload > types.MaxDataPathPayload {
		return errors.New("max payload must be in (0, 10MiB]")
	}
	return nil
}
