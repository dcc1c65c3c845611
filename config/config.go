// Package config 提供统一的配置管理
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义，
// 支持从 JSON 加载以及 NAN_ 前缀的环境变量覆盖。
//
//	cfg := config.NewConfig()
//	cfg.Service.Name = "chat"
//	cfg.Session.AutoSubscribe = true
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config 是 go-nan 的完整配置
//
//   - Service: 服务标识与服务特定信息（SSI）
//   - Session: 会话状态机行为
//   - Discovery: 发现协调（问候、设备索引）
//   - Messaging: 消息分发（长度预检、发送限速）
//   - DataPath: 数据路径（大数据直连链路）
//   - Log: 日志
type Config struct {
	Service   ServiceConfig   `json:"service"`
	Session   SessionConfig   `json:"session"`
	Discovery DiscoveryConfig `json:"discovery"`
	Messaging MessagingConfig `json:"messaging"`
	DataPath  DataPathConfig  `json:"data_path"`
	Log       LogConfig       `json:"log"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Service:   DefaultServiceConfig(),
		Session:   DefaultSessionConfig(),
		Discovery: DefaultDiscoveryConfig(),
		Messaging: DefaultMessagingConfig(),
		DataPath:  DefaultDataPathConfig(),
		Log:       DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if err := c.Service.Validate(); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := c.Discovery.Validate(); err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	if err := c.Messaging.Validate(); err != nil {
		return fmt.Errorf("messaging: %w", err)
	}
	if err := c.DataPath.Validate(); err != nil {
		return fmt.Errorf("data path: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// FromJSON 从 JSON 解析配置，未出现的字段保持默认值
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, err
	}
	return FromJSON(data)
}

// ToJSON 序列化为带缩进的 JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
