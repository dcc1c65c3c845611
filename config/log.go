package config

import (
	"fmt"
	"io"

	"github.com/dep2p/go-nan/pkg/lib/log"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level debug|info|warn|error
	Level string `json:"level,omitempty"`

	// Format text|json
	Format string `json:"format,omitempty"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "info", Format: "text"}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	switch c.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}
	switch c.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Level)
	}
	return nil
}

// Apply 按配置设置全局日志输出
func (c LogConfig) Apply(w io.Writer) error {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	if c.Format == "json" {
		log.SetJSONOutputWithLevel(w, level)
		return nil
	}
	log.SetOutputWithLevel(w, level)
	return nil
}
