package config

import (
	"os"
	"strconv"
)

// 环境变量（均使用 NAN_ 前缀）
const (
	EnvPrefix        = "NAN_"
	EnvServiceName   = "SERVICE_NAME"
	EnvServiceType   = "SERVICE_TYPE"
	EnvDeviceID      = "DEVICE_ID"
	EnvRoom          = "ROOM"
	EnvAutoPublish   = "AUTO_PUBLISH"
	EnvAutoSubscribe = "AUTO_SUBSCRIBE"
	EnvGreeting      = "GREETING"
	EnvLogLevel      = "LOG_LEVEL"
	EnvDataPathPass  = "DATA_PATH_PASSPHRASE"
)

// ApplyEnv 应用环境变量覆盖
//
// 优先级高于配置文件，低于命令行参数。无法解析的布尔值被忽略。
func ApplyEnv(c *Config) {
	applyEnv(c, os.Getenv)
}

func applyEnv(c *Config, getenv func(string) string) {
	if v := getenv(EnvPrefix + EnvServiceName); v != "" {
		c.Service.Name = v
	}
	if v := getenv(EnvPrefix + EnvServiceType); v != "" {
		c.Service.Type = v
	}
	if v := getenv(EnvPrefix + EnvDeviceID); v != "" {
		c.Service.DeviceID = v
	}
	if v := getenv(EnvPrefix + EnvRoom); v != "" {
		c.Service.Room = v
	}
	if v, err := strconv.ParseBool(getenv(EnvPrefix + EnvAutoPublish)); err == nil {
		c.Session.AutoPublish = v
	}
	if v, err := strconv.ParseBool(getenv(EnvPrefix + EnvAutoSubscribe)); err == nil {
		c.Session.AutoSubscribe = v
	}
	if v := getenv(EnvPrefix + EnvGreeting); v != "" {
		c.Discovery.Greeting = v
	}
	if v := getenv(EnvPrefix + EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvPrefix + EnvDataPathPass); v != "" {
		c.DataPath.Passphrase = v
	}
}
