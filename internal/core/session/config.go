package session

import (
	"github.com/dep2p/go-nan/config"
	"github.com/dep2p/go-nan/pkg/types"
)

// Config 会话状态机配置
type Config struct {
	// Identity 服务标识，发布和订阅共用
	Identity types.ServiceIdentity

	// PublishType 发布方式
	PublishType types.PublishType

	// ServiceInfo 发布/订阅时携带的 SSI，room 键同时作为匹配过滤器
	ServiceInfo types.ServiceInfo

	// AutoPublish attach 成功后自动发布
	AutoPublish bool

	// AutoSubscribe attach 成功后自动订阅
	AutoSubscribe bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}

// ConfigFromUnified 从统一配置创建会话配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return Config{
		Identity:      cfg.Service.Identity(),
		PublishType:   cfg.Service.PublishMode(),
		ServiceInfo:   cfg.Service.ServiceInfo(),
		AutoPublish:   cfg.Session.AutoPublish,
		AutoSubscribe: cfg.Session.AutoSubscribe,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	return c.Identity.Validate()
}

func (c Config) publishConfig() types.PublishConfig {
	return types.PublishConfig{
		Identity:    c.Identity,
		Type:        c.PublishType,
		ServiceInfo: c.ServiceInfo.Encode(),
		MatchFilter: c.ServiceInfo.MatchFilter(),
	}
}

func (c Config) subscribeConfig() types.SubscribeConfig {
	return types.SubscribeConfig{
		Identity:    c.Identity,
		ServiceInfo: c.ServiceInfo.Encode(),
		MatchFilter: c.ServiceInfo.MatchFilter(),
	}
}
