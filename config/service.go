package config

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-nan/pkg/types"
)

const (
	// DefaultServiceName 默认服务名
	DefaultServiceName = "my_nan_service"

	// DefaultServiceType 默认服务类型
	DefaultServiceType = "_nan_service._udp"
)

// 发布方式
const (
	PublishTypeUnsolicited = "unsolicited"
	PublishTypeSolicited   = "solicited"
)

// ServiceConfig 服务配置
type ServiceConfig struct {
	// Name 服务名
	Name string `json:"name"`

	// Type 服务类型
	Type string `json:"type,omitempty"`

	// PublishType 发布方式：unsolicited（主动广播）或 solicited
	PublishType string `json:"publish_type,omitempty"`

	// DeviceID 写入 SSI 的 dev 键，为空时由节点生成
	DeviceID string `json:"device_id,omitempty"`

	// Room 写入 SSI 的 room 键，同时作为匹配过滤器
	Room string `json:"room,omitempty"`

	// Extra 额外的 SSI 键值
	Extra map[string]string `json:"extra,omitempty"`
}

// DefaultServiceConfig 返回默认服务配置
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:        DefaultServiceName,
		Type:        DefaultServiceType,
		PublishType: PublishTypeUnsolicited,
	}
}

// Validate 验证服务配置
func (c ServiceConfig) Validate() error {
	if err := c.Identity().Validate(); err != nil {
		return err
	}
	switch c.PublishType {
	case "", PublishTypeUnsolicited, PublishTypeSolicited:
	default:
		return fmt.Errorf("unknown publish type %q", c.PublishType)
	}
	for k := range c.Extra {
		if k == types.ServiceInfoDeviceKey || k == types.ServiceInfoRoomKey {
			return errors.New("extra must not override dev or room")
		}
	}
	return nil
}

// Identity 返回服务标识
func (c ServiceConfig) Identity() types.ServiceIdentity {
	return types.ServiceIdentity{ServiceName: c.Name, ServiceType: c.Type}
}

// PublishMode 返回发布方式
func (c ServiceConfig) PublishMode() types.PublishType {
	if c.PublishType == PublishTypeSolicited {
		return types.PublishSolicited
	}
	return types.PublishUnsolicited
}

// ServiceInfo 组装 SSI
func (c ServiceConfig) ServiceInfo() types.ServiceInfo {
	info := make(types.ServiceInfo, len(c.Extra)+2)
	for k, v := range c.Extra {
		info[k] = v
	}
	if c.DeviceID != "" {
		info[types.ServiceInfoDeviceKey] = c.DeviceID
	}
	if c.Room != "" {
		info[types.ServiceInfoRoomKey] = c.Room
	}
	return info
}
