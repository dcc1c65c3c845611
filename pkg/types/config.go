package types

// PublishType 发布方式
type PublishType int

const (
	// PublishUnsolicited 主动广播，订阅者无需请求即可发现
	PublishUnsolicited PublishType = iota
	// PublishSolicited 仅响应订阅者的主动查询
	PublishSolicited
)

// String 返回发布方式名称
func (t PublishType) String() string {
	if t == PublishSolicited {
		return "solicited"
	}
	return "unsolicited"
}

// PublishConfig 发布请求参数
type PublishConfig struct {
	Identity    ServiceIdentity
	Type        PublishType
	ServiceInfo []byte
	MatchFilter [][]byte
}

// SubscribeConfig 订阅请求参数
type SubscribeConfig struct {
	Identity    ServiceIdentity
	ServiceInfo []byte
	MatchFilter [][]byte
}

// Characteristics 无线电栈能力
type Characteristics struct {
	// MaxMessageLength 单条消息最大字节数，<= 0 表示未知
	MaxMessageLength int
}
