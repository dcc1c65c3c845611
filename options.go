package nan

import (
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-nan/config"
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config *config.Config
	radio  pkgif.Radio
	clock  clock.Clock

	// 用户自定义 Fx 选项
	userFxOptions []fx.Option
}

func newOptions() *options {
	return &options{config: config.NewConfig()}
}

func (o *options) apply(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              基础选项
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用完整配置（后续选项在其基础上修改）
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		c := *cfg
		if cfg.Service.Extra != nil {
			c.Service.Extra = make(map[string]string, len(cfg.Service.Extra))
			for k, v := range cfg.Service.Extra {
				c.Service.Extra[k] = v
			}
		}
		o.config = &c
		return nil
	}
}

// WithRadio 设置无线电适配器（必需）
func WithRadio(r pkgif.Radio) Option {
	return func(o *options) error {
		if r == nil {
			return ErrNoRadio
		}
		o.radio = r
		return nil
	}
}

// WithClock 设置注册表时钟（测试用）
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// WithFxOption 追加 Fx 选项
func WithFxOption(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              服务选项
// ════════════════════════════════════════════════════════════════════════════

// WithServiceName 设置服务名
func WithServiceName(name string) Option {
	return func(o *options) error {
		if name == "" {
			return errors.New("service name is empty")
		}
		o.config.Service.Name = name
		return nil
	}
}

// WithServiceType 设置服务类型
func WithServiceType(typ string) Option {
	return func(o *options) error {
		o.config.Service.Type = typ
		return nil
	}
}

// WithSolicitedPublish 仅响应订阅者查询，不主动广播
func WithSolicitedPublish() Option {
	return func(o *options) error {
		o.config.Service.PublishType = config.PublishTypeSolicited
		return nil
	}
}

// WithDeviceID 设置写入 SSI 的设备 ID，未设置时自动生成
func WithDeviceID(id string) Option {
	return func(o *options) error {
		o.config.Service.DeviceID = id
		return nil
	}
}

// WithRoom 设置房间名，同时作为匹配过滤器
func WithRoom(room string) Option {
	return func(o *options) error {
		o.config.Service.Room = room
		return nil
	}
}

// WithServiceInfo 追加 SSI 键值
func WithServiceInfo(key, value string) Option {
	return func(o *options) error {
		if o.config.Service.Extra == nil {
			o.config.Service.Extra = make(map[string]string)
		}
		o.config.Service.Extra[key] = value
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              会话与消息选项
// ════════════════════════════════════════════════════════════════════════════

// WithAutoPublish attach 成功后是否自动发布（默认开启）
func WithAutoPublish(enable bool) Option {
	return func(o *options) error {
		o.config.Session.AutoPublish = enable
		return nil
	}
}

// WithAutoSubscribe attach 成功后是否自动订阅（默认关闭）
func WithAutoSubscribe(enable bool) Option {
	return func(o *options) error {
		o.config.Session.AutoSubscribe = enable
		return nil
	}
}

// WithGreeting 设置首次发现对端时发送的问候
func WithGreeting(text string) Option {
	return func(o *options) error {
		if text == "" {
			return errors.New("greeting is empty")
		}
		o.config.Discovery.EnableGreeting = true
		o.config.Discovery.Greeting = text
		return nil
	}
}

// WithoutGreeting 关闭问候
func WithoutGreeting() Option {
	return func(o *options) error {
		o.config.Discovery.EnableGreeting = false
		return nil
	}
}

// WithMaxMessageLength 覆盖无线电报告的单条消息上限
func WithMaxMessageLength(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("invalid max message length %d", n)
		}
		o.config.Messaging.MaxMessageLength = n
		return nil
	}
}

// WithSendRate 设置发送限速
func WithSendRate(perSecond float64, burst int) Option {
	return func(o *options) error {
		o.config.Messaging.SendRate = perSecond
		o.config.Messaging.SendBurst = burst
		return nil
	}
}

// WithDataPathPassphrase 设置数据路径口令，为空表示开放模式
func WithDataPathPassphrase(passphrase string) Option {
	return func(o *options) error {
		o.config.DataPath.Passphrase = passphrase
		return nil
	}
}

// WithoutDataPath 不请求也不响应数据路径
func WithoutDataPath() Option {
	return func(o *options) error {
		o.config.DataPath.Enable = false
		return nil
	}
}
