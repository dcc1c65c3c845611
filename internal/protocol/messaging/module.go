package messaging

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-nan/config"
	"github.com/dep2p/go-nan/internal/core/metrics"
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
)

// Params Dispatcher 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Radio      pkgif.Radio
	Router     pkgif.Router
	Registry   pkgif.PeerRegistry
	EventBus   pkgif.EventBus   `optional:"true"`
	Metrics    *metrics.Metrics `optional:"true"`
}

// Result Dispatcher 导出结果
type Result struct {
	fx.Out

	Dispatcher *Dispatcher
	Messaging  pkgif.Dispatcher
	Greeter    pkgif.Greeter
}

// ProvideDispatcher 提供消息分发器
func ProvideDispatcher(p Params) (Result, error) {
	d, err := New(p.Radio, p.Router, p.Registry, p.EventBus, p.Metrics,
		WithConfig(ConfigFromUnified(p.UnifiedCfg)))
	if err != nil {
		return Result{}, err
	}
	return Result{Dispatcher: d, Messaging: d, Greeter: d}, nil
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("protocol/messaging",
		fx.Provide(ProvideDispatcher),
		fx.Invoke(registerLifecycle),
	)
}

type lifecycleInput struct {
	fx.In

	LC         fx.Lifecycle
	Dispatcher *Dispatcher
}

// registerLifecycle 停止时注销事件发射器
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			input.Dispatcher.Close()
			return nil
		},
	})
}
