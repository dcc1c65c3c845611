package session

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-nan/config"
	"github.com/dep2p/go-nan/internal/core/metrics"
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
)

// Params 会话模块依赖
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Radio      pkgif.Radio
	Registry   pkgif.PeerRegistry
	EventBus   pkgif.EventBus   `optional:"true"`
	Metrics    *metrics.Metrics `optional:"true"`
}

// Output 会话模块输出
type Output struct {
	fx.Out

	Machine *Machine
	Router  pkgif.Router
}

// ProvideMachine 提供会话状态机
func ProvideMachine(p Params) (Output, error) {
	m, err := New(ConfigFromUnified(p.UnifiedCfg), p.Radio, p.Registry, p.EventBus, p.Metrics)
	if err != nil {
		return Output{}, err
	}
	return Output{Machine: m, Router: m}, nil
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("core/session",
		fx.Provide(ProvideMachine),
		fx.Invoke(registerLifecycle),
	)
}

type lifecycleInput struct {
	fx.In

	LC      fx.Lifecycle
	Machine *Machine
}

// registerLifecycle 启动事件循环；停止时先释放会话再停止事件循环
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			input.Machine.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := input.Machine.Release(ctx); err != nil {
				logger.Warn("停止时释放会话出错", "error", err)
			}
			input.Machine.Stop()
			return nil
		},
	})
}
