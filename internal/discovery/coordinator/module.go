package coordinator

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-nan/config"
	"github.com/dep2p/go-nan/internal/core/metrics"
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
)

// ============================================================================
//
//	Fx 参数和结果
//
// ============================================================================

// Params Coordinator 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Registry   pkgif.PeerRegistry
	Greeter    pkgif.Greeter            `optional:"true"`
	EventBus   pkgif.EventBus           `optional:"true"`
	Metrics    *metrics.Metrics         `optional:"true"`
	DataPath   pkgif.DataPathNegotiator `optional:"true"`
}

// Result Coordinator 导出结果
type Result struct {
	fx.Out

	Coordinator *Coordinator
	Observer    pkgif.PeerObserver
}

// NewFromParams 从 Fx 参数创建协调器
func NewFromParams(p Params) (Result, error) {
	var opts []Option
	if p.DataPath != nil {
		opts = append(opts, WithDataPath(p.DataPath))
	}
	c, err := New(ConfigFromUnified(p.UnifiedCfg), p.Registry, p.Greeter, p.EventBus, p.Metrics, opts...)
	if err != nil {
		return Result{}, err
	}
	return Result{Coordinator: c, Observer: c}, nil
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("discovery/coordinator",
		fx.Provide(NewFromParams),
		fx.Invoke(registerLifecycle),
	)
}

type lifecycleInput struct {
	fx.In

	LC          fx.Lifecycle
	Coordinator *Coordinator
}

// registerLifecycle 停止时注销事件发射器
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			input.Coordinator.Close()
			return nil
		},
	})
}
