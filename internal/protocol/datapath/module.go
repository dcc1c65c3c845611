package datapath

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-nan/config"
	"github.com/dep2p/go-nan/internal/core/metrics"
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
)

// Params Manager 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Radio      pkgif.Radio
	Router     pkgif.Router
	Messaging  pkgif.Dispatcher
	EventBus   pkgif.EventBus   `optional:"true"`
	Metrics    *metrics.Metrics `optional:"true"`
}

// Result Manager 导出结果
type Result struct {
	fx.Out

	Manager    *Manager
	Negotiator pkgif.DataPathNegotiator
}

// ProvideManager 提供数据路径管理器
func ProvideManager(p Params) (Result, error) {
	m, err := New(ConfigFromUnified(p.UnifiedCfg), p.Radio, p.Router, p.Messaging, p.EventBus, p.Metrics)
	if err != nil {
		return Result{}, err
	}
	return Result{Manager: m, Negotiator: m}, nil
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("protocol/datapath",
		fx.Provide(ProvideManager),
		fx.Invoke(registerLifecycle),
	)
}

type lifecycleInput struct {
	fx.In

	LC      fx.Lifecycle
	Manager *Manager
}

// registerLifecycle 停止时注销事件发射器
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			input.Manager.Shutdown()
			return nil
		},
	})
}
