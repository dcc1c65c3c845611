package eventbus

import (
	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
)

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Bus      *Bus
	EventBus pkgif.EventBus
}

// ProvideEventBus 提供 EventBus 实例
func ProvideEventBus() Result {
	b := NewBus()
	return Result{Bus: b, EventBus: b}
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("core/eventbus",
		fx.Provide(ProvideEventBus),
	)
}
