package registry

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
)

// ModuleInput Fx 输入参数
type ModuleInput struct {
	fx.In
	Clock clock.Clock `optional:"true"`
}

// ModuleOutput Fx 输出参数
type ModuleOutput struct {
	fx.Out
	Registry     *Registry
	PeerRegistry pkgif.PeerRegistry
}

// ProvideRegistry 提供注册表
func ProvideRegistry(input ModuleInput) ModuleOutput {
	r := New(input.Clock)
	return ModuleOutput{Registry: r, PeerRegistry: r}
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("core/registry",
		fx.Provide(ProvideRegistry),
	)
}
