package nan

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-nan/internal/core/eventbus"
	"github.com/dep2p/go-nan/internal/core/metrics"
	"github.com/dep2p/go-nan/internal/core/registry"
	"github.com/dep2p/go-nan/internal/core/session"
	"github.com/dep2p/go-nan/internal/discovery/coordinator"
	"github.com/dep2p/go-nan/internal/protocol/datapath"
	"github.com/dep2p/go-nan/internal/protocol/messaging"
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
	"github.com/dep2p/go-nan/pkg/lib/log"
)

var fxLogger = log.Logger("nan/fx")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. Core: EventBus → Metrics → Registry → Session
//  2. Protocol: Messaging（依赖 Session 提供的 Router）→ DataPath（经 Messaging 协商）
//  3. Discovery: Coordinator（依赖 Messaging 提供的 Greeter 和 DataPath 提供的协商器）
//
// Coordinator 通过 SetPeerObserver 挂到 Session 上，避免构造期循环依赖。
func buildFxApp(o *options, node *Node) (*fx.App, error) {
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if o.radio == nil {
		return nil, ErrNoRadio
	}

	radio := o.radio
	modules := []fx.Option{
		fx.Supply(o.config),
		fx.Provide(func() pkgif.Radio { return radio }),

		eventbus.Module(),
		metrics.Module(),
		registry.Module(),
		session.Module(),
		messaging.Module(),
		datapath.Module(),
		coordinator.Module(),

		fx.Invoke(wirePeerObserver),
	}

	if o.clock != nil {
		clk := o.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}

	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	modules = append(modules,
		fx.Populate(
			&node.bus,
			&node.metrics,
			&node.registry,
			&node.machine,
			&node.dispatcher,
			&node.dataPaths,
			&node.coordinator,
		),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	fxLogger.Debug("Fx 应用已构建")
	return app, nil
}

// wirePeerObserver 把发现协调器挂到会话事件循环上
func wirePeerObserver(m *session.Machine, o pkgif.PeerObserver) {
	m.SetPeerObserver(o)
}
