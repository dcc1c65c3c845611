package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-nan/config"
	"github.com/dep2p/go-nan/internal/core/eventbus"
	"github.com/dep2p/go-nan/internal/core/registry"
	"github.com/dep2p/go-nan/internal/radio/stub"
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
	"github.com/dep2p/go-nan/pkg/types"
)

// TestModule 停止应用时释放会话
func TestModule(t *testing.T) {
	radio := stub.New()
	cfg := config.NewConfig()
	cfg.Service.Room = "lobby"

	var m *Machine
	var router pkgif.Router
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Provide(func() pkgif.Radio { return radio }),
		registry.Module(),
		eventbus.Module(),
		Module(),
		fx.Populate(&m, &router),
	)
	app.RequireStart()

	require.NoError(t, m.Initialize(ctx))
	require.Eventually(t, func() bool { return m.State().Publishing() }, time.Second, 5*time.Millisecond)
	_, role, ok := router.ActiveSession()
	require.True(t, ok)
	assert.Equal(t, types.RolePublisher, role)

	app.RequireStop()
	assert.Equal(t, types.PhaseTerminated, m.State().Phase)
	assert.Zero(t, radio.OpenSessions())
}
