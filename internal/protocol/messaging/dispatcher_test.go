package messaging

import (
	"errors"
	"strings"
	"testing"

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

// ============================================================================
//                              测试辅助
// ============================================================================

// staticRouter 固定的会话路由
type staticRouter struct {
	publish   types.SessionRef
	subscribe types.SessionRef
}

func (r *staticRouter) ActiveSession() (types.SessionRef, types.Role, bool) {
	switch {
	case r.publish != "":
		return r.publish, types.RolePublisher, true
	case r.subscribe != "":
		return r.subscribe, types.RoleSubscriber, true
	default:
		return "", types.RoleUnknown, false
	}
}

type attachRef struct{ ref types.SessionRef }

func (a *attachRef) OnAttached(ref types.SessionRef) { a.ref = ref }
func (a *attachRef) OnAttachFailed(error)            {}

type startedRef struct{ ref types.SessionRef }

func (s *startedRef) OnStarted(ref types.SessionRef)                         { s.ref = ref }
func (s *startedRef) OnConfigFailed(error)                                   {}
func (s *startedRef) OnServiceDiscovered(types.PeerHandle, []byte, [][]byte) {}
func (s *startedRef) OnMessageReceived(types.PeerHandle, []byte)             {}
func (s *startedRef) OnMessageSendSucceeded(int)                             {}
func (s *startedRef) OnMessageSendFailed(int)                                {}
func (s *startedRef) OnSessionTerminated()                                   {}

var identity = types.ServiceIdentity{ServiceName: "svc"}

// openSessions 在 stub 上打开发布和订阅会话
func openSessions(t *testing.T, radio *stub.Radio) (pub, sub types.SessionRef) {
	t.Helper()
	a := &attachRef{}
	radio.Attach(a)
	p, s := &startedRef{}, &startedRef{}
	radio.Publish(a.ref, types.PublishConfig{Identity: identity}, p)
	radio.Subscribe(a.ref, types.SubscribeConfig{Identity: identity}, s)
	require.NotEmpty(t, p.ref)
	require.NotEmpty(t, s.ref)
	return p.ref, s.ref
}

type fixture struct {
	d        *Dispatcher
	radio    *stub.Radio
	router   *staticRouter
	registry *registry.Registry
	bus      *eventbus.Bus
}

func newFixture(t *testing.T, radioOpts []stub.Option, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		radio:    stub.New(radioOpts...),
		registry: registry.New(nil),
		bus:      eventbus.NewBus(),
	}
	pub, sub := openSessions(t, f.radio)
	f.router = &staticRouter{publish: pub, subscribe: sub}
	d, err := New(f.radio, f.router, f.registry, f.bus, nil, opts...)
	require.NoError(t, err)
	f.d = d
	return f
}

// ============================================================================
//                              单播
// ============================================================================

func TestSendTo_UsesPublishSessionFirst(t *testing.T) {
	f := newFixture(t, nil)
	f.registry.Upsert(1, types.RoleSubscriber)

	msg, err := f.d.SendTo(1, []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, 1, msg.MessageID)
	assert.Equal(t, types.PeerHandle(1), msg.Target)

	sent := f.radio.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, f.router.publish, sent[0].Session)

	f.router.publish = ""
	msg, err = f.d.SendTo(1, []byte("again"))
	require.NoError(t, err)
	assert.Equal(t, 2, msg.MessageID)
	assert.Equal(t, f.router.subscribe, f.radio.Sent()[1].Session)
}

// TestSendTo_UnknownPeer 未知对端不调用无线电
func TestSendTo_UnknownPeer(t *testing.T) {
	f := newFixture(t, nil)
	f.router.publish, f.router.subscribe = "", ""

	_, err := f.d.SendTo(99, []byte("x"))
	assert.ErrorIs(t, err, ErrUnknownPeer)
	assert.Zero(t, f.radio.Calls().Send)
}

func TestSendTo_NoActiveSession(t *testing.T) {
	f := newFixture(t, nil)
	f.registry.Upsert(1, types.RolePublisher)
	f.router.publish, f.router.subscribe = "", ""

	_, err := f.d.SendTo(1, []byte("x"))
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Zero(t, f.radio.Calls().Send)
}

func TestSendTo_RadioError(t *testing.T) {
	f := newFixture(t, nil)
	f.registry.Upsert(1, types.RolePublisher)
	boom := errors.New("queue full")
	f.radio.FailSendTo(1, boom)

	msg, err := f.d.SendTo(1, []byte("x"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, msg.MessageID)
}

// TestSendTo_MessageTooLong 长度上限：配置优先，其次无线电报告值，最后默认值
func TestSendTo_MessageTooLong(t *testing.T) {
	f := newFixture(t, []stub.Option{stub.WithMaxMessageLength(4)})
	f.registry.Upsert(1, types.RolePublisher)
	assert.Equal(t, 4, f.d.MaxMessageLength())

	_, err := f.d.SendTo(1, []byte("12345"))
	assert.ErrorIs(t, err, ErrMessageTooLong)
	assert.Zero(t, f.radio.Calls().Send)

	_, err = f.d.SendTo(1, []byte("1234"))
	assert.NoError(t, err)

	f2 := newFixture(t, nil)
	assert.Equal(t, config.DefaultMaxMessageLength, f2.d.MaxMessageLength())

	f3 := newFixture(t, []stub.Option{stub.WithMaxMessageLength(4)}, WithMaxMessageLength(10))
	assert.Equal(t, 10, f3.d.MaxMessageLength())
}

func TestSendTo_RateLimited(t *testing.T) {
	f := newFixture(t, nil, WithSendRate(0.001, 2))
	f.registry.Upsert(1, types.RolePublisher)

	_, err := f.d.SendTo(1, []byte("a"))
	require.NoError(t, err)
	_, err = f.d.SendTo(1, []byte("b"))
	require.NoError(t, err)
	_, err = f.d.SendTo(1, []byte("c"))
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 2, f.radio.Calls().Send)
}

func TestGreet_EmitsGreetingEvent(t *testing.T) {
	f := newFixture(t, nil)
	sub, err := f.bus.Subscribe(new(types.EvtMessageSent))
	require.NoError(t, err)
	defer sub.Close()
	f.registry.Upsert(3, types.RoleSubscriber)

	_, err = f.d.Greet(3, []byte(config.DefaultGreeting))
	require.NoError(t, err)

	evt := (<-sub.Out()).(types.EvtMessageSent)
	assert.True(t, evt.Greeting)
	assert.Equal(t, types.RolePublisher, evt.Via)
	assert.Equal(t, types.PeerHandle(3), evt.Message.Target)
}

// TestDispatcher_CloseStopsEvents 关闭后发送仍然成功，但不再发布事件
func TestDispatcher_CloseStopsEvents(t *testing.T) {
	f := newFixture(t, nil)
	sub, err := f.bus.Subscribe(new(types.EvtMessageSent))
	require.NoError(t, err)
	defer sub.Close()
	f.registry.Upsert(3, types.RoleSubscriber)

	f.d.Close()
	f.d.Close()

	_, err = f.d.SendTo(3, []byte("after close"))
	require.NoError(t, err)
	assert.Len(t, f.radio.Sent(), 1)

	select {
	case evt := <-sub.Out():
		t.Fatalf("unexpected event after close: %v", evt)
	default:
	}
}

// ============================================================================
//                              广播
// ============================================================================

// TestBroadcast_PartialFailure 单个失败不影响其余对端
func TestBroadcast_PartialFailure(t *testing.T) {
	f := newFixture(t, nil)
	const a, b, c types.PeerHandle = 1, 2, 3
	f.registry.Upsert(a, types.RoleSubscriber)
	f.registry.Upsert(b, types.RoleSubscriber)
	f.registry.Upsert(c, types.RolePublisher)
	f.radio.FailSendTo(b, errors.New("unreachable"))

	res, err := f.d.Broadcast([]byte("news"))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempted)
	assert.Equal(t, []types.PeerHandle{b}, res.FailedPeers())
	assert.Equal(t, 2, res.Succeeded())

	sent := f.radio.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, a, sent[0].Peer)
	assert.Equal(t, c, sent[1].Peer)
}

func TestBroadcast_Empty(t *testing.T) {
	f := newFixture(t, nil)
	res, err := f.d.Broadcast([]byte("x"))
	require.NoError(t, err)
	assert.Zero(t, res.Attempted)
	assert.Empty(t, res.Failures)
}

func TestBroadcast_NoActiveSession(t *testing.T) {
	f := newFixture(t, nil)
	f.registry.Upsert(1, types.RolePublisher)
	f.router.publish, f.router.subscribe = "", ""

	_, err := f.d.Broadcast([]byte("x"))
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Zero(t, f.radio.Calls().Send)
}

func TestBroadcast_TooLong(t *testing.T) {
	f := newFixture(t, nil)
	f.registry.Upsert(1, types.RolePublisher)

	_, err := f.d.Broadcast([]byte(strings.Repeat("x", config.DefaultMaxMessageLength+1)))
	assert.ErrorIs(t, err, ErrMessageTooLong)
	assert.Zero(t, f.radio.Calls().Send)
}

// ============================================================================
//                              配置与模块
// ============================================================================

func TestNew_Validation(t *testing.T) {
	reg := registry.New(nil)
	_, err := New(nil, &staticRouter{}, reg, nil, nil)
	assert.ErrorIs(t, err, ErrNilRadio)

	_, err = New(stub.New(), nil, reg, nil, nil)
	assert.Error(t, err)

	_, err = New(stub.New(), &staticRouter{}, reg, nil, nil, WithSendRate(5, 0))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigFromUnified(t *testing.T) {
	unified := config.NewConfig()
	unified.Messaging.MaxMessageLength = 255
	unified.Messaging.SendRate = 10

	cfg := ConfigFromUnified(unified)
	assert.Equal(t, 255, cfg.MaxMessageLength)
	assert.Equal(t, 10.0, cfg.SendRate)
	assert.Equal(t, 8, cfg.SendBurst)
}

func TestModule(t *testing.T) {
	var d *Dispatcher
	var g pkgif.Greeter
	app := fxtest.New(t,
		fx.Provide(
			func() pkgif.Radio { return stub.New() },
			func() pkgif.Router { return &staticRouter{} },
		),
		registry.Module(),
		Module(),
		fx.Populate(&d, &g),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, d)
	assert.NotNil(t, g)
}
