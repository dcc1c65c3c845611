package datapath

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-nan/config"
	"github.com/dep2p/go-nan/internal/core/eventbus"
	"github.com/dep2p/go-nan/internal/radio/stub"
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
	"github.com/dep2p/go-nan/pkg/types"
)

// ============================================================================
//                              测试辅助
// ============================================================================

type staticRouter struct{ ref types.SessionRef }

func (r *staticRouter) ActiveSession() (types.SessionRef, types.Role, bool) {
	return r.ref, types.RolePublisher, r.ref != ""
}

// fakeSender 记录经发现消息发出的协商消息
type fakeSender struct {
	sent []types.OutboundMessage
	err  error
}

func (s *fakeSender) SendTo(peer types.PeerHandle, payload []byte) (types.OutboundMessage, error) {
	if s.err != nil {
		return types.OutboundMessage{}, s.err
	}
	msg := types.OutboundMessage{Target: peer, Payload: payload, MessageID: len(s.sent) + 1}
	s.sent = append(s.sent, msg)
	return msg, nil
}

func (s *fakeSender) Broadcast([]byte) (types.BroadcastResult, error) {
	return types.BroadcastResult{}, nil
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

type fixture struct {
	m      *Manager
	radio  *stub.Radio
	router *staticRouter
	sender *fakeSender
	bus    *eventbus.Bus
}

func newFixture(t *testing.T, cfg *Config) *fixture {
	t.Helper()
	f := &fixture{
		radio:  stub.New(),
		sender: &fakeSender{},
		bus:    eventbus.NewBus(),
	}
	a := &attachRef{}
	f.radio.Attach(a)
	s := &startedRef{}
	f.radio.Publish(a.ref, types.PublishConfig{Identity: types.ServiceIdentity{ServiceName: "svc"}}, s)
	require.NotEmpty(t, s.ref)
	f.router = &staticRouter{ref: s.ref}

	if cfg == nil {
		cfg = DefaultConfig()
		cfg.DeviceID = "local"
	}
	m, err := New(cfg, f.radio, f.router, f.sender, f.bus, nil)
	require.NoError(t, err)
	f.m = m
	return f
}

func (f *fixture) subscribe(t *testing.T, evt interface{}) pkgif.Subscription {
	t.Helper()
	sub, err := f.bus.Subscribe(evt)
	require.NoError(t, err)
	t.Cleanup(func() { sub.Close() })
	return sub
}

// ============================================================================
//                              发起方
// ============================================================================

// TestManager_InitiatorFlow 请求、确认、可用、发送、关闭
func TestManager_InitiatorFlow(t *testing.T) {
	f := newFixture(t, nil)
	available := f.subscribe(t, new(types.EvtDataPathAvailable))
	closed := f.subscribe(t, new(types.EvtDataPathClosed))

	require.NoError(t, f.m.Request(3))
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, types.DataPathRequest("local"), f.sender.sent[0].Payload)
	assert.Equal(t, []types.DataPathInfo{{Peer: 3, State: types.DataPathRequested, Initiator: true}}, f.m.List())
	assert.Zero(t, f.radio.Calls().RequestDataPath)

	// 重复请求不再发送
	require.NoError(t, f.m.Request(3))
	assert.Len(t, f.sender.sent, 1)

	require.NoError(t, f.m.Acknowledged(3))
	assert.Equal(t, 1, f.radio.Calls().RequestDataPath)
	assert.Equal(t, types.DataPathOpening, f.m.List()[0].State)
	assert.ErrorIs(t, f.m.SendLarge(3, []byte("x")), ErrNotReady)

	require.True(t, f.radio.CompleteDataPath(3))
	evt := (<-available.Out()).(types.EvtDataPathAvailable)
	assert.Equal(t, types.PeerHandle(3), evt.Peer)
	assert.True(t, evt.Initiator)

	big := make([]byte, 1<<20)
	require.NoError(t, f.m.SendLarge(3, big))
	sent := f.radio.DataSent()
	require.Len(t, sent, 1)
	assert.Len(t, sent[0].Payload, len(big))

	require.NoError(t, f.m.Close(3))
	assert.False(t, (<-closed.Out()).(types.EvtDataPathClosed).Remote)
	assert.Equal(t, 1, f.radio.Calls().CloseDataPath)
	assert.Empty(t, f.m.List())
	assert.ErrorIs(t, f.m.Close(3), ErrUnknownDataPath)
}

func TestManager_UnexpectedAck(t *testing.T) {
	f := newFixture(t, nil)
	assert.ErrorIs(t, f.m.Acknowledged(1), ErrUnknownDataPath)

	require.NoError(t, f.m.Accept(2, "remote"))
	assert.ErrorIs(t, f.m.Acknowledged(2), ErrUnknownDataPath)
}

func TestManager_RequestSendFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.sender.err = errors.New("unknown peer")

	assert.Error(t, f.m.Request(1))
	assert.Empty(t, f.m.List())
}

// ============================================================================
//                              响应方
// ============================================================================

// TestManager_AcceptSendsAckAndOpens 响应方先确认再打开本端链路
func TestManager_AcceptSendsAckAndOpens(t *testing.T) {
	f := newFixture(t, nil)
	failed := f.subscribe(t, new(types.EvtDataPathFailed))

	require.NoError(t, f.m.Accept(5, "remote"))
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, []byte(types.DataPathAck), f.sender.sent[0].Payload)
	assert.Equal(t, 1, f.radio.Calls().RequestDataPath)
	assert.Equal(t, []types.DataPathInfo{{Peer: 5, DeviceID: "remote", State: types.DataPathOpening}}, f.m.List())

	// 已在打开中的链路不重复响应
	require.NoError(t, f.m.Accept(5, "remote"))
	assert.Len(t, f.sender.sent, 1)

	boom := errors.New("network unavailable")
	require.True(t, f.radio.FailDataPath(5, boom))
	evt := (<-failed.Out()).(types.EvtDataPathFailed)
	assert.ErrorIs(t, evt.Err, boom)
	assert.Empty(t, f.m.List())
}

func TestManager_AcceptNoActiveSession(t *testing.T) {
	f := newFixture(t, nil)
	f.router.ref = ""

	assert.ErrorIs(t, f.m.Accept(1, "remote"), ErrNoActiveSession)
	assert.Empty(t, f.m.List())
}

// ============================================================================
//                              传输与释放
// ============================================================================

func TestManager_ReceiveAndLose(t *testing.T) {
	f := newFixture(t, nil)
	data := f.subscribe(t, new(types.EvtDataReceived))
	closed := f.subscribe(t, new(types.EvtDataPathClosed))

	require.NoError(t, f.m.Accept(1, "remote"))
	require.True(t, f.radio.CompleteDataPath(1))
	require.True(t, f.radio.ReceiveData(1, []byte("chunk")))

	evt := (<-data.Out()).(types.EvtDataReceived)
	assert.Equal(t, []byte("chunk"), evt.Payload)

	require.True(t, f.radio.LoseDataPath(1))
	assert.True(t, (<-closed.Out()).(types.EvtDataPathClosed).Remote)
	assert.Empty(t, f.m.List())
}

func TestManager_PayloadLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPayload = 16
	f := newFixture(t, cfg)

	assert.ErrorIs(t, f.m.SendLarge(1, make([]byte, 17)), ErrPayloadTooLarge)
	assert.ErrorIs(t, f.m.SendLarge(1, make([]byte, 16)), ErrUnknownDataPath)
}

// TestManager_ReleaseAll 释放时关闭所有链路
func TestManager_ReleaseAll(t *testing.T) {
	f := newFixture(t, nil)
	closed := f.subscribe(t, new(types.EvtDataPathClosed))

	require.NoError(t, f.m.Accept(1, "a"))
	require.NoError(t, f.m.Accept(2, "b"))
	require.True(t, f.radio.CompleteDataPath(1))

	f.m.ReleaseAll()
	assert.Empty(t, f.m.List())
	assert.Equal(t, 2, f.radio.Calls().CloseDataPath)
	assert.False(t, f.radio.DataPathOpen(1))
	<-closed.Out()
	<-closed.Out()

	// 已释放链路的迟到回调被忽略
	f.m.OnDataPathAvailable(2)
	assert.Empty(t, f.m.List())
}

// ============================================================================
//                              配置
// ============================================================================

func TestManager_UnsupportedRadio(t *testing.T) {
	radio := struct{ pkgif.Radio }{stub.New()}
	m, err := New(nil, radio, &staticRouter{ref: "pub-1"}, &fakeSender{}, nil, nil)
	require.NoError(t, err)

	assert.False(t, m.Supported())
	assert.ErrorIs(t, m.Request(1), ErrUnsupported)
	assert.ErrorIs(t, m.Accept(1, "a"), ErrUnsupported)
	assert.ErrorIs(t, m.Acknowledged(1), ErrUnsupported)
	assert.ErrorIs(t, m.SendLarge(1, nil), ErrUnsupported)
	m.ReleaseAll()
}

func TestManager_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enable = false
	f := newFixture(t, cfg)

	assert.ErrorIs(t, f.m.Request(1), ErrDisabled)
	assert.ErrorIs(t, f.m.Accept(1, "a"), ErrDisabled)
	assert.Empty(t, f.sender.sent)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Passphrase = "short"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.MaxPayload = types.MaxDataPathPayload + 1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	_, err := New(nil, stub.New(), nil, nil, nil, nil)
	assert.Error(t, err)

	m, err := New(nil, stub.New(), &staticRouter{}, &fakeSender{}, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, m.config.DeviceID)
}

func TestConfigFromUnified(t *testing.T) {
	unified := config.NewConfig()
	unified.DataPath.Passphrase = "open-sesame"
	unified.Service.DeviceID = "dev-9"

	cfg := ConfigFromUnified(unified)
	assert.True(t, cfg.Enable)
	assert.Equal(t, "open-sesame", cfg.Passphrase)
	assert.Equal(t, "dev-9", cfg.DeviceID)
	assert.Equal(t, types.MaxDataPathPayload, cfg.MaxPayload)
}

func TestModule(t *testing.T) {
	var m *Manager
	var n pkgif.DataPathNegotiator
	app := fxtest.New(t,
		fx.Provide(
			func() pkgif.Radio { return stub.New() },
			func() pkgif.Router { return &staticRouter{} },
			func() pkgif.Dispatcher { return &fakeSender{} },
		),
		Module(),
		fx.Populate(&m, &n),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, m)
	assert.Same(t, m, n)
	assert.True(t, m.Supported())
}
