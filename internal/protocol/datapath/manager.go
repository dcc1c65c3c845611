package datapath

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dep2p/go-nan/internal/core/eventbus"
	"github.com/dep2p/go-nan/internal/core/metrics"
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
	"github.com/dep2p/go-nan/pkg/lib/log"
	"github.com/dep2p/go-nan/pkg/types"
)

var logger = log.Logger("protocol/datapath")

// 确保实现了接口
var (
	_ pkgif.DataPathNegotiator = (*Manager)(nil)
	_ pkgif.DataPathHandler    = (*Manager)(nil)
)

// path 到某个对端的数据路径
type path struct {
	deviceID  string
	state     types.DataPathState
	initiator bool
}

// Manager 数据路径管理器
//
// 协商方法由会话事件循环调用，无线电回调可能来自任意 goroutine；
// 持有 mu 时不调用无线电。
type Manager struct {
	config  *Config
	radio   pkgif.DataPathRadio
	router  pkgif.Router
	sender  pkgif.Dispatcher
	pub     *eventbus.Publisher
	metrics *metrics.Metrics

	mu    sync.Mutex
	paths map[types.PeerHandle]*path
}

// New 创建数据路径管理器
//
// radio 未实现 interfaces.DataPathRadio 时管理器仍可创建，操作返回 ErrUnsupported。
// bus 和 m 可以为 nil。
func New(cfg *Config, radio pkgif.Radio, router pkgif.Router, sender pkgif.Dispatcher, bus pkgif.EventBus, m *metrics.Metrics) (*Manager, error) {
	if router == nil || sender == nil {
		return nil, fmt.Errorf("datapath: router and sender are required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.DeviceID == "" {
		cfg.DeviceID = uuid.NewString()
	}

	dp, _ := radio.(pkgif.DataPathRadio)
	return &Manager{
		config:  cfg,
		radio:   dp,
		router:  router,
		sender:  sender,
		pub:     eventbus.NewPublisher(bus),
		metrics: m,
		paths:   make(map[types.PeerHandle]*path),
	}, nil
}

// Supported 无线电是否支持数据路径
func (m *Manager) Supported() bool {
	return m.radio != nil
}

// ============================================================================
//                              协商
// ============================================================================

// Request 向对端发起数据路径请求
//
// 已有到该对端的数据路径时直接返回。链路在对端确认后打开。
func (m *Manager) Request(peer types.PeerHandle) error {
	if err := m.check(); err != nil {
		return err
	}

	m.mu.Lock()
	if _, ok := m.paths[peer]; ok {
		m.mu.Unlock()
		logger.Debug("数据路径已存在", "peer", peer)
		return nil
	}
	m.paths[peer] = &path{state: types.DataPathRequested, initiator: true}
	m.mu.Unlock()

	if _, err := m.sender.SendTo(peer, types.DataPathRequest(m.config.DeviceID)); err != nil {
		m.forget(peer)
		return fmt.Errorf("datapath: send request to %s: %w", peer, err)
	}
	m.metrics.ObserveDataPath("requested", 0)
	logger.Info("已发送数据路径请求", "peer", peer)
	return nil
}

// Accept 响应对端请求：回复确认并打开本端链路
func (m *Manager) Accept(peer types.PeerHandle, deviceID string) error {
	if err := m.check(); err != nil {
		return err
	}

	m.mu.Lock()
	if p, ok := m.paths[peer]; ok && p.state != types.DataPathRequested {
		m.mu.Unlock()
		return nil
	}
	m.paths[peer] = &path{deviceID: deviceID, state: types.DataPathOpening}
	m.mu.Unlock()

	if _, err := m.sender.SendTo(peer, []byte(types.DataPathAck)); err != nil {
		m.forget(peer)
		return fmt.Errorf("datapath: send ack to %s: %w", peer, err)
	}
	m.metrics.ObserveDataPath("accepted", 0)
	return m.open(peer)
}

// Acknowledged 对端确认了本端的请求，打开本端链路
func (m *Manager) Acknowledged(peer types.PeerHandle) error {
	if m.radio == nil {
		return ErrUnsupported
	}

	m.mu.Lock()
	p, ok := m.paths[peer]
	if !ok || !p.initiator || p.state != types.DataPathRequested {
		m.mu.Unlock()
		return fmt.Errorf("%w: unexpected ack from %s", ErrUnknownDataPath, peer)
	}
	p.state = types.DataPathOpening
	m.mu.Unlock()

	return m.open(peer)
}

// open 向无线电栈请求链路，状态已为 DataPathOpening
func (m *Manager) open(peer types.PeerHandle) error {
	ref, _, ok := m.router.ActiveSession()
	if !ok {
		m.forget(peer)
		return ErrNoActiveSession
	}
	if err := m.radio.RequestDataPath(ref, peer, m.config.Passphrase, m); err != nil {
		m.forget(peer)
		m.metrics.ObserveDataPath("failed", 0)
		return fmt.Errorf("datapath: request from radio: %w", err)
	}
	logger.Debug("已请求数据路径", "peer", peer, "session", ref)
	return nil
}

func (m *Manager) check() error {
	if m.radio == nil {
		return ErrUnsupported
	}
	if !m.config.Enable {
		return ErrDisabled
	}
	return nil
}

// ============================================================================
//                              传输
// ============================================================================

// SendLarge 通过可用的数据路径发送
func (m *Manager) SendLarge(peer types.PeerHandle, payload []byte) error {
	if m.radio == nil {
		return ErrUnsupported
	}
	if len(payload) > m.config.MaxPayload {
		return fmt.Errorf("%w: %d > %d bytes", ErrPayloadTooLarge, len(payload), m.config.MaxPayload)
	}

	m.mu.Lock()
	var state types.DataPathState
	p, ok := m.paths[peer]
	if ok {
		state = p.state
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDataPath, peer)
	}
	if state != types.DataPathAvailable {
		return fmt.Errorf("%w: %s is %s", ErrNotReady, peer, state)
	}

	if err := m.radio.SendData(peer, payload); err != nil {
		return fmt.Errorf("datapath: send to %s: %w", peer, err)
	}
	m.metrics.ObserveDataPath("sent", len(payload))
	return nil
}

// Close 关闭到对端的数据路径
func (m *Manager) Close(peer types.PeerHandle) error {
	if _, ok := m.forget(peer); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDataPath, peer)
	}
	m.closeRadio(peer)
	m.metrics.ObserveDataPath("closed", 0)
	m.pub.Publish(types.EvtDataPathClosed{Peer: peer})
	return nil
}

// ReleaseAll 关闭所有数据路径
func (m *Manager) ReleaseAll() {
	m.mu.Lock()
	peers := make([]types.PeerHandle, 0, len(m.paths))
	for peer := range m.paths {
		peers = append(peers, peer)
	}
	clear(m.paths)
	m.mu.Unlock()

	for _, peer := range peers {
		m.closeRadio(peer)
		m.metrics.ObserveDataPath("closed", 0)
		m.pub.Publish(types.EvtDataPathClosed{Peer: peer})
	}
	if len(peers) > 0 {
		logger.Info("已关闭所有数据路径", "count", len(peers))
	}
}

// List 返回按句柄排序的数据路径快照
func (m *Manager) List() []types.DataPathInfo {
	m.mu.Lock()
	out := make([]types.DataPathInfo, 0, len(m.paths))
	for peer, p := range m.paths {
		out = append(out, types.DataPathInfo{
			Peer:      peer,
			DeviceID:  p.deviceID,
			State:     p.state,
			Initiator: p.initiator,
		})
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Peer < out[j].Peer })
	return out
}

// Shutdown 注销事件发射器
func (m *Manager) Shutdown() {
	m.pub.Close()
}

func (m *Manager) closeRadio(peer types.PeerHandle) {
	if m.radio == nil {
		return
	}
	if err := m.radio.CloseDataPath(peer); err != nil {
		logger.Debug("关闭数据路径出错", "peer", peer, "error", err)
	}
}

func (m *Manager) forget(peer types.PeerHandle) (*path, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.paths[peer]
	delete(m.paths, peer)
	return p, ok
}

// ============================================================================
//                              interfaces.DataPathHandler
// ============================================================================

// OnDataPathAvailable 实现 interfaces.DataPathHandler
func (m *Manager) OnDataPathAvailable(peer types.PeerHandle) {
	m.mu.Lock()
	p, ok := m.paths[peer]
	if ok {
		p.state = types.DataPathAvailable
	}
	m.mu.Unlock()
	if !ok {
		logger.Debug("忽略已释放的数据路径", "peer", peer)
		return
	}

	logger.Info("数据路径可用", "peer", peer, "initiator", p.initiator)
	m.metrics.ObserveDataPath("available", 0)
	m.pub.Publish(types.EvtDataPathAvailable{Peer: peer, Initiator: p.initiator})
}

// OnDataPathUnavailable 实现 interfaces.DataPathHandler
func (m *Manager) OnDataPathUnavailable(peer types.PeerHandle, err error) {
	if _, ok := m.forget(peer); !ok {
		return
	}
	logger.Warn("数据路径不可用", "peer", peer, "error", err)
	m.metrics.ObserveDataPath("failed", 0)
	m.pub.Publish(types.EvtDataPathFailed{Peer: peer, Err: err})
}

// OnDataPathLost 实现 interfaces.DataPathHandler
func (m *Manager) OnDataPathLost(peer types.PeerHandle) {
	if _, ok := m.forget(peer); !ok {
		return
	}
	logger.Info("数据路径已断开", "peer", peer)
	m.metrics.ObserveDataPath("closed", 0)
	m.pub.Publish(types.EvtDataPathClosed{Peer: peer, Remote: true})
}

// OnDataReceived 实现 interfaces.DataPathHandler
func (m *Manager) OnDataReceived(peer types.PeerHandle, payload []byte) {
	m.metrics.ObserveDataPath("received", len(payload))
	logger.Debug("收到数据", "peer", peer, "bytes", len(payload))
	m.pub.Publish(types.EvtDataReceived{Peer: peer, Payload: payload})
}
