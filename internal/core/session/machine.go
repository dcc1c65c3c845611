package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"

	"github.com/dep2p/go-nan/internal/core/eventbus"
	"github.com/dep2p/go-nan/internal/core/metrics"
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
	"github.com/dep2p/go-nan/pkg/lib/log"
	"github.com/dep2p/go-nan/pkg/types"
)

var logger = log.Logger("core/session")

// roleSlot 某一角色当前的子会话请求
type roleSlot struct {
	handler *discoveryHandler
	pending bool
}

func (s *roleSlot) reset() {
	s.handler = nil
	s.pending = false
}

// Machine 会话状态机
//
// 标注为事件循环私有的字段只在事件循环上访问；state 由 mu 保护，
// 供其他 goroutine 读取。
type Machine struct {
	cfg      Config
	radio    pkgif.Radio
	registry pkgif.PeerRegistry
	pub      *eventbus.Publisher
	metrics  *metrics.Metrics
	observer pkgif.PeerObserver

	q       *queue
	stop    chan struct{}
	done    chan struct{}
	started atomic.Bool
	stopped sync.Once

	mu    sync.RWMutex
	state types.SessionState

	// 事件循环私有
	gen       uint64
	attachRef types.SessionRef
	pubSlot   roleSlot
	subSlot   roleSlot
}

var _ pkgif.Router = (*Machine)(nil)

// New 创建会话状态机
//
// bus 和 m 可以为 nil。事件循环需要调用 Start 启动。
func New(cfg Config, radio pkgif.Radio, registry pkgif.PeerRegistry, bus pkgif.EventBus, m *metrics.Metrics) (*Machine, error) {
	if radio == nil {
		return nil, fmt.Errorf("session: radio is nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("session: registry is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return &Machine{
		cfg:      cfg,
		radio:    radio,
		registry: registry,
		pub:      eventbus.NewPublisher(bus, new(types.EvtStateChanged)),
		metrics:  m,
		observer: noopObserver{},
		q:        newQueue(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		state:    types.SessionState{Phase: types.PhaseDetached},
	}, nil
}

// SetPeerObserver 设置对端事件观察者，必须在 Start 之前调用
func (m *Machine) SetPeerObserver(o pkgif.PeerObserver) {
	if o == nil {
		o = noopObserver{}
	}
	m.observer = o
}

// ============================================================================
//                              事件循环
// ============================================================================

// Start 启动事件循环
func (m *Machine) Start() {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	go m.loop()
}

// Stop 停止事件循环，不释放会话
//
// 已入队的事件被丢弃，等待中的 Do 返回 ErrClosed。
func (m *Machine) Stop() {
	m.stopped.Do(func() {
		m.q.close()
		close(m.stop)
		if !m.started.Load() {
			close(m.done)
		}
	})
	<-m.done
	m.pub.Close()
}

func (m *Machine) loop() {
	defer close(m.done)
	for {
		select {
		case <-m.stop:
			return
		case <-m.q.signal:
			for _, ev := range m.q.drain() {
				ev.apply(m)
			}
		}
	}
}

func (m *Machine) post(ev event) {
	if !m.q.push(ev) {
		logger.Debug("事件循环已停止，丢弃事件", "event", fmt.Sprintf("%T", ev))
	}
}

// Do 在事件循环上执行 fn 并等待结果
//
// fn 内可以安全地读写会话状态和注册表，但不得再调用 Do。
func (m *Machine) Do(ctx context.Context, fn func() error) error {
	op := &opEvent{fn: fn, result: make(chan error, 1)}
	if !m.q.push(op) {
		return ErrClosed
	}
	select {
	case err := <-op.result:
		return err
	case <-m.done:
		select {
		case err := <-op.result:
			return err
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ============================================================================
//                              公共操作
// ============================================================================

// Initialize 请求 attach
//
// Attaching/Attached 下为空操作；Terminated 下先回到 Detached 再重新 attach。
// 结果异步到达：成功进入 Attached，失败回到 Detached 并发布 EvtAttachFailed。
func (m *Machine) Initialize(ctx context.Context) error {
	return m.Do(ctx, m.initialize)
}

// Publish 请求发布服务，未 attach 时返回 ErrNotAttached
func (m *Machine) Publish(ctx context.Context) error {
	return m.Do(ctx, m.publish)
}

// Subscribe 请求订阅服务，未 attach 时返回 ErrNotAttached
func (m *Machine) Subscribe(ctx context.Context) error {
	return m.Do(ctx, m.subscribe)
}

// Release 拆除所有会话并清空注册表，可重复调用
//
// 返回拆除过程中的聚合错误，无论是否出错都会进入 Terminated。
func (m *Machine) Release(ctx context.Context) error {
	return m.Do(ctx, m.release)
}

// State 返回当前状态快照
func (m *Machine) State() types.SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// ActiveSession 返回可用于发送的子会话：发布优先，其次订阅
func (m *Machine) ActiveSession() (types.SessionRef, types.Role, bool) {
	st := m.State()
	switch {
	case st.Publishing():
		return st.Publish, types.RolePublisher, true
	case st.Subscribing():
		return st.Subscribe, types.RoleSubscriber, true
	default:
		return "", types.RoleUnknown, false
	}
}

// ============================================================================
//                              事件循环上的实现
// ============================================================================

func (m *Machine) initialize() error {
	switch m.phase() {
	case types.PhaseAttaching, types.PhaseAttached:
		return nil
	case types.PhaseTerminated:
		m.setState(types.SessionState{Phase: types.PhaseDetached})
	}

	if !m.radio.Available() {
		logger.Warn("无线电不可用")
		return ErrRadioUnavailable
	}

	m.gen++
	m.setState(types.SessionState{Phase: types.PhaseAttaching})
	logger.Info("请求 attach", "gen", m.gen)
	m.radio.Attach(&attachHandler{m: m, gen: m.gen})
	return nil
}

func (m *Machine) publish() error {
	if m.phase() != types.PhaseAttached {
		return ErrNotAttached
	}
	if m.pubSlot.handler != nil {
		return nil
	}

	h := &discoveryHandler{m: m, gen: m.gen, role: types.RolePublisher}
	m.pubSlot = roleSlot{handler: h, pending: true}
	logger.Info("请求发布服务", "service", m.cfg.Identity, "type", m.cfg.PublishType)
	m.radio.Publish(m.attachRef, m.cfg.publishConfig(), h)
	return nil
}

func (m *Machine) subscribe() error {
	if m.phase() != types.PhaseAttached {
		return ErrNotAttached
	}
	if m.subSlot.handler != nil {
		return nil
	}

	h := &discoveryHandler{m: m, gen: m.gen, role: types.RoleSubscriber}
	m.subSlot = roleSlot{handler: h, pending: true}
	logger.Info("请求订阅服务", "service", m.cfg.Identity)
	m.radio.Subscribe(m.attachRef, m.cfg.subscribeConfig(), h)
	return nil
}

func (m *Machine) release() error {
	if m.phase() == types.PhaseTerminated {
		return nil
	}

	st := m.State()
	var err error
	closeRef := func(what string, ref types.SessionRef) {
		if ref == "" {
			return
		}
		if cerr := m.radio.Close(ref); cerr != nil {
			logger.Warn("关闭会话失败", "what", what, "session", ref, "error", cerr)
			err = multierr.Append(err, fmt.Errorf("close %s session %s: %w", what, ref, cerr))
		}
	}
	closeRef("publish", st.Publish)
	closeRef("subscribe", st.Subscribe)
	closeRef("attach", m.attachRef)

	m.gen++
	m.attachRef = ""
	m.pubSlot.reset()
	m.subSlot.reset()
	m.registry.Clear()
	m.observer.Reset()
	m.metrics.SetPeers(0)

	m.setState(types.SessionState{Phase: types.PhaseTerminated})
	logger.Info("会话已释放", "errors", len(multierr.Errors(err)))
	m.pub.Publish(types.EvtReleased{Err: err})
	return err
}

// ============================================================================
//                              辅助
// ============================================================================

func (m *Machine) phase() types.SessionPhase {
	return m.State().Phase
}

func (m *Machine) setState(next types.SessionState) {
	m.mu.Lock()
	prev := m.state
	m.state = next
	m.mu.Unlock()

	if prev == next {
		return
	}
	if prev.Phase != next.Phase {
		m.metrics.ObserveTransition(next.Phase)
	}
	logger.Debug("会话状态变化", "old", prev.String(), "new", next.String())
	m.pub.Publish(types.EvtStateChanged{Old: prev, New: next})
}

func (m *Machine) slot(role types.Role) *roleSlot {
	if role == types.RoleSubscriber {
		return &m.subSlot
	}
	return &m.pubSlot
}

// clearRoleRef 清除角色的会话引用，返回原引用
func (m *Machine) clearRoleRef(role types.Role) types.SessionRef {
	st := m.State()
	var ref types.SessionRef
	switch role {
	case types.RolePublisher:
		ref, st.Publish = st.Publish, ""
	case types.RoleSubscriber:
		ref, st.Subscribe = st.Subscribe, ""
	}
	m.setState(st)
	return ref
}

func (m *Machine) isCurrent(h *discoveryHandler) bool {
	return h.gen == m.gen && m.slot(h.role).handler == h
}

// closeOrphan 关闭过期回调带来的会话
func (m *Machine) closeOrphan(ref types.SessionRef) {
	if ref == "" {
		return
	}
	if err := m.radio.Close(ref); err != nil {
		logger.Debug("关闭过期会话失败", "session", ref, "error", err)
	}
}

type noopObserver struct{}

func (noopObserver) OnServiceDiscovered(types.Role, types.PeerHandle, []byte, [][]byte) {}
func (noopObserver) OnMessageReceived(types.Role, types.PeerHandle, []byte)             {}
func (noopObserver) Reset()                                                             {}
