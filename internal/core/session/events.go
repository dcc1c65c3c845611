package session

import (
	"fmt"

	"github.com/dep2p/go-nan/pkg/types"
)

// ============================================================================
//                              attach 事件
// ============================================================================

type attachSucceeded struct {
	gen uint64
	ref types.SessionRef
}

func (e *attachSucceeded) apply(m *Machine) {
	if e.gen != m.gen || m.phase() != types.PhaseAttaching {
		logger.Debug("忽略过期的 attach 回调", "session", e.ref, "gen", e.gen, "current", m.gen)
		if e.ref != m.attachRef {
			m.closeOrphan(e.ref)
		}
		return
	}

	m.attachRef = e.ref
	m.setState(types.SessionState{Phase: types.PhaseAttached})
	logger.Info("attach 成功", "session", e.ref)

	if m.cfg.AutoPublish {
		if err := m.publish(); err != nil {
			logger.Warn("自动发布失败", "error", err)
		}
	}
	if m.cfg.AutoSubscribe {
		if err := m.subscribe(); err != nil {
			logger.Warn("自动订阅失败", "error", err)
		}
	}
}

type attachFailed struct {
	gen uint64
	err error
}

func (e *attachFailed) apply(m *Machine) {
	if e.gen != m.gen || m.phase() != types.PhaseAttaching {
		logger.Debug("忽略过期的 attach 失败回调", "gen", e.gen, "current", m.gen)
		return
	}

	m.setState(types.SessionState{Phase: types.PhaseDetached})
	err := fmt.Errorf("%w: %v", ErrAttachFailed, e.err)
	logger.Warn("attach 失败", "error", e.err)
	m.pub.Publish(types.EvtAttachFailed{Err: err})
}

// ============================================================================
//                              子会话事件
// ============================================================================

type subStarted struct {
	h   *discoveryHandler
	ref types.SessionRef
}

func (e *subStarted) apply(m *Machine) {
	if !m.isCurrent(e.h) {
		logger.Debug("忽略过期的子会话启动回调", "role", e.h.role, "session", e.ref)
		m.closeOrphan(e.ref)
		return
	}

	m.slot(e.h.role).pending = false
	st := m.State()
	switch e.h.role {
	case types.RolePublisher:
		st.Publish = e.ref
	case types.RoleSubscriber:
		st.Subscribe = e.ref
	}
	m.setState(st)
	logger.Info("子会话已启动", "role", e.h.role, "session", e.ref)
	m.pub.Publish(types.EvtSubSessionStarted{Role: e.h.role, Session: e.ref})
}

type subFailed struct {
	h   *discoveryHandler
	err error
}

func (e *subFailed) apply(m *Machine) {
	if !m.isCurrent(e.h) {
		return
	}

	m.slot(e.h.role).reset()
	m.clearRoleRef(e.h.role)
	logger.Warn("子会话请求失败", "role", e.h.role, "error", e.err)
	m.pub.Publish(types.EvtSubSessionFailed{
		Role: e.h.role,
		Err:  fmt.Errorf("%w: %v", ErrSubSessionFailed, e.err),
	})
}

type subTerminated struct {
	h *discoveryHandler
}

func (e *subTerminated) apply(m *Machine) {
	if !m.isCurrent(e.h) {
		return
	}

	ref := m.clearRoleRef(e.h.role)
	m.slot(e.h.role).reset()
	logger.Info("子会话被终止", "role", e.h.role, "session", ref)
	m.pub.Publish(types.EvtSubSessionTerminated{Role: e.h.role, Session: ref})
}

// ============================================================================
//                              对端事件
// ============================================================================

type serviceDiscovered struct {
	h           *discoveryHandler
	peer        types.PeerHandle
	serviceInfo []byte
	matchFilter [][]byte
}

func (e *serviceDiscovered) apply(m *Machine) {
	if !m.isCurrent(e.h) {
		return
	}
	m.observer.OnServiceDiscovered(e.h.role, e.peer, e.serviceInfo, e.matchFilter)
}

type messageReceived struct {
	h       *discoveryHandler
	peer    types.PeerHandle
	payload []byte
}

func (e *messageReceived) apply(m *Machine) {
	if !m.isCurrent(e.h) {
		return
	}
	m.observer.OnMessageReceived(e.h.role, e.peer, e.payload)
}

type sendResult struct {
	h         *discoveryHandler
	messageID int
	ok        bool
}

func (e *sendResult) apply(m *Machine) {
	if !m.isCurrent(e.h) {
		return
	}
	if !e.ok {
		logger.Debug("消息投递失败", "role", e.h.role, "id", e.messageID)
	}
	m.pub.Publish(types.EvtSendResult{MessageID: e.messageID, Via: e.h.role, OK: e.ok})
}

// ============================================================================
//                              操作
// ============================================================================

// opEvent 通过 Do 提交的函数
type opEvent struct {
	fn     func() error
	result chan error
}

func (e *opEvent) apply(_ *Machine) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("操作 panic", "panic", r)
			e.result <- fmt.Errorf("session: operation panicked: %v", r)
		}
	}()
	e.result <- e.fn()
}
