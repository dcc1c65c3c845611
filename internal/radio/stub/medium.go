package stub

import (
	"bytes"
	"sync"

	"github.com/dep2p/go-nan/pkg/types"
)

type member struct {
	radio   *Radio
	session *discoverySession
}

// Medium 进程内共享"空中"
//
// 每个 Radio 对其他 Radio 分配自己的句柄，从 1 开始，在 Medium 生命周期内稳定。
type Medium struct {
	mu       sync.Mutex
	members  []member
	handles  map[*Radio]map[*Radio]types.PeerHandle
	byHandle map[*Radio]map[types.PeerHandle]*Radio
}

// NewMedium 创建 Medium
func NewMedium() *Medium {
	return &Medium{
		handles:  make(map[*Radio]map[*Radio]types.PeerHandle),
		byHandle: make(map[*Radio]map[types.PeerHandle]*Radio),
	}
}

// Connect 把 Radio 接入 Medium，之后打开的子会话参与发现
func (m *Medium) Connect(r *Radio) {
	r.mu.Lock()
	r.medium = m
	r.mu.Unlock()
}

// NewRadio 创建一个已接入的 Radio
func (m *Medium) NewRadio(opts ...Option) *Radio {
	r := New(opts...)
	m.Connect(r)
	return r
}

// HandleOf 返回 owner 眼中 other 的句柄
func (m *Medium) HandleOf(owner, other *Radio) types.PeerHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handleFor(owner, other)
}

func (m *Medium) handleFor(owner, other *Radio) types.PeerHandle {
	table, ok := m.handles[owner]
	if !ok {
		table = make(map[*Radio]types.PeerHandle)
		m.handles[owner] = table
		m.byHandle[owner] = make(map[types.PeerHandle]*Radio)
	}
	if h, ok := table[other]; ok {
		return h
	}
	h := types.PeerHandle(len(table) + 1)
	table[other] = h
	m.byHandle[owner][h] = other
	return h
}

func (m *Medium) join(r *Radio, s *discoverySession) {
	var notify []func()

	m.mu.Lock()
	for _, o := range m.members {
		if o.radio == r || !compatible(s, o.session) {
			continue
		}
		switch {
		case s.role == types.RoleSubscriber && o.session.role == types.RolePublisher:
			notify = append(notify, m.discovery(r, s, o.radio, o.session))
		case s.role == types.RolePublisher && o.session.role == types.RoleSubscriber:
			notify = append(notify, m.discovery(o.radio, o.session, r, s))
		}
	}
	m.members = append(m.members, member{radio: r, session: s})
	m.mu.Unlock()

	for _, fn := range notify {
		fn()
	}
}

// discovery 构造订阅者发现发布者的回调
func (m *Medium) discovery(subRadio *Radio, sub *discoverySession, pubRadio *Radio, pub *discoverySession) func() {
	h := m.handleFor(subRadio, pubRadio)
	ssi, mf := pub.serviceInfo, pub.matchFilter
	return func() {
		sub.handler.OnServiceDiscovered(h, ssi, mf)
	}
}

func (m *Medium) leave(r *Radio, s *discoverySession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, o := range m.members {
		if o.radio == r && o.session == s {
			m.members = append(m.members[:i], m.members[i+1:]...)
			return
		}
	}
}

// deliver 把消息路由到目标 Radio 上同一服务的子会话，优先对侧角色
func (m *Medium) deliver(from *Radio, s *discoverySession, peer types.PeerHandle, payload []byte) error {
	m.mu.Lock()
	target, ok := m.byHandle[from][peer]
	if !ok {
		m.mu.Unlock()
		return ErrPeerUnreachable
	}

	var dst *discoverySession
	for _, o := range m.members {
		if o.radio != target || o.session.identity.ServiceName != s.identity.ServiceName {
			continue
		}
		if dst == nil || o.session.role != s.role {
			dst = o.session
		}
	}
	if dst == nil {
		m.mu.Unlock()
		return ErrPeerUnreachable
	}
	h := m.handleFor(target, from)
	m.mu.Unlock()

	dst.handler.OnMessageReceived(h, payload)
	return nil
}

// compatible 服务名相同，且双方匹配过滤器为空或首个过滤器相同
func compatible(a, b *discoverySession) bool {
	if a.identity.ServiceName != b.identity.ServiceName {
		return false
	}
	if len(a.matchFilter) == 0 || len(b.matchFilter) == 0 {
		return true
	}
	return bytes.Equal(a.matchFilter[0], b.matchFilter[0])
}
