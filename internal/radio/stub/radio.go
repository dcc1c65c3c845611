package stub

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
	"github.com/dep2p/go-nan/pkg/types"
)

var (
	// ErrUnknownSession 会话引用不存在或已关闭
	ErrUnknownSession = errors.New("stub: unknown session")

	// ErrPeerUnreachable Medium 上找不到目标对端
	ErrPeerUnreachable = errors.New("stub: peer unreachable")

	// ErrNoDataPath 没有到该对端的数据路径
	ErrNoDataPath = errors.New("stub: no data path")

	// ErrDataPathNotReady 数据路径尚未可用
	ErrDataPathNotReady = errors.New("stub: data path not ready")

	// ErrPassphraseMismatch 双方口令不一致
	ErrPassphraseMismatch = errors.New("stub: passphrase mismatch")
)

// Sent 一次被接受的发送
type Sent struct {
	Session   types.SessionRef
	Peer      types.PeerHandle
	MessageID int
	Payload   []byte
}

// Calls 请求计数
type Calls struct {
	Attach    int
	Publish   int
	Subscribe int
	Send      int
	Close     int

	RequestDataPath int
	SendData        int
	CloseDataPath   int
}

// discoverySession 发布或订阅子会话
type discoverySession struct {
	ref         types.SessionRef
	attach      types.SessionRef
	role        types.Role
	identity    types.ServiceIdentity
	serviceInfo []byte
	matchFilter [][]byte
	handler     pkgif.DiscoveryHandler
}

// Option Radio 选项
type Option func(*Radio)

// WithAvailable 设置平台是否支持
func WithAvailable(available bool) Option {
	return func(r *Radio) { r.available = available }
}

// WithMaxMessageLength 设置报告的单条消息上限
func WithMaxMessageLength(n int) Option {
	return func(r *Radio) { r.chars.MaxMessageLength = n }
}

// WithManualAttach attach 请求挂起，直到调用 CompleteAttach 或 FailAttach
func WithManualAttach() Option {
	return func(r *Radio) { r.manualAttach = true }
}

// WithManualStart 发布/订阅请求挂起，直到调用 StartPending 或 FailPending
func WithManualStart() Option {
	return func(r *Radio) { r.manualStart = true }
}

// WithAttachError attach 请求立即失败
func WithAttachError(err error) Option {
	return func(r *Radio) { r.attachErr = err }
}

// Radio 主机侧无线电
type Radio struct {
	mu sync.Mutex

	available    bool
	chars        types.Characteristics
	manualAttach bool
	manualStart  bool
	attachErr    error

	pendingAttach []pkgif.AttachHandler
	pendingStart  map[types.Role][]*discoverySession

	attachSessions map[types.SessionRef]bool
	sessions       map[types.SessionRef]*discoverySession
	current        map[types.Role]*discoverySession
	handlers       map[types.Role]pkgif.DiscoveryHandler

	sendErrs  map[types.PeerHandle]error
	closeErrs map[types.SessionRef]error
	sent      []Sent
	calls     Calls

	dataPaths map[types.PeerHandle]*dataPath
	dataSent  []DataSent

	medium *Medium
}

var (
	_ pkgif.Radio         = (*Radio)(nil)
	_ pkgif.DataPathRadio = (*Radio)(nil)
)

// New 创建 Radio，默认可用且 attach/发布/订阅立即成功
func New(opts ...Option) *Radio {
	r := &Radio{
		available:      true,
		pendingStart:   make(map[types.Role][]*discoverySession),
		attachSessions: make(map[types.SessionRef]bool),
		sessions:       make(map[types.SessionRef]*discoverySession),
		current:        make(map[types.Role]*discoverySession),
		handlers:       make(map[types.Role]pkgif.DiscoveryHandler),
		sendErrs:       make(map[types.PeerHandle]error),
		closeErrs:      make(map[types.SessionRef]error),
		dataPaths:      make(map[types.PeerHandle]*dataPath),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newRef(prefix string) types.SessionRef {
	return types.SessionRef(prefix + "-" + uuid.NewString()[:8])
}

// ============================================================================
//                              interfaces.Radio
// ============================================================================

// Available 实现 interfaces.Radio
func (r *Radio) Available() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.available
}

// Characteristics 实现 interfaces.Radio
func (r *Radio) Characteristics() types.Characteristics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chars
}

// Attach 实现 interfaces.Radio
func (r *Radio) Attach(h pkgif.AttachHandler) {
	r.mu.Lock()
	r.calls.Attach++
	if err := r.attachErr; err != nil {
		r.mu.Unlock()
		h.OnAttachFailed(err)
		return
	}
	if r.manualAttach {
		r.pendingAttach = append(r.pendingAttach, h)
		r.mu.Unlock()
		return
	}
	ref := newRef("attach")
	r.attachSessions[ref] = true
	r.mu.Unlock()

	h.OnAttached(ref)
}

// Publish 实现 interfaces.Radio
func (r *Radio) Publish(attach types.SessionRef, cfg types.PublishConfig, h pkgif.DiscoveryHandler) {
	r.mu.Lock()
	r.calls.Publish++
	r.mu.Unlock()
	r.open(attach, &discoverySession{
		attach:      attach,
		role:        types.RolePublisher,
		identity:    cfg.Identity,
		serviceInfo: cfg.ServiceInfo,
		matchFilter: cfg.MatchFilter,
		handler:     h,
	})
}

// Subscribe 实现 interfaces.Radio
func (r *Radio) Subscribe(attach types.SessionRef, cfg types.SubscribeConfig, h pkgif.DiscoveryHandler) {
	r.mu.Lock()
	r.calls.Subscribe++
	r.mu.Unlock()
	r.open(attach, &discoverySession{
		attach:      attach,
		role:        types.RoleSubscriber,
		identity:    cfg.Identity,
		serviceInfo: cfg.ServiceInfo,
		matchFilter: cfg.MatchFilter,
		handler:     h,
	})
}

func (r *Radio) open(attach types.SessionRef, s *discoverySession) {
	r.mu.Lock()
	r.handlers[s.role] = s.handler
	if !r.attachSessions[attach] {
		r.mu.Unlock()
		s.handler.OnConfigFailed(ErrUnknownSession)
		return
	}
	if r.manualStart {
		r.pendingStart[s.role] = append(r.pendingStart[s.role], s)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	r.start(s)
}

func (r *Radio) start(s *discoverySession) {
	prefix := "pub"
	if s.role == types.RoleSubscriber {
		prefix = "sub"
	}
	s.ref = newRef(prefix)

	r.mu.Lock()
	r.sessions[s.ref] = s
	r.current[s.role] = s
	medium := r.medium
	r.mu.Unlock()

	s.handler.OnStarted(s.ref)
	if medium != nil {
		medium.join(r, s)
	}
}

// Send 实现 interfaces.Radio
func (r *Radio) Send(session types.SessionRef, peer types.PeerHandle, messageID int, payload []byte) error {
	r.mu.Lock()
	r.calls.Send++
	s, ok := r.sessions[session]
	if !ok {
		r.mu.Unlock()
		return ErrUnknownSession
	}
	if err := r.sendErrs[peer]; err != nil {
		r.mu.Unlock()
		return err
	}
	data := make([]byte, len(payload))
	copy(data, payload)
	r.sent = append(r.sent, Sent{Session: session, Peer: peer, MessageID: messageID, Payload: data})
	medium := r.medium
	r.mu.Unlock()

	if medium != nil {
		if err := medium.deliver(r, s, peer, data); err != nil {
			s.handler.OnMessageSendFailed(messageID)
			return nil
		}
	}
	s.handler.OnMessageSendSucceeded(messageID)
	return nil
}

// Close 实现 interfaces.Radio
func (r *Radio) Close(session types.SessionRef) error {
	r.mu.Lock()
	r.calls.Close++
	if err := r.closeErrs[session]; err != nil {
		r.mu.Unlock()
		return err
	}
	if r.attachSessions[session] {
		delete(r.attachSessions, session)
		r.mu.Unlock()
		return nil
	}
	s, ok := r.sessions[session]
	if !ok {
		r.mu.Unlock()
		return ErrUnknownSession
	}
	delete(r.sessions, session)
	if r.current[s.role] == s {
		delete(r.current, s.role)
	}
	medium := r.medium
	r.mu.Unlock()

	if medium != nil {
		medium.leave(r, s)
	}
	return nil
}

// ============================================================================
//                              测试控制
// ============================================================================

// SetAvailable 设置平台是否支持
func (r *Radio) SetAvailable(available bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.available = available
}

// CompleteAttach 完成最早挂起的 attach 请求，返回签发的引用
func (r *Radio) CompleteAttach() (types.SessionRef, bool) {
	r.mu.Lock()
	if len(r.pendingAttach) == 0 {
		r.mu.Unlock()
		return "", false
	}
	h := r.pendingAttach[0]
	r.pendingAttach = r.pendingAttach[1:]
	ref := newRef("attach")
	r.attachSessions[ref] = true
	r.mu.Unlock()

	h.OnAttached(ref)
	return ref, true
}

// FailAttach 让最早挂起的 attach 请求失败
func (r *Radio) FailAttach(err error) bool {
	r.mu.Lock()
	if len(r.pendingAttach) == 0 {
		r.mu.Unlock()
		return false
	}
	h := r.pendingAttach[0]
	r.pendingAttach = r.pendingAttach[1:]
	r.mu.Unlock()

	h.OnAttachFailed(err)
	return true
}

// StartPending 启动最早挂起的指定角色子会话
func (r *Radio) StartPending(role types.Role) (types.SessionRef, bool) {
	s, ok := r.popPending(role)
	if !ok {
		return "", false
	}
	r.start(s)
	return s.ref, true
}

// FailPending 让最早挂起的指定角色子会话失败
func (r *Radio) FailPending(role types.Role, err error) bool {
	s, ok := r.popPending(role)
	if !ok {
		return false
	}
	s.handler.OnConfigFailed(err)
	return true
}

func (r *Radio) popPending(role types.Role) (*discoverySession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := r.pendingStart[role]
	if len(q) == 0 {
		return nil, false
	}
	r.pendingStart[role] = q[1:]
	return q[0], true
}

// FailSendTo 之后向 peer 的发送同步返回 err，err 为 nil 时清除
func (r *Radio) FailSendTo(peer types.PeerHandle, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.sendErrs, peer)
		return
	}
	r.sendErrs[peer] = err
}

// FailClose 之后关闭 session 返回 err
func (r *Radio) FailClose(session types.SessionRef, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeErrs[session] = err
}

// Handler 返回指定角色最近一次请求使用的回调，包括已关闭的会话
func (r *Radio) Handler(role types.Role) pkgif.DiscoveryHandler {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handlers[role]
}

// Session 返回指定角色当前打开的子会话引用
func (r *Radio) Session(role types.Role) (types.SessionRef, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.current[role]
	if !ok {
		return "", false
	}
	return s.ref, true
}

// Discover 在指定角色的当前子会话上注入发现回调
func (r *Radio) Discover(role types.Role, peer types.PeerHandle, serviceInfo []byte, matchFilter [][]byte) bool {
	s, ok := r.currentSession(role)
	if !ok {
		return false
	}
	s.handler.OnServiceDiscovered(peer, serviceInfo, matchFilter)
	return true
}

// Deliver 在指定角色的当前子会话上注入消息
func (r *Radio) Deliver(role types.Role, peer types.PeerHandle, payload []byte) bool {
	s, ok := r.currentSession(role)
	if !ok {
		return false
	}
	s.handler.OnMessageReceived(peer, payload)
	return true
}

// Terminate 由无线电栈一侧终止指定角色的子会话
func (r *Radio) Terminate(role types.Role) bool {
	r.mu.Lock()
	s, ok := r.current[role]
	if ok {
		delete(r.current, role)
		delete(r.sessions, s.ref)
	}
	medium := r.medium
	r.mu.Unlock()
	if !ok {
		return false
	}

	if medium != nil {
		medium.leave(r, s)
	}
	s.handler.OnSessionTerminated()
	return true
}

func (r *Radio) currentSession(role types.Role) (*discoverySession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.current[role]
	return s, ok
}

// Sent 返回所有被接受的发送
func (r *Radio) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.sent))
	copy(out, r.sent)
	return out
}

// Calls 返回请求计数
func (r *Radio) Calls() Calls {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// OpenSessions 返回仍打开的会话数（attach 与子会话）
func (r *Radio) OpenSessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.attachSessions) + len(r.sessions)
}
