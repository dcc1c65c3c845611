package nan

import (
	"github.com/dep2p/go-nan/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// PeerHandle 对端句柄
	PeerHandle = types.PeerHandle
	// PeerEntry 注册表条目
	PeerEntry = types.PeerEntry
	// Role 发现角色
	Role = types.Role
	// SessionState 会话状态
	SessionState = types.SessionState
	// SessionPhase 会话根状态
	SessionPhase = types.SessionPhase
	// ServiceInfo 服务特定信息
	ServiceInfo = types.ServiceInfo
	// OutboundMessage 出站消息
	OutboundMessage = types.OutboundMessage
	// BroadcastResult 广播结果
	BroadcastResult = types.BroadcastResult
	// SendFailure 单个对端的发送失败
	SendFailure = types.SendFailure
	// DataPathInfo 数据路径快照
	DataPathInfo = types.DataPathInfo
	// DataPathState 数据路径状态
	DataPathState = types.DataPathState
	// Envelope 带发送方设备 ID 的消息信封
	Envelope = types.Envelope
)

// 事件
type (
	EvtStateChanged         = types.EvtStateChanged
	EvtAttachFailed         = types.EvtAttachFailed
	EvtSubSessionStarted    = types.EvtSubSessionStarted
	EvtSubSessionFailed     = types.EvtSubSessionFailed
	EvtSubSessionTerminated = types.EvtSubSessionTerminated
	EvtReleased             = types.EvtReleased
	EvtPeerDiscovered       = types.EvtPeerDiscovered
	EvtMessageReceived      = types.EvtMessageReceived
	EvtMessageSent          = types.EvtMessageSent
	EvtSendResult           = types.EvtSendResult
	EvtBroadcast            = types.EvtBroadcast
	EvtDataPathRequested    = types.EvtDataPathRequested
	EvtDataPathAvailable    = types.EvtDataPathAvailable
	EvtDataPathFailed       = types.EvtDataPathFailed
	EvtDataPathClosed       = types.EvtDataPathClosed
	EvtDataReceived         = types.EvtDataReceived
)

// 角色与阶段
const (
	RolePublisher  = types.RolePublisher
	RoleSubscriber = types.RoleSubscriber

	PhaseDetached   = types.PhaseDetached
	PhaseAttaching  = types.PhaseAttaching
	PhaseAttached   = types.PhaseAttached
	PhaseTerminated = types.PhaseTerminated

	// MaxDataPathPayload 单次数据路径传输上限
	MaxDataPathPayload = types.MaxDataPathPayload

	DataPathRequested = types.DataPathRequested
	DataPathOpening   = types.DataPathOpening
	DataPathAvailable = types.DataPathAvailable
)

// ════════════════════════════════════════════════════════════════════════════
//                              状态谓词
// ════════════════════════════════════════════════════════════════════════════

// StatePredicate WaitForState 的等待条件
type StatePredicate func(SessionState) bool

// Attached 已 attach
func Attached(s SessionState) bool { return s.Attached() }

// Publishing 发布会话已启动
func Publishing(s SessionState) bool { return s.Publishing() }

// Subscribing 订阅会话已启动
func Subscribing(s SessionState) bool { return s.Subscribing() }

// Terminated 已释放
func Terminated(s SessionState) bool { return s.Phase == types.PhaseTerminated }

// Detached 未 attach（包括 attach 失败后）
func Detached(s SessionState) bool { return s.Phase == types.PhaseDetached }
