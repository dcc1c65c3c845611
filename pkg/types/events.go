// Package types 定义 go-nan 公共类型
//
// 本文件定义事件总线上发布的事件类型。
// 订阅时传入事件类型的指针，例如 bus.Subscribe(new(types.EvtPeerDiscovered))。
package types

// ============================================================================
//                              会话事件
// ============================================================================

// EvtStateChanged 会话状态变化
type EvtStateChanged struct {
	Old SessionState
	New SessionState
}

// EvtAttachFailed attach 失败（本次尝试失败，可重新 Initialize）
type EvtAttachFailed struct {
	Err error
}

// EvtSubSessionStarted 发布/订阅子会话已启动
type EvtSubSessionStarted struct {
	Role    Role
	Session SessionRef
}

// EvtSubSessionFailed 发布/订阅请求被无线电栈拒绝
type EvtSubSessionFailed struct {
	Role Role
	Err  error
}

// EvtSubSessionTerminated 发布/订阅子会话被无线电栈终止
type EvtSubSessionTerminated struct {
	Role    Role
	Session SessionRef
}

// EvtReleased 会话已释放，注册表已清空
type EvtReleased struct {
	// Err 拆除过程中的聚合错误（尽力而为，不影响释放结果）
	Err error
}

// ============================================================================
//                              对端事件
// ============================================================================

// EvtPeerDiscovered 发现服务（包含重复发现）
type EvtPeerDiscovered struct {
	Peer        PeerHandle
	Role        Role
	ServiceInfo ServiceInfo
	MatchFilter [][]byte
	// New 是否首次看到该对端
	New bool
}

// EvtMessageReceived 收到消息
type EvtMessageReceived struct {
	Peer    PeerHandle
	Role    Role
	Payload []byte
	// New 是否首次看到该对端
	New bool
}

// ============================================================================
//                              发送事件
// ============================================================================

// EvtMessageSent 消息已提交给无线电栈
type EvtMessageSent struct {
	Message OutboundMessage
	Via     Role
	// Greeting 是否为发现后自动发送的问候
	Greeting bool
}

// EvtSendResult 无线电栈异步报告的发送结果
type EvtSendResult struct {
	MessageID int
	Via       Role
	OK        bool
}

// EvtBroadcast 广播完成
type EvtBroadcast struct {
	Result BroadcastResult
}

// ============================================================================
//                              数据路径事件
// ============================================================================

// EvtDataPathRequested 收到对端的数据路径请求并已确认
type EvtDataPathRequested struct {
	Peer     PeerHandle
	DeviceID string
}

// EvtDataPathAvailable 数据路径可用
type EvtDataPathAvailable struct {
	Peer      PeerHandle
	Initiator bool
}

// EvtDataPathFailed 数据路径建立失败
type EvtDataPathFailed struct {
	Peer PeerHandle
	Err  error
}

// EvtDataPathClosed 数据路径关闭（本端关闭、对端关闭或链路丢失）
type EvtDataPathClosed struct {
	Peer PeerHandle
	// Remote 是否由对端或无线电栈一侧关闭
	Remote bool
}

// EvtDataReceived 通过数据路径收到的数据
type EvtDataReceived struct {
	Peer    PeerHandle
	Payload []byte
}
