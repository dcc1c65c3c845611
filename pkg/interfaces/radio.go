package interfaces

import "github.com/dep2p/go-nan/pkg/types"

// Radio 邻居感知无线电适配器
//
// 所有请求都是即发即忘的：结果通过 handler 回调异步到达。
// 回调可能在任意 goroutine 上、甚至在请求方法返回前同步触发，
// 调用方不得在回调中阻塞。
type Radio interface {
	// Available 平台是否支持该无线电
	Available() bool

	// Characteristics 返回无线电栈能力
	Characteristics() types.Characteristics

	// Attach 请求连接无线电栈
	Attach(h AttachHandler)

	// Publish 在 attach 会话上发布服务
	Publish(attach types.SessionRef, cfg types.PublishConfig, h DiscoveryHandler)

	// Subscribe 在 attach 会话上订阅服务
	Subscribe(attach types.SessionRef, cfg types.SubscribeConfig, h DiscoveryHandler)

	// Send 通过子会话向对端发送消息
	//
	// 返回的错误只表示请求被同步拒绝；投递结果通过
	// DiscoveryHandler.OnMessageSendSucceeded/Failed 报告。
	Send(session types.SessionRef, peer types.PeerHandle, messageID int, payload []byte) error

	// Close 关闭会话（attach 会话或子会话）
	Close(session types.SessionRef) error
}

// AttachHandler attach 结果回调
type AttachHandler interface {
	OnAttached(session types.SessionRef)
	OnAttachFailed(err error)
}

// DiscoveryHandler 发布/订阅子会话回调
type DiscoveryHandler interface {
	// OnStarted 子会话已启动
	OnStarted(session types.SessionRef)

	// OnConfigFailed 发布/订阅请求失败
	OnConfigFailed(err error)

	// OnServiceDiscovered 发现服务（通常只在订阅会话上触发）
	OnServiceDiscovered(peer types.PeerHandle, serviceInfo []byte, matchFilter [][]byte)

	// OnMessageReceived 收到对端消息
	OnMessageReceived(peer types.PeerHandle, payload []byte)

	// OnMessageSendSucceeded 消息投递成功
	OnMessageSendSucceeded(messageID int)

	// OnMessageSendFailed 消息投递失败
	OnMessageSendFailed(messageID int)

	// OnSessionTerminated 子会话被终止
	OnSessionTerminated()
}

// ============================================================================
//                              数据路径（可选能力）
// ============================================================================

// DataPathRadio 支持数据路径的无线电
//
// 数据路径是对端之间的直连链路，用于超过单条消息上限的数据。
// 双方都在各自的子会话上请求后链路才可用，结果通过 DataPathHandler 回调。
// 帧格式和底层套接字由无线电栈负责。
type DataPathRadio interface {
	// RequestDataPath 请求到对端的数据路径，passphrase 为空表示开放模式
	RequestDataPath(session types.SessionRef, peer types.PeerHandle, passphrase string, h DataPathHandler) error

	// SendData 通过可用的数据路径发送
	SendData(peer types.PeerHandle, payload []byte) error

	// CloseDataPath 关闭到对端的数据路径
	CloseDataPath(peer types.PeerHandle) error
}

// DataPathHandler 数据路径回调
type DataPathHandler interface {
	OnDataPathAvailable(peer types.PeerHandle)
	OnDataPathUnavailable(peer types.PeerHandle, err error)

	// OnDataPathLost 链路被对端或无线电栈关闭
	OnDataPathLost(peer types.PeerHandle)

	OnDataReceived(peer types.PeerHandle, payload []byte)
}
