package interfaces

import "github.com/dep2p/go-nan/pkg/types"

// Router 返回当前可用于发送的子会话
//
// 路由规则：发布会话优先，其次订阅会话。
type Router interface {
	ActiveSession() (types.SessionRef, types.Role, bool)
}

// PeerObserver 接收会话转发的对端相关事件
//
// 所有方法都在会话事件循环上调用。
type PeerObserver interface {
	OnServiceDiscovered(role types.Role, peer types.PeerHandle, serviceInfo []byte, matchFilter [][]byte)
	OnMessageReceived(role types.Role, peer types.PeerHandle, payload []byte)

	// Reset 会话释放时调用，丢弃所有会话内状态
	Reset()
}
