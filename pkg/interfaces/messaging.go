package interfaces

import "github.com/dep2p/go-nan/pkg/types"

// Dispatcher 消息分发器
type Dispatcher interface {
	// SendTo 向已知对端发送消息
	SendTo(peer types.PeerHandle, payload []byte) (types.OutboundMessage, error)

	// Broadcast 向注册表中所有对端逐个发送
	Broadcast(payload []byte) (types.BroadcastResult, error)
}

// Greeter 向新发现的对端发送问候
type Greeter interface {
	Greet(peer types.PeerHandle, payload []byte) (types.OutboundMessage, error)
}
