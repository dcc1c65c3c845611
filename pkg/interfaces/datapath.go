package interfaces

import "github.com/dep2p/go-nan/pkg/types"

// DataPathNegotiator 数据路径协商
//
// 由发现协调器在会话事件循环上调用。
type DataPathNegotiator interface {
	// Accept 响应对端请求：回复确认并打开本端链路
	Accept(peer types.PeerHandle, deviceID string) error

	// Acknowledged 对端确认了本端的请求
	Acknowledged(peer types.PeerHandle) error

	// ReleaseAll 关闭所有数据路径
	ReleaseAll()
}
