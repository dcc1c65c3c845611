package interfaces

import "github.com/dep2p/go-nan/pkg/types"

// PeerRegistry 对端注册表
//
// 写入由会话事件循环串行化；读取可在任意 goroutine 上进行，
// ListAll/Entries 返回快照副本。
type PeerRegistry interface {
	// Upsert 插入或刷新对端，返回是否为新插入
	Upsert(handle types.PeerHandle, role types.Role) bool

	// Get 返回条目副本
	Get(handle types.PeerHandle) (types.PeerEntry, bool)

	// Contains 是否已知该对端
	Contains(handle types.PeerHandle) bool

	// ListAll 按插入顺序返回句柄快照
	ListAll() []types.PeerHandle

	// Entries 按插入顺序返回条目快照
	Entries() []types.PeerEntry

	// Len 返回条目数
	Len() int

	// Clear 清空注册表
	Clear()
}
