package types

import (
	"fmt"
	"time"
)

// ============================================================================
//                              PeerHandle
// ============================================================================

// PeerHandle 无线电栈分配的对端句柄
//
// 句柄是不透明值，相等性按无线电分配的身份判断，而不是按消息内容。
// 只在当前 attach 会话内有效。
type PeerHandle uint32

// String 返回句柄的可读形式
func (h PeerHandle) String() string {
	return fmt.Sprintf("peer-%d", uint32(h))
}

// ============================================================================
//                              Role
// ============================================================================

// Role 发现/收到对端时所在子会话的角色
type Role int

const (
	// RoleUnknown 未知角色
	RoleUnknown Role = iota
	// RolePublisher 发布者（广播服务）
	RolePublisher
	// RoleSubscriber 订阅者（搜索服务）
	RoleSubscriber
)

// String 返回角色名称
func (r Role) String() string {
	switch r {
	case RolePublisher:
		return "publisher"
	case RoleSubscriber:
		return "subscriber"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              PeerEntry
// ============================================================================

// PeerEntry 对端注册表条目
//
// DiscoveredVia 仅作信息记录，发送时不据此选择会话。
type PeerEntry struct {
	// Handle 对端句柄
	Handle PeerHandle

	// DiscoveredVia 首次看到该对端的子会话角色
	DiscoveredVia Role

	// LastSeenSequence 最近一次可达性信号的序号（注册表内单调递增）
	LastSeenSequence uint64

	// FirstSeenAt 首次看到的时间
	FirstSeenAt time.Time

	// LastSeenAt 最近一次看到的时间
	LastSeenAt time.Time
}
