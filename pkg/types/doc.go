// Package types 定义 go-nan 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 go-nan 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - peer.go     - PeerHandle, Role, PeerEntry
//   - session.go  - SessionRef, SessionPhase, SessionState, ServiceIdentity
//   - config.go   - PublishConfig, SubscribeConfig, Characteristics
//   - message.go  - OutboundMessage, SendFailure, BroadcastResult
//   - ssi.go      - 服务特定信息（SSI）的 key=value 编解码
//   - events.go   - 事件总线上的所有事件类型
//
// # 生命周期约束
//
// PeerHandle 由无线电栈分配，只在发现它的那次 attach 会话内有效；
// 会话终止后所有 PeerHandle 一并失效，不得跨会话复用。
package types
