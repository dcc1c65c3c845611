// Package coordinator 实现发现协调器
//
// # 模块概述
//
// coordinator 接收会话转发的对端事件，维护对端注册表：
//   - 发现事件：首次看到的对端以收到事件的子会话角色登记，并发送一次问候；
//     重复发现只刷新序号。
//   - 消息事件：未知发送者以接收角色登记，已知发送者刷新序号。
//
// 两条路径都经过同一个 observe 函数。
//
// # 架构设计
//
//	┌───────────────┐   对端事件    ┌─────────────┐   Upsert   ┌──────────┐
//	│ session 事件循环 │ ───────────→ │ Coordinator │ ─────────→ │ Registry │
//	└───────────────┘              └──────┬──────┘            └──────────┘
//	                                      │ Greet（仅首次发现）
//	                                      ↓
//	                               ┌─────────────┐
//	                               │ Dispatcher  │
//	                               └─────────────┘
//
// # 设备索引
//
// 对端的 SSI 若带有 dev=<id>，协调器在有界 LRU 中记录设备 ID 到最新句柄的映射，
// 可通过 PeerByDevice 查询。会话释放时索引被清空。
//
// # 并发
//
// 所有回调都在会话事件循环上串行执行，同一对端的并发重复发现在第一次之后都是空操作。
// PeerByDevice 可在任意 goroutine 上调用。
package coordinator
