// Package registry 实现对端注册表
//
// 注册表记录当前 attach 会话内已知可达的对端，
// 以无线电栈分配的 PeerHandle 为键，保持插入顺序以便广播时确定性枚举。
//
// # 不变量
//
//   - 每个不同的句柄至多一个条目（Upsert 幂等）
//   - 会话内只增不减，没有自动淘汰；会话终止时由 Clear 整体清空
//   - LastSeenSequence 在整个注册表内单调递增，Clear 不重置
//
// # 并发安全
//
// 写操作由会话事件循环串行化，注册表本身仍以 sync.RWMutex 保护，
// ListAll/Entries 返回快照副本，可在写入进行中安全遍历。
package registry
