// Package interfaces 定义 go-nan 的公共接口
//
// 一个接口文件对应一个实现目录：
//   - radio.go     - 无线电适配器契约（外部协作者，由平台实现）
//   - registry.go  - 对端注册表（internal/core/registry）
//   - session.go   - 会话路由与对端观察者（internal/core/session）
//   - messaging.go - 消息分发（internal/protocol/messaging）
//   - eventbus.go  - 事件总线（internal/core/eventbus）
//   - datapath.go  - 数据路径协商（internal/protocol/datapath）
package interfaces
