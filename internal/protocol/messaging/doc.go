// Package messaging 实现消息分发
//
// # 路由
//
// 发送总是经过当前活跃的子会话：发布会话优先，其次订阅会话，
// 两者都没有时返回 ErrNoActiveSession。注册表中记录的发现角色
// 只作信息记录，不参与会话选择。
//
// # 核心功能
//
//  1. 单播 (SendTo) - 目标必须在注册表中，否则返回 ErrUnknownPeer 且不调用无线电
//  2. 广播 (Broadcast) - 对注册表快照逐个发送，单个失败不会中止其余发送
//  3. 问候 (Greet) - 发现协调器在首次发现对端时调用
//  4. 长度预检 - 超过无线电上限的消息返回 ErrMessageTooLong
//  5. 发送限速 - 可选的令牌桶，超出时返回 ErrRateLimited
//
// # 使用示例
//
//	d, err := messaging.New(radio, router, registry, bus, nil,
//	    messaging.WithSendRate(20, 8))
//	if err != nil {
//	    return err
//	}
//	msg, err := d.SendTo(peer, []byte("hello"))
//
// 消息 ID 从 1 开始单调递增，无线电栈通过 ID 异步报告投递结果。
package messaging
