// Package eventbus 实现进程内事件总线
//
// 会话、发现协调器和消息分发器把可观察的状态变化发布到总线上，
// 应用通过订阅获取，不需要注册回调接口。
//
//	bus := eventbus.NewBus()
//
//	sub, _ := bus.Subscribe(new(types.EvtPeerDiscovered))
//	defer sub.Close()
//
//	go func() {
//	    for evt := range sub.Out() {
//	        e := evt.(types.EvtPeerDiscovered)
//	        // 处理事件
//	    }
//	}()
//
// 组件内部使用 Publisher 按事件类型缓存发射器：
//
//	pub := eventbus.NewPublisher(bus)
//	pub.Publish(types.EvtReleased{})
//
// # 投递语义
//
// Emit 从不阻塞：订阅者缓冲区满时事件被丢弃并计数，
// 每丢弃 100 个事件告警一次。事件循环因此不会被慢消费者拖住。
package eventbus
