// Package nan 提供邻居感知（NAN）近场对端发现与消息传递
//
// nan 在邻居感知无线电之上协调服务发布/订阅、对端句柄跟踪、
// 单播与广播消息。无线电驱动是外部协作者，通过 interfaces.Radio 注入。
//
// # 核心概念
//
//   - Node: 门面，用户交互的主入口
//   - Session: attach 会话及其发布/订阅子会话，由单个事件循环驱动
//   - Peer Registry: 当前会话内见过的对端句柄，释放时清空
//
// # 快速开始
//
//	import nan "github.com/dep2p/go-nan"
//
//	node, err := nan.Start(ctx,
//	    nan.WithRadio(radio),
//	    nan.WithServiceName("chat"),
//	    nan.WithAutoSubscribe(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	if err := node.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	_ = node.WaitForState(ctx, nan.Publishing)
//
//	res, err := node.BroadcastMessage(ctx, []byte("hello"))
//
// # 事件
//
// 异步结果通过事件总线发布，例如：
//
//	sub, _ := node.EventBus().Subscribe(new(nan.EvtPeerDiscovered))
//	for evt := range sub.Out() {
//	    d := evt.(nan.EvtPeerDiscovered)
//	    fmt.Println(d.Peer, d.ServiceInfo.DeviceID())
//	}
//
// # 数据路径
//
// 超过单条消息上限的数据走数据路径。发起方请求后，对端经发现消息确认，
// 双方链路可用时发布 EvtDataPathAvailable：
//
//	_ = node.RequestDataPath(ctx, peer)
//	// 等待 EvtDataPathAvailable
//	err := node.SendLargeData(peer, image)
//
// 无线电须实现 interfaces.DataPathRadio；Release 会关闭所有数据路径。
//
// # 生命周期
//
//	New → Start → Initialize → (Publish / SubscribeToService) → Release → Close
//
// Release 之后可以再次 Initialize；Close 会释放会话并停止事件循环，不可重新启动。
package nan
