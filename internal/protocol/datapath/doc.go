// Package datapath 实现数据路径协商与传输
//
// 数据路径是两个对端之间的直连链路，用于超过单条发现消息上限的数据。
//
// # 协商
//
// 协商消息经由普通发现会话消息传递：
//
//	发起方                               响应方
//	Request ── DATA_PATH_REQUEST:<dev> ──▶ Accept
//	        ◀────── DATA_PATH_ACK ────────  (打开本端链路)
//	Acknowledged (打开本端链路)
//
// 双方都向无线电栈请求后链路才可用，先后顺序不影响结果。
// 响应方对同一设备的重复请求由发现协调器去重，会话释放时清空。
//
// # 生命周期
//
// 链路状态变化通过事件总线发布：EvtDataPathAvailable、EvtDataPathFailed、
// EvtDataPathClosed、EvtDataReceived。会话释放时 ReleaseAll 关闭所有链路。
//
// 无线电不支持数据路径时，所有操作返回 ErrUnsupported。
package datapath
