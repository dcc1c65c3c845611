// Package session 实现邻居感知会话状态机
//
// # 状态
//
//	Detached --Initialize--> Attaching --attach 成功--> Attached
//	                             |                      |
//	                             +--attach 失败--> Detached
//	Attached --Publish/Subscribe--> Attached(+Publishing/+Subscribing)
//	任意状态 --Release--> Terminated --Initialize--> Attaching
//
// 发布与订阅子会话相互独立，可以同时存在。
//
// # 事件循环
//
// 每个 Machine 拥有一个事件循环 goroutine 和一个无界 FIFO 队列。
// 无线电回调只负责把类型化事件放入队列，不会阻塞；公共操作
// （Initialize/Publish/Subscribe/Release 以及通过 Do 提交的函数）
// 同样进入队列并等待结果。因此会话状态和对端注册表只有一个写者。
//
// # 过期回调
//
// 每次 attach 都会递增代数（generation），每次发布/订阅请求都会创建
// 新的回调对象。来自旧代数或已被替换的回调对象的事件会被忽略；
// 过期的成功回调所带来的会话会被立即关闭。
//
// # 释放
//
// Release 依次关闭发布会话、订阅会话和 attach 会话，单个失败只记录
// 日志并继续，最后清空注册表并进入 Terminated。已入队但尚未处理的
// 对端事件因代数递增而被丢弃。
package session
