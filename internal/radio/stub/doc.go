// Package stub 提供主机侧的邻居感知无线电实现
//
// Radio 实现 interfaces.Radio，不依赖任何硬件，用于测试和演示：
//
//   - 测试控制：可用性、attach 成功/失败/手动完成、按对端注入发送错误、
//     按角色注入发现/消息/终止回调，并记录所有发送。
//   - Medium：把多个 Radio 连接在同一个进程内的"空中"，
//     服务名相同且匹配过滤器兼容的发布者和订阅者互相发现，消息按句柄路由。
//
// 回调总是在不持有任何锁的情况下调用，可以同步触发。
package stub
