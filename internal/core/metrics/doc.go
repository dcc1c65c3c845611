// Package metrics 提供会话协调的监控指标
//
// 指标基于 prometheus/client_golang，注册在独立的 prometheus.Registry 上，
// 由应用决定是否通过 promhttp 暴露：
//
//	m := metrics.New()
//	http.Handle("/metrics", promhttp.HandlerFor(m.Gatherer(), promhttp.HandlerOpts{}))
//
// # 指标
//
//   - nan_peers                        当前注册表中的对端数
//   - nan_peer_events_total{kind}      可达性信号（discovered/message）
//   - nan_greetings_total              自动问候数
//   - nan_sends_total{via,result}      发送请求（ok/error）
//   - nan_bytes_total{direction}       收发字节数（in/out）
//   - nan_state_transitions_total{to}  会话状态迁移
//
// 所有方法对 nil *Metrics 都是空操作，组件可以不带指标运行。
package metrics
