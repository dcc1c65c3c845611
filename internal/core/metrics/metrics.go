package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-nan/pkg/types"
)

const namespace = "nan"

// Metrics 会话协调指标
type Metrics struct {
	registry *prometheus.Registry

	peers       prometheus.Gauge
	peerEvents  *prometheus.CounterVec
	greetings   prometheus.Counter
	sends       *prometheus.CounterVec
	bytes       *prometheus.CounterVec
	transitions *prometheus.CounterVec
	dataPaths   *prometheus.CounterVec
}

// New 创建指标并注册到独立的 Registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		peers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peers",
			Help:      "Number of peers currently known in the registry.",
		}),
		peerEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "peer_events_total",
			Help:      "Reachability signals processed, by kind.",
		}, []string{"kind"}),
		greetings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "greetings_total",
			Help:      "Greetings sent to newly discovered peers.",
		}),
		sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sends_total",
			Help:      "Send requests handed to the radio, by session role and result.",
		}, []string{"via", "result"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_total",
			Help:      "Payload bytes sent and received.",
		}, []string{"direction"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Session state transitions, by target phase.",
		}, []string{"to"}),
		dataPaths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_path_events_total",
			Help:      "Data path lifecycle events and transfers, by event.",
		}, []string{"event"}),
	}

	m.registry.MustRegister(m.peers, m.peerEvents, m.greetings, m.sends, m.bytes, m.transitions, m.dataPaths)
	return m
}

// Gatherer 返回用于暴露指标的 Gatherer
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// SetPeers 设置当前对端数
func (m *Metrics) SetPeers(n int) {
	if m == nil {
		return
	}
	m.peers.Set(float64(n))
}

// ObservePeerEvent 记录可达性信号，kind 为 discovered 或 message
func (m *Metrics) ObservePeerEvent(kind string, payloadLen int) {
	if m == nil {
		return
	}
	m.peerEvents.WithLabelValues(kind).Inc()
	if payloadLen > 0 {
		m.bytes.WithLabelValues("in").Add(float64(payloadLen))
	}
}

// ObserveGreeting 记录一次问候
func (m *Metrics) ObserveGreeting() {
	if m == nil {
		return
	}
	m.greetings.Inc()
}

// ObserveSend 记录一次发送请求
func (m *Metrics) ObserveSend(via types.Role, payloadLen int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.sends.WithLabelValues(via.String(), result).Inc()
	if err == nil {
		m.bytes.WithLabelValues("out").Add(float64(payloadLen))
	}
}

// ObserveTransition 记录状态迁移
func (m *Metrics) ObserveTransition(to types.SessionPhase) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to.String()).Inc()
}

// ObserveDataPath 记录数据路径事件
//
// event 为 requested、accepted、available、failed、closed、sent 或 received，
// payloadLen 只对 sent/received 计入流量。
func (m *Metrics) ObserveDataPath(event string, payloadLen int) {
	if m == nil {
		return
	}
	m.dataPaths.WithLabelValues(event).Inc()
	switch event {
	case "sent":
		m.bytes.WithLabelValues("out").Add(float64(payloadLen))
	case "received":
		m.bytes.WithLabelValues("in").Add(float64(payloadLen))
	}
}
