package messaging

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/dep2p/go-nan/config"
	"github.com/dep2p/go-nan/internal/core/eventbus"
	"github.com/dep2p/go-nan/internal/core/metrics"
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
	"github.com/dep2p/go-nan/pkg/lib/log"
	"github.com/dep2p/go-nan/pkg/types"
)

var logger = log.Logger("protocol/messaging")

// 确保实现了接口
var (
	_ pkgif.Dispatcher = (*Dispatcher)(nil)
	_ pkgif.Greeter    = (*Dispatcher)(nil)
)

// Dispatcher 消息分发器
type Dispatcher struct {
	config   *Config
	radio    pkgif.Radio
	router   pkgif.Router
	registry pkgif.PeerRegistry
	pub      *eventbus.Publisher
	metrics  *metrics.Metrics

	limiter *rate.Limiter
	nextID  atomic.Int64
}

// New 创建消息分发器，bus 和 m 可以为 nil
func New(radio pkgif.Radio, router pkgif.Router, registry pkgif.PeerRegistry, bus pkgif.EventBus, m *metrics.Metrics, opts ...Option) (*Dispatcher, error) {
	if radio == nil {
		return nil, ErrNilRadio
	}
	if router == nil || registry == nil {
		return nil, fmt.Errorf("messaging: router and registry are required")
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.SendRate > 0 {
		limit = rate.Limit(cfg.SendRate)
	}

	return &Dispatcher{
		config:   cfg,
		radio:    radio,
		router:   router,
		registry: registry,
		pub:      eventbus.NewPublisher(bus),
		metrics:  m,
		limiter:  rate.NewLimiter(limit, cfg.SendBurst),
	}, nil
}

// ============================================================================
//                              发送
// ============================================================================

// SendTo 向已知对端发送消息
//
// 检查顺序：对端已知、存在活跃会话、长度、限速。任何检查失败都不调用无线电。
func (d *Dispatcher) SendTo(peer types.PeerHandle, payload []byte) (types.OutboundMessage, error) {
	return d.send(peer, payload, false)
}

// Greet 发送问候，语义同 SendTo
func (d *Dispatcher) Greet(peer types.PeerHandle, payload []byte) (types.OutboundMessage, error) {
	return d.send(peer, payload, true)
}

func (d *Dispatcher) send(peer types.PeerHandle, payload []byte, greeting bool) (types.OutboundMessage, error) {
	if !d.registry.Contains(peer) {
		return types.OutboundMessage{}, fmt.Errorf("%w: %s", ErrUnknownPeer, peer)
	}
	ref, role, ok := d.router.ActiveSession()
	if !ok {
		return types.OutboundMessage{}, ErrNoActiveSession
	}
	if err := d.checkLength(payload); err != nil {
		return types.OutboundMessage{}, err
	}
	return d.sendVia(ref, role, peer, payload, greeting)
}

// Broadcast 向注册表快照中的每个对端依次发送
//
// 没有活跃会话或消息过长时直接返回错误；其余情况下返回的错误为 nil，
// 单个对端的失败记录在结果中。
func (d *Dispatcher) Broadcast(payload []byte) (types.BroadcastResult, error) {
	ref, role, ok := d.router.ActiveSession()
	if !ok {
		return types.BroadcastResult{}, ErrNoActiveSession
	}
	if err := d.checkLength(payload); err != nil {
		return types.BroadcastResult{}, err
	}

	peers := d.registry.ListAll()
	result := types.BroadcastResult{Attempted: len(peers)}
	for _, peer := range peers {
		if _, err := d.sendVia(ref, role, peer, payload, false); err != nil {
			logger.Debug("广播发送失败", "peer", peer, "error", err)
			result.Failures = append(result.Failures, types.SendFailure{Peer: peer, Err: err})
		}
	}

	logger.Debug("广播完成", "attempted", result.Attempted, "failed", len(result.Failures))
	d.pub.Publish(types.EvtBroadcast{Result: result})
	return result, nil
}

func (d *Dispatcher) sendVia(ref types.SessionRef, role types.Role, peer types.PeerHandle, payload []byte, greeting bool) (types.OutboundMessage, error) {
	if !d.limiter.Allow() {
		d.metrics.ObserveSend(role, len(payload), ErrRateLimited)
		return types.OutboundMessage{}, ErrRateLimited
	}

	msg := types.OutboundMessage{
		Target:    peer,
		Payload:   payload,
		MessageID: int(d.nextID.Add(1)),
	}
	if err := d.radio.Send(ref, peer, msg.MessageID, payload); err != nil {
		d.metrics.ObserveSend(role, len(payload), err)
		return msg, fmt.Errorf("messaging: send to %s: %w", peer, err)
	}

	d.metrics.ObserveSend(role, len(payload), nil)
	d.pub.Publish(types.EvtMessageSent{Message: msg, Via: role, Greeting: greeting})
	return msg, nil
}

// Close 注销事件发射器，之后的发送不再发布事件
func (d *Dispatcher) Close() {
	d.pub.Close()
}

// MaxMessageLength 返回生效的单条消息上限
func (d *Dispatcher) MaxMessageLength() int {
	if d.config.MaxMessageLength > 0 {
		return d.config.MaxMessageLength
	}
	if n := d.radio.Characteristics().MaxMessageLength; n > 0 {
		return n
	}
	return config.DefaultMaxMessageLength
}

func (d *Dispatcher) checkLength(payload []byte) error {
	if limit := d.MaxMessageLength(); len(payload) > limit {
		return fmt.Errorf("%w: %d > %d bytes", ErrMessageTooLong, len(payload), limit)
	}
	return nil
}
