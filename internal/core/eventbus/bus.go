package eventbus

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
	"github.com/dep2p/go-nan/pkg/lib/log"
)

var logger = log.Logger("core/eventbus")

var (
	// ErrInvalidEventType 无效的事件类型
	ErrInvalidEventType = errors.New("eventbus: invalid event type")
	// ErrNonPointerType 非指针类型
	ErrNonPointerType = errors.New("eventbus: subscribe called with non-pointer type")
	// ErrEmitterClosed 发射器已关闭
	ErrEmitterClosed = errors.New("eventbus: emitter closed")
	// ErrWrongEventType 发射的事件与发射器类型不符
	ErrWrongEventType = errors.New("eventbus: emitted event has wrong type")
)

// defaultBuffer 订阅默认缓冲区大小
const defaultBuffer = 64

// 确保实现了接口
var _ pkgif.EventBus = (*Bus)(nil)

// Bus 事件总线
type Bus struct {
	mu    sync.Mutex
	nodes map[reflect.Type]*node
}

// node 单个事件类型的订阅者集合
type node struct {
	lk        sync.Mutex
	typ       reflect.Type
	sinks     []*Subscription
	nEmitters atomic.Int32
	keepLast  bool
	last      interface{}
	dropCount atomic.Int64
}

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{nodes: make(map[reflect.Type]*node)}
}

// elemType 校验并返回指针指向的元素类型
func elemType(eventType interface{}) (reflect.Type, error) {
	if eventType == nil {
		return nil, ErrInvalidEventType
	}
	typ := reflect.TypeOf(eventType)
	if typ.Kind() != reflect.Ptr {
		return nil, ErrNonPointerType
	}
	return typ.Elem(), nil
}

// Subscribe 订阅事件
func (b *Bus) Subscribe(eventType interface{}, opts ...pkgif.SubscriptionOpt) (pkgif.Subscription, error) {
	typ, err := elemType(eventType)
	if err != nil {
		return nil, err
	}

	settings := &pkgif.SubscriptionSettings{Buffer: defaultBuffer}
	for _, opt := range opts {
		opt(settings)
	}
	if settings.Buffer < 0 {
		settings.Buffer = 0
	}

	sub := &Subscription{
		bus: b,
		typ: typ,
		out: make(chan interface{}, settings.Buffer),
	}

	b.withNode(typ, func(n *node) {
		n.sinks = append(n.sinks, sub)
		if n.keepLast && n.last != nil {
			select {
			case sub.out <- n.last:
			default:
			}
		}
	})

	return sub, nil
}

// Emitter 获取发射器
func (b *Bus) Emitter(eventType interface{}, opts ...pkgif.EmitterOpt) (pkgif.Emitter, error) {
	typ, err := elemType(eventType)
	if err != nil {
		return nil, err
	}

	settings := &pkgif.EmitterSettings{}
	for _, opt := range opts {
		opt(settings)
	}

	var n *node
	b.withNode(typ, func(nd *node) {
		n = nd
		n.nEmitters.Add(1)
		if settings.Stateful {
			n.keepLast = true
		}
	})

	return &Emitter{bus: b, node: n, typ: typ}, nil
}

// withNode 在节点锁内执行操作，节点不存在时创建
func (b *Bus) withNode(typ reflect.Type, cb func(*node)) {
	b.mu.Lock()
	n, ok := b.nodes[typ]
	if !ok {
		n = &node{typ: typ}
		b.nodes[typ] = n
	}
	n.lk.Lock()
	b.mu.Unlock()

	cb(n)
	n.lk.Unlock()
}

// removeSub 移除订阅，节点空闲时删除
func (b *Bus) removeSub(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.nodes[sub.typ]
	if !ok {
		return
	}

	n.lk.Lock()
	for i, s := range n.sinks {
		if s == sub {
			n.sinks = append(n.sinks[:i], n.sinks[i+1:]...)
			break
		}
	}
	idle := len(n.sinks) == 0 && n.nEmitters.Load() == 0 && !n.keepLast
	n.lk.Unlock()

	if idle {
		delete(b.nodes, sub.typ)
	}
}

// dropEmitter 发射器关闭后减少引用计数
func (b *Bus) dropEmitter(n *node) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n.nEmitters.Add(-1) > 0 {
		return
	}
	n.lk.Lock()
	idle := len(n.sinks) == 0 && !n.keepLast
	n.lk.Unlock()
	if idle && b.nodes[n.typ] == n {
		delete(b.nodes, n.typ)
	}
}

// emit 发射事件到所有订阅者，缓冲区满时丢弃
func (n *node) emit(event interface{}) {
	n.lk.Lock()
	defer n.lk.Unlock()

	if n.keepLast {
		n.last = event
	}

	for _, sub := range n.sinks {
		select {
		case sub.out <- event:
		default:
			dropped := n.dropCount.Add(1)
			if dropped%100 == 1 {
				logger.Warn("慢消费者检测",
					"dropped", dropped,
					"type", n.typ.String(),
					"reason", "subscriber buffer full")
			}
		}
	}
}
