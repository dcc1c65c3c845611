package eventbus

import (
	"reflect"
	"sync"

	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
)

// Publisher 按事件类型缓存发射器
//
// bus 为 nil 时 Publish 为空操作，组件可以在没有事件总线的情况下独立使用。
type Publisher struct {
	bus      pkgif.EventBus
	stateful map[reflect.Type]bool

	mu       sync.Mutex
	emitters map[reflect.Type]pkgif.Emitter
	closed   bool
}

// NewPublisher 创建 Publisher，statefulTypes 中的事件类型（指针）以有状态模式发射
func NewPublisher(bus pkgif.EventBus, statefulTypes ...interface{}) *Publisher {
	p := &Publisher{
		bus:      bus,
		stateful: make(map[reflect.Type]bool),
		emitters: make(map[reflect.Type]pkgif.Emitter),
	}
	for _, t := range statefulTypes {
		if typ, err := elemType(t); err == nil {
			p.stateful[typ] = true
		}
	}
	return p
}

// Publish 发射事件
func (p *Publisher) Publish(event interface{}) {
	if p == nil || p.bus == nil || event == nil {
		return
	}
	typ := reflect.TypeOf(event)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	em, ok := p.emitters[typ]
	if !ok {
		var opts []pkgif.EmitterOpt
		if p.stateful[typ] {
			opts = append(opts, Stateful())
		}
		var err error
		em, err = p.bus.Emitter(reflect.New(typ).Interface(), opts...)
		if err != nil {
			p.mu.Unlock()
			logger.Warn("创建发射器失败", "type", typ.String(), "error", err)
			return
		}
		p.emitters[typ] = em
	}
	p.mu.Unlock()

	if err := em.Emit(event); err != nil {
		logger.Debug("发射事件失败", "type", typ.String(), "error", err)
	}
}

// Close 关闭所有发射器，之后的 Publish 为空操作
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for typ, em := range p.emitters {
		_ = em.Close()
		delete(p.emitters, typ)
	}
}
