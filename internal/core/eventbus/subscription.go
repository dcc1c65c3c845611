package eventbus

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Subscription 订阅
type Subscription struct {
	bus       *Bus
	typ       reflect.Type
	out       chan interface{}
	closeOnce sync.Once
}

// Out 返回事件通道
func (s *Subscription) Out() <-chan interface{} {
	return s.out
}

// Close 取消订阅，可重复调用
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		// 先从总线移除，之后不会再有发送方写入 out
		s.bus.removeSub(s)
		close(s.out)
	})
	return nil
}

// Emitter 事件发射器
type Emitter struct {
	bus       *Bus
	node      *node
	typ       reflect.Type
	closed    atomic.Bool
	closeOnce sync.Once
}

// Emit 发射事件，接受 T 或 *T
func (e *Emitter) Emit(event interface{}) error {
	if e.closed.Load() {
		return ErrEmitterClosed
	}
	if event == nil {
		return ErrWrongEventType
	}
	typ := reflect.TypeOf(event)
	if typ != e.typ && !(typ.Kind() == reflect.Ptr && typ.Elem() == e.typ) {
		return ErrWrongEventType
	}
	e.node.emit(event)
	return nil
}

// Close 关闭发射器
func (e *Emitter) Close() error {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		e.bus.dropEmitter(e.node)
	})
	return nil
}
