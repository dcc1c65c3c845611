package session

import "sync"

// event 事件循环上执行的工作单元
type event interface {
	apply(m *Machine)
}

// queue 无界 FIFO 队列
//
// push 从不阻塞，无线电回调可以在任意 goroutine 上（包括在
// 请求方法内部同步）调用。signal 容量为 1，只表示"有新事件"。
type queue struct {
	mu     sync.Mutex
	items  []event
	closed bool
	signal chan struct{}
}

func newQueue() *queue {
	return &queue{signal: make(chan struct{}, 1)}
}

// push 入队，队列已关闭时返回 false
func (q *queue) push(ev event) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, ev)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// drain 取出当前所有事件
func (q *queue) drain() []event {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}
