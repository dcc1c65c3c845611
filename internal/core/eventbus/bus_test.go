package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
)

type testEvent struct {
	N int
}

type otherEvent struct{}

func recv(t *testing.T, sub pkgif.Subscription) interface{} {
	t.Helper()
	select {
	case evt := <-sub.Out():
		return evt
	case <-time.After(time.Second):
		t.Fatal("等待事件超时")
		return nil
	}
}

// TestBus_SubscribeEmit 测试基本发布订阅
func TestBus_SubscribeEmit(t *testing.T) {
	bus := NewBus()

	sub1, err := bus.Subscribe(new(testEvent))
	require.NoError(t, err)
	defer sub1.Close()
	sub2, err := bus.Subscribe(new(testEvent))
	require.NoError(t, err)
	defer sub2.Close()

	em, err := bus.Emitter(new(testEvent))
	require.NoError(t, err)
	defer em.Close()

	require.NoError(t, em.Emit(testEvent{N: 1}))
	assert.Equal(t, testEvent{N: 1}, recv(t, sub1))
	assert.Equal(t, testEvent{N: 1}, recv(t, sub2))
}

func TestBus_InvalidTypes(t *testing.T) {
	bus := NewBus()

	_, err := bus.Subscribe(nil)
	assert.ErrorIs(t, err, ErrInvalidEventType)
	_, err = bus.Subscribe(testEvent{})
	assert.ErrorIs(t, err, ErrNonPointerType)
	_, err = bus.Emitter(testEvent{})
	assert.ErrorIs(t, err, ErrNonPointerType)

	em, err := bus.Emitter(new(testEvent))
	require.NoError(t, err)
	assert.ErrorIs(t, em.Emit(otherEvent{}), ErrWrongEventType)
	assert.NoError(t, em.Emit(&testEvent{N: 2}))

	require.NoError(t, em.Close())
	assert.ErrorIs(t, em.Emit(testEvent{}), ErrEmitterClosed)
}

// TestBus_SlowConsumerDrops 缓冲区满时丢弃而不是阻塞
func TestBus_SlowConsumerDrops(t *testing.T) {
	bus := NewBus()
	sub, err := bus.Subscribe(new(testEvent), BufSize(1))
	require.NoError(t, err)
	defer sub.Close()

	em, _ := bus.Emitter(new(testEvent))
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			_ = em.Emit(testEvent{N: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit 被慢消费者阻塞")
	}
	assert.Equal(t, testEvent{N: 0}, recv(t, sub))
}

func TestBus_Stateful(t *testing.T) {
	bus := NewBus()
	em, err := bus.Emitter(new(testEvent), Stateful())
	require.NoError(t, err)
	require.NoError(t, em.Emit(testEvent{N: 42}))

	sub, err := bus.Subscribe(new(testEvent))
	require.NoError(t, err)
	defer sub.Close()
	assert.Equal(t, testEvent{N: 42}, recv(t, sub))
}

func TestSubscription_CloseIdempotent(t *testing.T) {
	bus := NewBus()
	sub, _ := bus.Subscribe(new(testEvent))
	em, _ := bus.Emitter(new(testEvent))

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	_, ok := <-sub.Out()
	assert.False(t, ok)
	assert.NoError(t, em.Emit(testEvent{}))
}

func TestPublisher(t *testing.T) {
	bus := NewBus()
	sub, _ := bus.Subscribe(new(testEvent))
	defer sub.Close()

	pub := NewPublisher(bus, new(otherEvent))
	defer pub.Close()

	pub.Publish(testEvent{N: 7})
	assert.Equal(t, testEvent{N: 7}, recv(t, sub))

	// 有状态事件：后订阅者也能收到
	pub.Publish(otherEvent{})
	late, _ := bus.Subscribe(new(otherEvent))
	defer late.Close()
	assert.Equal(t, otherEvent{}, recv(t, late))

	// nil 总线与 nil Publisher 都是空操作
	NewPublisher(nil).Publish(testEvent{})
	var nilPub *Publisher
	nilPub.Publish(testEvent{})
	nilPub.Close()
}

// TestPublisher_CloseReleasesNodes 关闭后发射器全部注销，之后的 Publish 不再重建
func TestPublisher_CloseReleasesNodes(t *testing.T) {
	bus := NewBus()
	pub := NewPublisher(bus)

	pub.Publish(testEvent{N: 1})
	pub.Publish(otherEvent{})
	bus.mu.Lock()
	assert.Len(t, bus.nodes, 2)
	bus.mu.Unlock()

	pub.Close()
	pub.Publish(testEvent{N: 2})

	bus.mu.Lock()
	defer bus.mu.Unlock()
	assert.Empty(t, bus.nodes)
}

func TestModule(t *testing.T) {
	var bus pkgif.EventBus
	app := fxtest.New(t, Module(), fx.Populate(&bus))
	defer app.RequireStart().RequireStop()
	assert.NotNil(t, bus)
}
