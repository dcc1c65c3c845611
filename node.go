package nan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-nan/config"
	"github.com/dep2p/go-nan/internal/core/eventbus"
	"github.com/dep2p/go-nan/internal/core/metrics"
	"github.com/dep2p/go-nan/internal/core/registry"
	"github.com/dep2p/go-nan/internal/core/session"
	"github.com/dep2p/go-nan/internal/discovery/coordinator"
	"github.com/dep2p/go-nan/internal/protocol/datapath"
	"github.com/dep2p/go-nan/internal/protocol/messaging"
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
	"github.com/dep2p/go-nan/pkg/lib/log"
)

var logger = log.Logger("nan")

// 启动超时配置
const (
	// startTimeout Fx App 启动/停止超时
	startTimeout = 10 * time.Second
)

// Node NAN 节点
//
// Node 是门面，聚合会话状态机、发现协调器、消息分发器和对端注册表。
// 所有会话操作都经过会话事件循环串行执行。
type Node struct {
	opts *options
	app  *fx.App

	mu      sync.RWMutex
	started bool
	closed  bool

	// 由 Fx 注入
	bus         *eventbus.Bus
	metrics     *metrics.Metrics
	registry    *registry.Registry
	machine     *session.Machine
	dispatcher  *messaging.Dispatcher
	dataPaths   *datapath.Manager
	coordinator *coordinator.Coordinator
}

// New 创建节点（不启动）
func New(opts ...Option) (*Node, error) {
	o := newOptions()
	if err := o.apply(opts...); err != nil {
		return nil, fmt.Errorf("apply options: %w", err)
	}
	if o.config.Service.DeviceID == "" {
		o.config.Service.DeviceID = uuid.NewString()
	}

	node := &Node{opts: o}
	app, err := buildFxApp(o, node)
	if err != nil {
		return nil, err
	}
	node.app = app

	logger.Debug("节点已创建",
		"service", o.config.Service.Identity(),
		"device", o.config.Service.DeviceID)
	return node, nil
}

// Start 创建并启动节点
func Start(ctx context.Context, opts ...Option) (*Node, error) {
	node, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := node.Start(ctx); err != nil {
		return nil, err
	}
	return node, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

// Start 启动事件循环，不会 attach
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	if n.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := n.app.Start(startCtx); err != nil {
		logger.Error("节点启动失败", "error", err)
		return fmt.Errorf("start fx app: %w", err)
	}

	n.started = true
	logger.Info("节点已启动", "service", n.opts.config.Service.Identity())
	return nil
}

// Close 释放会话并停止节点，可重复调用
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	n.closed = true
	if !n.started {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := n.app.Stop(ctx); err != nil {
		logger.Error("停止节点失败", "error", err)
		return fmt.Errorf("stop fx app: %w", err)
	}
	logger.Info("节点已关闭")
	return nil
}

func (n *Node) checkRunning() error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrNodeClosed
	}
	if !n.started {
		return ErrNotStarted
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              会话操作
// ════════════════════════════════════════════════════════════════════════════

// Initialize 请求 attach 无线电栈
//
// 返回 nil 表示请求已发出；attach 结果异步到达，可用 WaitForState 等待。
func (n *Node) Initialize(ctx context.Context) error {
	if err := n.checkRunning(); err != nil {
		return err
	}
	return n.machine.Initialize(ctx)
}

// Publish 发布服务
func (n *Node) Publish(ctx context.Context) error {
	if err := n.checkRunning(); err != nil {
		return err
	}
	return n.machine.Publish(ctx)
}

// SubscribeToService 订阅服务
func (n *Node) SubscribeToService(ctx context.Context) error {
	if err := n.checkRunning(); err != nil {
		return err
	}
	return n.machine.Subscribe(ctx)
}

// Release 拆除所有会话并清空对端注册表
//
// 可在任意状态调用，重复调用是空操作。返回拆除过程中的聚合错误，
// 无论如何都会进入 Terminated。
func (n *Node) Release(ctx context.Context) error {
	if err := n.checkRunning(); err != nil {
		return err
	}
	return n.machine.Release(ctx)
}

// SendMessage 向已知对端发送消息
func (n *Node) SendMessage(ctx context.Context, peer PeerHandle, payload []byte) (OutboundMessage, error) {
	if err := n.checkRunning(); err != nil {
		return OutboundMessage{}, err
	}
	var msg OutboundMessage
	err := n.machine.Do(ctx, func() error {
		var err error
		msg, err = n.dispatcher.SendTo(peer, payload)
		return err
	})
	return msg, err
}

// BroadcastMessage 向所有已知对端发送消息
func (n *Node) BroadcastMessage(ctx context.Context, payload []byte) (BroadcastResult, error) {
	if err := n.checkRunning(); err != nil {
		return BroadcastResult{}, err
	}
	var res BroadcastResult
	err := n.machine.Do(ctx, func() error {
		var err error
		res, err = n.dispatcher.Broadcast(payload)
		return err
	})
	return res, err
}

// ════════════════════════════════════════════════════════════════════════════
//                              数据路径
// ════════════════════════════════════════════════════════════════════════════

// RequestDataPath 向对端发起数据路径请求
//
// 返回 nil 表示请求已发出；对端确认后链路打开，可用时发布 EvtDataPathAvailable。
func (n *Node) RequestDataPath(ctx context.Context, peer PeerHandle) error {
	if err := n.checkRunning(); err != nil {
		return err
	}
	return n.machine.Do(ctx, func() error {
		return n.dataPaths.Request(peer)
	})
}

// SendLargeData 通过可用的数据路径发送超过单条消息上限的数据
func (n *Node) SendLargeData(peer PeerHandle, payload []byte) error {
	if err := n.checkRunning(); err != nil {
		return err
	}
	return n.dataPaths.SendLarge(peer, payload)
}

// CloseDataPath 关闭到对端的数据路径
func (n *Node) CloseDataPath(peer PeerHandle) error {
	if err := n.checkRunning(); err != nil {
		return err
	}
	return n.dataPaths.Close(peer)
}

// DataPaths 返回数据路径快照
func (n *Node) DataPaths() []DataPathInfo {
	return n.dataPaths.List()
}

// ════════════════════════════════════════════════════════════════════════════
//                              查询
// ════════════════════════════════════════════════════════════════════════════

// State 返回会话状态
func (n *Node) State() SessionState {
	return n.machine.State()
}

// Peers 按发现顺序返回已知对端
func (n *Node) Peers() []PeerHandle {
	return n.registry.ListAll()
}

// PeerEntries 按发现顺序返回注册表条目
func (n *Node) PeerEntries() []PeerEntry {
	return n.registry.Entries()
}

// PeerByDevice 返回设备 ID 最近对应的句柄
func (n *Node) PeerByDevice(deviceID string) (PeerHandle, bool) {
	return n.coordinator.PeerByDevice(deviceID)
}

// DeviceID 返回本节点在 SSI 中广播的设备 ID
func (n *Node) DeviceID() string {
	return n.opts.config.Service.DeviceID
}

// Config 返回生效配置的副本
func (n *Node) Config() config.Config {
	return *n.opts.config
}

// EventBus 返回事件总线
func (n *Node) EventBus() pkgif.EventBus {
	return n.bus
}

// Metrics 返回指标 Gatherer
func (n *Node) Metrics() prometheus.Gatherer {
	return n.metrics.Gatherer()
}

// MaxMessageLength 返回生效的单条消息上限
func (n *Node) MaxMessageLength() int {
	return n.dispatcher.MaxMessageLength()
}

// ════════════════════════════════════════════════════════════════════════════
//                              等待
// ════════════════════════════════════════════════════════════════════════════

// WaitForState 轮询等待会话状态满足 pred
//
// ctx 没有截止时间时使用配置的 ReadyTimeout。
func (n *Node) WaitForState(ctx context.Context, pred StatePredicate) error {
	cfg := n.opts.config.Session
	if _, ok := ctx.Deadline(); !ok && cfg.ReadyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ReadyTimeout.Duration())
		defer cancel()
	}

	if pred(n.State()) {
		return nil
	}

	ticker := time.NewTicker(cfg.ReadyCheckInterval.Duration())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for state (current %s): %w", n.State(), ctx.Err())
		case <-ticker.C:
			if pred(n.State()) {
				return nil
			}
		}
	}
}
