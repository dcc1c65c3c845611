package coordinator

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-nan/internal/core/eventbus"
	"github.com/dep2p/go-nan/internal/core/metrics"
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
	"github.com/dep2p/go-nan/pkg/lib/log"
	"github.com/dep2p/go-nan/pkg/types"
)

var logger = log.Logger("discovery/coordinator")

// 确保实现了接口
var _ pkgif.PeerObserver = (*Coordinator)(nil)

// ============================================================================
//                              Coordinator 结构体
// ============================================================================

// Coordinator 发现协调器
type Coordinator struct {
	config   *Config
	registry pkgif.PeerRegistry
	greeter  pkgif.Greeter
	pub      *eventbus.Publisher
	metrics  *metrics.Metrics

	// 设备 ID -> 最新句柄
	devices *lru.Cache[string, types.PeerHandle]

	// 重复发现日志节流
	resight rate.Sometimes

	// 数据路径协商，nil 时忽略请求
	dataPath pkgif.DataPathNegotiator

	// 已处理过数据路径请求的设备 ID，会话释放时清空
	dataPathRequests map[string]struct{}
}

// New 创建协调器
//
// greeter、bus 和 m 可以为 nil；greeter 为 nil 时不发送问候。
func New(cfg *Config, registry pkgif.PeerRegistry, greeter pkgif.Greeter, bus pkgif.EventBus, m *metrics.Metrics, opts ...Option) (*Coordinator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, ErrNilRegistry
	}

	devices, err := lru.New[string, types.PeerHandle](cfg.DeviceIndexSize)
	if err != nil {
		return nil, fmt.Errorf("coordinator: create device index: %w", err)
	}

	c := &Coordinator{
		config:           cfg,
		registry:         registry,
		greeter:          greeter,
		pub:              eventbus.NewPublisher(bus),
		metrics:          m,
		devices:          devices,
		resight:          rate.Sometimes{First: 3, Interval: 10 * time.Second},
		dataPathRequests: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close 注销事件发射器
func (c *Coordinator) Close() {
	c.pub.Close()
}

// ============================================================================
//                              PeerObserver
// ============================================================================

// OnServiceDiscovered 处理发现事件
func (c *Coordinator) OnServiceDiscovered(role types.Role, peer types.PeerHandle, serviceInfo []byte, matchFilter [][]byte) {
	info := types.ParseServiceInfo(serviceInfo)
	inserted := c.observe(role, peer, info)
	c.metrics.ObservePeerEvent("discovered", 0)

	if inserted {
		logger.Info("发现新对端", "peer", peer, "role", role, "dev", info.DeviceID())
		c.greet(peer)
	} else {
		c.resight.Do(func() {
			logger.Debug("重复发现对端", "peer", peer, "role", role)
		})
	}

	c.pub.Publish(types.EvtPeerDiscovered{
		Peer:        peer,
		Role:        role,
		ServiceInfo: info,
		MatchFilter: matchFilter,
		New:         inserted,
	})
}

// OnMessageReceived 处理消息事件
//
// 数据路径协商消息在这里消费，不作为普通消息发布。
// 普通消息若是带 sender 的信封，sender 作为设备 ID 记入索引。
func (c *Coordinator) OnMessageReceived(role types.Role, peer types.PeerHandle, payload []byte) {
	if dev, ok := types.ParseDataPathRequest(payload); ok {
		c.onDataPathRequest(role, peer, dev)
		return
	}
	if types.IsDataPathAck(payload) {
		c.onDataPathAck(role, peer)
		return
	}

	var info types.ServiceInfo
	if env, ok := types.ParseEnvelope(payload); ok && env.Sender != "" {
		info = types.ServiceInfo{types.ServiceInfoDeviceKey: env.Sender}
	}
	inserted := c.observe(role, peer, info)
	c.metrics.ObservePeerEvent("message", len(payload))

	if inserted {
		logger.Info("收到未知对端消息，已登记", "peer", peer, "role", role, "dev", info.DeviceID())
	}
	logger.Debug("收到消息", "peer", peer, "bytes", len(payload))

	c.pub.Publish(types.EvtMessageReceived{
		Peer:    peer,
		Role:    role,
		Payload: payload,
		New:     inserted,
	})
}

// Reset 丢弃设备索引和数据路径状态
func (c *Coordinator) Reset() {
	c.devices.Purge()
	clear(c.dataPathRequests)
	if c.dataPath != nil {
		c.dataPath.ReleaseAll()
	}
	c.metrics.SetPeers(0)
}

// ============================================================================
//                              查询
// ============================================================================

// PeerByDevice 返回设备 ID 最近对应的句柄
func (c *Coordinator) PeerByDevice(deviceID string) (types.PeerHandle, bool) {
	return c.devices.Get(deviceID)
}

// ============================================================================
//                              内部方法
// ============================================================================

// observe 登记或刷新对端，返回是否为新插入
func (c *Coordinator) observe(role types.Role, peer types.PeerHandle, info types.ServiceInfo) bool {
	inserted := c.registry.Upsert(peer, role)
	if dev := info.DeviceID(); dev != "" {
		c.devices.Add(dev, peer)
	}
	c.metrics.SetPeers(c.registry.Len())
	return inserted
}

func (c *Coordinator) greet(peer types.PeerHandle) {
	if !c.config.EnableGreeting || c.greeter == nil {
		return
	}
	msg, err := c.greeter.Greet(peer, []byte(c.config.Greeting))
	if err != nil {
		logger.Warn("发送问候失败", "peer", peer, "error", err)
		return
	}
	c.metrics.ObserveGreeting()
	logger.Debug("已发送问候", "peer", peer, "id", msg.MessageID)
}

// ============================================================================
//                              数据路径协商
// ============================================================================

// onDataPathRequest 响应方：每个设备只成功响应一次，直到会话释放
func (c *Coordinator) onDataPathRequest(role types.Role, peer types.PeerHandle, dev string) {
	c.observe(role, peer, types.ServiceInfo{types.ServiceInfoDeviceKey: dev})
	c.metrics.ObservePeerEvent("message", 0)

	if !c.config.AcceptDataPath || c.dataPath == nil {
		logger.Debug("未启用数据路径，忽略请求", "peer", peer, "dev", dev)
		return
	}
	if _, seen := c.dataPathRequests[dev]; seen {
		logger.Debug("重复的数据路径请求，忽略", "peer", peer, "dev", dev)
		return
	}
	if err := c.dataPath.Accept(peer, dev); err != nil {
		logger.Warn("响应数据路径请求失败", "peer", peer, "dev", dev, "error", err)
		return
	}
	c.dataPathRequests[dev] = struct{}{}
	logger.Info("已响应数据路径请求", "peer", peer, "dev", dev)
	c.pub.Publish(types.EvtDataPathRequested{Peer: peer, DeviceID: dev})
}

// onDataPathAck 发起方：对端确认后打开本端链路
func (c *Coordinator) onDataPathAck(role types.Role, peer types.PeerHandle) {
	c.observe(role, peer, nil)
	c.metrics.ObservePeerEvent("message", 0)

	if c.dataPath == nil {
		return
	}
	if err := c.dataPath.Acknowledged(peer); err != nil {
		logger.Warn("打开数据路径失败", "peer", peer, "error", err)
	}
}
