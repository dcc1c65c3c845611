package registry

import (
	"sync"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
	"github.com/dep2p/go-nan/pkg/lib/log"
	"github.com/dep2p/go-nan/pkg/types"
)

var logger = log.Logger("core/registry")

// 确保实现了接口
var _ pkgif.PeerRegistry = (*Registry)(nil)

// Registry 对端注册表
type Registry struct {
	mu    sync.RWMutex
	clock clock.Clock

	entries map[types.PeerHandle]*types.PeerEntry
	order   []types.PeerHandle
	seq     uint64
}

// New 创建注册表，clk 为 nil 时使用系统时钟
func New(clk clock.Clock) *Registry {
	if clk == nil {
		clk = clock.New()
	}
	return &Registry{
		clock:   clk,
		entries: make(map[types.PeerHandle]*types.PeerEntry),
	}
}

// Upsert 插入或刷新对端
//
// 已存在的条目只刷新 LastSeenSequence/LastSeenAt，DiscoveredVia 保持首次的角色。
func (r *Registry) Upsert(handle types.PeerHandle, role types.Role) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	now := r.clock.Now()

	if e, ok := r.entries[handle]; ok {
		e.LastSeenSequence = r.seq
		e.LastSeenAt = now
		return false
	}

	r.entries[handle] = &types.PeerEntry{
		Handle:           handle,
		DiscoveredVia:    role,
		LastSeenSequence: r.seq,
		FirstSeenAt:      now,
		LastSeenAt:       now,
	}
	r.order = append(r.order, handle)
	logger.Debug("新增对端", "peer", handle, "role", role, "total", len(r.order))
	return true
}

// Get 返回条目副本
func (r *Registry) Get(handle types.PeerHandle) (types.PeerEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[handle]
	if !ok {
		return types.PeerEntry{}, false
	}
	return *e, true
}

// Contains 是否已知该对端
func (r *Registry) Contains(handle types.PeerHandle) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[handle]
	return ok
}

// ListAll 按插入顺序返回句柄快照
func (r *Registry) ListAll() []types.PeerHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.PeerHandle, len(r.order))
	copy(out, r.order)
	return out
}

// Entries 按插入顺序返回条目快照
func (r *Registry) Entries() []types.PeerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.PeerEntry, 0, len(r.order))
	for _, h := range r.order {
		out = append(out, *r.entries[h])
	}
	return out
}

// Len 返回条目数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Clear 清空注册表
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.order) > 0 {
		logger.Debug("清空注册表", "peers", len(r.order))
	}
	r.entries = make(map[types.PeerHandle]*types.PeerEntry)
	r.order = nil
}
