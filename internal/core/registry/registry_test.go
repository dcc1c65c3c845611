package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
	"github.com/dep2p/go-nan/pkg/types"
)

// TestUpsert_Idempotent 重复句柄只保留一个条目
func TestUpsert_Idempotent(t *testing.T) {
	r := New(nil)

	seq := []types.PeerHandle{1, 2, 1, 3, 2, 2, 1}
	inserted := 0
	for _, h := range seq {
		if r.Upsert(h, types.RoleSubscriber) {
			inserted++
		}
	}

	assert.Equal(t, 3, inserted)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []types.PeerHandle{1, 2, 3}, r.ListAll())
}

// TestUpsert_KeepsFirstRole 刷新不改变首次角色，只推进序号和时间
func TestUpsert_KeepsFirstRole(t *testing.T) {
	clk := clock.NewMock()
	r := New(clk)

	require.True(t, r.Upsert(7, types.RoleSubscriber))
	first, ok := r.Get(7)
	require.True(t, ok)

	clk.Add(5 * time.Second)
	require.False(t, r.Upsert(7, types.RolePublisher))

	e, ok := r.Get(7)
	require.True(t, ok)
	assert.Equal(t, types.RoleSubscriber, e.DiscoveredVia)
	assert.Greater(t, e.LastSeenSequence, first.LastSeenSequence)
	assert.Equal(t, first.FirstSeenAt, e.FirstSeenAt)
	assert.Equal(t, first.FirstSeenAt.Add(5*time.Second), e.LastSeenAt)
}

func TestClear(t *testing.T) {
	r := New(nil)
	r.Upsert(1, types.RolePublisher)
	r.Upsert(2, types.RoleSubscriber)
	before, _ := r.Get(2)

	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.ListAll())
	assert.False(t, r.Contains(1))

	// 序号跨 Clear 继续单调递增
	r.Upsert(2, types.RoleSubscriber)
	after, _ := r.Get(2)
	assert.Greater(t, after.LastSeenSequence, before.LastSeenSequence)
}

// TestListAll_Snapshot 快照不受后续写入影响
func TestListAll_Snapshot(t *testing.T) {
	r := New(nil)
	r.Upsert(1, types.RolePublisher)
	r.Upsert(2, types.RolePublisher)

	snap := r.ListAll()
	entries := r.Entries()
	r.Upsert(3, types.RolePublisher)
	r.Clear()

	assert.Equal(t, []types.PeerHandle{1, 2}, snap)
	require.Len(t, entries, 2)
	assert.Equal(t, types.PeerHandle(2), entries[1].Handle)
}

func TestConcurrentReadDuringWrite(t *testing.T) {
	r := New(nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			r.Upsert(types.PeerHandle(i%100), types.RoleSubscriber)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			for _, h := range r.ListAll() {
				_ = r.Contains(h)
			}
		}
	}()
	wg.Wait()

	assert.Equal(t, 100, r.Len())
}

func TestModule(t *testing.T) {
	var reg pkgif.PeerRegistry
	app := fxtest.New(t,
		Module(),
		fx.Provide(func() clock.Clock { return clock.NewMock() }),
		fx.Populate(&reg),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, reg)
	assert.True(t, reg.Upsert(1, types.RolePublisher))
}
