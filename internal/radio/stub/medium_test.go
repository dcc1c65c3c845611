package stub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-nan/pkg/types"
)

// TestMedium_DiscoveryAndMessaging 发布者与订阅者互相发现并交换消息
func TestMedium_DiscoveryAndMessaging(t *testing.T) {
	m := NewMedium()
	a := m.NewRadio()
	b := m.NewRadio()

	pub := &discoveryRecorder{}
	a.Publish(attach(t, a), types.PublishConfig{Identity: identity, ServiceInfo: []byte("dev=a")}, pub)

	sub := &discoveryRecorder{}
	b.Subscribe(attach(t, b), types.SubscribeConfig{Identity: identity}, sub)

	require.Len(t, sub.discovered, 1)
	aInB := m.HandleOf(b, a)
	assert.Equal(t, aInB, sub.discovered[0].peer)
	assert.Equal(t, []byte("dev=a"), sub.discovered[0].ssi)
	assert.Empty(t, pub.discovered)

	require.NoError(t, b.Send(sub.started, aInB, 1, []byte("hello")))
	require.Len(t, pub.received, 1)
	assert.Equal(t, m.HandleOf(a, b), pub.received[0].peer)
	assert.Equal(t, []byte("hello"), pub.received[0].payload)
	assert.Equal(t, []int{1}, sub.succeeded)

	require.NoError(t, a.Send(pub.started, pub.received[0].peer, 1, []byte("back")))
	require.Len(t, sub.received, 1)
	assert.Equal(t, aInB, sub.received[0].peer)
}

func TestMedium_Filters(t *testing.T) {
	m := NewMedium()
	a := m.NewRadio()
	b := m.NewRadio()
	c := m.NewRadio()

	sub := &discoveryRecorder{}
	b.Subscribe(attach(t, b), types.SubscribeConfig{Identity: identity, MatchFilter: [][]byte{[]byte("r1")}}, sub)

	a.Publish(attach(t, a), types.PublishConfig{Identity: identity, MatchFilter: [][]byte{[]byte("r2")}}, &discoveryRecorder{})
	other := types.ServiceIdentity{ServiceName: "other"}
	c.Publish(attach(t, c), types.PublishConfig{Identity: other}, &discoveryRecorder{})
	assert.Empty(t, sub.discovered)

	d := m.NewRadio()
	d.Publish(attach(t, d), types.PublishConfig{Identity: identity, MatchFilter: [][]byte{[]byte("r1")}}, &discoveryRecorder{})
	assert.Len(t, sub.discovered, 1)
}

func TestMedium_UnreachableAfterLeave(t *testing.T) {
	m := NewMedium()
	a := m.NewRadio()
	b := m.NewRadio()

	pub := &discoveryRecorder{}
	a.Publish(attach(t, a), types.PublishConfig{Identity: identity}, pub)
	sub := &discoveryRecorder{}
	b.Subscribe(attach(t, b), types.SubscribeConfig{Identity: identity}, sub)
	require.Len(t, sub.discovered, 1)

	require.NoError(t, a.Close(pub.started))
	require.NoError(t, b.Send(sub.started, sub.discovered[0].peer, 9, []byte("gone")))
	assert.Equal(t, []int{9}, sub.failed)

	assert.NoError(t, b.Send(sub.started, 42, 10, nil))
	assert.Equal(t, []int{9, 10}, sub.failed)
}
