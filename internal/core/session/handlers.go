package session

import (
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
	"github.com/dep2p/go-nan/pkg/types"
)

// attachHandler 绑定到某一代 attach 请求
type attachHandler struct {
	m   *Machine
	gen uint64
}

var _ pkgif.AttachHandler = (*attachHandler)(nil)

func (h *attachHandler) OnAttached(ref types.SessionRef) {
	h.m.post(&attachSucceeded{gen: h.gen, ref: ref})
}

func (h *attachHandler) OnAttachFailed(err error) {
	h.m.post(&attachFailed{gen: h.gen, err: err})
}

// discoveryHandler 绑定到一次发布或订阅请求
//
// 每次请求都创建新的 handler，事件循环以指针相等判断回调是否过期。
type discoveryHandler struct {
	m    *Machine
	gen  uint64
	role types.Role
}

var _ pkgif.DiscoveryHandler = (*discoveryHandler)(nil)

func (h *discoveryHandler) OnStarted(ref types.SessionRef) {
	h.m.post(&subStarted{h: h, ref: ref})
}

func (h *discoveryHandler) OnConfigFailed(err error) {
	h.m.post(&subFailed{h: h, err: err})
}

func (h *discoveryHandler) OnServiceDiscovered(peer types.PeerHandle, serviceInfo []byte, matchFilter [][]byte) {
	mf := make([][]byte, len(matchFilter))
	for i, f := range matchFilter {
		mf[i] = cloneBytes(f)
	}
	h.m.post(&serviceDiscovered{h: h, peer: peer, serviceInfo: cloneBytes(serviceInfo), matchFilter: mf})
}

func (h *discoveryHandler) OnMessageReceived(peer types.PeerHandle, payload []byte) {
	h.m.post(&messageReceived{h: h, peer: peer, payload: cloneBytes(payload)})
}

func (h *discoveryHandler) OnMessageSendSucceeded(messageID int) {
	h.m.post(&sendResult{h: h, messageID: messageID, ok: true})
}

func (h *discoveryHandler) OnMessageSendFailed(messageID int) {
	h.m.post(&sendResult{h: h, messageID: messageID, ok: false})
}

func (h *discoveryHandler) OnSessionTerminated() {
	h.m.post(&subTerminated{h: h})
}

// 无线电栈可能复用缓冲区
func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
