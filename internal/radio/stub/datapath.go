package stub

import (
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
	"github.com/dep2p/go-nan/pkg/types"
)

// DataSent 一次被接受的数据路径发送
type DataSent struct {
	Peer    types.PeerHandle
	Payload []byte
}

// dataPath 到某个对端的数据路径请求
type dataPath struct {
	session    types.SessionRef
	passphrase string
	handler    pkgif.DataPathHandler
	available  bool
}

// ============================================================================
//                              interfaces.DataPathRadio
// ============================================================================

// RequestDataPath 实现 interfaces.DataPathRadio
//
// 接入 Medium 时，双方都请求后链路可用；口令不一致时双方都收到失败。
// 未接入时请求挂起，直到调用 CompleteDataPath 或 FailDataPath。
func (r *Radio) RequestDataPath(session types.SessionRef, peer types.PeerHandle, passphrase string, h pkgif.DataPathHandler) error {
	r.mu.Lock()
	r.calls.RequestDataPath++
	if _, ok := r.sessions[session]; !ok {
		r.mu.Unlock()
		return ErrUnknownSession
	}
	r.dataPaths[peer] = &dataPath{session: session, passphrase: passphrase, handler: h}
	medium := r.medium
	r.mu.Unlock()

	if medium != nil {
		medium.matchDataPath(r, peer)
	}
	return nil
}

// SendData 实现 interfaces.DataPathRadio
func (r *Radio) SendData(peer types.PeerHandle, payload []byte) error {
	r.mu.Lock()
	r.calls.SendData++
	p, ok := r.dataPaths[peer]
	if !ok {
		r.mu.Unlock()
		return ErrNoDataPath
	}
	if !p.available {
		r.mu.Unlock()
		return ErrDataPathNotReady
	}
	data := make([]byte, len(payload))
	copy(data, payload)
	r.dataSent = append(r.dataSent, DataSent{Peer: peer, Payload: data})
	medium := r.medium
	r.mu.Unlock()

	if medium != nil {
		return medium.routeData(r, peer, data)
	}
	return nil
}

// CloseDataPath 实现 interfaces.DataPathRadio，对端收到 OnDataPathLost
func (r *Radio) CloseDataPath(peer types.PeerHandle) error {
	r.mu.Lock()
	r.calls.CloseDataPath++
	if _, ok := r.dataPaths[peer]; !ok {
		r.mu.Unlock()
		return ErrNoDataPath
	}
	delete(r.dataPaths, peer)
	medium := r.medium
	r.mu.Unlock()

	if medium != nil {
		medium.dropDataPath(r, peer)
	}
	return nil
}

// ============================================================================
//                              测试控制
// ============================================================================

// CompleteDataPath 让挂起的数据路径可用
func (r *Radio) CompleteDataPath(peer types.PeerHandle) bool {
	r.mu.Lock()
	p, ok := r.dataPaths[peer]
	if ok {
		p.available = true
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	p.handler.OnDataPathAvailable(peer)
	return true
}

// FailDataPath 让数据路径请求失败并移除
func (r *Radio) FailDataPath(peer types.PeerHandle, err error) bool {
	p, ok := r.takeDataPath(peer)
	if !ok {
		return false
	}
	p.handler.OnDataPathUnavailable(peer, err)
	return true
}

// LoseDataPath 由无线电栈一侧断开数据路径
func (r *Radio) LoseDataPath(peer types.PeerHandle) bool {
	p, ok := r.takeDataPath(peer)
	if !ok {
		return false
	}
	p.handler.OnDataPathLost(peer)
	return true
}

// ReceiveData 在数据路径上注入数据
func (r *Radio) ReceiveData(peer types.PeerHandle, payload []byte) bool {
	r.mu.Lock()
	p, ok := r.dataPaths[peer]
	r.mu.Unlock()
	if !ok {
		return false
	}
	p.handler.OnDataReceived(peer, payload)
	return true
}

// DataPathOpen 到 peer 的数据路径是否可用
func (r *Radio) DataPathOpen(peer types.PeerHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.dataPaths[peer]
	return ok && p.available
}

// DataSent 返回所有被接受的数据路径发送
func (r *Radio) DataSent() []DataSent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]DataSent, len(r.dataSent))
	copy(out, r.dataSent)
	return out
}

func (r *Radio) takeDataPath(peer types.PeerHandle) (*dataPath, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.dataPaths[peer]
	if ok {
		delete(r.dataPaths, peer)
	}
	return p, ok
}

// ============================================================================
//                              Medium 路由
// ============================================================================

// matchDataPath 双方都请求后让链路可用
//
// 只在持有 m.mu 时同时锁两个 Radio。
func (m *Medium) matchDataPath(r *Radio, peer types.PeerHandle) {
	var notify []func()

	m.mu.Lock()
	target, ok := m.byHandle[r][peer]
	if !ok {
		m.mu.Unlock()
		r.mu.Lock()
		p := r.dataPaths[peer]
		delete(r.dataPaths, peer)
		r.mu.Unlock()
		if p != nil {
			p.handler.OnDataPathUnavailable(peer, ErrPeerUnreachable)
		}
		return
	}
	back := m.handleFor(target, r)

	r.mu.Lock()
	target.mu.Lock()
	local, remote := r.dataPaths[peer], target.dataPaths[back]
	switch {
	case local == nil || remote == nil:
	case local.passphrase != remote.passphrase:
		delete(r.dataPaths, peer)
		delete(target.dataPaths, back)
		notify = append(notify,
			func() { local.handler.OnDataPathUnavailable(peer, ErrPassphraseMismatch) },
			func() { remote.handler.OnDataPathUnavailable(back, ErrPassphraseMismatch) },
		)
	default:
		local.available, remote.available = true, true
		notify = append(notify,
			func() { remote.handler.OnDataPathAvailable(back) },
			func() { local.handler.OnDataPathAvailable(peer) },
		)
	}
	target.mu.Unlock()
	r.mu.Unlock()
	m.mu.Unlock()

	for _, fn := range notify {
		fn()
	}
}

// routeData 把数据交给对端的数据路径回调
func (m *Medium) routeData(from *Radio, peer types.PeerHandle, payload []byte) error {
	m.mu.Lock()
	target, ok := m.byHandle[from][peer]
	if !ok {
		m.mu.Unlock()
		return ErrPeerUnreachable
	}
	back := m.handleFor(target, from)
	m.mu.Unlock()

	target.mu.Lock()
	p, ok := target.dataPaths[back]
	available := ok && p.available
	target.mu.Unlock()
	if !available {
		return ErrDataPathNotReady
	}
	p.handler.OnDataReceived(back, payload)
	return nil
}

// dropDataPath 本端关闭后通知对端
func (m *Medium) dropDataPath(from *Radio, peer types.PeerHandle) {
	m.mu.Lock()
	target, ok := m.byHandle[from][peer]
	if !ok {
		m.mu.Unlock()
		return
	}
	back := m.handleFor(target, from)
	m.mu.Unlock()

	if p, ok := target.takeDataPath(back); ok {
		p.handler.OnDataPathLost(back)
	}
}
