package types

// OutboundMessage 出站消息，每次发送时构造，不持久化
type OutboundMessage struct {
	Target    PeerHandle
	Payload   []byte
	MessageID int
}

// SendFailure 单个对端的发送失败
type SendFailure struct {
	Peer PeerHandle
	Err  error
}

// BroadcastResult 广播结果
//
// 部分失败不会中止广播，失败列表按发送顺序排列。
type BroadcastResult struct {
	// Attempted 尝试发送的对端数
	Attempted int

	// Failures 发送失败的对端
	Failures []SendFailure
}

// Succeeded 返回成功提交给无线电栈的数量
func (r BroadcastResult) Succeeded() int {
	return r.Attempted - len(r.Failures)
}

// FailedPeers 返回失败的对端句柄
func (r BroadcastResult) FailedPeers() []PeerHandle {
	peers := make([]PeerHandle, 0, len(r.Failures))
	for _, f := range r.Failures {
		peers = append(peers, f.Peer)
	}
	return peers
}
