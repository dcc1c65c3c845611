package nan

import (
	"errors"

	"github.com/dep2p/go-nan/internal/core/session"
	"github.com/dep2p/go-nan/internal/protocol/datapath"
	"github.com/dep2p/go-nan/internal/protocol/messaging"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 节点生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 节点未启动
	ErrNotStarted = errors.New("node not started")

	// ErrAlreadyStarted 节点已启动
	ErrAlreadyStarted = errors.New("node already started")

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = errors.New("node closed")

	// ErrNoRadio 未提供无线电
	ErrNoRadio = errors.New("radio is required")

	// ────────────────────────────────────────────────────────────────────────
	// 会话错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrAttachFailed attach 被无线电栈拒绝（异步，见 EvtAttachFailed）
	ErrAttachFailed = session.ErrAttachFailed

	// ErrNotAttached 未 attach 时请求发布/订阅
	ErrNotAttached = session.ErrNotAttached

	// ErrRadioUnavailable 平台不支持邻居感知无线电
	ErrRadioUnavailable = session.ErrRadioUnavailable

	// ErrSessionClosed 会话事件循环已停止
	ErrSessionClosed = session.ErrClosed

	// ────────────────────────────────────────────────────────────────────────
	// 消息错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNoActiveSession 没有活跃的发布/订阅会话
	ErrNoActiveSession = messaging.ErrNoActiveSession

	// ErrUnknownPeer 对端不在注册表中
	ErrUnknownPeer = messaging.ErrUnknownPeer

	// ErrMessageTooLong 消息超过无线电上限
	ErrMessageTooLong = messaging.ErrMessageTooLong

	// ErrRateLimited 发送超过限速
	ErrRateLimited = messaging.ErrRateLimited

	// ────────────────────────────────────────────────────────────────────────
	// 数据路径错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrDataPathUnsupported 无线电不支持数据路径
	ErrDataPathUnsupported = datapath.ErrUnsupported

	// ErrDataPathDisabled 数据路径已在配置中关闭
	ErrDataPathDisabled = datapath.ErrDisabled

	// ErrDataPathNotReady 链路尚未可用
	ErrDataPathNotReady = datapath.ErrNotReady

	// ErrPayloadTooLarge 超过单次数据路径传输上限
	ErrPayloadTooLarge = datapath.ErrPayloadTooLarge

	// ErrUnknownDataPath 没有到该对端的数据路径
	ErrUnknownDataPath = datapath.ErrUnknownDataPath
)
