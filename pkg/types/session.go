package types

import (
	"errors"
	"fmt"
	"strings"
)

// SessionRef 无线电栈签发的会话引用（attach 会话或发布/订阅子会话）
type SessionRef string

// SessionPhase 会话根状态
type SessionPhase int

const (
	// PhaseDetached 未连接无线电栈
	PhaseDetached SessionPhase = iota
	// PhaseAttaching 正在连接（等待 attach 回调）
	PhaseAttaching
	// PhaseAttached 已连接，可发布/订阅
	PhaseAttached
	// PhaseTerminated 已释放（吸收态，仅 Initialize 可重新开始）
	PhaseTerminated
)

// String 返回阶段名称
func (p SessionPhase) String() string {
	switch p {
	case PhaseDetached:
		return "Detached"
	case PhaseAttaching:
		return "Attaching"
	case PhaseAttached:
		return "Attached"
	case PhaseTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// SessionState 会话状态
//
// 发布与订阅子状态相互独立，可同时存在，只在 PhaseAttached 下有意义。
type SessionState struct {
	Phase     SessionPhase
	Publish   SessionRef
	Subscribe SessionRef
}

// Attached 是否已连接（包含发布/订阅子状态）
func (s SessionState) Attached() bool {
	return s.Phase == PhaseAttached
}

// Publishing 是否有活跃的发布子会话
func (s SessionState) Publishing() bool {
	return s.Phase == PhaseAttached && s.Publish != ""
}

// Subscribing 是否有活跃的订阅子会话
func (s SessionState) Subscribing() bool {
	return s.Phase == PhaseAttached && s.Subscribe != ""
}

// String 返回状态的可读形式，例如 "Publishing(p1)+Subscribing(s1)"
func (s SessionState) String() string {
	if s.Phase != PhaseAttached || (s.Publish == "" && s.Subscribe == "") {
		return s.Phase.String()
	}
	parts := make([]string, 0, 2)
	if s.Publish != "" {
		parts = append(parts, fmt.Sprintf("Publishing(%s)", s.Publish))
	}
	if s.Subscribe != "" {
		parts = append(parts, fmt.Sprintf("Subscribing(%s)", s.Subscribe))
	}
	return strings.Join(parts, "+")
}

// ServiceIdentity 服务标识
//
// 启动时配置一次，发布和订阅共享只读。
type ServiceIdentity struct {
	ServiceName string `json:"service_name"`
	ServiceType string `json:"service_type"`
}

// Validate 验证服务标识
func (id ServiceIdentity) Validate() error {
	if strings.TrimSpace(id.ServiceName) == "" {
		return errors.New("service name is empty")
	}
	return nil
}

// String 返回 "name/type"
func (id ServiceIdentity) String() string {
	if id.ServiceType == "" {
		return id.ServiceName
	}
	return id.ServiceName + "/" + id.ServiceType
}
