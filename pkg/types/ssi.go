package types

import (
	"sort"
	"strings"
)

// SSI 中约定的键
const (
	// ServiceInfoDeviceKey 对端自带的稳定设备 ID
	ServiceInfoDeviceKey = "dev"
	// ServiceInfoRoomKey 房间名，发布/订阅时转换为匹配过滤器
	ServiceInfoRoomKey = "room"
)

// ServiceInfo 服务特定信息（SSI）
//
// 线上格式为 "key=value;key2=value2"，键值两端空白会被去掉，
// 不是恰好一个 '=' 的片段被忽略。
type ServiceInfo map[string]string

// ParseServiceInfo 解析 SSI 字节
func ParseServiceInfo(raw []byte) ServiceInfo {
	info := make(ServiceInfo)
	if len(raw) == 0 {
		return info
	}
	for _, token := range strings.Split(string(raw), ";") {
		kv := strings.Split(token, "=")
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		if key == "" {
			continue
		}
		info[key] = strings.TrimSpace(kv[1])
	}
	return info
}

// Get 返回键对应的值
func (s ServiceInfo) Get(key string) string {
	return s[key]
}

// DeviceID 返回 dev 键
func (s ServiceInfo) DeviceID() string {
	return s[ServiceInfoDeviceKey]
}

// Room 返回 room 键
func (s ServiceInfo) Room() string {
	return s[ServiceInfoRoomKey]
}

// Encode 按键排序编码为线上格式
func (s ServiceInfo) Encode() []byte {
	if len(s) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s[k])
	}
	return []byte(b.String())
}

// MatchFilter 由 room 生成匹配过滤器，无 room 时返回 nil
func (s ServiceInfo) MatchFilter() [][]byte {
	room := s.Room()
	if room == "" {
		return nil
	}
	return [][]byte{[]byte(room)}
}
