package coordinator

import (
	pkgif "github.com/dep2p/go-nan/pkg/interfaces"
)

// Option 协调器选项
type Option func(*Coordinator)

// WithDataPath 设置数据路径协商器
func WithDataPath(n pkgif.DataPathNegotiator) Option {
	return func(c *Coordinator) {
		c.dataPath = n
	}
}
