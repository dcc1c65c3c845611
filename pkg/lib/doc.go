// Package lib 包含与架构组件无关的基础设施工具库
//
//   - log: 日志封装
package lib
