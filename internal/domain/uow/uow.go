// Package uow 工作单元端口
package uow

import "context"

// Transactor 在同一事务中执行fn,fn返回错误时整体回滚
// 已处于事务中的ctx再次调用时加入外层事务
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
