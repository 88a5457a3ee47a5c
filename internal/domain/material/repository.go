package material

import "context"

// Repository 物料仓储接口
type Repository interface {
	Create(ctx context.Context, m *Material) error
	FindByID(ctx context.Context, id uint) (*Material, error)
	// LockByID 加排他锁读取,必须在事务中调用
	LockByID(ctx context.Context, id uint) (*Material, error)
	FindByName(ctx context.Context, name string) (*Material, error)
	List(ctx context.Context) ([]*Material, error)
	Delete(ctx context.Context, id uint) error

	// CountReferences 统计引用该物料的交易明细与批次数量
	CountReferences(ctx context.Context, id uint) (int64, error)
}
