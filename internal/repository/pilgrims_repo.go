package repository

import (
	"context"

	"jamaah-data/internal/domain"
)

// PilgrimsRepository 朝觐人员仓储接口
type PilgrimsRepository interface {
	// SaveRoster 批量写入一次识别产出的名册（同一事务，逐条生成 pilgrim_id）
	SaveRoster(ctx context.Context, groupID string, roster []*domain.Pilgrim) error

	// ListByGroup 按团组列出全部成员（名册顺序 = 写入顺序）
	ListByGroup(ctx context.Context, groupID string) ([]*domain.Pilgrim, error)

	// GetPilgrim 按主键取单个成员
	GetPilgrim(ctx context.Context, groupID, pilgrimID string) (*domain.Pilgrim, error)

	// UpdateRoomAssignment 更新成员的分房指向；roomID 为空串表示解除入住
	UpdateRoomAssignment(ctx context.Context, pilgrimID, roomID string) error

	// UpdateFamilyID 维护家庭分组标识
	UpdateFamilyID(ctx context.Context, pilgrimID, familyID string) error

	// CountMembers 团组总人数和已分房人数
	CountMembers(ctx context.Context, groupID string) (total int, assigned int, err error)
}
