package repository

import (
	"context"

	"jamaah-data/internal/domain"
)

// RoomsRepository 房间仓储接口
// 分房约束（满员/性别/重复房号）在 rooming 引擎里校验，仓储只负责状态落库
type RoomsRepository interface {
	// ListByGroup 列出团组全部房间，含各房间的入住成员
	ListByGroup(ctx context.Context, groupID string) ([]*domain.Room, error)

	// CreateRoom 写入单个房间
	CreateRoom(ctx context.Context, room *domain.Room) error

	// SaveRooms 批量写入自动分房结果：房间 + 成员 room_id 指向，同一事务
	SaveRooms(ctx context.Context, rooms []*domain.Room) error

	// DeleteRoom 删除房间并解除其成员的入住关系，同一事务
	DeleteRoom(ctx context.Context, groupID, roomID string) error

	// DeleteAutoAssigned 删除团组内所有自动分房产生的房间（成员随之解除），返回删除数
	DeleteAutoAssigned(ctx context.Context, groupID string) (int, error)
}
