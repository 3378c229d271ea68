package rooming

import (
	"errors"

	"github.com/google/uuid"

	"jamaah-data/internal/domain"
)

// 约束违规的命名错误：调用方据此回滚乐观 UI 状态并提示用户
var (
	ErrRoomFull            = errors.New("room is at capacity")
	ErrGenderMismatch      = errors.New("room gender type does not allow this member")
	ErrDuplicateRoomNumber = errors.New("room number already exists in group")
	ErrRoomNotFound        = errors.New("room not found")
)

// Plan 一个团组的内存房态：房间列表 + 各房间的入住成员
// 所有操作要么完整生效要么返回错误，绝不留下半成品状态；
// 同一团组的并发修改由调用方串行化（Plan 自身不加锁）
type Plan struct {
	rooms []*domain.Room
}

// NewPlan 用已有房间（含成员）构建房态
func NewPlan(rooms []*domain.Room) *Plan {
	return &Plan{rooms: rooms}
}

// Rooms 返回当前全部房间，保持创建顺序
func (p *Plan) Rooms() []*domain.Room { return p.rooms }

// Room 按 room_id 查找房间
func (p *Plan) Room(roomID string) (*domain.Room, bool) {
	for _, r := range p.rooms {
		if r.RoomID == roomID {
			return r, true
		}
	}
	return nil, false
}

// CreateRoom 手动建房，房号在团组内必须唯一
func (p *Plan) CreateRoom(groupID, roomNumber string, roomType domain.RoomType, genderType domain.GenderType, capacity int) (*domain.Room, error) {
	for _, r := range p.rooms {
		if r.RoomNumber == roomNumber {
			return nil, ErrDuplicateRoomNumber
		}
	}
	if capacity <= 0 {
		capacity = roomType.DefaultCapacity()
	}
	room := &domain.Room{
		RoomID:         uuid.NewString(),
		GroupID:        groupID,
		RoomNumber:     roomNumber,
		RoomType:       roomType,
		GenderType:     genderType,
		Capacity:       capacity,
		IsAutoAssigned: false,
	}
	p.rooms = append(p.rooms, room)
	return room, nil
}

// Assign 把成员放进指定房间；成员已在其它房间时等价于移动
// 先校验目标房间（满员/性别），全部通过才改状态，保证失败时无任何变更
func (p *Plan) Assign(m *domain.Pilgrim, roomID string) error {
	room, ok := p.Room(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	if room.RoomID == m.RoomID {
		return nil // 已在目标房间，幂等
	}
	if room.IsFull() {
		return ErrRoomFull
	}
	if !room.GenderType.Accepts(effectiveGender(m)) {
		return ErrGenderMismatch
	}

	p.Unassign(m)
	m.RoomID = room.RoomID
	room.Members = append(room.Members, m)
	return nil
}

// Unassign 把成员移出所在房间，房间因此变空则立即删除
// 成员本来就没有房间时是空操作；返回被自动删除的房间（没有则为 nil）
func (p *Plan) Unassign(m *domain.Pilgrim) *domain.Room {
	if m.RoomID == "" {
		return nil
	}
	room, ok := p.Room(m.RoomID)
	m.RoomID = ""
	if !ok {
		return nil
	}
	for i, occupant := range room.Members {
		if occupant == m || (m.PilgrimID != "" && occupant.PilgrimID == m.PilgrimID) {
			room.Members = append(room.Members[:i], room.Members[i+1:]...)
			break
		}
	}
	if len(room.Members) == 0 {
		p.removeRoom(room.RoomID)
		return room
	}
	return nil
}

// DeleteRoom 删除房间，先解除全部成员的入住关系
func (p *Plan) DeleteRoom(roomID string) (*domain.Room, error) {
	room, ok := p.Room(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	for _, m := range room.Members {
		m.RoomID = ""
	}
	room.Members = nil
	p.removeRoom(roomID)
	return room, nil
}

// ClearAutoAssigned 删除所有自动分房产生的房间（成员随之解除入住），手动建的房间不动
func (p *Plan) ClearAutoAssigned() []*domain.Room {
	var deleted []*domain.Room
	kept := p.rooms[:0]
	for _, r := range p.rooms {
		if !r.IsAutoAssigned {
			kept = append(kept, r)
			continue
		}
		for _, m := range r.Members {
			m.RoomID = ""
		}
		r.Members = nil
		deleted = append(deleted, r)
	}
	p.rooms = kept
	return deleted
}

// Summary 分房概览，纯统计无副作用
type Summary struct {
	TotalMembers    int `json:"total_members"`
	AssignedCount   int `json:"assigned_count"`
	UnassignedCount int `json:"unassigned_count"`
	TotalRooms      int `json:"total_rooms"`
}

// Summarize 统计分房情况；totalMembers 为团组总人数
func (p *Plan) Summarize(totalMembers int) Summary {
	assigned := 0
	for _, r := range p.rooms {
		assigned += len(r.Members)
	}
	return Summary{
		TotalMembers:    totalMembers,
		AssignedCount:   assigned,
		UnassignedCount: totalMembers - assigned,
		TotalRooms:      len(p.rooms),
	}
}

func (p *Plan) removeRoom(roomID string) {
	for i, r := range p.rooms {
		if r.RoomID == roomID {
			p.rooms = append(p.rooms[:i], p.rooms[i+1:]...)
			return
		}
	}
}
