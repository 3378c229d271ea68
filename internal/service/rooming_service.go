package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"jamaah-data/internal/domain"
	"jamaah-data/internal/repository"
	"jamaah-data/internal/rooming"
)

// RoomingService 分房服务接口
// 约束违规（满员/性别/重复房号/房间不存在）原样透出 rooming 包的命名错误，
// Handler 层据此映射状态码；同一团组的修改操作由上层保证串行
type RoomingService interface {
	// 查询
	ListRooms(ctx context.Context, groupID string) ([]*domain.Room, error)
	GetSummary(ctx context.Context, groupID string) (*rooming.Summary, error)

	// 手动调整
	CreateRoom(ctx context.Context, req CreateRoomRequest) (*domain.Room, error)
	DeleteRoom(ctx context.Context, groupID, roomID string) error
	AssignMember(ctx context.Context, req AssignMemberRequest) error
	UnassignMember(ctx context.Context, groupID, pilgrimID string) error

	// 批量
	AutoAssign(ctx context.Context, req AutoAssignRequest) (*AutoAssignResponse, error)
	ClearAutoAssigned(ctx context.Context, groupID string) (int, error)
}

// roomingService 实现
type roomingService struct {
	roomsRepo       repository.RoomsRepository
	pilgrimsRepo    repository.PilgrimsRepository
	defaultCapacity int
	logger          *zap.Logger
}

// NewRoomingService 创建 RoomingService 实例；defaultCapacity <=0 时用四人间
func NewRoomingService(
	roomsRepo repository.RoomsRepository,
	pilgrimsRepo repository.PilgrimsRepository,
	defaultCapacity int,
	logger *zap.Logger,
) RoomingService {
	if defaultCapacity <= 0 {
		defaultCapacity = rooming.DefaultCapacity
	}
	return &roomingService{
		roomsRepo:       roomsRepo,
		pilgrimsRepo:    pilgrimsRepo,
		defaultCapacity: defaultCapacity,
		logger:          logger,
	}
}

// ============================================
// Request/Response DTOs
// ============================================

// CreateRoomRequest 手动建房请求
type CreateRoomRequest struct {
	GroupID    string            `json:"group_id"`
	RoomNumber string            `json:"room_number"`
	RoomType   domain.RoomType   `json:"room_type"`
	GenderType domain.GenderType `json:"gender_type"`
	Capacity   int               `json:"capacity"`
}

// AssignMemberRequest 成员入住/移动请求
type AssignMemberRequest struct {
	GroupID   string `json:"group_id"`
	PilgrimID string `json:"pilgrim_id"`
	RoomID    string `json:"room_id"`
}

// AutoAssignRequest 自动分房请求
type AutoAssignRequest struct {
	GroupID  string `json:"group_id"`
	Capacity int    `json:"capacity"` // <=0 用默认四人间
}

// AutoAssignResponse 自动分房结果
type AutoAssignResponse struct {
	Rooms   []*domain.Room  `json:"rooms"`
	Summary rooming.Summary `json:"summary"`
}

// ============================================
// 实现
// ============================================

func (s *roomingService) ListRooms(ctx context.Context, groupID string) ([]*domain.Room, error) {
	if groupID == "" {
		return nil, fmt.Errorf("group_id is required")
	}
	return s.roomsRepo.ListByGroup(ctx, groupID)
}

func (s *roomingService) GetSummary(ctx context.Context, groupID string) (*rooming.Summary, error) {
	rooms, err := s.roomsRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	total, _, err := s.pilgrimsRepo.CountMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	summary := rooming.NewPlan(rooms).Summarize(total)
	return &summary, nil
}

func (s *roomingService) CreateRoom(ctx context.Context, req CreateRoomRequest) (*domain.Room, error) {
	if req.GroupID == "" || req.RoomNumber == "" {
		return nil, fmt.Errorf("group_id and room_number are required")
	}
	rooms, err := s.roomsRepo.ListByGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	// 在内存房态上建房，命中重复房号等违规时不会碰数据库
	plan := rooming.NewPlan(rooms)
	room, err := plan.CreateRoom(req.GroupID, req.RoomNumber, req.RoomType, req.GenderType, req.Capacity)
	if err != nil {
		return nil, err
	}
	if err := s.roomsRepo.CreateRoom(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Info("room created",
		zap.String("group_id", req.GroupID),
		zap.String("room_number", room.RoomNumber),
	)
	return room, nil
}

func (s *roomingService) DeleteRoom(ctx context.Context, groupID, roomID string) error {
	rooms, err := s.roomsRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if _, err := rooming.NewPlan(rooms).DeleteRoom(roomID); err != nil {
		return err
	}
	return s.roomsRepo.DeleteRoom(ctx, groupID, roomID)
}

func (s *roomingService) AssignMember(ctx context.Context, req AssignMemberRequest) error {
	member, err := s.pilgrimsRepo.GetPilgrim(ctx, req.GroupID, req.PilgrimID)
	if err != nil {
		return err
	}
	rooms, err := s.roomsRepo.ListByGroup(ctx, req.GroupID)
	if err != nil {
		return err
	}

	plan := rooming.NewPlan(rooms)
	oldRoomID := member.RoomID
	// 已装载在某个房间里的是同一人的另一份实例，用它保证 Unassign 正确摘除
	if current := findMember(rooms, req.PilgrimID); current != nil {
		member = current
	}
	if err := plan.Assign(member, req.RoomID); err != nil {
		return err
	}

	if err := s.pilgrimsRepo.UpdateRoomAssignment(ctx, req.PilgrimID, member.RoomID); err != nil {
		return err
	}
	// 旧房间因搬空被计划态删除时同步清库
	if oldRoomID != "" && oldRoomID != member.RoomID {
		if _, stillThere := plan.Room(oldRoomID); !stillThere {
			if err := s.roomsRepo.DeleteRoom(ctx, req.GroupID, oldRoomID); err != nil {
				return fmt.Errorf("failed to prune emptied room: %w", err)
			}
		}
	}
	return nil
}

func (s *roomingService) UnassignMember(ctx context.Context, groupID, pilgrimID string) error {
	member, err := s.pilgrimsRepo.GetPilgrim(ctx, groupID, pilgrimID)
	if err != nil {
		return err
	}
	if member.RoomID == "" {
		return nil // 本来就没分房，幂等
	}
	rooms, err := s.roomsRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return err
	}

	plan := rooming.NewPlan(rooms)
	if current := findMember(rooms, pilgrimID); current != nil {
		member = current
	}
	deleted := plan.Unassign(member)

	if err := s.pilgrimsRepo.UpdateRoomAssignment(ctx, pilgrimID, ""); err != nil {
		return err
	}
	if deleted != nil {
		if err := s.roomsRepo.DeleteRoom(ctx, groupID, deleted.RoomID); err != nil {
			return fmt.Errorf("failed to prune emptied room: %w", err)
		}
	}
	return nil
}

func (s *roomingService) AutoAssign(ctx context.Context, req AutoAssignRequest) (*AutoAssignResponse, error) {
	if req.GroupID == "" {
		return nil, fmt.Errorf("group_id is required")
	}
	members, err := s.pilgrimsRepo.ListByGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	rooms, err := s.roomsRepo.ListByGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	capacity := req.Capacity
	if capacity <= 0 {
		capacity = s.defaultCapacity
	}
	plan := rooming.NewPlan(rooms)
	created := plan.AutoAssign(req.GroupID, members, capacity)
	if err := s.roomsRepo.SaveRooms(ctx, created); err != nil {
		return nil, err
	}

	s.logger.Info("auto assign done",
		zap.String("group_id", req.GroupID),
		zap.Int("rooms_created", len(created)),
	)
	return &AutoAssignResponse{
		Rooms:   created,
		Summary: plan.Summarize(len(members)),
	}, nil
}

func (s *roomingService) ClearAutoAssigned(ctx context.Context, groupID string) (int, error) {
	if groupID == "" {
		return 0, fmt.Errorf("group_id is required")
	}
	deleted, err := s.roomsRepo.DeleteAutoAssigned(ctx, groupID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("auto assigned rooms cleared",
		zap.String("group_id", groupID),
		zap.Int("deleted", deleted),
	)
	return deleted, nil
}

// findMember 在已装载的房态里找某成员的实例
func findMember(rooms []*domain.Room, pilgrimID string) *domain.Pilgrim {
	for _, r := range rooms {
		for _, m := range r.Members {
			if m.PilgrimID == pilgrimID {
				return m
			}
		}
	}
	return nil
}
