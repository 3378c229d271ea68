package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"jamaah-data/internal/domain"
)

// PostgresRoomsRepository 房间仓储实现
type PostgresRoomsRepository struct {
	db *sql.DB
}

// NewPostgresRoomsRepository 创建房间仓储
func NewPostgresRoomsRepository(db *sql.DB) *PostgresRoomsRepository {
	return &PostgresRoomsRepository{db: db}
}

// 确保实现了接口
var _ RoomsRepository = (*PostgresRoomsRepository)(nil)

const roomColumns = `room_id::text, group_id::text, room_number, room_type, gender_type, capacity, is_auto_assigned`

// ListByGroup 按团组列出房间，并按 room_id 外键装载入住成员
func (r *PostgresRoomsRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.Room, error) {
	if groupID == "" {
		return nil, fmt.Errorf("group_id is required")
	}

	query := `SELECT ` + roomColumns + `
		FROM rooms
		WHERE group_id = $1
		ORDER BY room_number`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*domain.Room
	byID := make(map[string]*domain.Room)
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(
			&room.RoomID, &room.GroupID,
			&room.RoomNumber, &room.RoomType, &room.GenderType,
			&room.Capacity, &room.IsAutoAssigned,
		); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, &room)
		byID[room.RoomID] = &room
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	if len(rooms) == 0 {
		return rooms, nil
	}

	// 一次查询装载整团成员，再按 room_id 归位，避免 N+1
	memberQuery := `SELECT ` + pilgrimColumns + `
		FROM pilgrims
		WHERE group_id = $1 AND room_id IS NOT NULL
		ORDER BY created_at, pilgrim_id`

	mrows, err := r.db.QueryContext(ctx, memberQuery, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list room members: %w", err)
	}
	defer mrows.Close()

	for mrows.Next() {
		p, err := scanPilgrim(mrows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room member: %w", err)
		}
		if room, ok := byID[p.RoomID]; ok {
			room.Members = append(room.Members, p)
		}
	}
	return rooms, mrows.Err()
}

// CreateRoom 写入单个房间
func (r *PostgresRoomsRepository) CreateRoom(ctx context.Context, room *domain.Room) error {
	if room.RoomID == "" {
		room.RoomID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (room_id, group_id, room_number, room_type, gender_type, capacity, is_auto_assigned)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		room.RoomID, room.GroupID, room.RoomNumber,
		room.RoomType, room.GenderType, room.Capacity, room.IsAutoAssigned,
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// SaveRooms 批量写入自动分房结果：房间与其成员的 room_id 指向落在同一事务
func (r *PostgresRoomsRepository) SaveRooms(ctx context.Context, rooms []*domain.Room) error {
	if len(rooms) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, room := range rooms {
		if room.RoomID == "" {
			room.RoomID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (room_id, group_id, room_number, room_type, gender_type, capacity, is_auto_assigned)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			room.RoomID, room.GroupID, room.RoomNumber,
			room.RoomType, room.GenderType, room.Capacity, room.IsAutoAssigned,
		); err != nil {
			return fmt.Errorf("failed to insert room %s: %w", room.RoomNumber, err)
		}
		for _, m := range room.Members {
			if _, err := tx.ExecContext(ctx,
				`UPDATE pilgrims SET room_id = $1 WHERE pilgrim_id = $2`,
				room.RoomID, m.PilgrimID,
			); err != nil {
				return fmt.Errorf("failed to assign member %s: %w", m.PilgrimID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rooms: %w", err)
	}
	return nil
}

// DeleteRoom 删除房间：先解除成员入住，再删房间，同一事务
func (r *PostgresRoomsRepository) DeleteRoom(ctx context.Context, groupID, roomID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE pilgrims SET room_id = NULL WHERE group_id = $1 AND room_id = $2`,
		groupID, roomID,
	); err != nil {
		return fmt.Errorf("failed to unassign members: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM rooms WHERE group_id = $1 AND room_id = $2`,
		groupID, roomID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("room not found: %s", roomID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// DeleteAutoAssigned 清空团组内自动分房产生的房间，手动建的保留
func (r *PostgresRoomsRepository) DeleteAutoAssigned(ctx context.Context, groupID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE pilgrims SET room_id = NULL
		 WHERE group_id = $1
		   AND room_id IN (SELECT room_id FROM rooms WHERE group_id = $1 AND is_auto_assigned)`,
		groupID,
	); err != nil {
		return 0, fmt.Errorf("failed to unassign members: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM rooms WHERE group_id = $1 AND is_auto_assigned`,
		groupID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete auto rooms: %w", err)
	}
	n, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit clear: %w", err)
	}
	return int(n), nil
}
