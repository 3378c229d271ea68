package domain

// RoomType 房型（按床位数）
type RoomType string

const (
	RoomQuad   RoomType = "quad"   // 四人间
	RoomTriple RoomType = "triple" // 三人间
	RoomDouble RoomType = "double" // 双人间
)

// GenderType 房间性别约束
type GenderType string

const (
	RoomMale   GenderType = "male"   // 仅限男性
	RoomFemale GenderType = "female" // 仅限女性
	RoomFamily GenderType = "family" // 家庭房，不限性别
)

// DefaultCapacity 房型对应的默认床位数
func (t RoomType) DefaultCapacity() int {
	switch t {
	case RoomTriple:
		return 3
	case RoomDouble:
		return 2
	default:
		return 4
	}
}

// Accepts 判断性别约束是否允许该性别入住
// family 房不限性别；male/female 房拒绝异性，unknown 性别一律拒绝
func (g GenderType) Accepts(gender Gender) bool {
	switch g {
	case RoomFamily:
		return true
	case RoomMale:
		return gender == GenderMale
	case RoomFemale:
		return gender == GenderFemale
	}
	return false
}

// Room 酒店房间领域模型（对应 rooms 表）
type Room struct {
	RoomID  string `db:"room_id" json:"room_id"`   // UUID, PRIMARY KEY
	GroupID string `db:"group_id" json:"group_id"` // UUID, NOT NULL（所属团组）

	RoomNumber string     `db:"room_number" json:"room_number"` // VARCHAR(50), NOT NULL, UNIQUE(group_id, room_number)
	RoomType   RoomType   `db:"room_type" json:"room_type"`     // VARCHAR(20), DEFAULT 'quad'
	GenderType GenderType `db:"gender_type" json:"gender_type"` // VARCHAR(20), DEFAULT 'male'
	Capacity   int        `db:"capacity" json:"capacity"`       // INTEGER, DEFAULT 4

	// IsAutoAssigned 是否由自动分房创建（手动建的房间不受一键重置影响）
	IsAutoAssigned bool `db:"is_auto_assigned" json:"is_auto_assigned"`

	// Members 当前入住成员（仓储层按 room_id 外键装载）
	Members []*Pilgrim `db:"-" json:"members,omitempty"`
}

// OccupiedCount 当前入住人数
func (r *Room) OccupiedCount() int { return len(r.Members) }

// IsFull 房间是否已满
func (r *Room) IsFull() bool { return len(r.Members) >= r.Capacity }

// AvailableSlots 剩余床位数
func (r *Room) AvailableSlots() int { return r.Capacity - len(r.Members) }
