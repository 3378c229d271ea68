// Package rooming 酒店分房引擎
// 批量自动分房和单步手工调整都在内存房态（Plan）上完成，
// 约束违规返回命名错误且不产生部分变更，由调用方负责持久化和按团组串行化
package rooming

import (
	"fmt"

	"github.com/google/uuid"

	"jamaah-data/internal/domain"
)

// DefaultCapacity 默认每间床位数（四人间）
const DefaultCapacity = 4

// AutoAssign 自动分房：只处理未分房成员，每间房 capacity 个床位
// 1. 有 family_id 的成员按家庭分组，整家庭优先装入 family 房（超员才开下一间）
// 2. 剩余男性依次装满 male 房
// 3. 剩余女性依次装满 female 房
// 生成的房间都带 is_auto_assigned 标记，一键重置只清这些房间
func (p *Plan) AutoAssign(groupID string, members []*domain.Pilgrim, capacity int) []*domain.Room {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	families := make(map[string][]*domain.Pilgrim)
	var familyOrder []string
	var males, females []*domain.Pilgrim

	for _, m := range members {
		if m.RoomID != "" {
			continue
		}
		if fid := m.FamilyID; fid != "" {
			if _, ok := families[fid]; !ok {
				familyOrder = append(familyOrder, fid)
			}
			families[fid] = append(families[fid], m)
			continue
		}
		if effectiveGender(m) == domain.GenderFemale {
			females = append(females, m)
		} else {
			males = append(males, m)
		}
	}

	var created []*domain.Room
	counter := 1

	for _, fid := range familyOrder {
		batch := families[fid]
		genderType := familyGenderType(batch)
		for start := 0; start < len(batch); start += capacity {
			end := start + capacity
			if end > len(batch) {
				end = len(batch)
			}
			number := fmt.Sprintf("F%s-%d", familySuffix(fid), counter)
			room := p.newAutoRoom(groupID, number, genderType, capacity, batch[start:end])
			created = append(created, room)
			counter++
		}
	}

	for start := 0; start < len(males); start += capacity {
		end := start + capacity
		if end > len(males) {
			end = len(males)
		}
		number := fmt.Sprintf("M-%03d", counter)
		room := p.newAutoRoom(groupID, number, domain.RoomMale, capacity, males[start:end])
		created = append(created, room)
		counter++
	}

	for start := 0; start < len(females); start += capacity {
		end := start + capacity
		if end > len(females) {
			end = len(females)
		}
		number := fmt.Sprintf("F-%03d", counter)
		room := p.newAutoRoom(groupID, number, domain.RoomFemale, capacity, females[start:end])
		created = append(created, room)
		counter++
	}

	return created
}

func (p *Plan) newAutoRoom(groupID, number string, genderType domain.GenderType, capacity int, batch []*domain.Pilgrim) *domain.Room {
	room := &domain.Room{
		RoomID:         uuid.NewString(),
		GroupID:        groupID,
		RoomNumber:     number,
		RoomType:       domain.RoomQuad,
		GenderType:     genderType,
		Capacity:       capacity,
		IsAutoAssigned: true,
	}
	for _, m := range batch {
		m.RoomID = room.RoomID
		room.Members = append(room.Members, m)
	}
	p.rooms = append(p.rooms, room)
	return room
}

// familyGenderType 家庭房的性别约束：混合性别用 family，纯男/纯女沿用单性别房
func familyGenderType(members []*domain.Pilgrim) domain.GenderType {
	hasMale, hasFemale := false, false
	for _, m := range members {
		switch effectiveGender(m) {
		case domain.GenderMale:
			hasMale = true
		case domain.GenderFemale:
			hasFemale = true
		}
	}
	switch {
	case hasMale && hasFemale:
		return domain.RoomFamily
	case hasFemale:
		return domain.RoomFemale
	default:
		return domain.RoomMale
	}
}

// effectiveGender 分房视角的性别：title 推不出性别时并入男性桶
func effectiveGender(m *domain.Pilgrim) domain.Gender {
	if g := m.Gender(); g == domain.GenderFemale {
		return domain.GenderFemale
	}
	return domain.GenderMale
}

// familySuffix 房号里的家庭标识，取 family_id 末三位
func familySuffix(fid string) string {
	if len(fid) <= 3 {
		return fid
	}
	return fid[len(fid)-3:]
}
