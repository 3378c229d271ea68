package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"jamaah-data/internal/domain"
	"jamaah-data/internal/service"
)

// RoomingHandler 分房 Handler
type RoomingHandler struct {
	roomingService service.RoomingService
	logger         *zap.Logger
}

// NewRoomingHandler 创建分房 Handler
func NewRoomingHandler(roomingService service.RoomingService, logger *zap.Logger) *RoomingHandler {
	return &RoomingHandler{
		roomingService: roomingService,
		logger:         logger,
	}
}

// Serve 分发 rooms/assignments 子路由
func (h *RoomingHandler) Serve(w http.ResponseWriter, r *http.Request, groupID, resource, tail string) {
	switch {
	// ListRooms - GET /api/v1/groups/:id/rooms
	case resource == "rooms" && tail == "" && r.Method == http.MethodGet:
		h.ListRooms(w, r, groupID)
	// CreateRoom - POST /api/v1/groups/:id/rooms
	case resource == "rooms" && tail == "" && r.Method == http.MethodPost:
		h.CreateRoom(w, r, groupID)
	// AutoAssign - POST /api/v1/groups/:id/rooms/auto-assign
	case resource == "rooms" && tail == "auto-assign" && r.Method == http.MethodPost:
		h.AutoAssign(w, r, groupID)
	// ClearAutoAssigned - POST /api/v1/groups/:id/rooms/clear-auto
	case resource == "rooms" && tail == "clear-auto" && r.Method == http.MethodPost:
		h.ClearAutoAssigned(w, r, groupID)
	// GetSummary - GET /api/v1/groups/:id/rooms/summary
	case resource == "rooms" && tail == "summary" && r.Method == http.MethodGet:
		h.GetSummary(w, r, groupID)
	// DeleteRoom - DELETE /api/v1/groups/:id/rooms/:roomID
	case resource == "rooms" && tail != "" && r.Method == http.MethodDelete:
		h.DeleteRoom(w, r, groupID, tail)
	// AssignMember - POST /api/v1/groups/:id/assignments
	case resource == "assignments" && tail == "" && r.Method == http.MethodPost:
		h.AssignMember(w, r, groupID)
	// UnassignMember - DELETE /api/v1/groups/:id/assignments/:pilgrimID
	case resource == "assignments" && tail != "" && r.Method == http.MethodDelete:
		h.UnassignMember(w, r, groupID, tail)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// ListRooms 列出团组全部房间（含入住成员）
func (h *RoomingHandler) ListRooms(w http.ResponseWriter, r *http.Request, groupID string) {
	rooms, err := h.roomingService.ListRooms(r.Context(), groupID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": rooms,
		"total": len(rooms),
	}))
}

// CreateRoom 手动建房
func (h *RoomingHandler) CreateRoom(w http.ResponseWriter, r *http.Request, groupID string) {
	var payload struct {
		RoomNumber string `json:"room_number"`
		RoomType   string `json:"room_type"`
		GenderType string `json:"gender_type"`
		Capacity   int    `json:"capacity"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	roomType := domain.RoomType(payload.RoomType)
	if roomType == "" {
		roomType = domain.RoomQuad
	}
	genderType := domain.GenderType(payload.GenderType)
	if genderType == "" {
		genderType = domain.RoomMale
	}

	room, err := h.roomingService.CreateRoom(r.Context(), service.CreateRoomRequest{
		GroupID:    groupID,
		RoomNumber: payload.RoomNumber,
		RoomType:   roomType,
		GenderType: genderType,
		Capacity:   payload.Capacity,
	})
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(room))
}

// DeleteRoom 删除房间（成员随之解除入住）
func (h *RoomingHandler) DeleteRoom(w http.ResponseWriter, r *http.Request, groupID, roomID string) {
	if err := h.roomingService.DeleteRoom(r.Context(), groupID, roomID); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": roomID}))
}

// AssignMember 成员入住/移动
func (h *RoomingHandler) AssignMember(w http.ResponseWriter, r *http.Request, groupID string) {
	var payload struct {
		PilgrimID string `json:"pilgrim_id"`
		RoomID    string `json:"room_id"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	if payload.PilgrimID == "" || payload.RoomID == "" {
		writeJSON(w, http.StatusOK, Fail("pilgrim_id and room_id are required"))
		return
	}

	err := h.roomingService.AssignMember(r.Context(), service.AssignMemberRequest{
		GroupID:   groupID,
		PilgrimID: payload.PilgrimID,
		RoomID:    payload.RoomID,
	})
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"assigned": payload.PilgrimID}))
}

// UnassignMember 成员退房
func (h *RoomingHandler) UnassignMember(w http.ResponseWriter, r *http.Request, groupID, pilgrimID string) {
	if err := h.roomingService.UnassignMember(r.Context(), groupID, pilgrimID); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"unassigned": pilgrimID}))
}

// GetSummary 分房进度统计
func (h *RoomingHandler) GetSummary(w http.ResponseWriter, r *http.Request, groupID string) {
	summary, err := h.roomingService.GetSummary(r.Context(), groupID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(summary))
}

// AutoAssign 一键自动分房
func (h *RoomingHandler) AutoAssign(w http.ResponseWriter, r *http.Request, groupID string) {
	var payload struct {
		Capacity int `json:"capacity"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	resp, err := h.roomingService.AutoAssign(r.Context(), service.AutoAssignRequest{
		GroupID:  groupID,
		Capacity: payload.Capacity,
	})
	if err != nil {
		h.logger.Error("auto assign failed",
			zap.String("group_id", groupID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// ClearAutoAssigned 一键清空自动分房结果（手动建的房间保留）
func (h *RoomingHandler) ClearAutoAssigned(w http.ResponseWriter, r *http.Request, groupID string) {
	deleted, err := h.roomingService.ClearAutoAssigned(r.Context(), groupID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": deleted}))
}
