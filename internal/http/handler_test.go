package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jamaah-data/internal/domain"
	"jamaah-data/internal/reconcile"
	"jamaah-data/internal/rooming"
	"jamaah-data/internal/service"
)

// fakeDocumentService records the last request and returns canned responses.
type fakeDocumentService struct {
	lastProcess service.ProcessDocumentsRequest
	roster      []*domain.Pilgrim
}

func (f *fakeDocumentService) ProcessDocuments(ctx context.Context, req service.ProcessDocumentsRequest) (*service.ProcessDocumentsResponse, error) {
	f.lastProcess = req
	return &service.ProcessDocumentsResponse{
		Roster: f.roster,
		FileResults: []reconcile.FileResult{
			{Filename: "ktp.jpg", Status: reconcile.StatusSuccess, DocumentType: domain.DocKTP},
		},
	}, nil
}

func (f *fakeDocumentService) SaveRoster(ctx context.Context, req service.SaveRosterRequest) (*service.SaveRosterResponse, error) {
	return &service.SaveRosterResponse{Saved: len(req.Roster)}, nil
}

func (f *fakeDocumentService) ListRoster(ctx context.Context, groupID string) ([]*domain.Pilgrim, error) {
	return f.roster, nil
}

// fakeRoomingService returns sentinel errors for specific room ids.
type fakeRoomingService struct{}

func (f *fakeRoomingService) ListRooms(ctx context.Context, groupID string) ([]*domain.Room, error) {
	return []*domain.Room{{RoomID: "room-1", RoomNumber: "M-001"}}, nil
}

func (f *fakeRoomingService) GetSummary(ctx context.Context, groupID string) (*rooming.Summary, error) {
	return &rooming.Summary{TotalMembers: 5, AssignedCount: 4, UnassignedCount: 1, TotalRooms: 1}, nil
}

func (f *fakeRoomingService) CreateRoom(ctx context.Context, req service.CreateRoomRequest) (*domain.Room, error) {
	if req.RoomNumber == "dup" {
		return nil, rooming.ErrDuplicateRoomNumber
	}
	return &domain.Room{RoomID: "room-new", RoomNumber: req.RoomNumber}, nil
}

func (f *fakeRoomingService) DeleteRoom(ctx context.Context, groupID, roomID string) error {
	if roomID == "missing" {
		return rooming.ErrRoomNotFound
	}
	return nil
}

func (f *fakeRoomingService) AssignMember(ctx context.Context, req service.AssignMemberRequest) error {
	if req.RoomID == "full" {
		return rooming.ErrRoomFull
	}
	return nil
}

func (f *fakeRoomingService) UnassignMember(ctx context.Context, groupID, pilgrimID string) error {
	return nil
}

func (f *fakeRoomingService) AutoAssign(ctx context.Context, req service.AutoAssignRequest) (*service.AutoAssignResponse, error) {
	return &service.AutoAssignResponse{Summary: rooming.Summary{TotalRooms: 2}}, nil
}

func (f *fakeRoomingService) ClearAutoAssigned(ctx context.Context, groupID string) (int, error) {
	return 2, nil
}

func setupTestRouter(doc *fakeDocumentService) *Router {
	router := NewRouter(zap.NewNop())
	router.RegisterGroupRoutes(
		NewDocumentHandler(doc, zap.NewNop()),
		NewRoomingHandler(&fakeRoomingService{}, zap.NewNop()),
	)
	return router
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) Result[json.RawMessage] {
	var res Result[json.RawMessage]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestProcessDocumentsRoute(t *testing.T) {
	doc := &fakeDocumentService{roster: []*domain.Pilgrim{{Nama: "REBI SARIP"}}}
	router := setupTestRouter(doc)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("files", "ktp.jpg")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("fake-image"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/group-1/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	res := decodeResult(t, rec)
	assert.Equal(t, ResultSuccess, res.Code)
	assert.Equal(t, "group-1", doc.lastProcess.GroupID)
	require.Len(t, doc.lastProcess.Files, 1)
	assert.Equal(t, "ktp.jpg", doc.lastProcess.Files[0].Filename)
	assert.Equal(t, []byte("fake-image"), doc.lastProcess.Files[0].Content)
}

func TestProcessDocumentsRoute_NoFiles(t *testing.T) {
	router := setupTestRouter(&fakeDocumentService{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/group-1/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	res := decodeResult(t, rec)
	assert.Equal(t, ResultError, res.Code)
	assert.Contains(t, res.Message, "no files")
}

func TestExportRosterRoute(t *testing.T) {
	doc := &fakeDocumentService{roster: []*domain.Pilgrim{{Nama: "REBI SARIP"}}}
	router := setupTestRouter(doc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/groups/group-1/roster/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestSaveRosterRoute(t *testing.T) {
	router := setupTestRouter(&fakeDocumentService{})

	payload := `{"roster":[{"nama":"REBI SARIP"},{"nama":"SITI AMINAH"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/group-1/roster", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	res := decodeResult(t, rec)
	assert.Equal(t, ResultSuccess, res.Code)
	assert.Contains(t, string(res.Result), `"saved":2`)
}

func TestRoomRoutes(t *testing.T) {
	router := setupTestRouter(&fakeDocumentService{})

	t.Run("list rooms", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/groups/group-1/rooms", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, ResultSuccess, decodeResult(t, rec).Code)
	})

	t.Run("create room conflict", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/group-1/rooms",
			strings.NewReader(`{"room_number":"dup"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		res := decodeResult(t, rec)
		assert.Equal(t, ResultError, res.Code)
		assert.Contains(t, res.Message, "already exists")
	})

	t.Run("assign full room", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/group-1/assignments",
			strings.NewReader(`{"pilgrim_id":"p1","room_id":"full"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		res := decodeResult(t, rec)
		assert.Equal(t, ResultError, res.Code)
		assert.Contains(t, res.Message, "capacity")
	})

	t.Run("delete missing room", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/groups/group-1/rooms/missing", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, ResultError, decodeResult(t, rec).Code)
	})

	t.Run("summary", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/groups/group-1/rooms/summary", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		res := decodeResult(t, rec)
		assert.Equal(t, ResultSuccess, res.Code)
		assert.Contains(t, string(res.Result), `"total_members":5`)
	})

	t.Run("auto assign", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/group-1/rooms/auto-assign",
			strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, ResultSuccess, decodeResult(t, rec).Code)
	})

	t.Run("clear auto", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/group-1/rooms/clear-auto", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		res := decodeResult(t, rec)
		assert.Equal(t, ResultSuccess, res.Code)
		assert.Contains(t, string(res.Result), `"deleted":2`)
	})

	t.Run("unknown resource", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/groups/group-1/unknown", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
