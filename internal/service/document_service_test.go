package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jamaah-data/internal/config"
	"jamaah-data/internal/domain"
	"jamaah-data/internal/extractor"
	"jamaah-data/internal/matcher"
	"jamaah-data/internal/reconcile"
	"jamaah-data/internal/store"
)

// fakeVision returns canned extractions keyed by filename and counts calls.
type fakeVision struct {
	mu      sync.Mutex
	calls   map[string]int
	results map[string]*extractor.Extraction
	fail    map[string]error
}

func newFakeVision() *fakeVision {
	return &fakeVision{
		calls:   make(map[string]int),
		results: make(map[string]*extractor.Extraction),
		fail:    make(map[string]error),
	}
}

func (f *fakeVision) ExtractDocument(ctx context.Context, filename string, image []byte) (*extractor.Extraction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[filename]++
	if err, ok := f.fail[filename]; ok {
		return nil, err
	}
	res := f.results[filename]
	// return a copy, the pipeline mutates entries in place
	fields := *res.Fields
	return &extractor.Extraction{DocumentType: res.DocumentType, Fields: &fields}, nil
}

func (f *fakeVision) callCount(filename string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[filename]
}

// fakePilgrimsRepo records saved rosters in memory.
type fakePilgrimsRepo struct {
	mu     sync.Mutex
	rosters map[string][]*domain.Pilgrim
}

func newFakePilgrimsRepo() *fakePilgrimsRepo {
	return &fakePilgrimsRepo{rosters: make(map[string][]*domain.Pilgrim)}
}

func (r *fakePilgrimsRepo) SaveRoster(ctx context.Context, groupID string, roster []*domain.Pilgrim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rosters[groupID] = roster
	return nil
}

func (r *fakePilgrimsRepo) ListByGroup(ctx context.Context, groupID string) ([]*domain.Pilgrim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosters[groupID], nil
}

func (r *fakePilgrimsRepo) GetPilgrim(ctx context.Context, groupID, pilgrimID string) (*domain.Pilgrim, error) {
	for _, p := range r.rosters[groupID] {
		if p.PilgrimID == pilgrimID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("pilgrim not found: %s", pilgrimID)
}

func (r *fakePilgrimsRepo) UpdateRoomAssignment(ctx context.Context, pilgrimID, roomID string) error {
	return nil
}

func (r *fakePilgrimsRepo) UpdateFamilyID(ctx context.Context, pilgrimID, familyID string) error {
	return nil
}

func (r *fakePilgrimsRepo) CountMembers(ctx context.Context, groupID string) (int, int, error) {
	return len(r.rosters[groupID]), 0, nil
}

func setupDocumentService(t *testing.T, vision *fakeVision) (DocumentService, *fakePilgrimsRepo) {
	mr := miniredis.RunT(t)
	kv := store.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	repo := newFakePilgrimsRepo()
	engine := reconcile.NewEngine(matcher.New(0), zap.NewNop())
	cfg := config.VisionConfig{Concurrency: 4}

	return NewDocumentService(vision, kv, engine, repo, cfg, zap.NewNop()), repo
}

func TestProcessDocuments_MergesBatch(t *testing.T) {
	vision := newFakeVision()
	vision.results["ktp.jpg"] = &extractor.Extraction{
		DocumentType: domain.DocKTP,
		Fields:       &domain.Pilgrim{Nama: "REBI SARIP", NoIdentitas: "3204123456789012"},
	}
	vision.results["paspor.jpg"] = &extractor.Extraction{
		DocumentType: domain.DocPaspor,
		Fields:       &domain.Pilgrim{NamaPaspor: "REBI SARIP", NoPaspor: "C1234567"},
	}

	svc, _ := setupDocumentService(t, vision)

	resp, err := svc.ProcessDocuments(context.Background(), ProcessDocumentsRequest{
		GroupID: "group-1",
		Files: []UploadedFile{
			{Filename: "ktp.jpg", Content: []byte("ktp-bytes")},
			{Filename: "paspor.jpg", Content: []byte("paspor-bytes")},
		},
	})
	require.NoError(t, err)

	require.Len(t, resp.Roster, 1)
	assert.Equal(t, "REBI SARIP", resp.Roster[0].Nama)
	assert.Equal(t, "C1234567", resp.Roster[0].NoPaspor)
	assert.Len(t, resp.FileResults, 2)
}

// Identical file content must hit the extraction cache on the second run.
func TestProcessDocuments_CachesByContentHash(t *testing.T) {
	vision := newFakeVision()
	vision.results["ktp.jpg"] = &extractor.Extraction{
		DocumentType: domain.DocKTP,
		Fields:       &domain.Pilgrim{Nama: "REBI SARIP", NoIdentitas: "3204123456789012"},
	}

	svc, _ := setupDocumentService(t, vision)
	req := ProcessDocumentsRequest{
		GroupID: "group-1",
		Files:   []UploadedFile{{Filename: "ktp.jpg", Content: []byte("same-bytes")}},
	}

	first, err := svc.ProcessDocuments(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, reconcile.StatusSuccess, first.FileResults[0].Status)

	second, err := svc.ProcessDocuments(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, reconcile.StatusCached, second.FileResults[0].Status)
	assert.Equal(t, 1, vision.callCount("ktp.jpg"))
}

// Failed extractions are not cached, so a retry calls the vision service again.
func TestProcessDocuments_FailureNotCached(t *testing.T) {
	vision := newFakeVision()
	vision.fail["blurry.jpg"] = fmt.Errorf("vision API returned HTTP 500")

	svc, _ := setupDocumentService(t, vision)
	req := ProcessDocumentsRequest{
		GroupID: "group-1",
		Files:   []UploadedFile{{Filename: "blurry.jpg", Content: []byte("blurry-bytes")}},
	}

	resp, err := svc.ProcessDocuments(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, reconcile.StatusFailed, resp.FileResults[0].Status)
	assert.Empty(t, resp.Roster)

	_, err = svc.ProcessDocuments(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, vision.callCount("blurry.jpg"))
}

func TestProcessDocuments_EmptyBatchRejected(t *testing.T) {
	svc, _ := setupDocumentService(t, newFakeVision())

	_, err := svc.ProcessDocuments(context.Background(), ProcessDocumentsRequest{GroupID: "group-1"})
	assert.Error(t, err)
}

func TestSaveAndListRoster(t *testing.T) {
	svc, repo := setupDocumentService(t, newFakeVision())
	ctx := context.Background()

	roster := []*domain.Pilgrim{
		{PilgrimID: "p1", Nama: "REBI SARIP"},
		{PilgrimID: "p2", Nama: "SITI AMINAH"},
	}
	resp, err := svc.SaveRoster(ctx, SaveRosterRequest{GroupID: "group-1", Roster: roster})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Saved)
	assert.Len(t, repo.rosters["group-1"], 2)

	listed, err := svc.ListRoster(ctx, "group-1")
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	_, err = svc.SaveRoster(ctx, SaveRosterRequest{Roster: roster})
	assert.Error(t, err)
}
