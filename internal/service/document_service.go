package service

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"go.uber.org/zap"

	"jamaah-data/internal/config"
	"jamaah-data/internal/domain"
	"jamaah-data/internal/extractor"
	"jamaah-data/internal/reconcile"
	"jamaah-data/internal/repository"
	"jamaah-data/internal/store"
)

// DocumentService 证件识别服务接口
type DocumentService interface {
	// ProcessDocuments 处理一批证件照片：抽取 → 清洗合并 → 名册
	// 单个文件失败不中断批次，失败文件通过 FileResults 返回、可按原文件名重传重试
	ProcessDocuments(ctx context.Context, req ProcessDocumentsRequest) (*ProcessDocumentsResponse, error)

	// SaveRoster 将（人工核对后的）名册落库
	SaveRoster(ctx context.Context, req SaveRosterRequest) (*SaveRosterResponse, error)

	// ListRoster 列出团组名册
	ListRoster(ctx context.Context, groupID string) ([]*domain.Pilgrim, error)
}

// documentService 实现
type documentService struct {
	vision       extractor.Client
	cache        store.KV
	engine       *reconcile.Engine
	pilgrimsRepo repository.PilgrimsRepository
	cfg          config.VisionConfig
	logger       *zap.Logger
}

// NewDocumentService 创建 DocumentService 实例
func NewDocumentService(
	vision extractor.Client,
	cache store.KV,
	engine *reconcile.Engine,
	pilgrimsRepo repository.PilgrimsRepository,
	cfg config.VisionConfig,
	logger *zap.Logger,
) DocumentService {
	return &documentService{
		vision:       vision,
		cache:        cache,
		engine:       engine,
		pilgrimsRepo: pilgrimsRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

// ============================================
// Request/Response DTOs
// ============================================

// UploadedFile 上传的单张证件照片
type UploadedFile struct {
	Filename string
	Content  []byte
}

// ProcessDocumentsRequest 批量识别请求
type ProcessDocumentsRequest struct {
	GroupID string
	Files   []UploadedFile
}

// ProcessDocumentsResponse 批量识别结果（未落库，供前端核对）
type ProcessDocumentsResponse struct {
	Roster      []*domain.Pilgrim         `json:"roster"`
	Warnings    []reconcile.RecordWarning `json:"warnings"`
	FileResults []reconcile.FileResult    `json:"file_results"`
}

// SaveRosterRequest 名册落库请求
type SaveRosterRequest struct {
	GroupID string
	Roster  []*domain.Pilgrim
}

// SaveRosterResponse 名册落库结果
type SaveRosterResponse struct {
	Saved int `json:"saved"`
}

// ============================================
// 实现
// ============================================

func (s *documentService) ProcessDocuments(ctx context.Context, req ProcessDocumentsRequest) (*ProcessDocumentsResponse, error) {
	if len(req.Files) == 0 {
		return nil, fmt.Errorf("no files to process")
	}

	// 抽取结果按上传顺序回填，保证名册顺序只取决于输入顺序
	raws := make([]reconcile.RawResult, len(req.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())
	for i, file := range req.Files {
		i, file := i, file
		g.Go(func() error {
			raws[i] = s.extractOne(gctx, file)
			return nil
		})
	}
	// 工作协程不返回错误（失败落在 RawResult.Err 里），Wait 只等待收尾
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extraction cancelled: %w", err)
	}

	result := s.engine.Reconcile(raws)
	return &ProcessDocumentsResponse{
		Roster:      result.Roster,
		Warnings:    result.Warnings,
		FileResults: result.FileResults,
	}, nil
}

// extractOne 单文件抽取：内容哈希命中缓存则直接复用，否则调用视觉服务并写缓存
// 只有成功的抽取结果才进缓存，失败文件重传时会重新调用视觉服务
func (s *documentService) extractOne(ctx context.Context, file UploadedFile) reconcile.RawResult {
	raw := reconcile.RawResult{Filename: file.Filename}
	key := "vision:" + store.ContentHash(file.Content)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		var extraction extractor.Extraction
		if err := json.Unmarshal([]byte(cached), &extraction); err == nil && extraction.Fields != nil {
			raw.DocType = extraction.DocumentType
			raw.Entry = extraction.Fields
			raw.Cached = true
			return raw
		}
		// 缓存内容损坏：删掉重新抽取
		_ = s.cache.Del(ctx, key)
	} else if err != store.ErrMiss {
		s.logger.Warn("vision cache unavailable", zap.Error(err))
	}

	extraction, err := s.vision.ExtractDocument(ctx, file.Filename, file.Content)
	if err != nil {
		s.logger.Warn("document extraction failed",
			zap.String("filename", file.Filename),
			zap.Error(err),
		)
		raw.Err = err.Error()
		return raw
	}

	if data, err := json.Marshal(extraction); err == nil {
		if err := s.cache.Set(ctx, key, string(data), s.cfg.CacheTTL); err != nil {
			s.logger.Warn("failed to cache extraction", zap.Error(err))
		}
	}

	raw.DocType = extraction.DocumentType
	raw.Entry = extraction.Fields
	return raw
}

func (s *documentService) SaveRoster(ctx context.Context, req SaveRosterRequest) (*SaveRosterResponse, error) {
	if req.GroupID == "" {
		return nil, fmt.Errorf("group_id is required")
	}
	if err := s.pilgrimsRepo.SaveRoster(ctx, req.GroupID, req.Roster); err != nil {
		return nil, fmt.Errorf("failed to save roster: %w", err)
	}
	s.logger.Info("roster saved",
		zap.String("group_id", req.GroupID),
		zap.Int("members", len(req.Roster)),
	)
	return &SaveRosterResponse{Saved: len(req.Roster)}, nil
}

func (s *documentService) ListRoster(ctx context.Context, groupID string) ([]*domain.Pilgrim, error) {
	if groupID == "" {
		return nil, fmt.Errorf("group_id is required")
	}
	return s.pilgrimsRepo.ListByGroup(ctx, groupID)
}

func (s *documentService) concurrency() int {
	if s.cfg.Concurrency > 0 {
		return s.cfg.Concurrency
	}
	return 10
}
