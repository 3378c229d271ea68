package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"jamaah-data/internal/domain"
	"jamaah-data/internal/service"
)

// maxUploadBytes 单次上传总量上限（证件照片批量）
const maxUploadBytes = 64 << 20

// DocumentHandler 证件识别与名册 Handler
type DocumentHandler struct {
	documentService service.DocumentService
	logger          *zap.Logger
}

// NewDocumentHandler 创建证件识别 Handler
func NewDocumentHandler(documentService service.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// Serve 分发 documents/roster 子路由
func (h *DocumentHandler) Serve(w http.ResponseWriter, r *http.Request, groupID, resource, tail string) {
	switch {
	// ProcessDocuments - POST /api/v1/groups/:id/documents
	case resource == "documents" && tail == "" && r.Method == http.MethodPost:
		h.ProcessDocuments(w, r, groupID)
	// ListRoster - GET /api/v1/groups/:id/roster
	case resource == "roster" && tail == "" && r.Method == http.MethodGet:
		h.ListRoster(w, r, groupID)
	// SaveRoster - POST /api/v1/groups/:id/roster
	case resource == "roster" && tail == "" && r.Method == http.MethodPost:
		h.SaveRoster(w, r, groupID)
	// ExportRoster - GET /api/v1/groups/:id/roster/export
	case resource == "roster" && tail == "export" && r.Method == http.MethodGet:
		h.ExportRoster(w, r, groupID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// ProcessDocuments 接收 multipart 证件照片批次，返回合并名册（不落库）
// 失败文件在 file_results 里标记，前端按原文件名重传即可重试
func (h *DocumentHandler) ProcessDocuments(w http.ResponseWriter, r *http.Request, groupID string) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid multipart body"))
		return
	}
	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		writeJSON(w, http.StatusOK, Fail("no files uploaded"))
		return
	}

	req := service.ProcessDocumentsRequest{GroupID: groupID}
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to read %s", fh.Filename)))
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to read %s", fh.Filename)))
			return
		}
		req.Files = append(req.Files, service.UploadedFile{
			Filename: fh.Filename,
			Content:  content,
		})
	}

	resp, err := h.documentService.ProcessDocuments(r.Context(), req)
	if err != nil {
		h.logger.Error("process documents failed",
			zap.String("group_id", groupID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// ListRoster 列出团组名册
func (h *DocumentHandler) ListRoster(w http.ResponseWriter, r *http.Request, groupID string) {
	roster, err := h.documentService.ListRoster(r.Context(), groupID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": roster,
		"total": len(roster),
	}))
}

// SaveRoster 把（人工核对后的）名册落库
func (h *DocumentHandler) SaveRoster(w http.ResponseWriter, r *http.Request, groupID string) {
	var payload struct {
		Roster []*domain.Pilgrim `json:"roster"`
	}
	if err := readBodyJSON(r, 8<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	if len(payload.Roster) == 0 {
		writeJSON(w, http.StatusOK, Fail("roster is empty"))
		return
	}

	resp, err := h.documentService.SaveRoster(r.Context(), service.SaveRosterRequest{
		GroupID: groupID,
		Roster:  payload.Roster,
	})
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// ExportRoster 导出名册 Excel（固定 32 列表头）
func (h *DocumentHandler) ExportRoster(w http.ResponseWriter, r *http.Request, groupID string) {
	roster, err := h.documentService.ListRoster(r.Context(), groupID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	data, err := GenerateRosterExport(roster)
	if err != nil {
		h.logger.Error("roster export failed",
			zap.String("group_id", groupID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	filename := fmt.Sprintf("roster_%s_%s.xlsx", groupID, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	_, _ = w.Write(data)
}
