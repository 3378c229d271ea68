// Package reconcile 把多份证件的抽取结果去重合并为一份人员名册
// 流程：逐条清洗 → 按姓名相似度聚类 → 按来源优先级合并字段 → 逐条校验
// 聚类与合并是纯计算，对同一输入顺序结果完全确定，数据质量问题只产生警告不报错
package reconcile

import (
	"go.uber.org/zap"

	"jamaah-data/internal/cleaner"
	"jamaah-data/internal/domain"
	"jamaah-data/internal/matcher"
	"jamaah-data/internal/validator"
)

// FileStatus 单个文件的处理状态
type FileStatus string

const (
	StatusSuccess FileStatus = "success" // 抽取成功
	StatusFailed  FileStatus = "failed"  // 抽取失败，可按文件名重试
	StatusCached  FileStatus = "cached"  // 命中内容哈希缓存
)

// RawResult 外部抽取服务返回的单文件结果（reconcile 的输入）
type RawResult struct {
	Filename string
	DocType  domain.DocumentType
	Entry    *domain.Pilgrim // 失败时为 nil
	Err      string          // 失败原因
	Cached   bool            // 是否命中缓存
}

// FileResult 单文件处理状态（原样返回给调用方用于重试提示）
type FileResult struct {
	Filename     string              `json:"filename"`
	Status       FileStatus          `json:"status"`
	DocumentType domain.DocumentType `json:"document_type,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// RecordWarning 名册里某条记录的字段级警告
type RecordWarning struct {
	RecordIndex int    `json:"record_index"`
	Field       string `json:"field"`
	Message     string `json:"message"`
}

// Result 一次识别批次的完整输出
type Result struct {
	Roster      []*domain.Pilgrim `json:"roster"`
	Warnings    []RecordWarning   `json:"warnings"`
	FileResults []FileResult      `json:"file_results"`
}

// Engine 名册合并引擎
type Engine struct {
	matcher *matcher.Matcher
	logger  *zap.Logger
}

// NewEngine 创建合并引擎
func NewEngine(m *matcher.Matcher, logger *zap.Logger) *Engine {
	return &Engine{matcher: m, logger: logger}
}

// Reconcile 处理一个批次的抽取结果
// 单个文件失败不影响批次：失败记录只出现在 FileResults 里，不参与聚类
func (e *Engine) Reconcile(raws []RawResult) *Result {
	result := &Result{
		FileResults: make([]FileResult, 0, len(raws)),
	}

	var candidates []*candidate
	for _, raw := range raws {
		if raw.Entry == nil || raw.Err != "" {
			result.FileResults = append(result.FileResults, FileResult{
				Filename: raw.Filename,
				Status:   StatusFailed,
				Error:    raw.Err,
			})
			continue
		}

		status := StatusSuccess
		if raw.Cached {
			status = StatusCached
		}
		result.FileResults = append(result.FileResults, FileResult{
			Filename:     raw.Filename,
			Status:       status,
			DocumentType: raw.DocType,
		})

		entry := raw.Entry
		if entry.JenisIdentitas == "" && raw.DocType != domain.DocUnknown {
			entry.JenisIdentitas = string(raw.DocType)
		}
		if !cleaner.CleanEntry(entry) {
			// 整条没有可用数据（OCR 读到的全是噪声），丢弃但文件本身算成功
			e.logger.Debug("dropped empty extraction", zap.String("filename", raw.Filename))
			continue
		}
		entry.AddSourceDoc(raw.DocType)
		candidates = append(candidates, &candidate{entry: entry, docType: raw.DocType})
	}

	clusters := e.clusterByName(candidates)
	clusters = mergeByIdentityNumber(clusters)

	for i, c := range clusters {
		merged := mergeCluster(c)
		result.Roster = append(result.Roster, merged)
		for _, w := range validator.ValidateRecord(merged) {
			result.Warnings = append(result.Warnings, RecordWarning{
				RecordIndex: i,
				Field:       w.Field,
				Message:     w.Message,
			})
		}
	}

	e.logger.Info("reconcile batch done",
		zap.Int("files", len(raws)),
		zap.Int("candidates", len(candidates)),
		zap.Int("roster", len(result.Roster)),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result
}

type candidate struct {
	entry   *domain.Pilgrim
	docType domain.DocumentType
}

// cluster 一个身份聚类：members 保持加入顺序，merged 是当前合并态（用作聚类代表）
type cluster struct {
	members []*candidate
	merged  *domain.Pilgrim
}

// clusterByName 从左到右折叠候选列表：加入第一个姓名匹配的聚类，否则新建
// 聚类顺序就是名册输出顺序，对同一输入顺序完全确定
func (e *Engine) clusterByName(candidates []*candidate) []*cluster {
	var clusters []*cluster
	for _, cand := range candidates {
		joined := false
		for _, cl := range clusters {
			if e.matcher.SamePerson(cand.entry, cl.merged) {
				cl.members = append(cl.members, cand)
				cl.merged = mergeCluster(cl)
				joined = true
				break
			}
		}
		if !joined {
			cl := &cluster{members: []*candidate{cand}}
			cl.merged = mergeCluster(cl)
			clusters = append(clusters, cl)
		}
	}
	return clusters
}

// mergeByIdentityNumber 第二遍合并：姓名差异过大但证件号完全相同的聚类必定是同一人
// （比如护照上的拼音姓名和 KTP 姓名相似度不足时），否则名册会违反证件号唯一性
func mergeByIdentityNumber(clusters []*cluster) []*cluster {
	var out []*cluster
	for _, cl := range clusters {
		target := -1
		for i, existing := range out {
			if sameIdentityNumber(existing.merged, cl.merged) {
				target = i
				break
			}
		}
		if target < 0 {
			out = append(out, cl)
			continue
		}
		out[target].members = append(out[target].members, cl.members...)
		out[target].merged = mergeCluster(out[target])
	}
	return out
}

func sameIdentityNumber(a, b *domain.Pilgrim) bool {
	if a.NoIdentitas != "" && a.NoIdentitas == b.NoIdentitas {
		return true
	}
	if a.NoPaspor != "" && a.NoPaspor == b.NoPaspor {
		return true
	}
	return false
}
