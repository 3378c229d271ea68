// Package extractor 外部视觉抽取服务的 HTTP 客户端
// 视觉模型本身是黑盒：输入证件照片，返回逐字段的原始猜测，
// 重试/退避在这一层配置，限流由上层 document service 控制
package extractor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"jamaah-data/internal/domain"
)

// Extraction 单张图片的抽取结果
type Extraction struct {
	DocumentType domain.DocumentType `json:"document_type"`
	Fields       *domain.Pilgrim     `json:"fields"`
}

// visionRequest 视觉服务请求体
type visionRequest struct {
	Filename    string `json:"filename"`
	ImageBase64 string `json:"image_base64"`
}

// visionResponse 视觉服务响应包
type visionResponse struct {
	Status int             `json:"status"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
}

// Client 视觉抽取服务客户端
type Client interface {
	ExtractDocument(ctx context.Context, filename string, image []byte) (*Extraction, error)
}

type visionClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient 创建视觉服务客户端，带重试和指数退避
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}
	return &visionClient{httpClient: client, logger: logger}
}

// ExtractDocument 提交一张证件照片，返回结构化字段猜测
func (c *visionClient) ExtractDocument(ctx context.Context, filename string, image []byte) (*Extraction, error) {
	request := visionRequest{
		Filename:    filename,
		ImageBase64: base64.StdEncoding.EncodeToString(image),
	}

	var response visionResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post("/v1/documents/extract")
	if err != nil {
		return nil, fmt.Errorf("failed to call vision API: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("vision API returned HTTP %d", resp.StatusCode())
	}
	if response.Status != 0 {
		return nil, fmt.Errorf("vision API error: %s (status: %d)", response.Msg, response.Status)
	}

	var extraction Extraction
	if err := json.Unmarshal(response.Data, &extraction); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extraction: %w", err)
	}
	if extraction.Fields == nil {
		extraction.Fields = &domain.Pilgrim{}
	}
	if extraction.DocumentType == "" {
		extraction.DocumentType = domain.DocUnknown
	}

	c.logger.Debug("vision extraction done",
		zap.String("filename", filename),
		zap.String("document_type", string(extraction.DocumentType)),
	)
	return &extraction, nil
}
