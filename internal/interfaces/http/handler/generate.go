package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"plugin-ai-proxy/internal/application/content"
	"plugin-ai-proxy/internal/config"
	"plugin-ai-proxy/internal/interfaces/http/dto"
	"plugin-ai-proxy/pkg/errors"
	"plugin-ai-proxy/pkg/logger"
)

// GenerateHandler 结构化内容生成处理器
type GenerateHandler struct {
	svc    *content.Service
	apiKey string
}

// NewGenerateHandler 创建生成处理器
func NewGenerateHandler(svc *content.Service, cfg *config.Config) *GenerateHandler {
	return &GenerateHandler{svc: svc, apiKey: cfg.LLM.APIKey()}
}

// Generate 生成营销内容
// @Summary 生成内容
// @Description format=plain 返回模型原文；默认 structured 返回 headlines/descriptions/ctas
// @Tags Content
// @Accept json
// @Produce json
// @Param body body dto.GenerateRequest true "生成请求"
// @Success 200 {object} dto.GenerateResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()
	if !requireServerKey(c, h.apiKey) {
		return
	}

	var req dto.GenerateRequest
	if appErr := bindJSON(c, &req); appErr != nil {
		dto.Error(c, appErr)
		return
	}
	genReq, opts, err := req.ToGenerationRequest()
	if err != nil {
		dto.Error(c, errors.AsAppError(err))
		return
	}

	logger.Info(ctx, "generating content",
		"format", genReq.Format(),
		"context", genReq.Context(),
		"prompt_length", len(genReq.Prompt()),
	)

	result, err := h.svc.Generate(ctx, h.apiKey, genReq, opts)
	if err != nil {
		writeCallError(c, err, errors.ErrProxyFailure)
		return
	}

	resp := result.Response
	if result.Format == content.FormatPlain {
		if !resp.IsJSON() {
			logger.Error(ctx, "messages api returned non-json body", nil, "content_type", resp.ContentType)
			dto.ErrorWithTimestamp(c, errors.ErrProxyFailure)
			return
		}
		c.JSON(http.StatusOK, dto.PlainGenerateResponse{
			Success: true,
			Content: result.Text,
			Usage:   resp.UsageRaw,
			Model:   resp.Model,
		})
		return
	}

	c.JSON(http.StatusOK, dto.GenerateResponse{
		Success:     true,
		Content:     result.Resolution.Content,
		RawResponse: result.Text,
		Usage:       resp.UsageRaw,
		Model:       resp.Model,
		Outcome:     result.Resolution.Outcome,
		Topic:       result.Resolution.Topic,
	})
}
