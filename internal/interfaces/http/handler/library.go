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

// LibraryHandler 内容库批量生成处理器
type LibraryHandler struct {
	gen    *content.LibraryGenerator
	apiKey string
}

// NewLibraryHandler 创建内容库处理器
func NewLibraryHandler(gen *content.LibraryGenerator, cfg *config.Config) *LibraryHandler {
	return &LibraryHandler{gen: gen, apiKey: cfg.LLM.APIKey()}
}

// GenerateContent 逐个专科生成内容库，失败的批次使用模板内容
// @Summary 生成内容库
// @Tags Content
// @Produce json
// @Success 200 {object} dto.LibraryResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/generate-content [post]
func (h *LibraryHandler) GenerateContent(c *gin.Context) {
	ctx := c.Request.Context()
	if !requireServerKey(c, h.apiKey) {
		return
	}

	lib, err := h.gen.GenerateLibrary(ctx, h.apiKey)
	if err != nil {
		logger.Error(ctx, "content library generation failed", err)
		dto.ErrorWithTimestamp(c, errors.ErrGenerationFailed.WithError(err))
		return
	}
	c.JSON(http.StatusOK, dto.NewLibraryResponse(lib))
}
