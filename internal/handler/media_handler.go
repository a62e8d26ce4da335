package handler

import (
	"family_hub_server/internal/dto/request"
	"family_hub_server/internal/infrastructure/middleware"
	"family_hub_server/internal/service"
	"family_hub_server/internal/service/media"

	"github.com/gin-gonic/gin"
)

// MediaHandler 媒体请求处理器
type MediaHandler struct {
	mediaSvc service.MediaService
}

// NewMediaHandler 创建媒体处理器实例
func NewMediaHandler(mediaSvc service.MediaService) *MediaHandler {
	return &MediaHandler{mediaSvc: mediaSvc}
}

// Upload 上传文件
// POST /api/media/upload
// 表单: file（必填）, familyId（可选）
// 响应: 201 { media }
//
// 大小和类型已由 UploadFilter 中间件校验
func (h *MediaHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		HandleParamError(c, err)
		return
	}
	item, err := h.mediaSvc.Upload(c.Request.Context(), currentUserID(c), media.UploadFile{
		Header:   header,
		MimeType: c.GetString(middleware.ContextUploadMIME),
		FamilyID: c.PostForm("familyId"),
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, gin.H{"media": item})
}

// GetMedia 媒体详情，附带下载链接
// GET /api/media/:id
func (h *MediaHandler) GetMedia(c *gin.Context) {
	item, err := h.mediaSvc.GetMedia(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"media": item})
}

// DeleteMedia DELETE /api/media/:id
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	if err := h.mediaSvc.DeleteMedia(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Media deleted")
}

// ListMyMedia GET /api/media?type=image&page=1&limit=20
func (h *MediaHandler) ListMyMedia(c *gin.Context) {
	var query request.MediaListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.mediaSvc.ListMyMedia(c.Request.Context(), currentUserID(c), query)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"media": data.Media, "pagination": data.Pagination})
}

// ListFamilyMedia GET /api/families/:id/media?type=image&page=1&limit=20
func (h *MediaHandler) ListFamilyMedia(c *gin.Context) {
	var query request.MediaListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.mediaSvc.ListFamilyMedia(c.Request.Context(), c.Param("id"), currentUserID(c), query)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"media": data.Media, "pagination": data.Pagination})
}
